package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "PENDING"
	PayoutStatusPaid    PayoutStatus = "PAID"
	PayoutStatusFailed  PayoutStatus = "FAILED"
)

type RecipientType string

const (
	RecipientTypeVenue      RecipientType = "VENUE"
	RecipientTypeInstructor RecipientType = "INSTRUCTOR"
)

// Payout is the transfer owed to whoever delivers the purchased service.
// Created PENDING alongside its payment; the transition to PAID is performed
// by an external payout processor.
type Payout struct {
	ID            uuid.UUID       `json:"id"`
	PayoutNumber  string          `json:"payout_number"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	RecipientType RecipientType   `json:"recipient_type"`
	RecipientID   uuid.UUID       `json:"recipient_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Currency      string          `json:"currency"`
	PayoutMethod  string          `json:"payout_method"`
	Status        PayoutStatus    `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}
