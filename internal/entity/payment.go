package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Breakdown is the fee decomposition of a single gross charge.
// Invariant: GrossAmount = PayoutAmount + ProcessorFee, all amounts at
// 2 decimal places. PlatformFee is an alias of ProcessorFee: the operator
// applies a single deduction, not a markup on top of processing costs.
type Breakdown struct {
	GrossAmount  decimal.Decimal `json:"gross_amount"`
	ProcessorFee decimal.Decimal `json:"processor_fee"`
	NetAmount    decimal.Decimal `json:"net_amount"`
	PlatformFee  decimal.Decimal `json:"platform_fee"`
	PayoutAmount decimal.Decimal `json:"payout_amount"`
}

type Payment struct {
	ID                uuid.UUID       `json:"id"`
	PaymentNumber     string          `json:"payment_number"`
	UserID            uuid.UUID       `json:"user_id"`
	GrossAmount       decimal.Decimal `json:"gross_amount"`
	ProcessorFee      decimal.Decimal `json:"processor_fee"`
	NetAmount         decimal.Decimal `json:"net_amount"`
	PlatformFee       decimal.Decimal `json:"platform_fee"`
	PayoutAmount      decimal.Decimal `json:"payout_amount"`
	PaymentMethod     string          `json:"payment_method"`
	PaymentProvider   string          `json:"payment_provider"`
	ProviderPaymentID *string         `json:"provider_payment_id,omitempty"`
	CardLast4         *string         `json:"card_last4,omitempty"`
	Status            PaymentStatus   `json:"status"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	ClassID           *uuid.UUID      `json:"class_id,omitempty"`
	MeetupID          *uuid.UUID      `json:"meetup_id,omitempty"`
	EnrollmentID      *uuid.UUID      `json:"enrollment_id,omitempty"`
	TicketID          *uuid.UUID      `json:"ticket_id,omitempty"`
	IdempotencyKey    *string         `json:"-"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (p *Payment) SetBreakdown(b Breakdown) {
	p.GrossAmount = b.GrossAmount
	p.ProcessorFee = b.ProcessorFee
	p.NetAmount = b.NetAmount
	p.PlatformFee = b.PlatformFee
	p.PayoutAmount = b.PayoutAmount
}

// Receipt is the composed result of a payment: the charge itself and the
// payout record it funds. Every COMPLETED payment has exactly one payout.
type Receipt struct {
	Payment *Payment `json:"payment"`
	Payout  *Payout  `json:"payout"`
}
