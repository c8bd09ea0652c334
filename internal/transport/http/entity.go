package httpt

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type createPaymentRequest struct {
	GrossAmount       decimal.Decimal `json:"gross_amount"`
	ClassID           *uuid.UUID      `json:"class_id"`
	MeetupID          *uuid.UUID      `json:"meetup_id"`
	EnrollmentID      *uuid.UUID      `json:"enrollment_id"`
	TicketID          *uuid.UUID      `json:"ticket_id"`
	PaymentMethod     string          `json:"payment_method"`
	PaymentProvider   string          `json:"payment_provider"`
	ProviderPaymentID *string         `json:"provider_payment_id"`
	CardLast4         *string         `json:"card_last4"      binding:"omitempty,len=4,numeric"`
}
