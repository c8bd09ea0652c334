package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueReport aggregates completed payments for administrative reporting.
type RevenueReport struct {
	PaymentCount      int64           `json:"payment_count"`
	GrossTotal        decimal.Decimal `json:"gross_total"`
	ProcessorFeeTotal decimal.Decimal `json:"processor_fee_total"`
	PlatformFeeTotal  decimal.Decimal `json:"platform_fee_total"`
	PayoutTotal       decimal.Decimal `json:"payout_total"`
	StartDate         *time.Time      `json:"start_date,omitempty"`
	EndDate           *time.Time      `json:"end_date,omitempty"`
}
