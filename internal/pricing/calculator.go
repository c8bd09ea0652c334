package pricing

import (
	"fmt"

	"meetpay/internal/entity"

	"github.com/shopspring/decimal"
)

// _amountScale is the currency minor-unit precision. Every amount this
// package produces is rounded half-up to this scale.
const _amountScale = 2

var _defaultProcessorFeeRate = decimal.New(4, -2) // 4%

type Calculator struct {
	processorFeeRate decimal.Decimal
}

func NewCalculator(opts ...Option) (*Calculator, error) {
	c := &Calculator{
		processorFeeRate: _defaultProcessorFeeRate,
	}

	for _, opt := range opts {
		opt(c)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("pricing.NewCalculator: %w", err)
	}

	return c, nil
}

// Breakdown decomposes a gross charge into processor fee, net amount,
// platform fee and payout amount.
//
// The processor fee is round(gross * rate) half-up to 2 decimal places, so
// gross = payout + processorFee holds exactly for any valid input. The
// platform fee is aliased to the processor fee: a single deduction, no
// additional markup.
func (c *Calculator) Breakdown(gross decimal.Decimal) (entity.Breakdown, error) {
	if gross.Sign() <= 0 {
		return entity.Breakdown{}, entity.ErrInvalidAmount
	}
	if gross.Exponent() < -_amountScale {
		return entity.Breakdown{}, entity.ErrInvalidAmount
	}

	fee := gross.Mul(c.processorFeeRate).Round(_amountScale)
	net := gross.Sub(fee)

	return entity.Breakdown{
		GrossAmount:  gross,
		ProcessorFee: fee,
		NetAmount:    net,
		PlatformFee:  fee,
		PayoutAmount: net,
	}, nil
}

func (c *Calculator) ProcessorFeeRate() decimal.Decimal {
	return c.processorFeeRate
}
