package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

type Option func(*Calculator)

func ProcessorFeeRate(rate decimal.Decimal) Option {
	return func(c *Calculator) {
		c.processorFeeRate = rate
	}
}

func (c *Calculator) validate() error {
	if c.processorFeeRate.IsNegative() {
		return errors.New("invalid processorFeeRate: must be >= 0")
	}

	if c.processorFeeRate.GreaterThanOrEqual(decimal.New(1, 0)) {
		return errors.New("invalid processorFeeRate: must be < 1")
	}
	return nil
}
