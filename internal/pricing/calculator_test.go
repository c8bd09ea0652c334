package pricing_test

import (
	"errors"
	"testing"

	"meetpay/internal/entity"
	"meetpay/internal/pricing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestCalculator_Breakdown(t *testing.T) {
	calc, err := pricing.NewCalculator()
	require.NoError(t, err)

	testCases := []struct {
		desc         string
		gross        string
		processorFee string
		netAmount    string
	}{
		{
			desc:         "RoundHundred",
			gross:        "100.00",
			processorFee: "4.00",
			netAmount:    "96.00",
		},
		{
			desc:         "FeeRoundsDown",
			gross:        "10.11",
			processorFee: "0.40",
			netAmount:    "9.71",
		},
		{
			desc:         "SmallestCharge",
			gross:        "0.01",
			processorFee: "0.00",
			netAmount:    "0.01",
		},
		{
			desc:         "QuarterBoundary",
			gross:        "0.13",
			processorFee: "0.01",
			netAmount:    "0.12",
		},
		{
			desc:         "LargeAmount",
			gross:        "99999.99",
			processorFee: "4000.00",
			netAmount:    "95999.99",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			gross := mustDecimal(t, tc.gross)

			breakdown, err := calc.Breakdown(gross)
			require.NoError(t, err)

			assert.True(t, breakdown.GrossAmount.Equal(gross),
				"gross: want %s, got %s", gross, breakdown.GrossAmount)
			assert.True(t, breakdown.ProcessorFee.Equal(mustDecimal(t, tc.processorFee)),
				"processor fee: want %s, got %s", tc.processorFee, breakdown.ProcessorFee)
			assert.True(t, breakdown.NetAmount.Equal(mustDecimal(t, tc.netAmount)),
				"net: want %s, got %s", tc.netAmount, breakdown.NetAmount)

			assert.True(t, breakdown.PlatformFee.Equal(breakdown.ProcessorFee),
				"platform fee must mirror processor fee")
			assert.True(t, breakdown.PayoutAmount.Equal(breakdown.NetAmount),
				"payout amount must mirror net amount")
		})
	}
}

func TestCalculator_Breakdown_InvalidInput(t *testing.T) {
	calc, err := pricing.NewCalculator()
	require.NoError(t, err)

	testCases := []struct {
		desc  string
		gross string
	}{
		{desc: "Zero", gross: "0"},
		{desc: "Negative", gross: "-10.00"},
		{desc: "SubCentPrecision", gross: "10.001"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := calc.Breakdown(mustDecimal(t, tc.gross))
			require.Error(t, err)
			assert.True(t, errors.Is(err, entity.ErrInvalidAmount),
				"want ErrInvalidAmount, got %v", err)
		})
	}
}

func TestCalculator_Breakdown_Reconciliation(t *testing.T) {
	calc, err := pricing.NewCalculator()
	require.NoError(t, err)

	gofakeit.Seed(42)

	for range 1000 {
		cents := gofakeit.IntRange(1, 10_000_000)
		gross := decimal.New(int64(cents), -2)

		breakdown, err := calc.Breakdown(gross)
		require.NoError(t, err)

		sum := breakdown.PayoutAmount.Add(breakdown.ProcessorFee)
		assert.True(t, sum.Equal(gross),
			"gross %s must equal payout %s + fee %s",
			gross, breakdown.PayoutAmount, breakdown.ProcessorFee)

		assert.True(t, breakdown.ProcessorFee.Sign() >= 0,
			"fee must be non-negative for gross %s", gross)
		assert.True(t, breakdown.PayoutAmount.Sign() >= 0,
			"payout must be non-negative for gross %s", gross)

		assert.True(t, breakdown.ProcessorFee.Exponent() >= -2,
			"fee %s must have at most two decimal places", breakdown.ProcessorFee)
		assert.True(t, breakdown.PayoutAmount.Exponent() >= -2,
			"payout %s must have at most two decimal places", breakdown.PayoutAmount)
	}
}

func TestCalculator_Breakdown_Deterministic(t *testing.T) {
	calc, err := pricing.NewCalculator()
	require.NoError(t, err)

	gross := mustDecimal(t, "123.45")

	first, err := calc.Breakdown(gross)
	require.NoError(t, err)

	for range 100 {
		next, err := calc.Breakdown(gross)
		require.NoError(t, err)
		assert.Equal(t, first, next)
	}
}

func TestCalculator_CustomFeeRate(t *testing.T) {
	calc, err := pricing.NewCalculator(
		pricing.ProcessorFeeRate(mustDecimal(t, "0.10")),
	)
	require.NoError(t, err)

	breakdown, err := calc.Breakdown(mustDecimal(t, "50.00"))
	require.NoError(t, err)

	assert.True(t, breakdown.ProcessorFee.Equal(mustDecimal(t, "5.00")))
	assert.True(t, breakdown.PayoutAmount.Equal(mustDecimal(t, "45.00")))
}

func TestNewCalculator_InvalidRate(t *testing.T) {
	testCases := []struct {
		desc string
		rate string
	}{
		{desc: "Negative", rate: "-0.01"},
		{desc: "WholeAmount", rate: "1"},
		{desc: "AboveOne", rate: "1.5"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := pricing.NewCalculator(
				pricing.ProcessorFeeRate(mustDecimal(t, tc.rate)),
			)
			require.Error(t, err)
		})
	}
}
