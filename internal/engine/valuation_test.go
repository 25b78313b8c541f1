package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udiptgupta/Risk-lab/pkg/models"
)

func TestValueZeroCouponSanity(t *testing.T) {
	// Single cash flow of 1000 at t=1 on a flat 5% curve: price is the
	// discounted face, duration is exactly t and convexity exactly t^2.
	curve := testCurve(0.05, 0.05, 0.05)
	cashFlows := []models.CashFlow{{TimeYears: 1.0, Amount: 1000}}

	result := Value(cashFlows, curve, 0)

	assert.InDelta(t, 951.23, result.Price, 1e-9)
	assert.InDelta(t, 1.0, result.MacaulayDuration, 1e-9)
	assert.InDelta(t, 1.0, result.ModifiedDuration, 1e-9)
	assert.InDelta(t, 1.0, result.Convexity, 1e-9)
}

func TestValueCouponBondWorkedExample(t *testing.T) {
	// 1000 face, 10% annual coupon, 2 years to maturity, flat 5% curve:
	// cash flows (1, 100) and (2, 1100).
	curve := testCurve(0.05, 0.05)
	cashFlows := []models.CashFlow{
		{TimeYears: 1.0, Amount: 100},
		{TimeYears: 2.0, Amount: 1100},
	}

	pv1 := 100 * math.Exp(-0.05)
	pv2 := 1100 * math.Exp(-0.10)
	price := pv1 + pv2
	weighted := pv1 + 2*pv2
	weightedSq := pv1 + 4*pv2

	result := Value(cashFlows, curve, 0)

	assert.InDelta(t, 1090.44, result.Price, 1e-9)
	assert.InDelta(t, weighted/price, result.MacaulayDuration, 1e-4)
	assert.InDelta(t, weightedSq/price, result.Convexity, 1e-4)
	assert.Equal(t, result.MacaulayDuration, result.ModifiedDuration)

	require.Len(t, result.CashFlows, 2)
	assert.InDelta(t, 95.12, result.CashFlows[0].PV, 1e-9)
	assert.InDelta(t, 995.32, result.CashFlows[1].PV, 1e-9)
	assert.InDelta(t, 1100.0, result.CashFlows[1].Amount, 1e-9)
}

func TestValueEmptyScheduleIsDegenerate(t *testing.T) {
	curve := testCurve(0.05)

	result := Value(nil, curve, 0)

	assert.True(t, result.Degenerate())
	assert.Zero(t, result.Price)
	assert.Zero(t, result.MacaulayDuration)
	assert.Zero(t, result.ModifiedDuration)
	assert.Zero(t, result.Convexity)
	assert.Empty(t, result.CashFlows)
	assert.NotNil(t, result.CashFlows)
}

func TestValueNonPositivePriceIsDegenerate(t *testing.T) {
	curve := testCurve(0.05)
	cashFlows := []models.CashFlow{{TimeYears: 1.0, Amount: -500}}

	result := Value(cashFlows, curve, 0)

	assert.True(t, result.Degenerate())
	assert.Empty(t, result.CashFlows)
}

func TestValuePriceMonotonicInRate(t *testing.T) {
	cashFlows := []models.CashFlow{
		{TimeYears: 1.0, Amount: 50},
		{TimeYears: 2.0, Amount: 50},
		{TimeYears: 3.0, Amount: 1050},
	}

	var prev float64 = math.Inf(1)
	for _, y := range []float64{0.01, 0.02, 0.03, 0.05, 0.08, 0.12} {
		price := Value(cashFlows, testCurve(y, y, y), 0).Price
		assert.Less(t, price, prev, "price must fall as the rate rises (rate %.2f)", y)
		prev = price
	}
}

func TestValueSpreadLowersPrice(t *testing.T) {
	cashFlows := []models.CashFlow{
		{TimeYears: 1.0, Amount: 100},
		{TimeYears: 2.0, Amount: 1100},
	}
	curve := testCurve(0.05, 0.05)

	withoutSpread := Value(cashFlows, curve, 0).Price
	withSpread := Value(cashFlows, curve, 0.0150).Price

	assert.Less(t, withSpread, withoutSpread)
}

func TestValueMaturedBondEndToEnd(t *testing.T) {
	terms := models.BondTerms{
		MaturityDate:    time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		CouponRate:      0.05,
		CouponFrequency: 2,
		FaceValue:       1000,
	}

	asOf := time.Date(2025, time.July, 20, 0, 0, 0, 0, time.UTC)
	result := Value(Schedule(terms, asOf), testCurve(0.05), 0)

	assert.True(t, result.Degenerate())
}
