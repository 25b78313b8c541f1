package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/udiptgupta/Risk-lab/pkg/models"
)

func zeroCouponTerms() models.BondTerms {
	return models.BondTerms{
		MaturityDate:    date(2026, time.July, 20),
		CouponRate:      0,
		CouponFrequency: 1,
		FaceValue:       1000,
	}
}

func TestRepriceZeroShockMatchesUnshockedPrice(t *testing.T) {
	terms := models.BondTerms{
		MaturityDate:    date(2030, time.July, 20),
		CouponRate:      0.0525,
		CouponFrequency: 2,
		FaceValue:       1000,
	}
	curve := testCurve(0.031, 0.032, 0.034, 0.035, 0.036)
	asOf := date(2025, time.July, 20)

	unshocked := Value(Schedule(terms, asOf), curve, 0.0150).Price
	reprice := RepriceUnderShock(terms, asOf, 0, curve, 0.0150)

	assert.Equal(t, unshocked, reprice)
}

func TestRepriceSingleFlowUnderShock(t *testing.T) {
	// Flat 5% curve shocked +100 bps prices the single 1000 flow at
	// 1000*exp(-0.06).
	curve := testCurve(0.05, 0.05)
	asOf := date(2025, time.July, 20)

	price := RepriceUnderShock(zeroCouponTerms(), asOf, 100, curve, 0)

	assert.InDelta(t, 941.76, price, 1e-9)
}

func TestRepriceMaturedBondIsZero(t *testing.T) {
	terms := zeroCouponTerms()
	terms.MaturityDate = date(2024, time.January, 1)

	price := RepriceUnderShock(terms, date(2025, time.July, 20), 50, testCurve(0.05), 0)

	assert.Zero(t, price)
}

func TestRepriceNegativeShockRaisesPrice(t *testing.T) {
	terms := models.BondTerms{
		MaturityDate:    date(2030, time.July, 20),
		CouponRate:      0.06,
		CouponFrequency: 1,
		FaceValue:       1000,
	}
	curve := testCurve(0.04, 0.04, 0.04, 0.04, 0.04)
	asOf := date(2025, time.July, 20)

	base := RepriceUnderShock(terms, asOf, 0, curve, 0)
	up := RepriceUnderShock(terms, asOf, 100, curve, 0)
	down := RepriceUnderShock(terms, asOf, -100, curve, 0)

	assert.Less(t, up, base)
	assert.Greater(t, down, base)
}

func TestDurationApproximatesPriceSensitivity(t *testing.T) {
	// For a small parallel shock dy, dP/P ~ -modifiedDuration*dy, with the
	// residual bounded by the convexity term.
	terms := models.BondTerms{
		MaturityDate:    date(2032, time.July, 20),
		CouponRate:      0.05,
		CouponFrequency: 2,
		FaceValue:       1000,
	}
	curve := testCurve(0.04, 0.04, 0.04, 0.04, 0.04, 0.04, 0.04)
	asOf := date(2025, time.July, 20)

	result := Value(Schedule(terms, asOf), curve, 0)

	for _, shockBps := range []int{-10, 10} {
		dy := float64(shockBps) / 10000.0
		shocked := RepriceUnderShock(terms, asOf, shockBps, curve, 0)

		actual := (shocked - result.Price) / result.Price
		approx := -result.ModifiedDuration * dy

		tolerance := result.Convexity*dy*dy + 1e-4
		assert.InDelta(t, approx, actual, tolerance,
			"first-order approximation off for %d bps", shockBps)
		assert.Less(t, math.Abs(actual-approx), tolerance)
	}
}
