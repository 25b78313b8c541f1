package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/udiptgupta/Risk-lab/pkg/models"
)

func testCurve(yields ...float64) models.TermStructure {
	points := make([]models.CurvePoint, len(yields))
	for i, y := range yields {
		points[i] = models.CurvePoint{TenorYears: i + 1, Yield: y}
	}
	return models.TermStructure{
		CurveDate: time.Date(2025, time.July, 18, 0, 0, 0, 0, time.UTC),
		Points:    points,
	}
}

func TestRateAtStepLookup(t *testing.T) {
	curve := testCurve(0.031, 0.032, 0.034)

	// first tenor covering t wins
	assert.InDelta(t, 0.031, RateAt(0.5, curve, 0), 1e-12)
	assert.InDelta(t, 0.031, RateAt(1.0, curve, 0), 1e-12)
	assert.InDelta(t, 0.032, RateAt(1.5, curve, 0), 1e-12)
	assert.InDelta(t, 0.034, RateAt(2.75, curve, 0), 1e-12)
}

func TestRateAtFlatExtrapolation(t *testing.T) {
	curve := testCurve(0.031, 0.032, 0.034)

	// beyond the longest tenor the last yield applies unchanged
	assert.InDelta(t, 0.034, RateAt(7.0, curve, 0), 1e-12)
	assert.InDelta(t, 0.034, RateAt(30.0, curve, 0), 1e-12)
}

func TestRateAtAddsSpread(t *testing.T) {
	curve := testCurve(0.05)

	assert.InDelta(t, 0.065, RateAt(1.0, curve, 0.015), 1e-12)
}

func TestShiftParallel(t *testing.T) {
	curve := testCurve(0.031, 0.032, 0.034)

	shifted := Shift(curve, 100)
	assert.InDelta(t, 0.041, shifted.Points[0].Yield, 1e-12)
	assert.InDelta(t, 0.042, shifted.Points[1].Yield, 1e-12)
	assert.InDelta(t, 0.044, shifted.Points[2].Yield, 1e-12)

	down := Shift(curve, -250)
	assert.InDelta(t, 0.006, down.Points[0].Yield, 1e-12)

	// the input curve is left untouched
	assert.InDelta(t, 0.031, curve.Points[0].Yield, 1e-12)

	// tenors carry over
	assert.Equal(t, curve.Points[2].TenorYears, shifted.Points[2].TenorYears)
}

func TestShiftZeroIsIdentity(t *testing.T) {
	curve := testCurve(0.031, 0.032, 0.034)

	shifted := Shift(curve, 0)
	assert.Equal(t, curve.Points, shifted.Points)
}
