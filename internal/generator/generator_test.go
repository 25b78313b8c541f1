package generator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBondsAreWellFormed(t *testing.T) {
	gen := New(Config{Seed: 1, Bonds: 50})

	bonds := gen.Bonds()
	require.Len(t, bonds, 50)

	for _, bond := range bonds {
		assert.Len(t, bond.ISIN, 12)
		assert.Equal(t, "IN", bond.ISIN[:2])
		assert.Contains(t, issuers, bond.Issuer)
		assert.Contains(t, ratings, bond.CreditRating)
		assert.Contains(t, frequencies, bond.CouponFrequency)
		assert.Contains(t, faceValues, bond.FaceValue)
		assert.GreaterOrEqual(t, bond.CouponRate, 0.03)
		assert.LessOrEqual(t, bond.CouponRate, 0.08)
		assert.True(t, bond.MaturityDate.After(bond.IssueDate))

		years := bond.MaturityDate.Year() - bond.IssueDate.Year()
		assert.GreaterOrEqual(t, years, 5)
		assert.LessOrEqual(t, years, 20)
	}
}

func TestGenerationIsReproducible(t *testing.T) {
	first := New(Config{Seed: 7, Bonds: 10}).Bonds()
	second := New(Config{Seed: 7, Bonds: 10}).Bonds()

	assert.Equal(t, first, second)
}

func TestCurvesWalkBackFromAsOf(t *testing.T) {
	asOf := time.Date(2025, time.July, 20, 0, 0, 0, 0, time.UTC)
	gen := New(Config{Seed: 3, CurveDays: 5, MaxTenor: 10, BaseYield: 0.05, YieldSlope: 0.002})

	curves := gen.Curves(asOf)
	require.Len(t, curves, 5)

	assert.Equal(t, asOf.AddDate(0, 0, -4), curves[0].CurveDate)
	assert.Equal(t, asOf, curves[4].CurveDate)

	for _, curve := range curves {
		require.Len(t, curve.Points, 10)
		for i := 1; i < len(curve.Points); i++ {
			assert.Equal(t, curve.Points[i-1].TenorYears+1, curve.Points[i].TenorYears)
			// log-shaped slope keeps the curve upward sloping
			assert.Greater(t, curve.Points[i].Yield, curve.Points[i-1].Yield)
		}
	}
}

func TestSpreadsCoverAllRatings(t *testing.T) {
	spreads := New(Config{Seed: 1}).Spreads()

	for _, rating := range ratings {
		assert.Greater(t, spreads.SpreadFor(rating), 0.0)
	}
	assert.Zero(t, spreads.SpreadFor("CCC"))
}
