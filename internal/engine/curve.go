package engine

import (
	"github.com/udiptgupta/Risk-lab/pkg/models"
)

// RateAt returns the all-in continuously compounded discount rate for a cash
// flow occurring at time t (in years). The risk-free yield comes from a
// step-function lookup: the first curve point whose tenor covers t, falling
// back to the last point when t exceeds the longest tenor (flat
// extrapolation). The credit spread is added on top.
func RateAt(t float64, curve models.TermStructure, spread float64) float64 {
	points := curve.Points
	riskFree := points[len(points)-1].Yield
	for _, p := range points {
		if t <= float64(p.TenorYears) {
			riskFree = p.Yield
			break
		}
	}
	return riskFree + spread
}

// Shift returns a copy of the curve with every yield moved by a parallel
// basis-point offset. This is the only supported shock shape; the shift is
// applied to the risk-free yields before any spread.
func Shift(curve models.TermStructure, shockBps int) models.TermStructure {
	offset := float64(shockBps) / 10000.0

	shifted := models.TermStructure{
		CurveDate: curve.CurveDate,
		Points:    make([]models.CurvePoint, len(curve.Points)),
	}
	for i, p := range curve.Points {
		shifted.Points[i] = models.CurvePoint{
			TenorYears: p.TenorYears,
			Yield:      p.Yield + offset,
		}
	}
	return shifted
}
