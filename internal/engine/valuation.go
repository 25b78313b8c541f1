package engine

import (
	"math"

	"github.com/udiptgupta/Risk-lab/pkg/models"
)

// Value discounts a cash-flow schedule against the term structure and credit
// spread, and returns price, Macaulay/modified duration, convexity, and the
// per-cash-flow PV breakdown.
//
// Discounting uses continuous compounding throughout: pv = cf * exp(-r*t).
// That makes modified duration identical to Macaulay duration, since there is
// no periodic yield compounding to adjust for.
//
// An empty schedule or a non-positive accumulated price produces the
// degenerate all-zero result with an empty breakdown. Outputs are rounded for
// display stability: price and PVs to 2 decimals, duration and convexity to 4.
func Value(cashFlows []models.CashFlow, curve models.TermStructure, spread float64) models.ValuationResult {
	if len(cashFlows) == 0 {
		return models.ValuationResult{CashFlows: []models.CashFlowPV{}}
	}

	var price, weightedTime, weightedTimeSq float64
	breakdown := make([]models.CashFlowPV, 0, len(cashFlows))

	for _, cf := range cashFlows {
		rate := RateAt(cf.TimeYears, curve, spread)
		pv := cf.Amount * math.Exp(-rate*cf.TimeYears)

		price += pv
		weightedTime += cf.TimeYears * pv
		weightedTimeSq += cf.TimeYears * cf.TimeYears * pv

		breakdown = append(breakdown, models.CashFlowPV{
			TimeYears: roundTo(cf.TimeYears, 2),
			Amount:    roundTo(cf.Amount, 2),
			PV:        roundTo(pv, 2),
		})
	}

	// Guards division by zero and nonsensical non-positive prices.
	if price <= 0 {
		return models.ValuationResult{CashFlows: []models.CashFlowPV{}}
	}

	macaulay := weightedTime / price

	return models.ValuationResult{
		Price:            roundTo(price, 2),
		MacaulayDuration: roundTo(macaulay, 4),
		ModifiedDuration: roundTo(macaulay, 4),
		Convexity:        roundTo(weightedTimeSq/price, 4),
		CashFlows:        breakdown,
	}
}

func roundTo(x float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(x*scale) / scale
}
