package engine

import (
	"math"
	"time"

	"github.com/udiptgupta/Risk-lab/pkg/models"
)

// RepriceUnderShock prices a bond under a parallel yield-curve shift of
// shockBps basis points. The cash-flow schedule is built from the unshocked
// valuation date (the shock moves rates, not time), the shift is applied to
// the curve before the spread, and only the price is accumulated. A zero
// shock reproduces the unshocked price exactly.
//
// Shock magnitudes are not bounded here; any range limits are a caller
// concern.
func RepriceUnderShock(terms models.BondTerms, asOf time.Time, shockBps int, curve models.TermStructure, spread float64) float64 {
	cashFlows := Schedule(terms, asOf)
	if len(cashFlows) == 0 {
		return 0
	}

	shifted := Shift(curve, shockBps)

	var price float64
	for _, cf := range cashFlows {
		rate := RateAt(cf.TimeYears, shifted, spread)
		price += cf.Amount * math.Exp(-rate*cf.TimeYears)
	}
	if price <= 0 {
		return 0
	}

	return roundTo(price, 2)
}
