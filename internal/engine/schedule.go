package engine

import (
	"math"
	"time"

	"github.com/udiptgupta/Risk-lab/pkg/models"
)

// daysPerYear is the fixed year basis for all time offsets. No day-count
// convention or leap-year adjustment is applied.
const daysPerYear = 365.0

// Schedule builds the ordered list of future cash flows for a bond as of the
// given valuation date. A matured bond (maturity on or before asOf) yields an
// empty schedule; callers treat that as the degenerate case, not an error.
//
// The payment count is max(1, ceil(yearsToMaturity*frequency)), so a live bond
// always has at least one payment even when less than a full coupon period
// remains. The final payment carries the principal redemption.
func Schedule(terms models.BondTerms, asOf time.Time) []models.CashFlow {
	if terms.Matured(asOf) {
		return nil
	}

	days := terms.MaturityDate.Sub(asOf).Hours() / 24
	yearsToMaturity := days / daysPerYear

	freq := float64(terms.CouponFrequency)
	numPayments := int(math.Ceil(yearsToMaturity * freq))
	if numPayments < 1 {
		numPayments = 1
	}

	couponAmount := terms.FaceValue * terms.CouponRate / freq

	cashFlows := make([]models.CashFlow, 0, numPayments)
	for i := 1; i <= numPayments; i++ {
		amount := couponAmount
		if i == numPayments {
			amount += terms.FaceValue
		}
		cashFlows = append(cashFlows, models.CashFlow{
			TimeYears: float64(i) / freq,
			Amount:    amount,
		})
	}

	return cashFlows
}
