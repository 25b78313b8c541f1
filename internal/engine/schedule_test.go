package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udiptgupta/Risk-lab/pkg/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScheduleSemiannualCoupon(t *testing.T) {
	terms := models.BondTerms{
		IssueDate:       date(2020, time.January, 1),
		MaturityDate:    date(2027, time.July, 20),
		CouponRate:      0.05,
		CouponFrequency: 2,
		FaceValue:       1000,
	}

	cashFlows := Schedule(terms, date(2025, time.July, 20))
	require.Len(t, cashFlows, 4)

	for i, cf := range cashFlows {
		assert.InDelta(t, float64(i+1)/2.0, cf.TimeYears, 1e-12)
	}

	// 1000 * 0.05 / 2 per period, principal on the last payment
	assert.InDelta(t, 25.0, cashFlows[0].Amount, 1e-9)
	assert.InDelta(t, 1025.0, cashFlows[3].Amount, 1e-9)
}

func TestScheduleStrictlyIncreasingTimes(t *testing.T) {
	terms := models.BondTerms{
		MaturityDate:    date(2035, time.March, 15),
		CouponRate:      0.0525,
		CouponFrequency: 4,
		FaceValue:       5000,
	}

	cashFlows := Schedule(terms, date(2025, time.July, 20))
	require.NotEmpty(t, cashFlows)

	for i := 1; i < len(cashFlows); i++ {
		assert.Greater(t, cashFlows[i].TimeYears, cashFlows[i-1].TimeYears)
	}
}

func TestScheduleMaturedBondIsEmpty(t *testing.T) {
	terms := models.BondTerms{
		MaturityDate:    date(2024, time.December, 31),
		CouponRate:      0.04,
		CouponFrequency: 2,
		FaceValue:       1000,
	}

	assert.Empty(t, Schedule(terms, date(2025, time.July, 20)))

	// maturity exactly on the valuation date also counts as matured
	terms.MaturityDate = date(2025, time.July, 20)
	assert.Empty(t, Schedule(terms, date(2025, time.July, 20)))
}

func TestScheduleStubPeriodStillPays(t *testing.T) {
	// 100 days to maturity with semiannual coupons: less than one full
	// period remains, but the schedule must still carry one payment.
	terms := models.BondTerms{
		MaturityDate:    date(2025, time.October, 28),
		CouponRate:      0.06,
		CouponFrequency: 2,
		FaceValue:       1000,
	}

	cashFlows := Schedule(terms, date(2025, time.July, 20))
	require.Len(t, cashFlows, 1)
	assert.InDelta(t, 0.5, cashFlows[0].TimeYears, 1e-12)
	assert.InDelta(t, 1030.0, cashFlows[0].Amount, 1e-9)
}

func TestSchedulePaymentCountUsesCeiling(t *testing.T) {
	// 366/365 years at annual frequency sits just past the one-year mark,
	// so the ceiling policy yields two payments.
	terms := models.BondTerms{
		MaturityDate:    date(2026, time.July, 21),
		CouponRate:      0.05,
		CouponFrequency: 1,
		FaceValue:       1000,
	}

	cashFlows := Schedule(terms, date(2025, time.July, 20))
	require.Len(t, cashFlows, 2)
	assert.InDelta(t, 1050.0, cashFlows[1].Amount, 1e-9)
}

func TestScheduleZeroCouponSinglePayment(t *testing.T) {
	terms := models.BondTerms{
		MaturityDate:    date(2026, time.July, 20),
		CouponRate:      0,
		CouponFrequency: 1,
		FaceValue:       1000,
	}

	cashFlows := Schedule(terms, date(2025, time.July, 20))
	require.Len(t, cashFlows, 1)
	assert.InDelta(t, 1.0, cashFlows[0].TimeYears, 1e-12)
	assert.InDelta(t, 1000.0, cashFlows[0].Amount, 1e-9)
}
