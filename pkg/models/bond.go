package models

import (
	"time"
)

// BondTerms holds the static terms of a fixed-rate coupon bond.
// Instances are sourced from the bond store and never mutated by the engine.
type BondTerms struct {
	BondID          int64     `json:"bond_id"`
	ISIN            string    `json:"isin"`
	Issuer          string    `json:"issuer"`
	IssueDate       time.Time `json:"issue_date"`
	MaturityDate    time.Time `json:"maturity_date"`
	CouponRate      float64   `json:"coupon_rate"`
	CouponFrequency int       `json:"coupon_frequency"`
	FaceValue       float64   `json:"face_value"`
	CreditRating    string    `json:"credit_rating"`
}

// Matured reports whether the bond has matured as of the given date.
func (b BondTerms) Matured(asOf time.Time) bool {
	return !b.MaturityDate.After(asOf)
}

// CurvePoint is a single tenor/yield pair on a risk-free yield curve.
// Tenors are whole years, yields are decimals (0.05 = 5%).
type CurvePoint struct {
	TenorYears int     `json:"tenor_years"`
	Yield      float64 `json:"yield"`
}

// TermStructure is a dated yield curve: points sorted ascending by tenor,
// used as a step function (no interpolation between tenors).
type TermStructure struct {
	CurveDate time.Time    `json:"curve_date"`
	Points    []CurvePoint `json:"points"`
}

// CreditSpreads maps a credit-rating label to an additive spread in decimal
// (150 bps -> 0.0150). Unrecognized ratings carry a zero spread.
type CreditSpreads map[string]float64

// SpreadFor returns the spread for the rating, or 0 if the rating is unknown.
func (cs CreditSpreads) SpreadFor(rating string) float64 {
	return cs[rating]
}

// CashFlow is one undiscounted future payment, offset in years from the
// valuation date. Schedules are generated per valuation and never persisted.
type CashFlow struct {
	TimeYears float64 `json:"time_years"`
	Amount    float64 `json:"amount"`
}
