package models

import (
	"time"
)

// CashFlowPV is one row of the per-cash-flow valuation breakdown.
type CashFlowPV struct {
	TimeYears float64 `json:"time_years"`
	Amount    float64 `json:"amount"`
	PV        float64 `json:"pv"`
}

// ValuationResult carries the price and interest-rate-risk sensitivities of a
// single bond. Under continuous compounding modified duration equals Macaulay
// duration, so both fields always hold the same value.
type ValuationResult struct {
	Price            float64      `json:"price"`
	MacaulayDuration float64      `json:"macaulay_duration"`
	ModifiedDuration float64      `json:"modified_duration"`
	Convexity        float64      `json:"convexity"`
	CashFlows        []CashFlowPV `json:"cash_flows"`
}

// Degenerate reports whether the result is the all-zero "nothing to show"
// state produced for matured bonds and non-positive prices.
func (v ValuationResult) Degenerate() bool {
	return v.Price == 0 && v.MacaulayDuration == 0 && v.Convexity == 0
}

// MetricsRecord is the persisted form of a valuation, keyed uniquely by
// (BondID, AsOf). Writes use upsert semantics on that key.
type MetricsRecord struct {
	BondID           int64     `json:"bond_id"`
	AsOf             time.Time `json:"as_of"`
	Price            float64   `json:"price"`
	MacaulayDuration float64   `json:"macaulay_duration"`
	ModifiedDuration float64   `json:"modified_duration"`
	Convexity        float64   `json:"convexity"`
}

// ScenarioRequest asks for a repricing under a parallel yield-curve shift.
type ScenarioRequest struct {
	BondID   int64     `json:"bond_id"`
	AsOf     time.Time `json:"as_of"`
	ShockBps int       `json:"shock_bps"`
}

// ScenarioResult is the repriced value under the requested shock.
type ScenarioResult struct {
	BondID   int64   `json:"bond_id"`
	ShockBps int     `json:"shock_bps"`
	Price    float64 `json:"price"`
}

// BatchSummary reports the outcome of a batch recomputation run.
type BatchSummary struct {
	AsOf       time.Time     `json:"as_of"`
	Processed  int           `json:"processed"`
	Failed     int           `json:"failed"`
	FailedIDs  []int64       `json:"failed_ids,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}
