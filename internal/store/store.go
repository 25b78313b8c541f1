package store

import (
	"context"
	"time"

	"github.com/udiptgupta/Risk-lab/pkg/models"
)

// BondStore provides access to bond static data.
type BondStore interface {
	GetBond(ctx context.Context, bondID int64) (*models.BondTerms, error)
	ListBonds(ctx context.Context) ([]models.BondTerms, error)
	ListBondIDs(ctx context.Context) ([]int64, error)
	SaveBonds(ctx context.Context, bonds []models.BondTerms) error
}

// CurveStore resolves yield-curve snapshots. LatestCurve returns the most
// recent term structure dated on or before asOf; when none exists it returns
// an Unavailable error, never a default curve.
type CurveStore interface {
	LatestCurve(ctx context.Context, asOf time.Time) (*models.TermStructure, error)
	SaveCurve(ctx context.Context, curve models.TermStructure) error
}

// SpreadStore provides the rating-to-spread table.
type SpreadStore interface {
	GetSpreads(ctx context.Context) (models.CreditSpreads, error)
	SaveSpreads(ctx context.Context, spreads models.CreditSpreads) error
}

// MetricsStore persists computed risk metrics keyed by (bond_id, as_of) with
// upsert semantics.
type MetricsStore interface {
	UpsertMetrics(ctx context.Context, record models.MetricsRecord) error
	ListMetrics(ctx context.Context, asOf time.Time) ([]models.MetricsRecord, error)
}
