package valuation

import (
	"context"
	"time"

	"github.com/udiptgupta/Risk-lab/internal/engine"
	"github.com/udiptgupta/Risk-lab/internal/store"
	"github.com/udiptgupta/Risk-lab/pkg/metrics"
	"github.com/udiptgupta/Risk-lab/pkg/models"
	"github.com/udiptgupta/Risk-lab/pkg/utils/logger"
)

// Service resolves bond, curve and spread data and runs the valuation engine
// over it. The engine itself stays pure; all data access lives here.
type Service struct {
	bonds    store.BondStore
	curves   store.CurveStore
	spreads  store.SpreadStore
	recorder *metrics.Recorder
	log      *logger.Logger
}

// NewService creates a valuation service over the given stores.
func NewService(bonds store.BondStore, curves store.CurveStore, spreads store.SpreadStore, recorder *metrics.Recorder) *Service {
	return &Service{
		bonds:    bonds,
		curves:   curves,
		spreads:  spreads,
		recorder: recorder,
		log:      logger.GetLogger("valuation.service"),
	}
}

// ValueBond prices a single bond as of the given date and returns price,
// duration, convexity and the cash-flow breakdown.
//
// An unknown bond or an unresolvable curve surfaces as an error to the
// caller. A matured bond is not an error: it produces the degenerate
// all-zero result, decided before any curve lookup so that matured bonds
// value cleanly even on dates with no curve.
func (s *Service) ValueBond(ctx context.Context, bondID int64, asOf time.Time) (*models.ValuationResult, error) {
	start := time.Now()

	bond, err := s.bonds.GetBond(ctx, bondID)
	if err != nil {
		return nil, err
	}

	if bond.Matured(asOf) {
		result := engine.Value(nil, models.TermStructure{}, 0)
		s.recorder.RecordValuation("single", true, time.Since(start))
		return &result, nil
	}

	curve, spread, err := s.resolveMarketData(ctx, asOf, bond.CreditRating)
	if err != nil {
		return nil, err
	}

	result := engine.Value(engine.Schedule(*bond, asOf), *curve, spread)
	s.recorder.RecordValuation("single", result.Degenerate(), time.Since(start))

	return &result, nil
}

// Reprice values a bond under a parallel curve shift. The schedule comes
// from the unshocked valuation date; only rates move. A matured bond
// reprices to zero.
func (s *Service) Reprice(ctx context.Context, req models.ScenarioRequest) (*models.ScenarioResult, error) {
	bond, err := s.bonds.GetBond(ctx, req.BondID)
	if err != nil {
		return nil, err
	}

	result := &models.ScenarioResult{
		BondID:   req.BondID,
		ShockBps: req.ShockBps,
	}

	if bond.Matured(req.AsOf) {
		s.recorder.RecordScenario()
		return result, nil
	}

	curve, spread, err := s.resolveMarketData(ctx, req.AsOf, bond.CreditRating)
	if err != nil {
		return nil, err
	}

	result.Price = engine.RepriceUnderShock(*bond, req.AsOf, req.ShockBps, *curve, spread)
	s.recorder.RecordScenario()

	return result, nil
}

// ResolveCurve returns the term structure that valuations as of the given
// date would use.
func (s *Service) ResolveCurve(ctx context.Context, asOf time.Time) (*models.TermStructure, error) {
	return s.curves.LatestCurve(ctx, asOf)
}

func (s *Service) resolveMarketData(ctx context.Context, asOf time.Time, rating string) (*models.TermStructure, float64, error) {
	curve, err := s.curves.LatestCurve(ctx, asOf)
	if err != nil {
		return nil, 0, err
	}

	spreads, err := s.spreads.GetSpreads(ctx)
	if err != nil {
		return nil, 0, err
	}

	return curve, spreads.SpreadFor(rating), nil
}
