package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/udiptgupta/Risk-lab/pkg/models"
	"github.com/udiptgupta/Risk-lab/pkg/utils/errors"
	"github.com/udiptgupta/Risk-lab/pkg/utils/logger"
)

// MemoryStore is an in-memory implementation of all four stores, used by
// tests and local runs without a database.
type MemoryStore struct {
	bonds   map[int64]models.BondTerms
	curves  []models.TermStructure
	spreads models.CreditSpreads
	metrics map[string]models.MetricsRecord
	nextID  int64
	mu      sync.RWMutex
	log     *logger.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bonds:   make(map[int64]models.BondTerms),
		spreads: models.CreditSpreads{},
		metrics: make(map[string]models.MetricsRecord),
		nextID:  1,
		log:     logger.GetLogger("store.memory"),
	}
}

// GetBond retrieves a bond by ID.
func (s *MemoryStore) GetBond(ctx context.Context, bondID int64) (*models.BondTerms, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bond, exists := s.bonds[bondID]
	if !exists {
		return nil, errors.NotFound(fmt.Sprintf("no bond found with id %d", bondID))
	}

	return &bond, nil
}

// ListBonds returns all stored bonds ordered by ID.
func (s *MemoryStore) ListBonds(ctx context.Context) ([]models.BondTerms, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bonds := make([]models.BondTerms, 0, len(s.bonds))
	for _, b := range s.bonds {
		bonds = append(bonds, b)
	}
	sort.Slice(bonds, func(i, j int) bool { return bonds[i].BondID < bonds[j].BondID })

	return bonds, nil
}

// ListBondIDs returns all bond identifiers ordered ascending.
func (s *MemoryStore) ListBondIDs(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.bonds))
	for id := range s.bonds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

// SaveBonds stores the given bonds, assigning IDs to any bond without one.
func (s *MemoryStore) SaveBonds(ctx context.Context, bonds []models.BondTerms) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range bonds {
		if b.BondID == 0 {
			b.BondID = s.nextID
			s.nextID++
		} else if b.BondID >= s.nextID {
			s.nextID = b.BondID + 1
		}
		s.bonds[b.BondID] = b
	}

	return nil
}

// LatestCurve returns the most recent curve dated on or before asOf.
func (s *MemoryStore) LatestCurve(ctx context.Context, asOf time.Time) (*models.TermStructure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *models.TermStructure
	for i := range s.curves {
		c := &s.curves[i]
		if c.CurveDate.After(asOf) {
			continue
		}
		if best == nil || c.CurveDate.After(best.CurveDate) {
			best = c
		}
	}
	if best == nil {
		return nil, errors.Unavailable(fmt.Sprintf("no yield curve available on or before %s", asOf.Format("2006-01-02")))
	}

	curve := models.TermStructure{
		CurveDate: best.CurveDate,
		Points:    append([]models.CurvePoint(nil), best.Points...),
	}
	return &curve, nil
}

// SaveCurve stores a curve snapshot, replacing any snapshot with the same date.
func (s *MemoryStore) SaveCurve(ctx context.Context, curve models.TermStructure) error {
	if len(curve.Points) == 0 {
		return errors.InvalidArgument("cannot save empty term structure")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.curves {
		if s.curves[i].CurveDate.Equal(curve.CurveDate) {
			s.curves[i] = curve
			return nil
		}
	}
	s.curves = append(s.curves, curve)

	return nil
}

// GetSpreads returns the rating-to-spread table.
func (s *MemoryStore) GetSpreads(ctx context.Context) (models.CreditSpreads, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spreads := make(models.CreditSpreads, len(s.spreads))
	for rating, spread := range s.spreads {
		spreads[rating] = spread
	}

	return spreads, nil
}

// SaveSpreads replaces the rating-to-spread table.
func (s *MemoryStore) SaveSpreads(ctx context.Context, spreads models.CreditSpreads) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spreads = make(models.CreditSpreads, len(spreads))
	for rating, spread := range spreads {
		s.spreads[rating] = spread
	}

	return nil
}

// UpsertMetrics inserts or updates the metrics record for (bond_id, as_of).
func (s *MemoryStore) UpsertMetrics(ctx context.Context, record models.MetricsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics[metricsKey(record.BondID, record.AsOf)] = record

	return nil
}

// ListMetrics returns all metrics records for the given as-of date.
func (s *MemoryStore) ListMetrics(ctx context.Context, asOf time.Time) ([]models.MetricsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]models.MetricsRecord, 0)
	for _, r := range s.metrics {
		if sameDay(r.AsOf, asOf) {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].BondID < records[j].BondID })

	return records, nil
}

func metricsKey(bondID int64, asOf time.Time) string {
	return fmt.Sprintf("%d|%s", bondID, asOf.Format("2006-01-02"))
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}
