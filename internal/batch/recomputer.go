package batch

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udiptgupta/Risk-lab/internal/store"
	"github.com/udiptgupta/Risk-lab/internal/valuation"
	"github.com/udiptgupta/Risk-lab/pkg/metrics"
	"github.com/udiptgupta/Risk-lab/pkg/models"
	"github.com/udiptgupta/Risk-lab/pkg/utils/logger"
)

// Publisher delivers a computed metrics record downstream (e.g. to a Kafka
// topic feeding dashboards).
type Publisher interface {
	PublishMetrics(ctx context.Context, record models.MetricsRecord) error
}

// Config holds settings for the batch recomputer.
type Config struct {
	Workers int
}

// Recomputer revalues every bond as of a chosen date and upserts the results.
// Bonds are independent, so the run is a parallel map over bond IDs: one
// bond's failure is logged and counted but never aborts the rest.
type Recomputer struct {
	bonds     store.BondStore
	metrics   store.MetricsStore
	valuer    *valuation.Service
	publisher Publisher
	recorder  *metrics.Recorder
	workers   int
	log       *logger.Logger
}

// NewRecomputer creates a batch recomputer. publisher may be nil when no
// downstream delivery is wanted.
func NewRecomputer(cfg Config, bonds store.BondStore, metricsStore store.MetricsStore, valuer *valuation.Service, publisher Publisher, recorder *metrics.Recorder) *Recomputer {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}

	return &Recomputer{
		bonds:     bonds,
		metrics:   metricsStore,
		valuer:    valuer,
		publisher: publisher,
		recorder:  recorder,
		workers:   cfg.Workers,
		log:       logger.GetLogger("batch.recomputer"),
	}
}

// Run recomputes metrics for all bonds as of the given date and returns a
// summary of the run. The returned error covers only failures that prevent
// the run itself (e.g. the bond list cannot be fetched); per-bond failures
// are reported in the summary.
func (r *Recomputer) Run(ctx context.Context, asOf time.Time) (*models.BatchSummary, error) {
	started := time.Now()

	bondIDs, err := r.bonds.ListBondIDs(ctx)
	if err != nil {
		return nil, err
	}

	r.log.Infof("Starting batch recomputation for %d bonds as of %s", len(bondIDs), asOf.Format("2006-01-02"))

	var (
		mu        sync.Mutex
		processed int
		failedIDs []int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, bondID := range bondIDs {
		bondID := bondID // shadow for pre-Go 1.22 loop variable semantics
		g.Go(func() error {
			if err := r.recomputeOne(gctx, bondID, asOf); err != nil {
				r.log.Errorf("Failed to recompute bond %d: %v", bondID, err)
				mu.Lock()
				failedIDs = append(failedIDs, bondID)
				mu.Unlock()
				return nil
			}
			mu.Lock()
			processed++
			mu.Unlock()
			return nil
		})
	}

	// workers swallow per-bond errors, so Wait only reflects ctx cancellation
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(failedIDs, func(i, j int) bool { return failedIDs[i] < failedIDs[j] })

	finished := time.Now()
	summary := &models.BatchSummary{
		AsOf:       asOf,
		Processed:  processed,
		Failed:     len(failedIDs),
		FailedIDs:  failedIDs,
		Elapsed:    finished.Sub(started),
		StartedAt:  started,
		FinishedAt: finished,
	}

	r.recorder.RecordBatchRun(summary.Processed, summary.Failed, summary.Elapsed)
	r.log.Infof("Batch recomputation finished: %d processed, %d failed in %s",
		summary.Processed, summary.Failed, summary.Elapsed)

	return summary, nil
}

func (r *Recomputer) recomputeOne(ctx context.Context, bondID int64, asOf time.Time) error {
	result, err := r.valuer.ValueBond(ctx, bondID, asOf)
	if err != nil {
		return err
	}

	record := models.MetricsRecord{
		BondID:           bondID,
		AsOf:             asOf,
		Price:            result.Price,
		MacaulayDuration: result.MacaulayDuration,
		ModifiedDuration: result.ModifiedDuration,
		Convexity:        result.Convexity,
	}

	if err := r.metrics.UpsertMetrics(ctx, record); err != nil {
		return err
	}

	if r.publisher != nil {
		// delivery is best-effort: the record is already persisted
		if err := r.publisher.PublishMetrics(ctx, record); err != nil {
			r.log.Warnf("Failed to publish metrics for bond %d: %v", bondID, err)
		}
	}

	return nil
}
