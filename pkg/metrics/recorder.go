package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder registers and records all Prometheus metrics for the service.
type Recorder struct {
	// API metrics
	apiRequestCounter   *prometheus.CounterVec
	apiLatencyHistogram *prometheus.HistogramVec

	// Valuation metrics
	valuationCounter  *prometheus.CounterVec
	valuationLatency  *prometheus.HistogramVec
	scenarioCounter   prometheus.Counter
	degenerateCounter prometheus.Counter

	// Batch metrics
	batchRunCounter    prometheus.Counter
	batchBondCounter   *prometheus.CounterVec
	batchDurationGauge prometheus.Gauge

	// Cache metrics
	cacheLookupCounter *prometheus.CounterVec
}

var (
	recorder     *Recorder
	recorderOnce sync.Once
)

// NewRecorder returns the process-wide metrics recorder. Metrics register
// against the default registry, so the recorder is a singleton.
func NewRecorder() *Recorder {
	recorderOnce.Do(func() {
		recorder = &Recorder{
			apiRequestCounter: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "bondrisk_api_requests_total",
					Help: "The total number of API requests",
				},
				[]string{"method", "path", "status"},
			),
			apiLatencyHistogram: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "bondrisk_api_latency_seconds",
					Help:    "API request latency distribution",
					Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
				},
				[]string{"method", "path"},
			),
			valuationCounter: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "bondrisk_valuations_total",
					Help: "The total number of bond valuations",
				},
				[]string{"outcome"},
			),
			valuationLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "bondrisk_valuation_duration_seconds",
					Help:    "Time taken to value a single bond",
					Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
				},
				[]string{"mode"},
			),
			scenarioCounter: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "bondrisk_scenario_repricings_total",
					Help: "The total number of scenario repricings",
				},
			),
			degenerateCounter: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "bondrisk_degenerate_valuations_total",
					Help: "Valuations that produced the all-zero degenerate result",
				},
			),
			batchRunCounter: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "bondrisk_batch_runs_total",
					Help: "The total number of batch recomputation runs",
				},
			),
			batchBondCounter: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "bondrisk_batch_bonds_total",
					Help: "Bonds processed by batch runs, by outcome",
				},
				[]string{"outcome"},
			),
			batchDurationGauge: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "bondrisk_batch_duration_seconds",
					Help: "Duration of the most recent batch run",
				},
			),
			cacheLookupCounter: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "bondrisk_cache_lookups_total",
					Help: "Market-data cache lookups, by kind and hit/miss",
				},
				[]string{"kind", "result"},
			),
		}
	})

	return recorder
}

// RecordAPIRequest records a completed HTTP request.
func (r *Recorder) RecordAPIRequest(method, path string, status int, latency time.Duration) {
	r.apiRequestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.apiLatencyHistogram.WithLabelValues(method, path).Observe(latency.Seconds())
}

// RecordValuation records a single-bond valuation and its outcome.
func (r *Recorder) RecordValuation(mode string, degenerate bool, latency time.Duration) {
	outcome := "priced"
	if degenerate {
		outcome = "degenerate"
		r.degenerateCounter.Inc()
	}
	r.valuationCounter.WithLabelValues(outcome).Inc()
	r.valuationLatency.WithLabelValues(mode).Observe(latency.Seconds())
}

// RecordScenario records a scenario repricing.
func (r *Recorder) RecordScenario() {
	r.scenarioCounter.Inc()
}

// RecordBatchRun records the outcome of a batch recomputation.
func (r *Recorder) RecordBatchRun(processed, failed int, elapsed time.Duration) {
	r.batchRunCounter.Inc()
	r.batchBondCounter.WithLabelValues("ok").Add(float64(processed))
	r.batchBondCounter.WithLabelValues("failed").Add(float64(failed))
	r.batchDurationGauge.Set(elapsed.Seconds())
}

// RecordCacheLookup records a cache hit or miss for a query kind.
func (r *Recorder) RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookupCounter.WithLabelValues(kind, result).Inc()
}
