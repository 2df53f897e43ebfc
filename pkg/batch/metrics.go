package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects scoring-run metrics. Passing a custom registerer keeps
// tests isolated from the default registry.
type Metrics struct {
	runsTotal    prometheus.Counter
	runDuration  prometheus.Histogram
	rowsScored   *prometheus.CounterVec
	promotions   prometheus.Counter
	fileFailures prometheus.Counter
}

// NewMetrics registers and returns the run metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		runsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "claimsift",
			Name:      "runs_total",
			Help:      "Number of completed scoring runs.",
		}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "claimsift",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of scoring runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		rowsScored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "claimsift",
			Name:      "rows_scored_total",
			Help:      "Number of rows scored, by resulting tier.",
		}, []string{"tier"}),
		promotions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "claimsift",
			Name:      "entity_promotions_total",
			Help:      "Number of rows promoted by the entity override pass.",
		}),
		fileFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "claimsift",
			Name:      "file_failures_total",
			Help:      "Number of input files that failed to process.",
		}),
	}
}

// ObserveRun records the aggregate metrics of one finished run.
func (m *Metrics) ObserveRun(result *RunResult) {
	if m == nil {
		return
	}
	m.runsTotal.Inc()
	m.runDuration.Observe(result.CompletedAt.Sub(result.StartedAt).Seconds())
	for tier, n := range result.TierCounts {
		m.rowsScored.WithLabelValues(string(tier)).Add(float64(n))
	}
	m.promotions.Add(float64(result.PromotedCount))
	m.fileFailures.Add(float64(len(result.FailedFiles)))
}
