package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Row outcomes recorded by RowsProcessed.
const (
	OutcomeNotified = "notified"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// Registry holds the metrics of a sync pass. It owns its registry so a
// one-shot process can push exactly what it measured.
type Registry struct {
	reg *prometheus.Registry

	RowsAppended  prometheus.Counter
	RowsProcessed *prometheus.CounterVec
	PassDuration  prometheus.Histogram
	PassesTotal   *prometheus.CounterVec
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Registry{
		reg: reg,
		RowsAppended: f.NewCounter(prometheus.CounterOpts{
			Name: "joinsync_rows_appended_total",
			Help: "Join requests mirrored into the review sheet",
		}),
		RowsProcessed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "joinsync_rows_processed_total",
				Help: "Reviewer decisions reconciled back, by outcome",
			},
			[]string{"outcome"},
		),
		PassDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "joinsync_pass_duration_seconds",
			Help:    "Sync pass execution time in seconds",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		}),
		PassesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "joinsync_passes_total",
				Help: "Sync passes by result",
			},
			[]string{"result"},
		),
	}
}

func (m *Registry) ObservePass(start time.Time, err error) {
	m.PassDuration.Observe(time.Since(start).Seconds())
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.PassesTotal.WithLabelValues(result).Inc()
}

// Push sends the collected metrics to a Prometheus Pushgateway.
func (m *Registry) Push(ctx context.Context, url, job string) error {
	return push.New(url, job).Gatherer(m.reg).PushContext(ctx)
}
