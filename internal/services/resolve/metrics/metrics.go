// Package metrics exposes Prometheus instrumentation for the resolve pipeline.
// A nil *Metrics is valid and records nothing
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for batch submissions
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Metrics tracks batch submissions and name classifications
type Metrics struct {
	Batches        *prometheus.CounterVec
	Names          *prometheus.CounterVec
	RecordFails    prometheus.Counter
	Collisions     prometheus.Counter
	LookupDuration prometheus.Histogram
	BatchSize      prometheus.Histogram
}

// New registers the resolve metrics on reg; nil means the default registerer.
// Collectors already registered on reg are reused, so New may run once per module instance
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		Batches: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enscheck_batches_total",
			Help: "Registry submissions by outcome",
		}, []string{"outcome"})),
		Names: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enscheck_names_total",
			Help: "Names by classification (unregistered, expired, active, dropped, skipped)",
		}, []string{"status"})),
		RecordFails: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "enscheck_record_failures_total",
			Help: "Registry records rejected during reconciliation",
		})),
		Collisions: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "enscheck_identifier_collisions_total",
			Help: "Identifiers overwritten inside a pending batch",
		})),
		LookupDuration: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "enscheck_lookup_duration_seconds",
			Help:    "Duration of registry lookups",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		})),
		BatchSize: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "enscheck_batch_size",
			Help:    "Identifiers per submission",
			Buckets: []float64{1, 10, 25, 50, 75, 100, 250, 500, 1000},
		})),
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if prev, ok := are.ExistingCollector.(T); ok {
			return prev
		}
	}
	panic(err)
}

// ObserveLookup records one registry submission.
// Call with time.Now() at the start of the lookup
func (m *Metrics) ObserveLookup(start time.Time, size int, failed bool) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if failed {
		outcome = OutcomeFailed
	}
	m.Batches.WithLabelValues(outcome).Inc()
	m.LookupDuration.Observe(time.Since(start).Seconds())
	m.BatchSize.Observe(float64(size))
}

// AddNames adds n names to the given status
func (m *Metrics) AddNames(status string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Names.WithLabelValues(status).Add(float64(n))
}

// IncRecordFail records one rejected registry record
func (m *Metrics) IncRecordFail() {
	if m == nil {
		return
	}
	m.RecordFails.Inc()
}

// IncCollision records one overwritten identifier
func (m *Metrics) IncCollision() {
	if m == nil {
		return
	}
	m.Collisions.Inc()
}
