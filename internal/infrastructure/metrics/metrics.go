package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/antscrawling/cpfsim/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Simulation metrics
	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	PeriodsTotal    prometheus.Counter
	EntriesTotal    prometheus.Counter
	EntriesPerBatch prometheus.Histogram
	MissingRuleKeys *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Simulation metrics
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cpfsim_runs_total",
				Help: "Total simulation runs by terminal status",
			},
			[]string{"status"},
		),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cpfsim_run_duration_seconds",
			Help:    "Wall time of simulation runs",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		PeriodsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cpfsim_periods_persisted_total",
			Help: "Total period batches persisted",
		}),
		EntriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cpfsim_entries_persisted_total",
			Help: "Total ledger entries persisted",
		}),
		EntriesPerBatch: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cpfsim_entries_per_period",
			Help:    "Ledger entries per persisted period",
			Buckets: []float64{1, 2, 4, 8, 12, 16, 24, 32},
		}),
		MissingRuleKeys: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cpfsim_missing_rule_keys_total",
				Help: "Rule keys that fell back to their default",
			},
			[]string{"key"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cpfsim_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cpfsim_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cpfsim_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
	}
}

// RecordRun counts a finished run.
func (m *Metrics) RecordRun(status domain.RunStatus, d time.Duration) {
	m.RunsTotal.WithLabelValues(string(status)).Inc()
	m.RunDuration.Observe(d.Seconds())
}

// RecordPeriod counts one persisted period batch.
func (m *Metrics) RecordPeriod(entries int) {
	m.PeriodsTotal.Inc()
	m.EntriesTotal.Add(float64(entries))
	m.EntriesPerBatch.Observe(float64(entries))
}

// RecordMissingKey counts a rule key that was defaulted.
func (m *Metrics) RecordMissingKey(key string) {
	m.MissingRuleKeys.WithLabelValues(key).Inc()
}
