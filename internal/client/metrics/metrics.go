// Package metrics exposes Prometheus counters for the sync layer. All
// helper methods are safe on a nil *Metrics so components can run without it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeStale    = "stale"
	OutcomeCanceled = "canceled"
	OutcomeOffline  = "offline"
)

type Metrics struct {
	CacheReads              *prometheus.CounterVec
	CacheWrites             *prometheus.CounterVec
	Fetches                 *prometheus.CounterVec
	SuppressedErrors        *prometheus.CounterVec
	PrefetchAttempts        *prometheus.CounterVec
	PrefetchRuns            prometheus.Counter
	Online                  prometheus.Gauge
	ConnectivityTransitions *prometheus.CounterVec
}

// New creates and registers the metrics with the given registerer.
func New(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheReads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "legaltrack_cache_reads_total",
				Help: "Cache reads by result",
			},
			[]string{"result"}, // hit/miss/corrupt
		),
		CacheWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "legaltrack_cache_writes_total",
				Help: "Cache writes by result",
			},
			[]string{"result"}, // ok/error
		),
		Fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "legaltrack_fetches_total",
				Help: "Remote loads per resource and outcome",
			},
			[]string{"resource", "outcome"},
		),
		SuppressedErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "legaltrack_suppressed_errors_total",
				Help: "Fetch errors hidden because data was already visible",
			},
			[]string{"resource"},
		),
		PrefetchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "legaltrack_prefetch_attempts_total",
				Help: "Background case detail fetches by result",
			},
			[]string{"result"},
		),
		PrefetchRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "legaltrack_prefetch_runs_total",
			Help: "Prefetch runs started",
		}),
		Online: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "legaltrack_online",
			Help: "1 when the backend is reachable",
		}),
		ConnectivityTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "legaltrack_connectivity_transitions_total",
				Help: "Online/offline switches",
			},
			[]string{"to"},
		),
	}

	registerer.MustRegister(
		m.CacheReads,
		m.CacheWrites,
		m.Fetches,
		m.SuppressedErrors,
		m.PrefetchAttempts,
		m.PrefetchRuns,
		m.Online,
		m.ConnectivityTransitions,
	)

	return m
}

func (m *Metrics) CacheRead(result string) {
	if m == nil {
		return
	}
	m.CacheReads.WithLabelValues(result).Inc()
}

func (m *Metrics) CacheWrite(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.CacheWrites.WithLabelValues("error").Inc()
		return
	}
	m.CacheWrites.WithLabelValues("ok").Inc()
}

func (m *Metrics) Fetch(resource, outcome string) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(resource, outcome).Inc()
}

func (m *Metrics) Suppressed(resource string) {
	if m == nil {
		return
	}
	m.SuppressedErrors.WithLabelValues(resource).Inc()
}

func (m *Metrics) PrefetchStarted() {
	if m == nil {
		return
	}
	m.PrefetchRuns.Inc()
}

func (m *Metrics) PrefetchAttempt(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.PrefetchAttempts.WithLabelValues("failure").Inc()
		return
	}
	m.PrefetchAttempts.WithLabelValues("success").Inc()
}

func (m *Metrics) SetOnline(online bool) {
	if m == nil {
		return
	}
	to := "offline"
	if online {
		m.Online.Set(1)
		to = "online"
	} else {
		m.Online.Set(0)
	}
	m.ConnectivityTransitions.WithLabelValues(to).Inc()
}
