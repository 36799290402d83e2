package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "session_monitor_"

// Metrics collects evaluation outcomes for the /metrics endpoint.
type Metrics struct {
	registry *prometheus.Registry

	Decisions        *prometheus.CounterVec
	FatalErrors      *prometheus.CounterVec
	LivePushes       *prometheus.CounterVec
	EvaluationTiming prometheus.Histogram
}

// NewMetrics builds and registers the metric set on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "decisions_total",
			Help: "Decided charging statuses by value",
		}, []string{"status"}),
		FatalErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "fatal_errors_total",
			Help: "Evaluations aborted before a decision, by error kind",
		}, []string{"kind"}),
		LivePushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "live_pushes_total",
			Help: "Live-update push attempts by outcome",
		}, []string{"outcome"}),
		EvaluationTiming: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "evaluation_seconds",
			Help:    "Wall time of one full evaluation including external calls",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.Decisions,
		m.FatalErrors,
		m.LivePushes,
		m.EvaluationTiming,
		collectors.NewGoCollector(),
	)

	return m
}

// Handler serves the registry in prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
