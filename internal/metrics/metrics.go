// Package metrics exposes Prometheus collectors for the wallet backend.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors, registered on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	EventsAppended  *prometheus.CounterVec
	GatewayFailures *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	LiveClients     prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		EventsAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumixpay",
			Name:      "events_appended_total",
			Help:      "Events appended to the activity log by type",
		}, []string{"type"}),
		GatewayFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumixpay",
			Name:      "gateway_failures_total",
			Help:      "Failed ledger gateway calls by operation",
		}, []string{"op"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumixpay",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lumixpay",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		}, []string{"method", "route"}),
		LiveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lumixpay",
			Name:      "live_history_clients",
			Help:      "Connected live history websocket clients",
		}),
	}
	r.MustRegister(m.EventsAppended, m.GatewayFailures, m.HTTPRequests, m.HTTPDuration, m.LiveClients)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
