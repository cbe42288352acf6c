// Package metric counts remote client calls with prometheus collectors. A CLI run
// is too short-lived to be scraped, so the registry is flushed to a node exporter
// textfile instead.
package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

type ClientMetrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewClientMetrics() *ClientMetrics {
	m := &ClientMetrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kickshopping",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Requests sent to the storefront backend.",
			},
			[]string{"method", "route", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "kickshopping",
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Latency of requests sent to the storefront backend.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	m.registry.MustRegister(m.requestsTotal, m.requestDuration)
	return m
}

// Observe records one request. code 0 means the request never got a response.
func (m *ClientMetrics) Observe(method string, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := strconv.Itoa(code)
	if code == 0 {
		label = "error"
	}
	m.requestsTotal.WithLabelValues(method, route, label).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// WriteTextfile writes the current values to path in the text exposition format.
func (m *ClientMetrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

// RequestCount returns the current count for one label set.
func (m *ClientMetrics) RequestCount(method string, route string, code string) float64 {
	if m == nil {
		return 0
	}
	out := &dto.Metric{}
	if err := m.requestsTotal.WithLabelValues(method, route, code).Write(out); err != nil {
		return 0
	}
	return out.GetCounter().GetValue()
}
