// Package observability provides metrics and tracing for the advisory
// client.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the Prometheus namespace (default: kite_advisor).
	Namespace string

	// ConstLabels are added to all metrics.
	ConstLabels prometheus.Labels

	// HistogramBuckets override the default latency buckets (milliseconds).
	HistogramBuckets []float64
}

// Metrics holds the Prometheus collectors for the client. A Metrics value
// owns its registry; Handler exposes it for scraping.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	retryTotal       *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec
	sessionState     prometheus.Gauge
}

// NewMetrics creates and registers the client's metric collectors.
func NewMetrics(config MetricsConfig) (*Metrics, error) {
	if config.Namespace == "" {
		config.Namespace = "kite_advisor"
	}
	if config.HistogramBuckets == nil {
		config.HistogramBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   config.Namespace,
				Name:        "request_duration_milliseconds",
				Help:        "Duration of JSON-RPC requests in milliseconds",
				Buckets:     config.HistogramBuckets,
				ConstLabels: config.ConstLabels,
			},
			[]string{"method", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Name:        "requests_total",
				Help:        "Total JSON-RPC requests by method and status",
				ConstLabels: config.ConstLabels,
			},
			[]string{"method", "status"},
		),
		retryTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Name:        "retries_total",
				Help:        "Backoff retries by method",
				ConstLabels: config.ConstLabels,
			},
			[]string{"method"},
		),
		toolCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   config.Namespace,
				Name:        "tool_call_duration_milliseconds",
				Help:        "Duration of tool invocations in milliseconds",
				Buckets:     config.HistogramBuckets,
				ConstLabels: config.ConstLabels,
			},
			[]string{"tool", "status"},
		),
		sessionState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   config.Namespace,
				Name:        "session_authenticated",
				Help:        "1 when the client session is authenticated",
				ConstLabels: config.ConstLabels,
			},
		),
	}

	for _, c := range []prometheus.Collector{
		m.requestDuration,
		m.requestTotal,
		m.retryTotal,
		m.toolCallDuration,
		m.sessionState,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordRequest records one send attempt.
func (m *Metrics) RecordRequest(method, status string, duration time.Duration) {
	m.requestDuration.WithLabelValues(method, status).Observe(float64(duration.Milliseconds()))
	m.requestTotal.WithLabelValues(method, status).Inc()
}

// RecordRetry records one backoff retry for a method.
func (m *Metrics) RecordRetry(method string) {
	m.retryTotal.WithLabelValues(method).Inc()
}

// RecordToolCall records one tool invocation.
func (m *Metrics) RecordToolCall(tool, status string, duration time.Duration) {
	m.toolCallDuration.WithLabelValues(tool, status).Observe(float64(duration.Milliseconds()))
}

// SetAuthenticated reflects the session state machine's authenticated flag.
func (m *Metrics) SetAuthenticated(authenticated bool) {
	if authenticated {
		m.sessionState.Set(1)
	} else {
		m.sessionState.Set(0)
	}
}

// Handler returns an HTTP handler serving the metrics registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
