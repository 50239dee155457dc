// Package telemetry records metrics and traces for view-state navigation.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives navigation events. Metrics implements it with
// Prometheus collectors; Nop discards everything.
type Recorder interface {
	// Navigation counts one decision; mode is "none", "push" or "replace".
	Navigation(mode string)

	// DecodeFailure counts a current location that did not decode.
	DecodeFailure()

	// StoreWrite counts a persistent store write and its outcome.
	StoreWrite(err error)

	// DecisionDuration observes the time spent in one state change.
	DecisionDuration(d time.Duration)

	// SessionOpened and SessionClosed track live websocket sessions.
	SessionOpened()
	SessionClosed()
}

// Nop is a Recorder that records nothing.
type Nop struct{}

func (Nop) Navigation(string)              {}
func (Nop) DecodeFailure()                 {}
func (Nop) StoreWrite(error)               {}
func (Nop) DecisionDuration(time.Duration) {}
func (Nop) SessionOpened()                 {}
func (Nop) SessionClosed()                 {}

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "scope").
	Namespace string

	// Subsystem is the metrics subsystem (default: "viewstate").
	Subsystem string

	// Buckets are the histogram buckets for decision duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registerer to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registerer.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "scope",
		Subsystem: "viewstate",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a Recorder backed by Prometheus collectors.
type Metrics struct {
	navigations    *prometheus.CounterVec
	decodeFailures prometheus.Counter
	storeWrites    *prometheus.CounterVec
	duration       prometheus.Histogram
	sessions       prometheus.Gauge
}

// NewMetrics creates and registers the collectors. Registering twice on the
// same registerer panics, like promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "navigations_total",
			Help:      "Total number of state changes by navigation mode",
		}, []string{"mode"}),

		decodeFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "decode_failures_total",
			Help:      "Total number of current locations whose view state did not decode",
		}),

		storeWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "store_writes_total",
			Help:      "Total number of persistent view state writes by status",
		}, []string{"status"}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "decision_duration_seconds",
			Help:      "Time spent deciding and applying one state change",
			Buckets:   config.Buckets,
		}),

		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "ws_sessions_active",
			Help:      "Number of live websocket sessions",
		}),
	}
}

func (m *Metrics) Navigation(mode string) {
	m.navigations.WithLabelValues(mode).Inc()
}

func (m *Metrics) DecodeFailure() {
	m.decodeFailures.Inc()
}

func (m *Metrics) StoreWrite(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.storeWrites.WithLabelValues(status).Inc()
}

func (m *Metrics) DecisionDuration(d time.Duration) {
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) SessionOpened() { m.sessions.Inc() }
func (m *Metrics) SessionClosed() { m.sessions.Dec() }
