// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vaani"

// Metrics holds all Prometheus metrics for the assistant and the demo backend.
type Metrics struct {
	// Turn metrics
	TurnsTotal   *prometheus.CounterVec
	TurnDuration prometheus.Histogram
	TurnsActive  prometheus.Gauge

	// Speech input metrics
	RecognitionsTotal  *prometheus.CounterVec
	RecognitionLatency *prometheus.HistogramVec

	// Voice output metrics
	SpeechRequestsTotal *prometheus.CounterVec
	SpeechFallbacks     prometheus.Counter

	// Visual metrics
	VisualsTotal *prometheus.CounterVec

	// Backend connectivity
	BackendUp           prometheus.Gauge
	HealthChecksTotal   *prometheus.CounterVec
	QueryRequestLatency prometheus.Histogram

	// Event publish metrics
	EventPublishTotal   *prometheus.CounterVec
	EventPublishLatency prometheus.Histogram

	// HTTP server metrics (demo backend)
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPLatency       *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		TurnsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total number of user turns processed",
		}, []string{"outcome"}),
		TurnDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Wall-clock duration of a full user turn",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		}),
		TurnsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "turns_active",
			Help:      "Number of turns currently in flight",
		}),

		RecognitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognitions_total",
			Help:      "Total speech recognition attempts",
		}, []string{"provider", "outcome"}),
		RecognitionLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recognition_latency_seconds",
			Help:      "Latency of speech recognition attempts",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"provider"}),

		SpeechRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_requests_total",
			Help:      "Total voice output requests by synthesis mode",
		}, []string{"mode", "outcome"}),
		SpeechFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_fallbacks_total",
			Help:      "Times remote synthesis failed and local synthesis took over",
		}),

		VisualsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visuals_total",
			Help:      "Visual render attempts by template",
		}, []string{"template", "outcome"}),

		BackendUp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backend_up",
			Help:      "Whether the collaborating backend is reachable (1) or not (0)",
		}),
		HealthChecksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "health_checks_total",
			Help:      "Health probe attempts by outcome",
		}, []string{"outcome"}),
		QueryRequestLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_request_latency_seconds",
			Help:      "Latency of /api/query round trips",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		}),

		EventPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_total",
			Help:      "Turn event publish attempts by outcome",
		}, []string{"outcome"}),
		EventPublishLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_publish_latency_seconds",
			Help:      "Latency of turn event publishes",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),

		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served by the demo backend",
		}, []string{"route", "status"}),
		HTTPLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_latency_seconds",
			Help:      "Latency of demo backend HTTP requests",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route"}),
	}
}

// RecordTurn records a completed turn with its outcome and wall duration.
func (m *Metrics) RecordTurn(outcome string, duration time.Duration) {
	m.TurnsTotal.WithLabelValues(outcome).Inc()
	m.TurnDuration.Observe(duration.Seconds())
}

// RecordRecognition records a recognition attempt for a provider.
func (m *Metrics) RecordRecognition(provider string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.RecognitionsTotal.WithLabelValues(provider, outcome).Inc()
	m.RecognitionLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordSpeech records a voice output attempt for a synthesis mode.
func (m *Metrics) RecordSpeech(mode string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.SpeechRequestsTotal.WithLabelValues(mode, outcome).Inc()
}

// RecordVisual records a visual render attempt for a template.
func (m *Metrics) RecordVisual(template string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.VisualsTotal.WithLabelValues(template, outcome).Inc()
}

// RecordHealthCheck records a health probe and flips the backend gauge.
func (m *Metrics) RecordHealthCheck(up bool) {
	if up {
		m.BackendUp.Set(1)
		m.HealthChecksTotal.WithLabelValues("up").Inc()
		return
	}
	m.BackendUp.Set(0)
	m.HealthChecksTotal.WithLabelValues("down").Inc()
}

// RecordEventPublish records a turn event publish attempt.
func (m *Metrics) RecordEventPublish(err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.EventPublishTotal.WithLabelValues(outcome).Inc()
	m.EventPublishLatency.Observe(duration.Seconds())
}

// RecordHTTPRequest records a served request on the demo backend.
func (m *Metrics) RecordHTTPRequest(route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(duration.Seconds())
}
