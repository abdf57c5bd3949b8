package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusConfig configures the Prometheus recorder.
type PrometheusConfig struct {
	// Namespace prefixes every metric name (default: "cascade").
	Namespace string

	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for pass duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registerer receives the collectors.
	// Default: prometheus.DefaultRegisterer
	Registerer prometheus.Registerer
}

type PrometheusOption func(*PrometheusConfig)

func WithNamespace(namespace string) PrometheusOption {
	return func(c *PrometheusConfig) {
		c.Namespace = namespace
	}
}

func WithConstLabels(labels prometheus.Labels) PrometheusOption {
	return func(c *PrometheusConfig) {
		c.ConstLabels = labels
	}
}

func WithBuckets(buckets []float64) PrometheusOption {
	return func(c *PrometheusConfig) {
		c.Buckets = buckets
	}
}

func WithRegisterer(registerer prometheus.Registerer) PrometheusOption {
	return func(c *PrometheusConfig) {
		c.Registerer = registerer
	}
}

func defaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{
		Namespace:  "cascade",
		Buckets:    prometheus.DefBuckets,
		Registerer: prometheus.DefaultRegisterer,
	}
}

// Prometheus counts writes, recomputations and user invocations, and observes
// the duration and size of every propagation pass.
type Prometheus struct {
	writes        *prometheus.CounterVec
	recomputes    *prometheus.CounterVec
	invocations   *prometheus.CounterVec
	passDuration  *prometheus.HistogramVec
	passProcessed *prometheus.HistogramVec
}

// NewPrometheus registers the cascade collectors. Registering twice on the
// same registerer panics, like any promauto collector.
func NewPrometheus(opts ...PrometheusOption) *Prometheus {
	config := defaultPrometheusConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registerer)

	return &Prometheus{
		writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "writes_total",
			Help:        "Writes to fundamental properties",
			ConstLabels: config.ConstLabels,
		}, []string{"model", "result"}),

		recomputes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "recomputations_total",
			Help:        "Evaluations of computed properties",
			ConstLabels: config.ConstLabels,
		}, []string{"model", "property", "result"}),

		invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "user_invocations_total",
			Help:        "User callback invocations",
			ConstLabels: config.ConstLabels,
		}, []string{"model"}),

		passDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "propagation_pass_seconds",
			Help:        "Duration of propagation passes in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"model"}),

		passProcessed: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "propagation_entries",
			Help:        "Queue entries processed per propagation pass",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"model"}),
	}
}

func (p *Prometheus) Write(model, _ string, changed bool) {
	p.writes.WithLabelValues(model, result(changed)).Inc()
}

func (p *Prometheus) Recompute(model, property string, changed bool) {
	p.recomputes.WithLabelValues(model, property, result(changed)).Inc()
}

func (p *Prometheus) Invoke(model string) {
	p.invocations.WithLabelValues(model).Inc()
}

func (p *Prometheus) StartPass(model string) func(int) {
	start := time.Now()

	return func(processed int) {
		p.passDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
		p.passProcessed.WithLabelValues(model).Observe(float64(processed))
	}
}
