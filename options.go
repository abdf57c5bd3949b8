package cascade

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/AnatoleLucet/cascade/internal/telemetry"
)

type config struct {
	name string
	base *Model

	constructors    [][]string
	hasConstructors bool

	logger   *slog.Logger
	recorder Recorder
	onError  func(*Instance, error)
}

type Option func(*config)

// WithName names the model in errors, logs and metrics.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithBase makes the model inherit the definitions of base. Inherited
// definitions may be overridden with a definition of the same type.
func WithBase(base *Model) Option {
	return func(c *config) {
		c.base = base
	}
}

// WithConstructors declares the argument lists Model.New accepts, each one a
// list of fundamental property names. The first list whose arity and types
// match the arguments is used. Without this option New takes no argument.
func WithConstructors(signatures ...[]string) Option {
	return func(c *config) {
		c.constructors = append(c.constructors, signatures...)
		c.hasConstructors = true
	}
}

// WithLogger sets the logger used by the model and its instances. Nothing is
// logged by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithRecorder reports writes, recomputations, user invocations and
// propagation passes to r.
func WithRecorder(r Recorder) Option {
	return func(c *config) {
		c.recorder = r
	}
}

// WithErrorHandler recovers panics raised by computations and users while
// changes propagate and hands them to fn as a *CallbackError. The pass then
// carries on. Without a handler such panics reach the caller.
func WithErrorHandler(fn func(*Instance, error)) Option {
	return func(c *config) {
		c.onError = fn
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}

	// loggers, recorders and handlers carry over to derived models
	if c.base != nil {
		if c.logger == nil {
			c.logger = c.base.config.logger
		}
		if c.recorder == nil {
			c.recorder = c.base.config.recorder
		}
		if c.onError == nil {
			c.onError = c.base.config.onError
		}
	}

	if c.name == "" {
		c.name = "anonymous"
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.recorder == nil {
		c.recorder = telemetry.Nop{}
	}
	if !c.hasConstructors {
		c.constructors = [][]string{{}}
	}

	return c
}

// Recorder receives engine events, see WithRecorder.
type Recorder = telemetry.Recorder

type PrometheusOption = telemetry.PrometheusOption

// NewPrometheusRecorder registers counters for writes, recomputations and
// user invocations plus histograms of propagation passes:
//
//	cascade_writes_total{model,result}
//	cascade_recomputations_total{model,property,result}
//	cascade_user_invocations_total{model}
//	cascade_propagation_pass_seconds{model}
//	cascade_propagation_entries{model}
func NewPrometheusRecorder(opts ...PrometheusOption) Recorder {
	return telemetry.NewPrometheus(opts...)
}

// WithMetricsRegisterer registers the metrics on r instead of the default registerer.
func WithMetricsRegisterer(r prometheus.Registerer) PrometheusOption {
	return telemetry.WithRegisterer(r)
}

// WithMetricsNamespace replaces the "cascade" metric prefix.
func WithMetricsNamespace(namespace string) PrometheusOption {
	return telemetry.WithNamespace(namespace)
}

// NewTracerRecorder opens a "cascade.propagate" span for every propagation
// pass. A nil provider means the global one.
func NewTracerRecorder(tp trace.TracerProvider) Recorder {
	return telemetry.NewTracer(tp)
}

// MultiRecorder sends events to every recorder.
func MultiRecorder(recorders ...Recorder) Recorder {
	return telemetry.Multi(recorders...)
}
