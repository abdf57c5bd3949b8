package cascade

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRecorders(t *testing.T) {
	t.Run("prometheus", func(t *testing.T) {
		log := []string{}
		reg := prometheus.NewRegistry()

		rect := newInstance(t, rectangle(&log),
			WithName("Rectangle"),
			WithRecorder(NewPrometheusRecorder(WithMetricsRegisterer(reg), WithMetricsNamespace("shapes"))),
		)

		_, err := rect.Use(NewUser([]string{"area"}, func(float64) {}))
		require.NoError(t, err)

		require.NoError(t, rect.Set("width", 2.0))
		require.NoError(t, rect.Set("width", 2.0))
		require.NoError(t, rect.Set("height", 3.0))

		count, err := testutil.GatherAndCount(reg, "shapes_writes_total")
		require.NoError(t, err)
		assert.Equal(t, 2, count, "changed and unchanged series")

		count, err = testutil.GatherAndCount(reg, "shapes_user_invocations_total")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		count, err = testutil.GatherAndCount(reg, "shapes_propagation_pass_seconds", "shapes_propagation_entries")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("tracer", func(t *testing.T) {
		log := []string{}
		spans := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

		rect := newInstance(t, rectangle(&log),
			WithName("Rectangle"),
			WithRecorder(MultiRecorder(NewTracerRecorder(tp), nil)),
		)

		_, err := rect.Use(NewUser([]string{"area"}, func(float64) {}))
		require.NoError(t, err)

		rect.Batch(func() {
			require.NoError(t, rect.Set("width", 2.0))
			require.NoError(t, rect.Set("height", 3.0))
		})

		ended := spans.Ended()
		require.Len(t, ended, 1)
		assert.Equal(t, "cascade.propagate", ended[0].Name())
		assert.Contains(t, ended[0].Attributes(), attribute.String("cascade.model", "Rectangle"))
		assert.Contains(t, ended[0].Attributes(), attribute.Int("cascade.entries", 2))
	})

	t.Run("derived models keep the recorder", func(t *testing.T) {
		log := []string{}
		rec := &eventLog{}

		base, err := NewModel(rectangle(&log), WithRecorder(rec))
		require.NoError(t, err)
		derived, err := base.Extend(Definitions{"depth": {Type: number, Value: 1.0}})
		require.NoError(t, err)

		in, err := derived.New()
		require.NoError(t, err)
		require.NoError(t, in.Set("depth", 2.0))

		assert.Equal(t, []string{"write depth"}, rec.events)
	})
}
