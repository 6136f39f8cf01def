package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"
)

var (
	routeKey  = attribute.Key("http.route")
	statusKey = attribute.Key("http.status_code")
	opKey     = attribute.Key("usergraph.op")
	resultKey = attribute.Key("usergraph.result")
)

// NewExporter builds a pull-based Prometheus exporter. Its ServeHTTP is
// the /metrics handler.
func NewExporter() (*prometheus.Exporter, error) {
	config := prometheus.Config{}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)

	return prometheus.New(config, c)
}

// Metrics holds the service instruments.
type Metrics struct {
	completed metric.Int64Counter
	duration  metric.Float64ValueRecorder
	mutations metric.Int64Counter
}

func New(meter metric.Meter) *Metrics {
	must := metric.Must(meter)

	return &Metrics{
		completed: must.NewInt64Counter(
			"http/server/completed_count",
			metric.WithDescription("Count of completed requests, by route and response status"),
		),
		duration: must.NewFloat64ValueRecorder(
			"http/server/duration_ms",
			metric.WithDescription("Request handling time in milliseconds, by route"),
		),
		mutations: must.NewInt64Counter(
			"usergraph/store/mutations",
			metric.WithDescription("Count of user collection mutations, by operation and result"),
		),
	}
}

// Handler records completed count and duration for every request. Routes
// are labelled by their chi pattern so query strings never become labels.
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.completed.Add(r.Context(), 1, routeKey.String(route), statusKey.Int(status))
		m.duration.Record(r.Context(), float64(time.Since(start).Microseconds())/1000, routeKey.String(route))
	})
}

// ObserveMutation counts one store mutation attempt.
func (m *Metrics) ObserveMutation(ctx context.Context, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mutations.Add(ctx, 1, opKey.String(op), resultKey.String(result))
}
