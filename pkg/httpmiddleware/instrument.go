package httpmiddleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry provides the OpenTelemetry providers used by Instrument.
type Telemetry interface {
	TracerProvider() trace.TracerProvider
	MeterProvider() metric.MeterProvider
}

// Instrument traces and measures every request with otelhttp. Requests
// matched by skip are served without instrumentation.
func Instrument(service string, m Telemetry, skip func(*http.Request) bool) Middleware {
	return func(next http.Handler) http.Handler {
		opts := []otelhttp.Option{
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		}
		if skip != nil {
			opts = append(opts, otelhttp.WithFilter(func(r *http.Request) bool {
				return !skip(r)
			}))
		}
		return otelhttp.NewHandler(next, service, opts...)
	}
}
