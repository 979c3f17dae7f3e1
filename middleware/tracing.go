package middleware

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/stratahttp/strata"
)

const tracerName = "github.com/stratahttp/strata/middleware"

type ctxKeySpan struct{}
type ctxKeySpanContext struct{}

// TracingConfig configures the tracing middleware.
type TracingConfig struct {
	// TracerProvider defaults to the global otel provider.
	TracerProvider trace.TracerProvider
}

// Tracing opens an OpenTelemetry server span per request. The span ends when
// the response finishes rendering, so render time is included. Spans created
// downstream parent to the request span when started from SpanContext(ctx);
// the request context itself does not carry the span.
type Tracing[C strata.Context] struct {
	tracer trace.Tracer
}

// NewTracing creates the tracing middleware.
func NewTracing[C strata.Context](cfg TracingConfig) *Tracing[C] {
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracing[C]{tracer: tp.Tracer(tracerName)}
}

// Handle implements the middleware contract.
func (m *Tracing[C]) Handle(ctx C, next strata.HandlerFunc[C]) (strata.Response, error) {
	r := ctx.Request()
	spanCtx, span := m.tracer.Start(ctx, r.Method+" "+r.URL.Path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
		),
	)
	ctx.SetValue(ctxKeySpan{}, span)
	ctx.SetValue(ctxKeySpanContext{}, spanCtx)

	res, err := next(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Int("http.status_code", statusFromError(err)))
		span.End()
		return nil, err
	}

	return observe(res, func(status int, _ int64) {
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		span.End()
	}), nil
}

// GetSpan returns the request span stored by the middleware, or nil.
func GetSpan(ctx strata.Context) trace.Span {
	span, _ := ctx.Value(ctxKeySpan{}).(trace.Span)
	return span
}

// SpanContext returns a context carrying the request span, for starting
// child spans that parent to it. When tracing is not active it returns ctx
// unchanged.
func SpanContext(ctx strata.Context) context.Context {
	if c, ok := ctx.Value(ctxKeySpanContext{}).(context.Context); ok {
		return c
	}
	return ctx
}
