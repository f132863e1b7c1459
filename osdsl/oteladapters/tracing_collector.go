package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/WalkerWang731/opensearch-dsl-go/osdsl"
)

// TracingCollector implements osdsl.TracingCollector on the OpenTelemetry
// tracing API, creating one span per client operation.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a collector on the given tracer, typically
// obtained from your OpenTelemetry TracerProvider.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan opens a span with the given name and attributes and returns the
// span-carrying context together with a SpanContext wrapper.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, osdsl.SpanContext) {
	options := make([]trace.SpanStartOption, 0, len(attrs))
	for key, value := range attrs {
		options = append(options, trace.WithAttributes(attribute.String(key, value)))
	}

	spanCtx, span := t.tracer.Start(ctx, name, options...)

	return spanCtx, &otelSpanContext{span: span}
}

// FinishSpan sets the final attributes and status on the span and ends it.
// Span contexts not created by this collector are ignored.
func (t *TracingCollector) FinishSpan(spanCtx osdsl.SpanContext, status string, attrs map[string]string) {
	wrapped, ok := spanCtx.(*otelSpanContext)
	if !ok {
		return
	}

	for key, value := range attrs {
		wrapped.span.SetAttributes(attribute.String(key, value))
	}

	wrapped.SetStatus(status)
	wrapped.span.End()
}

var _ osdsl.TracingCollector = (*TracingCollector)(nil)

// otelSpanContext implements osdsl.SpanContext around an OpenTelemetry span.
type otelSpanContext struct {
	span trace.Span
}

// SetStatus maps the generic status strings ("ok", "error", anything else)
// onto OpenTelemetry status codes.
func (s *otelSpanContext) SetStatus(status string) {
	switch status {
	case "ok", "success":
		s.span.SetStatus(codes.Ok, status)
	case "error":
		s.span.SetStatus(codes.Error, status)
	default:
		s.span.SetStatus(codes.Unset, status)
	}
}

func (s *otelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var _ osdsl.SpanContext = (*otelSpanContext)(nil)
