package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTracerName is the tracer name used when none is configured.
const DefaultTracerName = "scope"

// Tracer returns a tracer from the global provider. An empty name means
// DefaultTracerName.
func Tracer(name string) trace.Tracer {
	if name == "" {
		name = DefaultTracerName
	}
	return otel.Tracer(name)
}

// StartStateChange starts the span that covers one state change.
func StartStateChange(ctx context.Context, tracer trace.Tracer) (context.Context, trace.Span) {
	return tracer.Start(ctx, "scope.state_change",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndStateChange records the outcome on span and ends it.
func EndStateChange(span trace.Span, mode, url string, err error) {
	span.SetAttributes(
		attribute.String("scope.navigation.mode", mode),
		attribute.Int("scope.url.length", len(url)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
