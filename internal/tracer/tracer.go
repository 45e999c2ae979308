// Package tracer wraps OpenTelemetry spans around statement generation.
package tracer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanPrefix prefixes every generation span name.
const SpanPrefix = "sqlgen."

// Tracer starts spans.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span is an in-flight span.
type Span interface {
	SetAttributes(attrs ...attribute.KeyValue)
	RecordError(err error)
	SetStatus(code codes.Code, description string)
	End()
}

// NoopTracer is a tracer that does nothing. It is the generator default.
type NoopTracer struct{}

// StartSpan returns ctx unchanged with a no-op span.
func (n *NoopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, &NoopSpan{}
}

// NoopSpan is a span that does nothing.
type NoopSpan struct{}

// SetAttributes does nothing.
func (n *NoopSpan) SetAttributes(_ ...attribute.KeyValue) {}

// RecordError does nothing.
func (n *NoopSpan) RecordError(_ error) {}

// SetStatus does nothing.
func (n *NoopSpan) SetStatus(_ codes.Code, _ string) {}

// End does nothing.
func (n *NoopSpan) End() {}

// OtelTracer adapts an OpenTelemetry trace.Tracer.
type OtelTracer struct {
	tracer trace.Tracer
}

// NewOtelTracer wraps tracer, which must not be nil.
func NewOtelTracer(tracer trace.Tracer) *OtelTracer {
	return &OtelTracer{tracer: tracer}
}

// StartSpan starts an internal-kind OpenTelemetry span.
func (t *OtelTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	return ctx, &OtelSpan{span: span}
}

// OtelSpan adapts an OpenTelemetry trace.Span.
type OtelSpan struct {
	span trace.Span
}

// SetAttributes sets attributes on the span.
func (s *OtelSpan) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

// RecordError records err as a span event.
func (s *OtelSpan) RecordError(err error) {
	s.span.RecordError(err)
}

// SetStatus sets the span status.
func (s *OtelSpan) SetStatus(code codes.Code, description string) {
	s.span.SetStatus(code, description)
}

// End ends the span.
func (s *OtelSpan) End() {
	s.span.End()
}

// StatementMetadata describes one generation call for tracing.
type StatementMetadata struct {
	// System is the dialect name (mssql, mysql, sqlite, postgres).
	System string
	// Operation is the generator operation (insert, bulk_insert, select, ...).
	Operation string
	Table     string
	// SQL is the generated text; empty when generation failed.
	SQL string
	// Params is the number of bound parameters.
	Params int
	Rows   int
	Error  error
}

// AddStatementAttributes records meta on span following the OpenTelemetry
// database semantic conventions where they apply, and sets the span status.
func AddStatementAttributes(span Span, meta *StatementMetadata) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", meta.System),
		attribute.String("db.operation", meta.Operation),
	}
	if meta.Table != "" {
		attrs = append(attrs, attribute.String("db.table", meta.Table))
	}
	if meta.SQL != "" {
		attrs = append(attrs,
			attribute.String("db.statement", meta.SQL),
			attribute.Int("db.params", meta.Params),
		)
	}
	if meta.Rows > 0 {
		attrs = append(attrs, attribute.Int("sqlgen.rows", meta.Rows))
	}

	span.SetAttributes(attrs...)

	if meta.Error != nil {
		span.RecordError(meta.Error)
		span.SetStatus(codes.Error, meta.Error.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
