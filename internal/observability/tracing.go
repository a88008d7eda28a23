package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanParse     = "eql.parse"
	SpanTranslate = "eql.translate"
	SpanExecute   = "eql.execute"
	SpanDBQuery   = "eql.db.query"
)

// Tracer opens the spans of parsing and execution.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

func NewTracer(tp trace.TracerProvider, serviceName string) *Tracer {
	return &Tracer{tracer: tp.Tracer(TracerName), serviceName: serviceName}
}

func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartParse opens an eql.parse span. The expression is only recorded when not empty.
func (t *Tracer) StartParse(ctx context.Context, expression string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{OperationAttr(OpParse)}
	if expression != "" {
		attrs = append(attrs, ExpressionAttr(expression))
	}
	return t.StartSpan(ctx, SpanParse, attrs...)
}

// StartTranslate opens an eql.translate span for entity, which may be empty.
func (t *Tracer) StartTranslate(ctx context.Context, entity string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{OperationAttr(OpTranslate)}
	if entity != "" {
		attrs = append(attrs, EntityAttr(entity))
	}
	return t.StartSpan(ctx, SpanTranslate, attrs...)
}

func (t *Tracer) StartExecute(ctx context.Context, executor, operation string, conditions int) (context.Context, trace.Span) {
	return t.StartSpan(ctx, SpanExecute,
		ExecutorAttr(executor),
		OperationAttr(operation),
		ConditionCountAttr(conditions))
}

func (t *Tracer) StartDBQuery(ctx context.Context, operation string) (context.Context, trace.Span) {
	return t.StartSpan(ctx, SpanDBQuery, attribute.String(AttrDBOperation, operation))
}

// RecordError marks span as failed. A nil err is ignored.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetPage annotates the span in ctx with the requested page.
func SetPage(ctx context.Context, offset, limit int) {
	trace.SpanFromContext(ctx).SetAttributes(PageAttrs(offset, limit)...)
}

// SetParseError annotates the span in ctx with the kind and position of a parse error.
func SetParseError(ctx context.Context, kind string, position int) {
	trace.SpanFromContext(ctx).SetAttributes(ErrorKindAttr(kind), ErrorPositionAttr(position))
}

// LoggerWithTrace adds the trace and span IDs of ctx to logger.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return logger
	}
	return logger.With(
		slog.String(LogFieldTraceID, sc.TraceID().String()),
		slog.String(LogFieldSpanID, sc.SpanID().String()))
}
