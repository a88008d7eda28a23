// Package observability provides OpenTelemetry-based instrumentation for EQL parsing and execution.
//
// It supports distributed tracing, metrics collection, and enhanced structured logging.
//
// All observability features are opt-in. When not configured, no-op implementations
// are used with zero performance overhead.
package observability

import "go.opentelemetry.io/otel/attribute"

// Instrumentation identity constants
const (
	// TracerName is the instrumentation name for tracing.
	TracerName = "github.com/nlstn/go-eql"
	// MeterName is the instrumentation name for metrics.
	MeterName = "github.com/nlstn/go-eql"
)

// EQL semantic attribute keys following OpenTelemetry conventions.
const (
	AttrExpression     = "eql.expression"
	AttrEntity         = "eql.entity"
	AttrOperation      = "eql.operation"
	AttrExecutor       = "eql.executor"
	AttrConditionCount = "eql.condition.count"

	AttrResultCount = "eql.result.count"
	AttrPageOffset  = "eql.page.offset"
	AttrPageLimit   = "eql.page.limit"

	AttrErrorKind     = "error.kind"
	AttrErrorPosition = "eql.error.position"

	AttrDBSystem       = "db.system"
	AttrDBOperation    = "db.operation"
	AttrDBTable        = "db.sql.table"
	AttrDBRowsAffected = "db.rows_affected"
)

// Operation types for the eql.operation attribute.
const (
	OpParse     = "parse"
	OpTranslate = "translate"
	OpFindAll   = "find_all"
	OpFindPage  = "find_page"
)

// Log field keys for structured logging with trace context.
const (
	LogFieldTraceID     = "trace_id"
	LogFieldSpanID      = "span_id"
	LogFieldExpression  = "expression"
	LogFieldErrorKind   = "error_kind"
	LogFieldPosition    = "position"
	LogFieldDuration    = "duration_ms"
	LogFieldResultCount = "result_count"
	LogFieldError       = "error"
)

// ExpressionAttr creates an attribute for the EQL expression.
func ExpressionAttr(eql string) attribute.KeyValue {
	return attribute.String(AttrExpression, eql)
}

// EntityAttr creates an attribute for the queried entity name.
func EntityAttr(name string) attribute.KeyValue {
	return attribute.String(AttrEntity, name)
}

// OperationAttr creates an attribute for the operation type.
func OperationAttr(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// ExecutorAttr creates an attribute for the executor kind.
func ExecutorAttr(name string) attribute.KeyValue {
	return attribute.String(AttrExecutor, name)
}

// ConditionCountAttr creates an attribute for the number of conditions in a query.
func ConditionCountAttr(count int) attribute.KeyValue {
	return attribute.Int(AttrConditionCount, count)
}

// ResultCountAttr creates an attribute for the result count.
func ResultCountAttr(count int64) attribute.KeyValue {
	return attribute.Int64(AttrResultCount, count)
}

// ErrorKindAttr creates an attribute for the kind of a parse error.
func ErrorKindAttr(kind string) attribute.KeyValue {
	return attribute.String(AttrErrorKind, kind)
}

// ErrorPositionAttr returns the attribute for the position of a parse error.
func ErrorPositionAttr(position int) attribute.KeyValue {
	return attribute.Int(AttrErrorPosition, position)
}

// PageAttrs returns the attributes describing a requested page.
func PageAttrs(offset, limit int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrPageOffset, offset),
		attribute.Int(AttrPageLimit, limit),
	}
}
