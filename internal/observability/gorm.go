package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const statementKey = "eql:statement"

// statement is the span of one SQL statement, kept on the GORM instance
// between the before and after callbacks.
type statement struct {
	span  trace.Span
	start time.Time
}

type statementTracer struct {
	tracer  *Tracer
	metrics *Metrics
}

// RegisterGORMCallbacks traces every SQL statement run through db.
// Executors only read, so the query, row and raw pipelines are covered.
// It is a no-op unless cfg enables detailed DB tracing with a tracer provider.
func RegisterGORMCallbacks(db *gorm.DB, cfg *Config) error {
	if !cfg.dbTracingEnabled() {
		return nil
	}

	st := statementTracer{tracer: cfg.Tracer(), metrics: cfg.Metrics()}
	cb := db.Callback()
	return errors.Join(
		cb.Query().Before("gorm:query").Register("eql:before_query", st.start("SELECT")),
		cb.Query().After("gorm:query").Register("eql:after_query", st.end("SELECT")),
		cb.Row().Before("gorm:row").Register("eql:before_row", st.start("ROW")),
		cb.Row().After("gorm:row").Register("eql:after_row", st.end("ROW")),
		cb.Raw().Before("gorm:raw").Register("eql:before_raw", st.start("RAW")),
		cb.Raw().After("gorm:raw").Register("eql:after_raw", st.end("RAW")),
	)
}

func (st statementTracer) start(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, span := st.tracer.StartDBQuery(ctx, operation)
		span.SetAttributes(attribute.String(AttrDBSystem, db.Dialector.Name()))

		db.Statement.Context = ctx
		db.InstanceSet(statementKey, statement{span: span, start: time.Now()})
	}
}

func (st statementTracer) end(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(statementKey)
		if !ok {
			return
		}
		s, ok := v.(statement)
		if !ok {
			return
		}
		defer s.span.End()

		if table := db.Statement.Table; table != "" {
			s.span.SetAttributes(attribute.String(AttrDBTable, table))
		}
		s.span.SetAttributes(attribute.Int64(AttrDBRowsAffected, db.RowsAffected))
		st.tracer.RecordError(s.span, db.Error)
		st.metrics.RecordDBQuery(db.Statement.Context, operation, time.Since(s.start))
	}
}
