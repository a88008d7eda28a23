package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records parse and execution measurements.
type Metrics struct {
	parses         metric.Int64Counter
	parseLatency   metric.Float64Histogram
	errors         metric.Int64Counter
	results        metric.Int64Histogram
	dbQueryLatency metric.Float64Histogram
}

// NewMetrics creates the instruments on a meter of mp.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(MeterName)
	return &Metrics{
		parses:         counter(meter, "eql.parse.count", "Parsed EQL expressions", "{expression}"),
		parseLatency:   histogram(meter, "eql.parse.duration", "Time to parse and translate an expression", "ms"),
		errors:         counter(meter, "eql.error.count", "EQL errors by kind", "{error}"),
		results:        intHistogram(meter, "eql.result.count", "Entities returned per executor call", "{entity}"),
		dbQueryLatency: histogram(meter, "eql.db.query.duration", "Time spent in SQL statements", "ms"),
	}
}

// Instrument creation only fails for invalid names or options. The retry
// without options keeps every instrument non-nil.

func counter(m metric.Meter, name, desc, unit string) metric.Int64Counter {
	c, err := m.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		c, _ = m.Int64Counter(name) //nolint:errcheck
	}
	return c
}

func histogram(m metric.Meter, name, desc, unit string) metric.Float64Histogram {
	h, err := m.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		h, _ = m.Float64Histogram(name) //nolint:errcheck
	}
	return h
}

func intHistogram(m metric.Meter, name, desc, unit string) metric.Int64Histogram {
	h, err := m.Int64Histogram(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		h, _ = m.Int64Histogram(name) //nolint:errcheck
	}
	return h
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// RecordParse counts a parse and its latency, split by outcome.
func (m *Metrics) RecordParse(ctx context.Context, duration time.Duration, success bool) {
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	m.parses.Add(ctx, 1, attrs)
	m.parseLatency.Record(ctx, millis(duration), attrs)
}

// RecordError counts an error of kind raised by operation.
func (m *Metrics) RecordError(ctx context.Context, operation, kind string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(OperationAttr(operation), ErrorKindAttr(kind)))
}

func (m *Metrics) RecordResultCount(ctx context.Context, executor string, count int64) {
	m.results.Record(ctx, count, metric.WithAttributes(ExecutorAttr(executor)))
}

func (m *Metrics) RecordDBQuery(ctx context.Context, operation string, duration time.Duration) {
	m.dbQueryLatency.Record(ctx, millis(duration), metric.WithAttributes(attribute.String(AttrDBOperation, operation)))
}
