package observability

import (
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

var (
	noopTracer  = NewTracer(tracenoop.NewTracerProvider(), "")
	noopMetrics = NewMetrics(metricnoop.NewMeterProvider())
)

// NewNoopTracer returns a tracer whose spans are discarded.
func NewNoopTracer() *Tracer { return noopTracer }

// NewNoopMetrics returns metrics whose measurements are discarded.
func NewNoopMetrics() *Metrics { return noopMetrics }
