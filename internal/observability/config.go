package observability

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultServiceName is reported when no service name is configured.
const DefaultServiceName = "eql"

// Config selects the providers used to trace and measure parsing and execution.
// A nil TracerProvider or MeterProvider turns the respective signal off.
type Config struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider

	ServiceName    string
	ServiceVersion string

	// EnableDetailedDBTracing opens a span per SQL statement issued through GORM.
	EnableDetailedDBTracing bool

	// EnableExpressionTracing records expression text on parse spans.
	// Expressions may carry user input.
	EnableExpressionTracing bool

	tracer  *Tracer
	metrics *Metrics
}

// Option configures a Config.
type Option func(*Config)

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) { c.TracerProvider = tp }
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Config) { c.MeterProvider = mp }
}

func WithServiceName(name string) Option {
	return func(c *Config) { c.ServiceName = name }
}

func WithServiceVersion(version string) Option {
	return func(c *Config) { c.ServiceVersion = version }
}

// WithDetailedDBTracing enables spans for individual SQL statements.
func WithDetailedDBTracing() Option {
	return func(c *Config) { c.EnableDetailedDBTracing = true }
}

// WithExpressionTracing records expressions on parse spans.
func WithExpressionTracing() Option {
	return func(c *Config) { c.EnableExpressionTracing = true }
}

// NewConfig applies opts and initializes the tracer and metrics.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{ServiceName: DefaultServiceName}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.Initialize()
	return cfg
}

// Initialize rebuilds the tracer and metrics from the providers.
// Call it after assigning providers to the fields directly.
func (c *Config) Initialize() {
	c.tracer = NewNoopTracer()
	if c.TracerProvider != nil {
		c.tracer = NewTracer(c.TracerProvider, c.ServiceName)
	}
	c.metrics = NewNoopMetrics()
	if c.MeterProvider != nil {
		c.metrics = NewMetrics(c.MeterProvider)
	}
}

// Tracer never returns nil; a nil or uninitialized Config yields a no-op tracer.
func (c *Config) Tracer() *Tracer {
	if c == nil || c.tracer == nil {
		return NewNoopTracer()
	}
	return c.tracer
}

// Metrics never returns nil; a nil or uninitialized Config yields no-op metrics.
func (c *Config) Metrics() *Metrics {
	if c == nil || c.metrics == nil {
		return NewNoopMetrics()
	}
	return c.metrics
}

// IsEnabled reports whether a tracer or meter provider is set.
func (c *Config) IsEnabled() bool {
	return c != nil && (c.TracerProvider != nil || c.MeterProvider != nil)
}

func (c *Config) ExpressionTracingEnabled() bool {
	return c != nil && c.EnableExpressionTracing
}

// dbTracingEnabled reports whether statement spans should be registered on GORM.
func (c *Config) dbTracingEnabled() bool {
	return c != nil && c.TracerProvider != nil && c.EnableDetailedDBTracing
}
