package eql

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nlstn/go-eql/internal/executor"
	"github.com/nlstn/go-eql/internal/observability"
	"github.com/nlstn/go-eql/internal/query"
)

type parserConfig struct {
	provider   query.MetadataProvider
	entity     string
	handlers   []FunctionHandler
	conversion *ConversionService
	logger     *slog.Logger
	obs        *observability.Config
	cache      bool
	cacheSize  int
}

// Option configures a Parser.
type Option func(*parserConfig)

// WithMetadataProvider validates and types properties through provider.
// Without a provider or schema every property is accepted and arguments stay untyped.
func WithMetadataProvider(provider MetadataProvider) Option {
	return func(c *parserConfig) {
		c.provider = provider
	}
}

// WithSchema validates and types properties against the declared properties of schema.
func WithSchema(schema *Schema) Option {
	return func(c *parserConfig) {
		c.provider = query.NewSchemaMetadataProvider(schema)
		c.entity = schema.Name()
	}
}

// WithFunctionHandlers registers handlers for functions such as currentUser().
// Handlers are consulted in order before the built-in date functions.
func WithFunctionHandlers(handlers ...FunctionHandler) Option {
	return func(c *parserConfig) {
		c.handlers = append(c.handlers, handlers...)
	}
}

// WithConversionService replaces the service converting literals into property types.
func WithConversionService(s *ConversionService) Option {
	return func(c *parserConfig) {
		c.conversion = s
	}
}

// WithLogger sets the logger for parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *parserConfig) {
		c.logger = logger
	}
}

// WithObservability enables tracing and metrics for parsing.
func WithObservability(cfg *Observability) Option {
	return func(c *parserConfig) {
		c.obs = cfg
	}
}

// WithParseCache caches the raw parse result of up to size distinct expressions.
// Zero uses a default size.
func WithParseCache(size int) Option {
	return func(c *parserConfig) {
		c.cache = true
		c.cacheSize = size
	}
}

// Observability holds the tracer and meter used by parsers and executors.
type Observability = observability.Config

// ObservabilityOption configures Observability.
type ObservabilityOption = observability.Option

// NewObservability creates an observability configuration.
// Tracing and metrics stay disabled until a provider is set.
func NewObservability(opts ...ObservabilityOption) *Observability {
	return observability.NewConfig(opts...)
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) ObservabilityOption {
	return observability.WithTracerProvider(tp)
}

// WithMeterProvider sets the meter provider.
func WithMeterProvider(mp metric.MeterProvider) ObservabilityOption {
	return observability.WithMeterProvider(mp)
}

// WithServiceName sets the service name reported on spans.
func WithServiceName(name string) ObservabilityOption {
	return observability.WithServiceName(name)
}

// WithServiceVersion sets the service version reported on spans.
func WithServiceVersion(version string) ObservabilityOption {
	return observability.WithServiceVersion(version)
}

// WithDetailedDBTracing creates a span for every SQL statement run by a GormExecutor.
func WithDetailedDBTracing() ObservabilityOption {
	return observability.WithDetailedDBTracing()
}

// WithExpressionTracing records the raw expression on parse spans.
// Expressions may contain user data, so this is off by default.
func WithExpressionTracing() ObservabilityOption {
	return observability.WithExpressionTracing()
}

// ExecutorOption configures an executor.
type ExecutorOption = executor.Option

// WithExecutorLogger sets the logger for executor diagnostics.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return executor.WithLogger(logger)
}

// WithExecutorObservability enables tracing and metrics for an executor.
func WithExecutorObservability(cfg *Observability) ExecutorOption {
	return executor.WithObservability(cfg)
}
