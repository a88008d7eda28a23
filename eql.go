// Package eql parses EntityQuery Language expressions into typed, executable queries.
//
// An expression such as
//
//	name ilike 'jo%' and (age >= 18 or tags contains admin) order by name asc
//
// is tokenized, converted into a raw query tree, validated against the
// properties of an entity and translated into conditions with typed arguments.
// Translated queries are run by an Executor.
package eql

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nlstn/go-eql/internal/convert"
	"github.com/nlstn/go-eql/internal/metadata"
	"github.com/nlstn/go-eql/internal/observability"
	"github.com/nlstn/go-eql/internal/query"
)

// Parser turns EQL expressions into translated queries.
// A Parser is immutable after construction and safe for concurrent use.
type Parser struct {
	provider   query.MetadataProvider
	entity     string
	translator *query.Translator
	cache      *query.ParseCache
	logger     *slog.Logger
	obs        *observability.Config
}

// NewParser creates a parser.
func NewParser(opts ...Option) *Parser {
	cfg := parserConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.provider == nil {
		cfg.provider = query.PermissiveMetadataProvider{}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.obs == nil {
		cfg.obs = observability.NewConfig()
	}

	handlers := append(append([]FunctionHandler(nil), cfg.handlers...), query.NewDateFunctions())
	converter := query.NewTypeConverter(cfg.conversion, handlers...)

	p := &Parser{
		provider:   cfg.provider,
		entity:     cfg.entity,
		translator: query.NewTranslator(cfg.provider, converter),
		logger:     cfg.logger,
		obs:        cfg.obs,
	}
	if cfg.cache {
		p.cache = query.NewParseCache(cfg.cacheSize)
	}
	return p
}

// Parse parses, validates and translates an EQL expression.
func (p *Parser) Parse(input string) (*Query, error) {
	return p.ParseContext(context.Background(), input)
}

// ParseContext is Parse with a context carrying the trace of the caller.
func (p *Parser) ParseContext(ctx context.Context, input string) (*Query, error) {
	traced := ""
	if p.obs.ExpressionTracingEnabled() {
		traced = input
	}
	ctx, span := p.obs.Tracer().StartParse(ctx, traced)
	defer span.End()

	start := time.Now()
	q, err := p.parse(ctx, input)
	p.obs.Metrics().RecordParse(ctx, time.Since(start), err == nil)
	if err != nil {
		p.obs.Tracer().RecordError(span, err)
		p.fail(ctx, input, err)
		return nil, err
	}
	return q, nil
}

func (p *Parser) parse(ctx context.Context, input string) (*Query, error) {
	raw, positions, err := p.parseRaw(input)
	if err != nil {
		return nil, err
	}
	return p.translate(ctx, raw, positions)
}

func (p *Parser) parseRaw(input string) (*Query, query.Positions, error) {
	if p.cache != nil {
		return p.cache.Parse(input)
	}
	return query.ConvertTokensWithPositions(query.Tokenize(input))
}

func (p *Parser) translate(ctx context.Context, raw *Query, positions query.Positions) (*Query, error) {
	_, span := p.obs.Tracer().StartTranslate(ctx, p.entity)
	defer span.End()

	if err := query.Validate(raw, p.provider, positions); err != nil {
		p.obs.Tracer().RecordError(span, err)
		return nil, err
	}
	q, err := p.translator.TranslateWithPositions(raw, positions)
	if err != nil {
		p.obs.Tracer().RecordError(span, err)
		return nil, err
	}
	return q, nil
}

// ParseRaw parses an expression without validating or translating it.
func (p *Parser) ParseRaw(input string) (*Query, error) {
	raw, _, err := p.parseRaw(input)
	if err != nil {
		p.fail(context.Background(), input, err)
		return nil, err
	}
	return raw, nil
}

// Prepare validates and translates a raw query, for example one assembled
// with And, Or or AndEQL. Already translated conditions are kept as they are.
func (p *Parser) Prepare(raw *Query) (*Query, error) {
	return p.PrepareContext(context.Background(), raw)
}

// PrepareContext is Prepare with a context carrying the trace of the caller.
func (p *Parser) PrepareContext(ctx context.Context, raw *Query) (*Query, error) {
	if raw == nil {
		return nil, nil
	}
	q, err := p.translate(ctx, raw, nil)
	if err != nil {
		p.fail(ctx, raw.String(), err)
		return nil, err
	}
	return q, nil
}

// fail logs and counts a failed parse.
func (p *Parser) fail(ctx context.Context, input string, err error) {
	kind := "Unknown"
	position := NoPosition
	var pe *ParseError
	if errors.As(err, &pe) {
		kind = pe.Kind.String()
		position = pe.ErrorPosition
	}
	observability.SetParseError(ctx, kind, position)
	p.obs.Metrics().RecordError(ctx, observability.OpParse, kind)
	observability.LoggerWithTrace(ctx, p.logger).DebugContext(ctx, "eql parse failed",
		slog.String(observability.LogFieldExpression, input),
		slog.String(observability.LogFieldErrorKind, kind),
		slog.Int(observability.LogFieldPosition, position),
		slog.String(observability.LogFieldError, err.Error()))
}

var defaultParser = NewParser()

// Parse parses and translates input without property metadata.
// Every property is accepted and arguments keep their literal text.
func Parse(input string) (*Query, error) {
	return defaultParser.Parse(input)
}

// ParseRaw parses input into a raw query.
func ParseRaw(input string) (*Query, error) {
	return defaultParser.ParseRaw(input)
}

// ParseWithSchema parses and translates input against schema.
func ParseWithSchema(schema *Schema, input string) (*Query, error) {
	return NewParser(WithSchema(schema)).Parse(input)
}

// NewSchema creates an empty schema for the named entity.
func NewSchema(name string) *Schema {
	return metadata.NewSchema(name)
}

// Declare declares a property of type T on s.
func Declare[T any](s *Schema, name string) *Schema {
	return metadata.Declare[T](s, name)
}

// NewConversionService creates a conversion service with the built-in string conversions.
func NewConversionService() *ConversionService {
	return convert.NewDefault()
}

// RegisterConverter registers a typed converter from S to T on s.
func RegisterConverter[S, T any](s *ConversionService, fn func(S) (T, error)) {
	convert.RegisterFunc(s, fn)
}
