// Package executor runs translated queries against data sources.
package executor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nlstn/go-eql/internal/observability"
	"github.com/nlstn/go-eql/internal/query"
)

var (
	// ErrNotTranslated is returned when a query still contains raw conditions.
	ErrNotTranslated = errors.New("executor: query is not translated")
	// ErrUnsupported is returned when an executor cannot evaluate a condition.
	ErrUnsupported = errors.New("executor: unsupported condition")
	// ErrUnknownProperty is returned when a property does not map to a field or column.
	ErrUnknownProperty = errors.New("executor: unknown property")
)

// PageRequest selects a slice of the sorted result. A Limit of zero or less means no limit.
type PageRequest struct {
	Offset int
	Limit  int
	Sort   query.Sort
}

// Page is one page of a result together with the total number of matches.
type Page[T any] struct {
	Items  []T
	Total  int64
	Offset int
	Limit  int
}

// HasNext reports whether more matches follow this page.
func (p Page[T]) HasNext() bool {
	return int64(p.Offset+len(p.Items)) < p.Total
}

// Executor evaluates translated queries.
type Executor[T any] interface {
	FindAll(ctx context.Context, q *query.Query) ([]T, error)
	// FindAllSorted orders by sort first and by the query's own sort after that.
	FindAllSorted(ctx context.Context, q *query.Query, sort query.Sort) ([]T, error)
	FindPage(ctx context.Context, q *query.Query, page PageRequest) (Page[T], error)
}

// CapabilityChecker is implemented by executors that only support some queries.
type CapabilityChecker interface {
	CanExecute(q *query.Query) bool
}

// CanExecute reports whether exec accepts q. Executors without a CapabilityChecker accept everything.
func CanExecute[T any](exec Executor[T], q *query.Query) bool {
	if c, ok := exec.(CapabilityChecker); ok {
		return c.CanExecute(q)
	}
	return true
}

// MergeSort returns the caller supplied sort followed by the orders of the
// query sort whose property is not already ordered by the caller.
func MergeSort(caller, embedded query.Sort) query.Sort {
	if len(caller) == 0 {
		return embedded
	}
	merged := append(query.Sort(nil), caller...)
	for _, o := range embedded {
		if !merged.Contains(o.Property) {
			merged = append(merged, o)
		}
	}
	return merged
}

type fallback[T any] struct {
	primary   Executor[T]
	secondary Executor[T]
}

// Fallback routes every call to primary unless primary declines the query
// through CanExecute, in which case secondary runs it.
func Fallback[T any](primary, secondary Executor[T]) Executor[T] {
	return &fallback[T]{primary: primary, secondary: secondary}
}

func (f *fallback[T]) pick(q *query.Query) Executor[T] {
	if CanExecute(f.primary, q) {
		return f.primary
	}
	return f.secondary
}

func (f *fallback[T]) CanExecute(q *query.Query) bool {
	return CanExecute(f.primary, q) || CanExecute(f.secondary, q)
}

func (f *fallback[T]) FindAll(ctx context.Context, q *query.Query) ([]T, error) {
	return f.pick(q).FindAll(ctx, q)
}

func (f *fallback[T]) FindAllSorted(ctx context.Context, q *query.Query, sort query.Sort) ([]T, error) {
	return f.pick(q).FindAllSorted(ctx, q, sort)
}

func (f *fallback[T]) FindPage(ctx context.Context, q *query.Query, page PageRequest) (Page[T], error) {
	return f.pick(q).FindPage(ctx, q, page)
}

// Option configures an executor.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	observability *observability.Config
}

// WithLogger sets the logger used for debug output of executed queries.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObservability enables tracing and metrics for executed queries.
func WithObservability(cfg *observability.Config) Option {
	return func(o *options) {
		o.observability = cfg
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// observe runs fn inside an eql.execute span and records the result count.
func (o *options) observe(ctx context.Context, executor, operation string, q *query.Query, fn func(context.Context) (int, error)) error {
	conditions := 0
	if q != nil {
		conditions = len(q.Conditions())
	}
	ctx, span := o.observability.Tracer().StartExecute(ctx, executor, operation, conditions)
	defer span.End()

	start := time.Now()
	count, err := fn(ctx)
	logger := observability.LoggerWithTrace(ctx, o.logger)
	if err != nil {
		o.observability.Tracer().RecordError(span, err)
		o.observability.Metrics().RecordError(ctx, operation, errorKind(err))
		logger.DebugContext(ctx, "query execution failed",
			slog.String("executor", executor),
			slog.String(observability.LogFieldError, err.Error()))
		return err
	}

	span.SetAttributes(observability.ResultCountAttr(int64(count)))
	o.observability.Metrics().RecordResultCount(ctx, executor, int64(count))
	logger.DebugContext(ctx, "query executed",
		slog.String("executor", executor),
		slog.Int(observability.LogFieldResultCount, count),
		slog.Int64(observability.LogFieldDuration, time.Since(start).Milliseconds()))
	return nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotTranslated):
		return "NotTranslated"
	case errors.Is(err, ErrUnsupported):
		return "Unsupported"
	case errors.Is(err, ErrUnknownProperty):
		return "UnknownProperty"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Canceled"
	}
	return "Execution"
}

func checkTranslated(q *query.Query) error {
	if q != nil && !q.IsTranslated() {
		return ErrNotTranslated
	}
	return nil
}

// paginate returns the bounds of the page within n items.
func paginate(n int, page PageRequest) (int, int) {
	start := page.Offset
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := n
	if page.Limit > 0 && start+page.Limit < n {
		end = start + page.Limit
	}
	return start, end
}
