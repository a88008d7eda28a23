package eql

import (
	"gorm.io/gorm"

	"github.com/nlstn/go-eql/internal/convert"
	"github.com/nlstn/go-eql/internal/executor"
	"github.com/nlstn/go-eql/internal/metadata"
	"github.com/nlstn/go-eql/internal/query"
)

type (
	// Query is a tree of conditions joined by AND or OR, with an optional sort.
	Query = query.Query
	// Condition compares a property with its arguments.
	Condition = query.Condition
	// Expression is either a *Condition or a nested *Query.
	Expression = query.Expression
	Operator   = query.Operator
	Direction  = query.Direction
	Order      = query.Order
	Sort       = query.Sort

	// EQType is a raw argument: EQValue, EQString, EQGroup or EQFunction.
	EQType     = query.EQType
	EQValue    = query.EQValue
	EQString   = query.EQString
	EQGroup    = query.EQGroup
	EQFunction = query.EQFunction

	// FunctionHandler evaluates functions such as now() during translation.
	FunctionHandler = query.FunctionHandler
	// TypeConverter is handed to function handlers to convert their arguments.
	TypeConverter    = query.TypeConverter
	MetadataProvider = query.MetadataProvider
	// PermissiveMetadataProvider accepts every property, operator and value.
	PermissiveMetadataProvider = query.PermissiveMetadataProvider
	Period                     = query.Period

	Schema           = metadata.Schema
	PropertyMetadata = metadata.PropertyMetadata
	TypeInfo         = metadata.TypeInfo

	ConversionService = convert.Service

	PageRequest       = executor.PageRequest
	CapabilityChecker = executor.CapabilityChecker
	Dialect           = executor.Dialect
)

type (
	// Executor runs translated queries against a data source.
	Executor[T any] = executor.Executor[T]
	Page[T any]     = executor.Page[T]

	// CollectionExecutor evaluates queries against an in-memory slice.
	CollectionExecutor[T any] = executor.CollectionExecutor[T]
	// GormExecutor evaluates queries as SQL through GORM.
	GormExecutor[T any] = executor.GormExecutor[T]
)

const (
	AND          = query.AND
	OR           = query.OR
	EQ           = query.EQ
	NEQ          = query.NEQ
	CONTAINS     = query.CONTAINS
	NOT_CONTAINS = query.NOT_CONTAINS
	IN           = query.IN
	NOT_IN       = query.NOT_IN
	LIKE         = query.LIKE
	LIKE_IC      = query.LIKE_IC
	NOT_LIKE     = query.NOT_LIKE
	NOT_LIKE_IC  = query.NOT_LIKE_IC
	GT           = query.GT
	GE           = query.GE
	LT           = query.LT
	LE           = query.LE
	IS_NULL      = query.IS_NULL
	IS_NOT_NULL  = query.IS_NOT_NULL
	IS_EMPTY     = query.IS_EMPTY
	IS_NOT_EMPTY = query.IS_NOT_EMPTY
)

const (
	ASC  = query.ASC
	DESC = query.DESC
)

const (
	DialectSQLite   = executor.DialectSQLite
	DialectPostgres = executor.DialectPostgres
)

var (
	// NullValue is the raw value of the literal null.
	NullValue = query.NullValue
)

// All returns an empty query matching every entity.
func All() *Query { return query.All() }

// NewQuery joins expressions with operand, which must be AND or OR.
func NewQuery(operand Operator, expressions ...Expression) *Query {
	return query.NewQuery(operand, expressions...)
}

// NewCondition creates an untranslated condition with raw arguments.
func NewCondition(property string, op Operator, args ...any) *Condition {
	return query.NewCondition(property, op, args...)
}

// NewTranslatedCondition creates a condition with typed arguments.
func NewTranslatedCondition(property string, op Operator, args ...any) *Condition {
	return query.NewTranslatedCondition(property, op, args...)
}

// NewEQValue creates a bare raw value.
func NewEQValue(value string) EQValue { return query.NewEQValue(value) }

// NewEQGroup creates a raw value group.
func NewEQGroup(values ...EQType) EQGroup { return query.NewEQGroup(values...) }

// NewEQFunction creates a raw function call.
func NewEQFunction(name string, args ...EQType) EQFunction {
	return query.NewEQFunction(name, args...)
}

// By creates a sort on a single property.
func By(property string, dir Direction) Sort { return query.By(property, dir) }

// And joins expressions with AND.
func And(expressions ...Expression) *Query { return query.And(expressions...) }

// Or joins expressions with OR.
func Or(expressions ...Expression) *Query { return query.Or(expressions...) }

// AndEQL parses eql and joins it with q using AND.
func AndEQL(q *Query, eql string) (*Query, error) { return query.AndEQL(q, eql) }

// OrEQL parses eql and joins it with q using OR.
func OrEQL(q *Query, eql string) (*Query, error) { return query.OrEQL(q, eql) }

// Simplify flattens redundant nesting of q.
func Simplify(q *Query) *Query { return query.Simplify(q) }

// FindConditionsForProperty returns every condition on property.
func FindConditionsForProperty(q *Query, property string) []*Condition {
	return query.FindConditionsForProperty(q, property)
}

// TranslateConditions replaces the conditions on the given properties, or on
// all properties when none are named, with the result of fn.
func TranslateConditions(q *Query, fn func(*Condition) *Condition, properties ...string) *Query {
	return query.TranslateConditions(q, fn, properties...)
}

// ParsePeriod parses a period such as "3d" or "1y2m".
func ParsePeriod(s string) (Period, error) { return query.ParsePeriod(s) }

// EscapeLike escapes the LIKE wildcards in value.
func EscapeLike(value string) string { return query.EscapeLike(value) }

// NewCollectionExecutor creates an executor over items.
func NewCollectionExecutor[T any](items []T, opts ...ExecutorOption) *CollectionExecutor[T] {
	return executor.NewCollectionExecutor(items, opts...)
}

// NewGormExecutor creates an executor running queries against the table of T.
func NewGormExecutor[T any](db *gorm.DB, opts ...ExecutorOption) *GormExecutor[T] {
	return executor.NewGormExecutor[T](db, opts...)
}

// Fallback runs queries on primary when it can execute them and on secondary otherwise.
func Fallback[T any](primary, secondary Executor[T]) Executor[T] {
	return executor.Fallback(primary, secondary)
}

// CanExecute reports whether exec accepts q.
func CanExecute[T any](exec Executor[T], q *Query) bool {
	return executor.CanExecute(exec, q)
}

// MergeSort orders by caller first and then by the remaining orders of embedded.
func MergeSort(caller, embedded Sort) Sort { return executor.MergeSort(caller, embedded) }

// OpenDatabase opens a GORM database for dialect. When obs enables detailed
// database tracing every statement gets its own span.
func OpenDatabase(dialect Dialect, dsn string, obs *Observability) (*gorm.DB, error) {
	return executor.OpenDatabase(dialect, dsn, obs)
}

// Open opens a GORM database through an existing dialector, for example
// postgres.New with a shared connection pool.
func Open(dialector gorm.Dialector, obs *Observability) (*gorm.DB, error) {
	return executor.Open(dialector, obs)
}
