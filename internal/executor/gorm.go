package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/nlstn/go-eql/internal/metadata"
	"github.com/nlstn/go-eql/internal/observability"
	"github.com/nlstn/go-eql/internal/query"
)

// GormExecutor translates queries into SQL for a GORM model T.
// Properties resolve to the model's columns by GORM field name, column name
// or case-insensitive field name.
type GormExecutor[T any] struct {
	db   *gorm.DB
	opts options

	once        sync.Once
	modelSchema *schema.Schema
	schemaErr   error
}

// NewGormExecutor creates an executor for model T on db.
func NewGormExecutor[T any](db *gorm.DB, opts ...Option) *GormExecutor[T] {
	return &GormExecutor[T]{db: db, opts: newOptions(opts)}
}

func (e *GormExecutor[T]) model() (*schema.Schema, error) {
	e.once.Do(func() {
		stmt := &gorm.Statement{DB: e.db}
		if err := stmt.Parse(new(T)); err != nil {
			e.schemaErr = fmt.Errorf("parse model: %w", err)
			return
		}
		e.modelSchema = stmt.Schema
	})
	return e.modelSchema, e.schemaErr
}

// column resolves a property to its field in the model schema.
func (e *GormExecutor[T]) column(property string) (*schema.Field, error) {
	s, err := e.model()
	if err != nil {
		return nil, err
	}
	if f := s.LookUpField(property); f != nil && f.DBName != "" {
		return f, nil
	}
	for _, f := range s.Fields {
		if f.DBName != "" && strings.EqualFold(f.Name, property) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProperty, property)
}

// CanExecute reports whether every condition of q maps to SQL. Membership
// tests on collection columns and emptiness checks on non-string columns
// cannot be expressed portably and are declined.
func (e *GormExecutor[T]) CanExecute(q *query.Query) bool {
	if q == nil {
		return true
	}
	if !q.IsTranslated() {
		return false
	}
	for _, c := range q.Conditions() {
		f, err := e.column(c.Property)
		if err != nil {
			return false
		}
		if !supportsOperator(f, c.Operator) {
			return false
		}
	}
	for _, o := range q.Sort {
		if _, err := e.column(o.Property); err != nil {
			return false
		}
	}
	return true
}

func supportsOperator(f *schema.Field, op query.Operator) bool {
	switch op {
	case query.CONTAINS, query.NOT_CONTAINS, query.IS_EMPTY, query.IS_NOT_EMPTY,
		query.LIKE, query.NOT_LIKE, query.LIKE_IC, query.NOT_LIKE_IC:
		return metadata.TypeOf(f.FieldType).IsString()
	}
	return true
}

// FindAll returns the matching rows in the order of the query sort.
func (e *GormExecutor[T]) FindAll(ctx context.Context, q *query.Query) ([]T, error) {
	return e.FindAllSorted(ctx, q, nil)
}

// FindAllSorted returns the matching rows ordered by sort and then by the query sort.
func (e *GormExecutor[T]) FindAllSorted(ctx context.Context, q *query.Query, sort query.Sort) ([]T, error) {
	var out []T
	err := e.opts.observe(ctx, "gorm", observability.OpFindAll, q, func(ctx context.Context) (int, error) {
		db, err := e.filter(ctx, q)
		if err != nil {
			return 0, err
		}
		if db, err = e.order(db, q, sort); err != nil {
			return 0, err
		}
		if err := db.Find(&out).Error; err != nil {
			return 0, err
		}
		return len(out), nil
	})
	return out, err
}

// FindPage counts all matches and returns one page of rows.
func (e *GormExecutor[T]) FindPage(ctx context.Context, q *query.Query, page PageRequest) (Page[T], error) {
	result := Page[T]{Offset: page.Offset, Limit: page.Limit}
	err := e.opts.observe(ctx, "gorm", observability.OpFindPage, q, func(ctx context.Context) (int, error) {
		observability.SetPage(ctx, page.Offset, page.Limit)
		db, err := e.filter(ctx, q)
		if err != nil {
			return 0, err
		}
		if err := db.Count(&result.Total).Error; err != nil {
			return 0, err
		}

		if db, err = e.filter(ctx, q); err != nil {
			return 0, err
		}
		if db, err = e.order(db, q, page.Sort); err != nil {
			return 0, err
		}
		if page.Offset > 0 {
			db = db.Offset(page.Offset)
		}
		if page.Limit > 0 {
			db = db.Limit(page.Limit)
		}
		if err := db.Find(&result.Items).Error; err != nil {
			return 0, err
		}
		return len(result.Items), nil
	})
	return result, err
}

// filter builds the statement selecting the rows matching q.
func (e *GormExecutor[T]) filter(ctx context.Context, q *query.Query) (*gorm.DB, error) {
	if err := checkTranslated(q); err != nil {
		return nil, err
	}
	db := e.db.WithContext(ctx).Model(new(T))
	if q == nil || q.IsEmpty() {
		return db, nil
	}

	where, args, err := e.buildQuery(q)
	if err != nil {
		return nil, err
	}
	e.opts.logger.DebugContext(ctx, "gorm executor where clause",
		slog.String("where", where),
		slog.Int("args", len(args)))
	return db.Where(where, args...), nil
}

// order appends ORDER BY columns for the caller sort followed by the query sort.
func (e *GormExecutor[T]) order(db *gorm.DB, q *query.Query, sort query.Sort) (*gorm.DB, error) {
	var embedded query.Sort
	if q != nil {
		embedded = q.Sort
	}
	for _, o := range MergeSort(sort, embedded) {
		f, err := e.column(o.Property)
		if err != nil {
			return nil, err
		}
		db = db.Order(clause.OrderByColumn{
			Column: clause.Column{Name: f.DBName},
			Desc:   o.Direction == query.DESC,
		})
	}
	return db, nil
}

// buildQuery builds a WHERE condition string and arguments for a query node.
func (e *GormExecutor[T]) buildQuery(q *query.Query) (string, []any, error) {
	if q.IsEmpty() {
		return "1 = 1", nil, nil
	}

	parts := make([]string, 0, len(q.Expressions))
	var args []any
	for _, expr := range q.Expressions {
		var (
			sql     string
			exprArg []any
			err     error
		)
		switch n := expr.(type) {
		case *query.Condition:
			sql, exprArg, err = e.buildCondition(n)
		case *query.Query:
			sql, exprArg, err = e.buildQuery(n)
		}
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, "("+sql+")")
		args = append(args, exprArg...)
	}

	joiner := " AND "
	if q.Operand == query.OR {
		joiner = " OR "
	}
	return strings.Join(parts, joiner), args, nil
}

// buildCondition builds a comparison condition
func (e *GormExecutor[T]) buildCondition(c *query.Condition) (string, []any, error) {
	f, err := e.column(c.Property)
	if err != nil {
		return "", nil, err
	}
	if !supportsOperator(f, c.Operator) {
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupported, c)
	}
	col := quoteIdent(f.DBName)

	var value any
	if len(c.Arguments) > 0 {
		value = c.Arguments[0]
	}

	switch c.Operator {
	case query.EQ:
		if value == nil {
			return col + " IS NULL", nil, nil
		}
		return col + " = ?", []any{value}, nil
	case query.NEQ:
		if value == nil {
			return col + " IS NOT NULL", nil, nil
		}
		return col + " != ?", []any{value}, nil
	case query.GT:
		return col + " > ?", []any{value}, nil
	case query.GE:
		return col + " >= ?", []any{value}, nil
	case query.LT:
		return col + " < ?", []any{value}, nil
	case query.LE:
		return col + " <= ?", []any{value}, nil
	case query.IN, query.NOT_IN:
		return inCondition(col, c.Operator == query.NOT_IN, c.Arguments)
	case query.LIKE:
		return col + " LIKE ? " + query.LikeEscapeClause, []any{value}, nil
	case query.NOT_LIKE:
		return col + " NOT LIKE ? " + query.LikeEscapeClause, []any{value}, nil
	case query.LIKE_IC:
		return "lower(" + col + ") LIKE lower(?) " + query.LikeEscapeClause, []any{value}, nil
	case query.NOT_LIKE_IC:
		return "lower(" + col + ") NOT LIKE lower(?) " + query.LikeEscapeClause, []any{value}, nil
	case query.CONTAINS, query.NOT_CONTAINS:
		return containsCondition(col, c.Operator == query.NOT_CONTAINS, c.Arguments)
	case query.IS_NULL:
		return col + " IS NULL", nil, nil
	case query.IS_NOT_NULL:
		return col + " IS NOT NULL", nil, nil
	case query.IS_EMPTY:
		return fmt.Sprintf("%s IS NULL OR %s = ''", col, col), nil, nil
	case query.IS_NOT_EMPTY:
		return fmt.Sprintf("%s IS NOT NULL AND %s != ''", col, col), nil, nil
	}
	return "", nil, fmt.Errorf("%w: %s", ErrUnsupported, c)
}

func inCondition(col string, negate bool, values []any) (string, []any, error) {
	args := make([]any, 0, len(values))
	for _, v := range values {
		if v != nil {
			args = append(args, v)
		}
	}
	if len(args) == 0 {
		if negate {
			return "1 = 1", nil, nil
		}
		return "1 = 0", nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	op := " IN "
	if negate {
		op = " NOT IN "
	}
	return col + op + "(" + placeholders + ")", args, nil
}

// containsCondition matches a substring of any argument, or of none when negated.
func containsCondition(col string, negate bool, values []any) (string, []any, error) {
	parts := make([]string, 0, len(values))
	args := make([]any, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		if negate {
			parts = append(parts, col+" NOT LIKE ? "+query.LikeEscapeClause)
		} else {
			parts = append(parts, col+" LIKE ? "+query.LikeEscapeClause)
		}
		args = append(args, "%"+query.EscapeLike(fmt.Sprint(v))+"%")
	}
	if len(parts) == 0 {
		return "1 = 1", nil, nil
	}
	joiner := " OR "
	if negate {
		joiner = " AND "
	}
	return strings.Join(parts, joiner), args, nil
}

// quoteIdent safely quotes identifiers in a portable way (double quotes work for sqlite and postgres).
// Embedded double quotes are escaped by doubling them per SQL standard.
func quoteIdent(ident string) string {
	if ident == "" {
		return ident
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
