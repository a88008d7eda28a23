package executor

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/nlstn/go-eql/internal/convert"
	"github.com/nlstn/go-eql/internal/observability"
	"github.com/nlstn/go-eql/internal/query"
)

// CollectionExecutor evaluates queries against an in-memory slice.
// Items are structs, pointers to structs or string keyed maps. Struct
// properties are matched by eql tag, field name or case-insensitive field name.
//
// Every operator except EQ/NEQ against NULL and the IS_* operators is false
// for a null property. Sorting puts null values first in ascending order.
type CollectionExecutor[T any] struct {
	items      []T
	conversion *convert.Service
	opts       options
}

// NewCollectionExecutor creates an executor over items. The slice is not copied.
func NewCollectionExecutor[T any](items []T, opts ...Option) *CollectionExecutor[T] {
	return &CollectionExecutor[T]{
		items:      items,
		conversion: convert.NewDefault(),
		opts:       newOptions(opts),
	}
}

// WithConversion replaces the service used to coerce arguments to property types.
func (e *CollectionExecutor[T]) WithConversion(s *convert.Service) *CollectionExecutor[T] {
	if s != nil {
		e.conversion = s
	}
	return e
}

func (e *CollectionExecutor[T]) itemType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// CanExecute reports whether q is translated and every property it references exists on T.
func (e *CollectionExecutor[T]) CanExecute(q *query.Query) bool {
	if q == nil {
		return true
	}
	if !q.IsTranslated() {
		return false
	}
	t := e.itemType()
	for _, c := range q.Conditions() {
		if _, ok := propertyType(t, c.Property); !ok {
			return false
		}
	}
	for _, o := range q.Sort {
		if _, ok := propertyType(t, o.Property); !ok {
			return false
		}
	}
	return true
}

// FindAll returns the matching items in the order of the query sort.
func (e *CollectionExecutor[T]) FindAll(ctx context.Context, q *query.Query) ([]T, error) {
	return e.FindAllSorted(ctx, q, nil)
}

// FindAllSorted returns the matching items ordered by sort and then by the query sort.
func (e *CollectionExecutor[T]) FindAllSorted(ctx context.Context, q *query.Query, sort query.Sort) ([]T, error) {
	var out []T
	err := e.opts.observe(ctx, "collection", observability.OpFindAll, q, func(ctx context.Context) (int, error) {
		var err error
		out, err = e.find(ctx, q, sort)
		return len(out), err
	})
	return out, err
}

// FindPage returns one page of the matching items.
func (e *CollectionExecutor[T]) FindPage(ctx context.Context, q *query.Query, page PageRequest) (Page[T], error) {
	result := Page[T]{Offset: page.Offset, Limit: page.Limit}
	err := e.opts.observe(ctx, "collection", observability.OpFindPage, q, func(ctx context.Context) (int, error) {
		observability.SetPage(ctx, page.Offset, page.Limit)
		all, err := e.find(ctx, q, page.Sort)
		if err != nil {
			return 0, err
		}
		start, end := paginate(len(all), page)
		result.Items = all[start:end]
		result.Total = int64(len(all))
		return len(result.Items), nil
	})
	return result, err
}

func (e *CollectionExecutor[T]) find(ctx context.Context, q *query.Query, sort query.Sort) ([]T, error) {
	if err := checkTranslated(q); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(e.items))
	for _, item := range e.items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := e.matches(reflect.ValueOf(item), q)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, item)
		}
	}

	var embedded query.Sort
	if q != nil {
		embedded = q.Sort
	}
	if err := e.sort(out, MergeSort(sort, embedded)); err != nil {
		return nil, err
	}
	return out, nil
}

// matches evaluates q against item. An empty query matches everything.
func (e *CollectionExecutor[T]) matches(item reflect.Value, q *query.Query) (bool, error) {
	if q == nil || q.IsEmpty() {
		return true, nil
	}
	for _, expr := range q.Expressions {
		var (
			ok  bool
			err error
		)
		switch n := expr.(type) {
		case *query.Condition:
			ok, err = e.evaluate(item, n)
		case *query.Query:
			ok, err = e.matches(item, n)
		}
		if err != nil {
			return false, err
		}
		if q.Operand == query.OR && ok {
			return true, nil
		}
		if q.Operand != query.OR && !ok {
			return false, nil
		}
	}
	return q.Operand != query.OR, nil
}

func (e *CollectionExecutor[T]) evaluate(item reflect.Value, c *query.Condition) (bool, error) {
	v, ok := propertyValue(item, c.Property)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownProperty, c.Property)
	}
	null := !v.IsValid()

	switch c.Operator {
	case query.IS_NULL:
		return null, nil
	case query.IS_NOT_NULL:
		return !null, nil
	case query.IS_EMPTY:
		return isEmptyValue(v), nil
	case query.IS_NOT_EMPTY:
		return !isEmptyValue(v), nil
	case query.EQ, query.NEQ:
		if len(c.Arguments) > 0 && c.Arguments[0] == nil {
			return null == (c.Operator == query.EQ), nil
		}
	}
	if null {
		return false, nil
	}

	args, err := e.coerce(c, v.Type(), elementType(v))
	if err != nil {
		return false, err
	}

	switch c.Operator {
	case query.EQ:
		return len(args) > 0 && equalValues(v, args[0]), nil
	case query.NEQ:
		return len(args) > 0 && !equalValues(v, args[0]), nil
	case query.IN:
		return containsValue(args, v), nil
	case query.NOT_IN:
		return !containsValue(args, v), nil
	case query.GT, query.GE, query.LT, query.LE:
		if len(args) == 0 {
			return false, nil
		}
		cmp, ok := compareValues(v, args[0])
		if !ok {
			return false, fmt.Errorf("%w: %s cannot be ordered", ErrUnsupported, c)
		}
		return orderMatches(c.Operator, cmp), nil
	case query.LIKE, query.NOT_LIKE, query.LIKE_IC, query.NOT_LIKE_IC:
		return likeMatches(c, v, args)
	case query.CONTAINS:
		return collectionContains(v, args)
	case query.NOT_CONTAINS:
		ok, err := collectionContains(v, args)
		return !ok, err
	}
	return false, fmt.Errorf("%w: %s", ErrUnsupported, c)
}

// elementType returns the type arguments are compared with for membership operators.
func elementType(v reflect.Value) reflect.Type {
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() != reflect.Uint8 {
			return v.Type().Elem()
		}
	}
	return v.Type()
}

// coerce converts string arguments to the property type. Arguments translated
// without type information arrive as strings.
func (e *CollectionExecutor[T]) coerce(c *query.Condition, scalar, elem reflect.Type) ([]reflect.Value, error) {
	target := scalar
	if c.Operator == query.CONTAINS || c.Operator == query.NOT_CONTAINS {
		target = elem
	}
	switch c.Operator {
	case query.LIKE, query.NOT_LIKE, query.LIKE_IC, query.NOT_LIKE_IC:
		target = nil
	}

	out := make([]reflect.Value, 0, len(c.Arguments))
	for _, arg := range c.Arguments {
		if arg == nil {
			continue
		}
		if s, ok := arg.(string); ok && target != nil && target.Kind() != reflect.String {
			converted, err := e.conversion.Convert(s, target)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", c.Property, err)
			}
			arg = converted
		}
		out = append(out, indirect(reflect.ValueOf(arg)))
	}
	return out, nil
}

func containsValue(values []reflect.Value, v reflect.Value) bool {
	return slices.ContainsFunc(values, func(a reflect.Value) bool { return equalValues(v, a) })
}

func orderMatches(op query.Operator, cmp int) bool {
	switch op {
	case query.GT:
		return cmp > 0
	case query.GE:
		return cmp >= 0
	case query.LT:
		return cmp < 0
	}
	return cmp <= 0
}

func likeMatches(c *query.Condition, v reflect.Value, args []reflect.Value) (bool, error) {
	if v.Kind() != reflect.String {
		return false, fmt.Errorf("%w: %s on non-string property", ErrUnsupported, c)
	}
	if len(args) == 0 || args[0].Kind() != reflect.String {
		return false, nil
	}
	ignoreCase := c.Operator == query.LIKE_IC || c.Operator == query.NOT_LIKE_IC
	ok := query.MatchLike(args[0].String(), v.String(), ignoreCase)
	if c.Operator.IsNegation() {
		return !ok, nil
	}
	return ok, nil
}

// collectionContains reports whether a slice, array or map value holds any of
// the arguments. A string property contains an argument when it is a substring.
func collectionContains(v reflect.Value, args []reflect.Value) (bool, error) {
	switch v.Kind() {
	case reflect.String:
		for _, a := range args {
			if a.Kind() == reflect.String && strings.Contains(v.String(), a.String()) {
				return true, nil
			}
		}
		return false, nil
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			elem := indirect(v.Index(i))
			if elem.IsValid() && containsValue(args, elem) {
				return true, nil
			}
		}
		return false, nil
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			elem := indirect(iter.Value())
			if elem.IsValid() && containsValue(args, elem) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("%w: contains on %s", ErrUnsupported, v.Type())
}

// sort orders items in place. Items whose values cannot be ordered keep their relative order.
func (e *CollectionExecutor[T]) sort(items []T, sort query.Sort) error {
	if len(sort) == 0 {
		return nil
	}
	t := e.itemType()
	for _, o := range sort {
		if _, ok := propertyType(t, o.Property); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownProperty, o.Property)
		}
	}

	slices.SortStableFunc(items, func(a, b T) int {
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		for _, o := range sort {
			x, _ := propertyValue(va, o.Property)
			y, _ := propertyValue(vb, o.Property)
			c := compareNullable(x, y)
			if o.Direction == query.DESC {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return nil
}

// compareNullable orders null before any value.
func compareNullable(x, y reflect.Value) int {
	switch {
	case !x.IsValid() && !y.IsValid():
		return 0
	case !x.IsValid():
		return -1
	case !y.IsValid():
		return 1
	}
	c, _ := compareValues(x, y)
	return c
}
