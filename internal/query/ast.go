package query

import (
	"strings"
)

// Expression is a node of a query tree: either a *Condition or a *Query.
type Expression interface {
	expression()
	String() string
}

// Condition is a leaf node comparing a property with its arguments.
// Before translation the arguments are EQType values; afterwards they are typed values.
type Condition struct {
	Property   string
	Operator   Operator
	Arguments  []any
	Translated bool
}

func (*Condition) expression() {}

// NewCondition creates an untranslated condition.
func NewCondition(property string, op Operator, args ...any) *Condition {
	return &Condition{Property: property, Operator: op, Arguments: args}
}

// NewTranslatedCondition creates a condition whose arguments are already typed.
func NewTranslatedCondition(property string, op Operator, args ...any) *Condition {
	return &Condition{Property: property, Operator: op, Arguments: args, Translated: true}
}

func (c *Condition) String() string {
	return c.Operator.Render(c.Property, c.Arguments...)
}

func (c *Condition) clone() *Condition {
	cp := *c
	if c.Arguments != nil {
		cp.Arguments = append([]any(nil), c.Arguments...)
	}
	return &cp
}

// Direction is the direction of an order specifier.
type Direction int

const (
	ASC Direction = iota
	DESC
)

func (d Direction) String() string {
	if d == DESC {
		return "DESC"
	}
	return "ASC"
}

// ParseDirection resolves asc/desc case insensitively.
func ParseDirection(s string) (Direction, bool) {
	switch {
	case strings.EqualFold(s, "asc"):
		return ASC, true
	case strings.EqualFold(s, "desc"):
		return DESC, true
	}
	return ASC, false
}

// Order sorts by a single property.
type Order struct {
	Property  string
	Direction Direction
}

// Sort is an ordered list of order specifiers. A nil Sort means unsorted.
type Sort []Order

// By starts a sort on a property.
func By(property string, dir Direction) Sort {
	return Sort{{Property: property, Direction: dir}}
}

// Then appends an order specifier.
func (s Sort) Then(property string, dir Direction) Sort {
	return append(s[:len(s):len(s)], Order{Property: property, Direction: dir})
}

// Contains reports whether the sort already orders by property.
func (s Sort) Contains(property string) bool {
	for _, o := range s {
		if o.Property == property {
			return true
		}
	}
	return false
}

func (s Sort) String() string {
	parts := make([]string, len(s))
	for i, o := range s {
		parts[i] = o.Property + " " + o.Direction.String()
	}
	return strings.Join(parts, ", ")
}

// Query is a composite node combining its expressions with AND or OR.
type Query struct {
	Operand     Operator
	Expressions []Expression
	Sort        Sort
}

func (*Query) expression() {}

// All returns an empty AND query, which matches everything.
func All() *Query {
	return &Query{Operand: AND}
}

// NewQuery creates a query with the given operand and expressions.
// Expressions are added one by one so that single-child queries are flattened.
func NewQuery(operand Operator, expressions ...Expression) *Query {
	q := &Query{Operand: operand}
	for _, e := range expressions {
		q.Add(e)
	}
	return q
}

// Add appends an expression. Nil expressions and empty sub-queries are skipped,
// a sub-query with a single expression is replaced by that expression and a
// sub-query's sort moves to q when q has none.
func (q *Query) Add(expr Expression) *Query {
	switch e := expr.(type) {
	case *Condition:
		if e != nil {
			q.Expressions = append(q.Expressions, e)
		}
	case *Query:
		if e == nil {
			return q
		}
		sub := e.shallowCopy()
		if sub.Sort != nil {
			if q.Sort == nil {
				q.Sort = sub.Sort
			}
			sub.Sort = nil
		}
		switch len(sub.Expressions) {
		case 0:
		case 1:
			q.Expressions = append(q.Expressions, sub.Expressions[0])
		default:
			q.Expressions = append(q.Expressions, sub)
		}
	}
	return q
}

// OrderBy replaces the sort of the query.
func (q *Query) OrderBy(sort Sort) *Query {
	q.Sort = sort
	return q
}

// IsEmpty reports whether the query has no expressions.
func (q *Query) IsEmpty() bool {
	return len(q.Expressions) == 0
}

// HasSort reports whether the query carries at least one order specifier.
func (q *Query) HasSort() bool {
	return len(q.Sort) > 0
}

// IsTranslated reports whether every condition of the tree is translated.
func (q *Query) IsTranslated() bool {
	for _, e := range q.Expressions {
		switch n := e.(type) {
		case *Condition:
			if !n.Translated {
				return false
			}
		case *Query:
			if !n.IsTranslated() {
				return false
			}
		}
	}
	return true
}

// Conditions returns all conditions of the tree in depth-first order.
func (q *Query) Conditions() []*Condition {
	var out []*Condition
	walkConditions(q, func(c *Condition) { out = append(out, c) })
	return out
}

func walkConditions(q *Query, fn func(*Condition)) {
	for _, e := range q.Expressions {
		switch n := e.(type) {
		case *Condition:
			fn(n)
		case *Query:
			walkConditions(n, fn)
		}
	}
}

// Clone returns a deep copy of the query tree.
func (q *Query) Clone() *Query {
	cp, _ := q.cloneTracking(nil)
	return cp
}

// cloneTracking deep-copies the tree and remaps the given positions onto the copied conditions.
func (q *Query) cloneTracking(positions Positions) (*Query, Positions) {
	var mapped Positions
	if positions != nil {
		mapped = make(Positions, len(positions))
	}
	return q.cloneInto(positions, mapped), mapped
}

func (q *Query) cloneInto(src, dst Positions) *Query {
	cp := &Query{Operand: q.Operand}
	if q.Sort != nil {
		cp.Sort = append(Sort(nil), q.Sort...)
	}
	if q.Expressions != nil {
		cp.Expressions = make([]Expression, len(q.Expressions))
	}
	for i, e := range q.Expressions {
		switch n := e.(type) {
		case *Condition:
			c := n.clone()
			if pos, ok := src[n]; ok {
				dst[c] = pos
			}
			cp.Expressions[i] = c
		case *Query:
			cp.Expressions[i] = n.cloneInto(src, dst)
		}
	}
	return cp
}

func (q *Query) shallowCopy() *Query {
	cp := *q
	cp.Expressions = append([]Expression(nil), q.Expressions...)
	return &cp
}

// String renders the query as EQL, e.g. "a = 1 and (b = 2 or c = 3) order by a ASC".
func (q *Query) String() string {
	args := make([]any, len(q.Expressions))
	for i, e := range q.Expressions {
		args[i] = e
	}
	var b strings.Builder
	b.WriteString(q.Operand.Render("", args...))
	if q.HasSort() {
		b.WriteString(" order by ")
		b.WriteString(q.Sort.String())
	}
	return strings.TrimSpace(b.String())
}
