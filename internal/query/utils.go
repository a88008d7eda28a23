package query

// And combines the non-nil expressions with AND.
func And(expressions ...Expression) *Query {
	return NewQuery(AND, expressions...)
}

// Or combines the non-nil expressions with OR.
func Or(expressions ...Expression) *Query {
	return NewQuery(OR, expressions...)
}

// AndEQL appends a raw EQL statement to q using AND.
func AndEQL(q *Query, eql string) (*Query, error) {
	parsed, err := ParseRaw(eql)
	if err != nil {
		return nil, err
	}
	return And(q, parsed), nil
}

// OrEQL appends a raw EQL statement to q using OR.
func OrEQL(q *Query, eql string) (*Query, error) {
	parsed, err := ParseRaw(eql)
	if err != nil {
		return nil, err
	}
	return Or(q, parsed), nil
}

// Simplify removes redundant nesting: single-child queries are replaced by their
// child and children sharing the operand of their parent are merged into it.
// The sort of the outermost query wins, otherwise the first nested sort is kept.
func Simplify(q *Query) *Query {
	if q == nil {
		return nil
	}
	out := &Query{Operand: q.Operand, Sort: q.Sort}
	for _, e := range q.Expressions {
		switch n := e.(type) {
		case *Condition:
			out.Expressions = append(out.Expressions, n)
		case *Query:
			sub := Simplify(n)
			if out.Sort == nil && sub.Sort != nil {
				out.Sort = sub.Sort
			}
			sub.Sort = nil
			switch {
			case len(sub.Expressions) == 0:
			case len(sub.Expressions) == 1:
				out.Expressions = append(out.Expressions, sub.Expressions[0])
			case sub.Operand == out.Operand:
				out.Expressions = append(out.Expressions, sub.Expressions...)
			default:
				out.Expressions = append(out.Expressions, sub)
			}
		}
	}

	if len(out.Expressions) == 1 {
		if only, ok := out.Expressions[0].(*Query); ok {
			collapsed := only.shallowCopy()
			collapsed.Sort = out.Sort
			return collapsed
		}
	}
	return out
}

// FindConditionsForProperty returns every condition on the property, depth first.
func FindConditionsForProperty(q *Query, property string) []*Condition {
	if q == nil {
		return nil
	}
	var found []*Condition
	walkConditions(q, func(c *Condition) {
		if c.Property == property {
			found = append(found, c)
		}
	})
	return found
}

// TranslateConditions returns a copy of q where every condition on one of the
// properties (all conditions if none are given) is replaced by the result of fn.
// A nil result removes the condition; queries left empty are removed as well.
func TranslateConditions(q *Query, fn func(*Condition) *Condition, properties ...string) *Query {
	if q == nil {
		return nil
	}
	matches := func(c *Condition) bool {
		if len(properties) == 0 {
			return true
		}
		for _, p := range properties {
			if p == c.Property {
				return true
			}
		}
		return false
	}

	out := &Query{Operand: q.Operand, Sort: q.Sort}
	for _, e := range q.Expressions {
		switch n := e.(type) {
		case *Condition:
			if !matches(n) {
				out.Add(n)
				continue
			}
			if r := fn(n); r != nil {
				out.Add(r)
			}
		case *Query:
			out.Add(TranslateConditions(n, fn, properties...))
		}
	}
	return out
}
