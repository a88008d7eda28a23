package query

import (
	"errors"
	"reflect"
	"strings"
)

// Translator turns a raw query into an executable one with typed arguments.
type Translator struct {
	provider  MetadataProvider
	converter *TypeConverter
}

// NewTranslator creates a translator. Nil arguments fall back to the permissive
// provider and a converter with the built-in conversions.
func NewTranslator(provider MetadataProvider, converter *TypeConverter) *Translator {
	if provider == nil {
		provider = PermissiveMetadataProvider{}
	}
	if converter == nil {
		converter = NewTypeConverter(nil)
	}
	return &Translator{provider: provider, converter: converter}
}

// Translate returns a translated copy of raw. The raw query is left untouched.
func (t *Translator) Translate(raw *Query) (*Query, error) {
	return t.TranslateWithPositions(raw, nil)
}

// TranslateWithPositions translates raw and positions errors using the field
// positions recorded while parsing.
func (t *Translator) TranslateWithPositions(raw *Query, positions Positions) (*Query, error) {
	if raw == nil {
		return nil, nil
	}
	out := &Query{Operand: raw.Operand}

	for _, e := range raw.Expressions {
		switch n := e.(type) {
		case *Condition:
			c, err := t.translateCondition(n, positionOf(positions, n))
			if err != nil {
				return nil, err
			}
			out.Expressions = append(out.Expressions, c)
		case *Query:
			sub, err := t.TranslateWithPositions(n, positions)
			if err != nil {
				return nil, err
			}
			out.Expressions = append(out.Expressions, sub)
		}
	}

	if raw.Sort != nil {
		out.Sort = make(Sort, 0, len(raw.Sort))
		for _, o := range raw.Sort {
			if !t.provider.IsValidProperty(o.Property) {
				return nil, errIllegalField(o.Property, NoPosition)
			}
			out.Sort = append(out.Sort, o)
		}
	}
	return out, nil
}

func (t *Translator) translateCondition(c *Condition, pos int) (Expression, error) {
	if c.Translated {
		return c, nil
	}
	ti, ok := t.provider.PropertyType(c.Property)
	if !ok || !t.provider.IsValidProperty(c.Property) {
		return nil, errIllegalField(c.Property, pos)
	}

	op := c.Operator
	if (op == IS_EMPTY || op == IS_NOT_EMPTY) && !ti.IsCollection() && !ti.IsArray() {
		if op == IS_EMPTY {
			op = IS_NULL
		} else {
			op = IS_NOT_NULL
		}
	}

	args, err := t.converter.ConvertAll(ti.Type, true, c.Arguments...)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			if pe.ErrorPosition == NoPosition {
				pe.ErrorPosition = pos
			}
			return nil, pe.withContext(c.String(), pos)
		}
		return nil, errIllegalValue(joinArgs(c.Arguments), c.Property, c.Operator, pos).
			withContext(c.String(), pos).wrap(err)
	}

	if op == CONTAINS || op == NOT_CONTAINS {
		switch {
		case ti.IsString():
			op, args = containsAsLike(op, args)
		case ti.IsCollection() || ti.IsArray():
			return expandContains(c.Property, op, args), nil
		}
	}
	return NewTranslatedCondition(c.Property, op, args...), nil
}

// expandContains splits a collection CONTAINS on several values into one
// condition per value, joined by OR (AND for NOT_CONTAINS). A null value
// stands for the empty collection.
func expandContains(property string, op Operator, args []any) Expression {
	if len(args) == 0 {
		return NewTranslatedCondition(property, op)
	}
	operand, empty := OR, IS_EMPTY
	if op == NOT_CONTAINS {
		operand, empty = AND, IS_NOT_EMPTY
	}

	terms := make([]Expression, 0, len(args)+1)
	null := false
	for _, a := range args {
		if a == nil {
			null = true
			continue
		}
		terms = append(terms, NewTranslatedCondition(property, op, a))
	}
	if null {
		terms = append(terms, NewTranslatedCondition(property, empty))
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return &Query{Operand: operand, Expressions: terms}
}

// containsAsLike rewrites a string CONTAINS into a LIKE on %value%.
func containsAsLike(op Operator, args []any) (Operator, []any) {
	like := LIKE
	if op == NOT_CONTAINS {
		like = NOT_LIKE
	}
	out := make([]any, len(args))
	for i, a := range args {
		if v := reflect.ValueOf(a); v.Kind() == reflect.String {
			out[i] = "%" + EscapeLike(v.String()) + "%"
			continue
		}
		out[i] = a
	}
	return like, out
}

func joinArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = objectAsString(a)
	}
	return strings.Join(parts, ", ")
}
