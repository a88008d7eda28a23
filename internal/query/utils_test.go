package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, eql string) *Query {
	t.Helper()
	q, err := ParseRaw(eql)
	require.NoError(t, err)
	return q
}

func TestAndOr(t *testing.T) {
	base := mustParse(t, "id = 1")
	john := NewCondition("name", LIKE_IC, "john")

	assert.Equal(t, "id = 1 and name ilike 'john'", And(base, john).String())
	assert.Equal(t, "id = 1 or name ilike 'john'", Or(base, john).String())

	group := mustParse(t, "name ilike 'john' or number <= 3")
	assert.Equal(t, "id = 1 and (name ilike 'john' or number <= 3)", And(base, group).String())
	assert.Equal(t, "id = 1 or (name ilike 'john' or number <= 3)", Or(base, group).String())

	assert.Equal(t, "id = 1", And(base, nil).String())
	assert.Equal(t, "id = 1", Or(base, nil).String())
}

func TestSingleChildFlattening(t *testing.T) {
	q := And(NewCondition("id", EQ, value("1")))
	q.Add(And(All()))
	q.Add(Or(NewCondition("name", EQ, value("x"))))

	require.Len(t, q.Expressions, 2)
	assert.IsType(t, &Condition{}, q.Expressions[1])
}

func TestAndOrEQL(t *testing.T) {
	base := mustParse(t, "id = 1")

	q, err := AndEQL(base, "name ilike 'john' or number <= 3")
	require.NoError(t, err)
	assert.Equal(t, "id = 1 and (name ilike 'john' or number <= 3)", q.String())

	q, err = OrEQL(base, "name ilike 'john' or number <= 3")
	require.NoError(t, err)
	assert.Equal(t, "id = 1 or (name ilike 'john' or number <= 3)", q.String())

	_, err = OrEQL(base, "name ilike 'john' or number <= ")
	assert.ErrorIs(t, err, ErrMissingValue)
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"id = 1 and name like 'test'", "id = 1 and name like 'test'"},
		{"id = 1 and (name like 'test')", "id = 1 and name like 'test'"},
		{"(id = 1 and name like 'test')", "id = 1 and name like 'test'"},
		{"(id = 1 or name like 'test')", "id = 1 or name like 'test'"},
		{"(id = 1 and (name like 'test'))", "id = 1 and name like 'test'"},
		{
			"((id = 1 and ((name like 'test')))) order by x asc, y desc",
			"id = 1 and name like 'test' order by x ASC, y DESC",
		},
		{
			"(id = 1 and (name like 'test' and (city contains X)))",
			"id = 1 and name like 'test' and city contains X",
		},
		{
			"(id = 1 and (name like 'test' or (city contains X)))",
			"id = 1 and (name like 'test' or city contains X)",
		},
		{
			"(id = 1 or (name like 'test' and (city contains X or (y = z))))",
			"id = 1 or (name like 'test' and (city contains X or y = z))",
		},
		{
			"(id = 1 or name like 'test') and (city contains X or y = z)",
			"(id = 1 or name like 'test') and (city contains X or y = z)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Simplify(mustParse(t, tt.input)).String())
		})
	}
}

func TestSimplifyAssociativity(t *testing.T) {
	a := NewCondition("a", EQ, value("1"))
	b := NewCondition("b", EQ, value("2"))
	c := NewCondition("c", EQ, value("3"))

	simplified := Simplify(And(And(a, b), c))

	assert.Equal(t, AND, simplified.Operand)
	assert.Equal(t, []Expression{a, b, c}, simplified.Expressions)
}

func TestSimplifyHoistsNestedSort(t *testing.T) {
	nested := &Query{
		Operand:     OR,
		Expressions: []Expression{NewCondition("a", EQ, value("1")), NewCondition("b", EQ, value("2"))},
		Sort:        By("a", DESC),
	}
	q := &Query{Operand: AND, Expressions: []Expression{NewCondition("c", EQ, value("3")), nested}}

	simplified := Simplify(q)
	assert.Equal(t, "c = 3 and (a = 1 or b = 2) order by a DESC", simplified.String())
	assert.Nil(t, simplified.Expressions[1].(*Query).Sort)
}

func TestFindConditionsForProperty(t *testing.T) {
	q := Or(
		And(
			NewCondition("name", EQ, "john"),
			NewCondition("name", EQ, "jane"),
			NewCondition("age", EQ, "19"),
		),
		NewCondition("name", LIKE, "jean-pierre"),
	)

	found := FindConditionsForProperty(q, "name")
	require.Len(t, found, 3)
	assert.Equal(t, "john", found[0].Arguments[0])
	assert.Equal(t, "jane", found[1].Arguments[0])
	assert.Equal(t, "jean-pierre", found[2].Arguments[0])

	assert.Empty(t, FindConditionsForProperty(q, "milk"))
	assert.Nil(t, FindConditionsForProperty(nil, "name"))
}

func TestTranslateConditions(t *testing.T) {
	q := mustParse(t, "id = 1 and x = y and (x = z or name contains 'test' or 1 = 2) order by name ASC")

	negated := TranslateConditions(q, func(c *Condition) *Condition {
		return NewCondition(c.Property, NEQ, c.Arguments...)
	})
	assert.Equal(t, "id != 1 and x != y and (x != z or name != 'test' or 1 != 2) order by name ASC", negated.String())

	dropped := TranslateConditions(q, func(*Condition) *Condition { return nil }, "x")
	assert.Equal(t, "id = 1 and (name contains 'test' or 1 = 2) order by name ASC", dropped.String())

	renamed := TranslateConditions(q, func(c *Condition) *Condition {
		if c.Property == "x" {
			return nil
		}
		return NewCondition("one", c.Operator, c.Arguments...)
	}, "x", "1")
	assert.Equal(t, "id = 1 and (name contains 'test' or one = 2) order by name ASC", renamed.String())

	assert.Equal(t, "id = 1 and x = y and (x = z or name contains 'test' or 1 = 2) order by name ASC", q.String(),
		"source query must not be modified")
}
