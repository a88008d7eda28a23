package query

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-eql/internal/metadata"
)

type testStatus string

func testSchema() *metadata.Schema {
	s := metadata.NewSchema("Person")
	metadata.Declare[int64](s, "id")
	metadata.Declare[string](s, "name")
	metadata.Declare[int](s, "age")
	metadata.Declare[decimal.Decimal](s, "salary")
	metadata.Declare[time.Time](s, "created")
	metadata.Declare[int64](s, "createdMillis")
	metadata.Declare[[]string](s, "tags")
	metadata.Declare[[3]int](s, "scores")
	metadata.Declare[*string](s, "nickname")
	metadata.Declare[testStatus](s, "status")
	metadata.Declare[bool](s, "active")
	return s
}

func TestSchemaMetadataProviderOperators(t *testing.T) {
	p := NewSchemaMetadataProvider(testSchema())

	tests := []struct {
		property string
		valid    []Operator
		invalid  []Operator
	}{
		{"name", []Operator{EQ, NEQ, IN, NOT_IN, LIKE, NOT_LIKE, LIKE_IC, NOT_LIKE_IC, IS_NULL, IS_EMPTY}, []Operator{GT, CONTAINS}},
		{"age", []Operator{EQ, NEQ, IN, NOT_IN, GT, GE, LT, LE, IS_NOT_NULL}, []Operator{LIKE, CONTAINS}},
		{"salary", []Operator{GT, LE}, []Operator{LIKE}},
		{"created", []Operator{GE, LT, IS_NULL}, []Operator{LIKE_IC}},
		{"tags", []Operator{CONTAINS, NOT_CONTAINS, IS_EMPTY, IS_NOT_EMPTY}, []Operator{EQ, IN, LIKE}},
		{"scores", []Operator{CONTAINS}, []Operator{GT}},
		{"nickname", []Operator{LIKE}, []Operator{GT}},
		{"status", []Operator{LIKE, EQ}, []Operator{LT}},
		{"active", []Operator{EQ, NEQ, IN, IS_NULL}, []Operator{GT, LIKE, CONTAINS}},
	}

	for _, tt := range tests {
		t.Run(tt.property, func(t *testing.T) {
			for _, op := range tt.valid {
				assert.True(t, p.IsValidOperatorForProperty(op, tt.property), op.String())
			}
			for _, op := range tt.invalid {
				assert.False(t, p.IsValidOperatorForProperty(op, tt.property), op.String())
			}
		})
	}

	assert.False(t, p.IsValidOperatorForProperty(EQ, "unknown"))
}

func TestSchemaMetadataProviderValues(t *testing.T) {
	p := NewSchemaMetadataProvider(testSchema())
	group := NewEQGroup(value("1"))

	assert.True(t, p.IsValidValueForPropertyAndOperator(group, "id", IN))
	assert.True(t, p.IsValidValueForPropertyAndOperator(NewEQFunction("ids"), "id", NOT_IN))
	assert.False(t, p.IsValidValueForPropertyAndOperator(value("1"), "id", IN))
	assert.False(t, p.IsValidValueForPropertyAndOperator(group, "id", EQ))
	assert.True(t, p.IsValidValueForPropertyAndOperator(value("1"), "id", EQ))
	assert.False(t, p.IsValidValueForPropertyAndOperator(value("1"), "unknown", EQ))
}

func TestPermissiveMetadataProvider(t *testing.T) {
	var p PermissiveMetadataProvider
	assert.True(t, p.IsValidProperty("anything"))
	assert.True(t, p.IsValidOperatorForProperty(CONTAINS, "anything"))
	assert.True(t, p.IsValidValueForPropertyAndOperator(NewEQGroup(), "anything", EQ))
	ti, ok := p.PropertyType("anything")
	assert.True(t, ok)
	assert.Nil(t, ti.Type)
}

func TestValidate(t *testing.T) {
	p := NewSchemaMetadataProvider(testSchema())

	tests := []struct {
		name     string
		eql      string
		kind     ErrorKind
		position int
	}{
		{"unknown property", "name = 'x' and (age > 1 or foo = 2)", IllegalField, 27},
		{"operator outside family", "name = 'x' and age like '1%'", IllegalOperator, 15},
		{"group for single value operator", "id = (1, 2)", IllegalValue, 0},
		{"single value for in", "id in 1", IllegalValue, 0},
		{"unknown sort property", "id = 1 order by foo asc", IllegalField, NoPosition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, positions, err := ConvertTokensWithPositions(Tokenize(tt.eql))
			require.NoError(t, err)

			err = Validate(q, p, positions)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.position, pe.ErrorPosition)
		})
	}

	t.Run("valid query", func(t *testing.T) {
		q := mustParse(t, "name like 'j%' and (age >= 18 or tags contains 'x') and id in (1, 2) order by name asc")
		assert.NoError(t, Validate(q, p, nil))
	})

	t.Run("nil provider is permissive", func(t *testing.T) {
		assert.NoError(t, Validate(mustParse(t, "foo contains (1, 2)"), nil, nil))
	})
}
