package eql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type account struct {
	ID      int64
	Name    string
	Balance int
	Opened  time.Time
	Roles   []string `gorm:"-"`
}

func accountSchema() *Schema {
	s := NewSchema("Account")
	Declare[int64](s, "id")
	Declare[string](s, "name")
	Declare[int](s, "balance")
	Declare[time.Time](s, "opened")
	Declare[[]string](s, "roles")
	return s
}

type ownerFunction struct{ owner string }

func (f ownerFunction) Accepts(name string, expected reflect.Type) bool {
	return name == "currentUser"
}

func (f ownerFunction) Apply(name string, args []EQType, expected reflect.Type, c *TypeConverter) (any, error) {
	return f.owner, nil
}

func TestParseWithoutSchema(t *testing.T) {
	q, err := Parse("name = 'bob' and age > 3 order by name desc")
	require.NoError(t, err)

	assert.True(t, q.IsTranslated())
	assert.Equal(t, AND, q.Operand)
	assert.Equal(t, []*Condition{
		NewTranslatedCondition("name", EQ, "bob"),
		NewTranslatedCondition("age", GT, "3"),
	}, q.Conditions())
	assert.Equal(t, By("name", DESC), q.Sort)
}

func TestParseWithSchema(t *testing.T) {
	p := NewParser(WithSchema(accountSchema()))

	q, err := p.Parse("name like 'a%' and (balance >= 10 or roles contains admin)")
	require.NoError(t, err)

	conds := q.Conditions()
	require.Len(t, conds, 3)
	assert.Equal(t, NewTranslatedCondition("name", LIKE, "a%"), conds[0])
	assert.Equal(t, NewTranslatedCondition("balance", GE, 10), conds[1])
	assert.Equal(t, NewTranslatedCondition("roles", CONTAINS, "admin"), conds[2])

	_, err = p.Parse("name contains a")
	assert.ErrorIs(t, err, ErrIllegalOperator)
}

func TestParseUUIDProperty(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	other := uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")
	schema := Declare[uuid.UUID](NewSchema("user"), "id")

	q, err := ParseWithSchema(schema, "id = '"+id.String()+"'")
	require.NoError(t, err)
	assert.Equal(t, []*Condition{NewTranslatedCondition("id", EQ, id)}, q.Conditions())

	q, err = ParseWithSchema(schema, "id not in ('"+id.String()+"', '"+other.String()+"')")
	require.NoError(t, err)
	assert.Equal(t, []*Condition{NewTranslatedCondition("id", NOT_IN, id, other)}, q.Conditions())

	q, err = ParseWithSchema(schema, "id is empty")
	require.NoError(t, err)
	assert.Equal(t, []*Condition{NewTranslatedCondition("id", IS_NULL)}, q.Conditions())

	_, err = ParseWithSchema(schema, "id contains 'x'")
	assert.ErrorIs(t, err, ErrIllegalOperator)
}

func TestParseErrors(t *testing.T) {
	p := NewParser(WithSchema(accountSchema()))

	tests := []struct {
		name     string
		input    string
		kind     ErrorKind
		sentinel error
	}{
		{"unknown property", "owner = x", IllegalField, ErrIllegalField},
		{"bad value", "balance = lots", IllegalValue, ErrIllegalValue},
		{"missing value", "name =", MissingValue, ErrUnbalancedExpression},
		{"missing operator", "name", MissingOperator, ErrMissingOperator},
		{"unknown function", "opened < yesterday()", IllegalFunction, ErrIllegalFunction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.input)
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.kind, pe.Kind)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	p := NewParser(WithSchema(accountSchema()))

	_, err := p.Parse("balance = 1 and owner = 2")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, IllegalField, pe.Kind)
	assert.Equal(t, 16, pe.ErrorPosition)

	_, err = p.Parse("name = x order by owner asc")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, IllegalField, pe.Kind)
	assert.Equal(t, NoPosition, pe.ErrorPosition)
}

func TestFunctionHandlers(t *testing.T) {
	p := NewParser(WithSchema(accountSchema()), WithFunctionHandlers(ownerFunction{owner: "carol"}))

	q, err := p.Parse("name = currentUser() and opened <= now()")
	require.NoError(t, err)
	assert.Equal(t, []any{"carol"}, q.Conditions()[0].Arguments)
	assert.IsType(t, time.Time{}, q.Conditions()[1].Arguments[0])
}

func TestConversionService(t *testing.T) {
	type cents int

	s := NewSchema("Order")
	Declare[cents](s, "total")

	conv := NewConversionService()
	RegisterConverter(conv, func(v string) (cents, error) {
		if strings.HasSuffix(v, "$") {
			return cents(100 * len(strings.TrimSuffix(v, "$"))), nil
		}
		return 0, errors.New("not a price")
	})

	p := NewParser(WithSchema(s), WithConversionService(conv))
	q, err := p.Parse("total > 99$")
	require.NoError(t, err)
	assert.Equal(t, []any{cents(200)}, q.Conditions()[0].Arguments)

	_, err = p.Parse("total > 99")
	assert.ErrorIs(t, err, ErrIllegalValue)
}

func TestParseCache(t *testing.T) {
	p := NewParser(WithSchema(accountSchema()), WithParseCache(8))

	first, err := p.Parse("balance > 1")
	require.NoError(t, err)
	second, err := p.Parse("balance > 1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.cache.Len())

	_, err = p.Parse("balance > x")
	assert.ErrorIs(t, err, ErrIllegalValue)
}

func TestParseRaw(t *testing.T) {
	raw, err := ParseRaw("name = x")
	require.NoError(t, err)
	assert.False(t, raw.IsTranslated())
	assert.Equal(t, []any{NewEQValue("x")}, raw.Conditions()[0].Arguments)

	_, err = ParseRaw("(name = x")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestPrepare(t *testing.T) {
	p := NewParser(WithSchema(accountSchema()))

	raw, err := AndEQL(And(NewTranslatedCondition("id", EQ, int64(7))), "balance < 5")
	require.NoError(t, err)

	q, err := p.Prepare(raw)
	require.NoError(t, err)
	assert.True(t, q.IsTranslated())

	ids := FindConditionsForProperty(q, "id")
	require.Len(t, ids, 1)
	assert.Equal(t, []any{int64(7)}, ids[0].Arguments)

	_, err = p.Prepare(And(NewCondition("owner", EQ, NewEQValue("x"))))
	assert.ErrorIs(t, err, ErrIllegalField)

	q, err = p.Prepare(nil)
	assert.NoError(t, err)
	assert.Nil(t, q)
}

func TestParseLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := NewParser(WithSchema(accountSchema()), WithLogger(logger))
	_, err := p.Parse("owner = 1")
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "eql parse failed")
	assert.Contains(t, out, "error_kind=IllegalField")
	assert.Contains(t, out, "position=0")
}

func TestParseWithObservability(t *testing.T) {
	obs := NewObservability(
		WithTracerProvider(noop.NewTracerProvider()),
		WithServiceName("accounts"),
		WithExpressionTracing(),
	)
	p := NewParser(WithObservability(obs))

	q, err := p.ParseContext(context.Background(), "a = 1")
	require.NoError(t, err)
	assert.Len(t, q.Conditions(), 1)

	_, err = p.ParseContext(context.Background(), "a =")
	assert.ErrorIs(t, err, ErrMissingValue)
}

func TestParseAndExecute(t *testing.T) {
	accounts := []account{
		{ID: 1, Name: "alice", Balance: 50, Roles: []string{"admin"}},
		{ID: 2, Name: "bob", Balance: 5},
		{ID: 3, Name: "carol", Balance: 20, Roles: []string{"user"}},
	}
	p := NewParser(WithSchema(accountSchema()))
	ctx := context.Background()

	q, err := p.Parse("balance >= 10 order by name desc")
	require.NoError(t, err)

	exec := NewCollectionExecutor(accounts)
	found, err := exec.FindAll(ctx, q)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "carol", found[0].Name)
	assert.Equal(t, "alice", found[1].Name)

	db, err := OpenDatabase(DialectSQLite, ":memory:", nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&account{}))
	require.NoError(t, db.Create(&accounts).Error)

	var combined Executor[account] = Fallback[account](NewGormExecutor[account](db), exec)

	q, err = p.Parse("name like '%o%'")
	require.NoError(t, err)
	page, err := combined.FindPage(ctx, q, PageRequest{Limit: 1, Sort: By("id", ASC)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.True(t, page.HasNext())
	assert.Equal(t, "bob", page.Items[0].Name)

	q, err = p.Parse("roles contains admin")
	require.NoError(t, err)
	assert.True(t, CanExecute(combined, q))
	found, err = combined.FindAll(ctx, q)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "alice", found[0].Name)

	q, err = p.Parse("roles contains null")
	require.NoError(t, err)
	found, err = exec.FindAll(ctx, q)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "bob", found[0].Name)
}

func TestOpenDatabaseUnknownDialect(t *testing.T) {
	_, err := OpenDatabase(Dialect("oracle"), "", nil)
	assert.ErrorIs(t, err, ErrUnknownDialect)
}
