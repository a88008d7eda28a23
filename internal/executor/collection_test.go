package executor

import (
	"bytes"
	"context"
	"log/slog"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-eql/internal/observability"
	"github.com/nlstn/go-eql/internal/query"
)

func TestCollectionExecutorFilters(t *testing.T) {
	exec := NewCollectionExecutor(testPeople())
	ctx := context.Background()

	for _, tt := range filterCases {
		t.Run(tt.eql, func(t *testing.T) {
			got, err := exec.FindAllSorted(ctx, translate(t, tt.eql), query.By("id", query.ASC))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestCollectionExecutorCollections(t *testing.T) {
	exec := NewCollectionExecutor(testPeople())

	tests := []struct {
		eql  string
		want []int64
	}{
		{"tags contains 'go'", []int64{1, 4}},
		{"tags not contains 'go'", []int64{2, 3, 5}},
		{"tags is empty", []int64{3}},
		{"tags is not empty", []int64{1, 2, 4, 5}},
		{"tags contains 'go' and age > 25", []int64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.eql, func(t *testing.T) {
			got, err := exec.FindAll(context.Background(), translate(t, tt.eql))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestCollectionExecutorEmptyQuery(t *testing.T) {
	exec := NewCollectionExecutor(testPeople())

	got, err := exec.FindAll(context.Background(), query.All())
	require.NoError(t, err)
	assert.Len(t, got, 5)

	got, err = exec.FindAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestCollectionExecutorSort(t *testing.T) {
	exec := NewCollectionExecutor(testPeople())
	ctx := context.Background()

	got, err := exec.FindAll(ctx, translate(t, "age > 0 order by age desc, name asc"))
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 3, 1, 2, 4}, ids(got))

	got, err = exec.FindAllSorted(ctx, translate(t, "age > 0 order by name desc"), query.By("age", query.ASC))
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 2, 1, 3, 5}, ids(got), "caller sort first, query sort breaks ties")

	got, err = exec.FindAllSorted(ctx, query.All(), query.By("nickname", query.ASC).Then("id", query.ASC))
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4, 5, 1, 3}, ids(got), "nulls sort first")

	got, err = exec.FindAllSorted(ctx, query.All(), query.By("nickname", query.DESC).Then("id", query.ASC))
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2, 4, 5}, ids(got))

	_, err = exec.FindAllSorted(ctx, query.All(), query.By("missing", query.ASC))
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestCollectionExecutorPage(t *testing.T) {
	exec := NewCollectionExecutor(testPeople())
	ctx := context.Background()
	q := translate(t, "age >= 25")

	page, err := exec.FindPage(ctx, q, PageRequest{Offset: 1, Limit: 2, Sort: query.By("id", query.ASC)})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(page.Items))
	assert.Equal(t, int64(5), page.Total)
	assert.True(t, page.HasNext())

	page, err = exec.FindPage(ctx, q, PageRequest{Offset: 4, Limit: 2, Sort: query.By("id", query.ASC)})
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, ids(page.Items))
	assert.False(t, page.HasNext())

	page, err = exec.FindPage(ctx, q, PageRequest{Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(5), page.Total)
}

func TestCollectionExecutorMaps(t *testing.T) {
	items := []map[string]any{
		{"name": "a", "age": 3},
		{"name": "b", "age": 7},
		{"name": "c"},
	}
	exec := NewCollectionExecutor(items)

	raw, err := query.ParseRaw("age > 2 and name in (a, c) order by name desc")
	require.NoError(t, err)
	q, err := query.NewTranslator(nil, nil).Translate(raw)
	require.NoError(t, err)

	got, err := exec.FindAll(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0]["name"])
	assert.True(t, exec.CanExecute(q))
}

func TestCollectionExecutorPointers(t *testing.T) {
	people := testPeople()
	items := []*person{&people[0], nil, &people[2]}
	exec := NewCollectionExecutor(items)

	got, err := exec.FindAll(context.Background(), translate(t, "nickname like 'c%'"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)
}

func TestCollectionExecutorFieldTags(t *testing.T) {
	type tagged struct {
		Value  int `eql:"score"`
		Hidden int `eql:"-"`
	}
	exec := NewCollectionExecutor([]tagged{{Value: 1}, {Value: 5}})

	q := query.And(query.NewTranslatedCondition("score", query.GT, 2))
	got, err := exec.FindAll(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []tagged{{Value: 5}}, got)

	assert.False(t, exec.CanExecute(query.And(query.NewTranslatedCondition("hidden", query.EQ, 0))))
}

func TestCollectionExecutorErrors(t *testing.T) {
	exec := NewCollectionExecutor(testPeople())
	ctx := context.Background()

	raw, err := query.ParseRaw("age = 1")
	require.NoError(t, err)
	_, err = exec.FindAll(ctx, raw)
	assert.ErrorIs(t, err, ErrNotTranslated)
	assert.False(t, exec.CanExecute(raw))

	unknown := query.And(query.NewTranslatedCondition("missing", query.EQ, 1))
	_, err = exec.FindAll(ctx, unknown)
	assert.ErrorIs(t, err, ErrUnknownProperty)
	assert.False(t, exec.CanExecute(unknown))

	_, err = exec.FindAll(ctx, query.And(query.NewTranslatedCondition("tags", query.GT, 1)))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = exec.FindAll(ctx, query.And(query.NewTranslatedCondition("age", query.EQ, "abc")))
	assert.Error(t, err)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = exec.FindAll(canceled, query.All())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectionExecutorLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	exec := NewCollectionExecutor(testPeople(), WithLogger(logger), WithObservability(observability.NewConfig()))

	_, err := exec.FindAll(context.Background(), translate(t, "age = 25"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "query executed")
	assert.Contains(t, buf.String(), "result_count=2")
}

func TestCompareValues(t *testing.T) {
	people := testPeople()
	tests := []struct {
		name string
		a, b any
		want int
		ok   bool
	}{
		{"ints", 1, int64(2), -1, true},
		{"uints", uint8(3), uint(3), 0, true},
		{"mixed numbers", 2.5, 2, 1, true},
		{"strings", "b", "a", 1, true},
		{"bools", false, true, -1, true},
		{"times", people[1].Created, people[0].Created, 1, true},
		{"decimal and int", decimal.RequireFromString("2.50"), 2, 1, true},
		{"decimals", decimal.RequireFromString("2.50"), decimal.RequireFromString("2.5"), 0, true},
		{"incomparable", "a", 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := compareValues(reflect.ValueOf(tt.a), reflect.ValueOf(tt.b))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
