package query

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCache(t *testing.T) {
	cache := NewParseCache(2)

	first, positions, err := cache.Parse("a = 1 and b = 2")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	second, secondPositions, err := cache.Parse("a = 1 and b = 2")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
	assert.NotSame(t, first.Expressions[0], second.Expressions[0])

	for i, c := range second.Conditions() {
		assert.Equal(t, positions[first.Conditions()[i]], secondPositions[c])
	}
	assert.Equal(t, 10, secondPositions[second.Conditions()[1]])

	second.Expressions[0].(*Condition).Property = "changed"
	third, _, err := cache.Parse("a = 1 and b = 2")
	require.NoError(t, err)
	assert.Equal(t, "a", third.Expressions[0].(*Condition).Property)
}

func TestParseCacheErrorsAreNotCached(t *testing.T) {
	cache := NewParseCache(2)

	_, _, err := cache.Parse("a = ")
	assert.ErrorIs(t, err, ErrMissingValue)
	assert.Equal(t, 0, cache.Len())
}

func TestParseCacheEviction(t *testing.T) {
	cache := NewParseCache(2)
	for _, eql := range []string{"a = 1", "b = 2", "c = 3"} {
		_, _, err := cache.Parse(eql)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, cache.Len())
}

func TestParseCacheConcurrentUse(t *testing.T) {
	cache := NewParseCache(8)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, _, err := cache.Parse("a = 1 or b in (1, 2)")
			assert.NoError(t, err)
			assert.Equal(t, OR, q.Operand)
		}()
	}
	wg.Wait()
}
