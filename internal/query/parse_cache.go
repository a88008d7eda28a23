package query

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

type cachedParse struct {
	input     string
	query     *Query
	positions Positions
}

// ParseCache is a bounded cache of raw parse results keyed by the hash of the statement.
//
// When the cache is full the entire map is replaced rather than tracking entry ages,
// which suits a small number of distinct statements repeated many times.
// Entries are cloned on the way in and out, so callers may modify returned queries.
type ParseCache struct {
	mu    sync.RWMutex
	items map[uint64]cachedParse
	max   int
}

// NewParseCache creates a cache holding up to max statements.
func NewParseCache(max int) *ParseCache {
	if max <= 0 {
		max = 256
	}
	return &ParseCache{items: make(map[uint64]cachedParse, max), max: max}
}

// Parse returns the raw query of input from the cache, parsing it on a miss.
// Failed parses are not cached.
func (c *ParseCache) Parse(input string) (*Query, Positions, error) {
	key := xxhash.Sum64String(input)

	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if ok && entry.input == input {
		q, positions := entry.query.cloneTracking(entry.positions)
		return q, positions, nil
	}

	q, positions, err := ConvertTokensWithPositions(Tokenize(input))
	if err != nil {
		return nil, nil, err
	}
	stored, storedPositions := q.cloneTracking(positions)

	c.mu.Lock()
	if len(c.items) >= c.max {
		c.items = make(map[uint64]cachedParse, c.max)
	}
	c.items[key] = cachedParse{input: input, query: stored, positions: storedPositions}
	c.mu.Unlock()

	return q, positions, nil
}

// Len returns the number of cached statements.
func (c *ParseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
