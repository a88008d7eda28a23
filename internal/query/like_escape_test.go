package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `\%\_\\`, EscapeLike(`%_\`))
	assert.Equal(t, "plain", EscapeLike("plain"))
}

func TestMatchLike(t *testing.T) {
	tests := []struct {
		pattern    string
		value      string
		ignoreCase bool
		want       bool
	}{
		{"john", "john", false, true},
		{"john", "John", false, false},
		{"john", "John", true, true},
		{"j%", "jane", false, true},
		{"%ne", "jane", false, true},
		{"%a%", "jane", false, true},
		{"%x%", "jane", false, false},
		{"j_ne", "jane", false, true},
		{"j_ne", "jne", false, false},
		{"%", "", false, true},
		{"_", "", false, false},
		{`50\%`, "50%", false, true},
		{`50\%`, "500", false, false},
		{`a\_b`, "a_b", false, true},
		{`a\_b`, "axb", false, false},
		{"%" + EscapeLike("50%_off") + "%", "get 50%_off now", false, true},
		{"é%", "école", false, true},
		{"_cole", "école", false, true},
		{"%%b", "ab", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchLike(tt.pattern, tt.value, tt.ignoreCase))
		})
	}
}
