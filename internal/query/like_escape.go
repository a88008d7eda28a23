package query

import (
	"strings"
	"unicode/utf8"
)

// LikeEscapeClause is appended to SQL LIKE comparisons using EscapeLike patterns.
const LikeEscapeClause = "ESCAPE '\\'"

// EscapeLike escapes the LIKE wildcards % and _ and the escape character itself.
func EscapeLike(value string) string {
	if !strings.ContainsAny(value, `\%_`) {
		return value
	}
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"%", "\\%",
		"_", "\\_",
	)
	return replacer.Replace(value)
}

// MatchLike reports whether value matches a LIKE pattern where % matches any
// sequence, _ a single character and \ escapes the next character.
func MatchLike(pattern, value string, ignoreCase bool) bool {
	if ignoreCase {
		pattern = strings.ToLower(pattern)
		value = strings.ToLower(value)
	}
	return matchLike(pattern, value)
}

func matchLike(pattern, value string) bool {
	for len(pattern) > 0 {
		p, size := utf8.DecodeRuneInString(pattern)
		switch p {
		case '%':
			rest := pattern[size:]
			for rest != "" && rest[0] == '%' {
				rest = rest[1:]
			}
			if rest == "" {
				return true
			}
			for i := 0; i <= len(value); {
				if matchLike(rest, value[i:]) {
					return true
				}
				if i == len(value) {
					break
				}
				_, n := utf8.DecodeRuneInString(value[i:])
				i += n
			}
			return false
		case '_':
			if value == "" {
				return false
			}
			_, n := utf8.DecodeRuneInString(value)
			pattern, value = pattern[size:], value[n:]
			continue
		case '\\':
			if len(pattern) > size {
				pattern = pattern[size:]
				p, size = utf8.DecodeRuneInString(pattern)
			}
		}
		v, n := utf8.DecodeRuneInString(value)
		if value == "" || v != p {
			return false
		}
		pattern, value = pattern[size:], value[n:]
	}
	return value == ""
}
