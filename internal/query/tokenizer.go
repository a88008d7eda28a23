package query

import "strings"

// Token is a single piece of an EQL statement together with the byte offset
// of its first character in the original input.
type Token struct {
	Text     string
	Position int
}

// NextPosition returns the offset right after the token.
func (t Token) NextPosition() int {
	return t.Position + len(t.Text)
}

const (
	groupOpen  = "("
	groupClose = ")"
	separator  = ","
)

// stringLiteralChars are the characters that open and close a string literal.
var stringLiteralChars = [...]byte{'\'', '"'}

func isStringLiteralChar(ch byte) bool {
	for _, c := range stringLiteralChars {
		if c == ch {
			return true
		}
	}
	return false
}

func isComparisonChar(ch byte) bool {
	switch ch {
	case '!', '=', '>', '<':
		return true
	}
	return false
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isGroupingChar(ch byte) bool {
	return ch == '(' || ch == ')' || ch == ','
}

// Tokenizer splits EQL statements into tokens in a single left-to-right scan.
type Tokenizer struct {
	input  string
	tokens []Token

	pending      strings.Builder
	pendingStart int

	// literal state
	quote   byte
	escaped bool

	lastWasComparison bool
}

// NewTokenizer creates a tokenizer for the given input.
func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{input: input}
}

// Tokenize is a shorthand for NewTokenizer(input).TokenizeAll().
func Tokenize(input string) []Token {
	return NewTokenizer(input).TokenizeAll()
}

// TokenizeAll returns all tokens of the input. Literals keep their quote
// delimiters and backslash escapes; they are resolved when converting tokens.
func (t *Tokenizer) TokenizeAll() []Token {
	t.tokens = make([]Token, 0, len(t.input)/3+1)

	for i := 0; i < len(t.input); i++ {
		ch := t.input[i]

		if t.quote != 0 {
			t.consumeLiteral(i, ch)
			continue
		}

		switch {
		case isStringLiteralChar(ch):
			t.flush()
			t.quote = ch
			t.append(i, ch)
		case isWhitespace(ch):
			t.flush()
		case isGroupingChar(ch):
			t.flush()
			t.tokens = append(t.tokens, Token{Text: string(ch), Position: i})
		case isComparisonChar(ch):
			if !t.lastWasComparison {
				t.flush()
			}
			t.append(i, ch)
			t.lastWasComparison = true
		default:
			if t.lastWasComparison {
				t.flush()
			}
			t.append(i, ch)
		}
	}

	t.flush()
	return t.tokens
}

func (t *Tokenizer) consumeLiteral(i int, ch byte) {
	t.append(i, ch)

	switch {
	case t.escaped:
		t.escaped = false
	case ch == '\\':
		t.escaped = true
	case ch == t.quote:
		t.flush()
	}
}

func (t *Tokenizer) append(i int, ch byte) {
	if t.pending.Len() == 0 {
		t.pendingStart = i
	}
	t.pending.WriteByte(ch)
}

// flush emits the pending token (if any) and resets the scanning state.
func (t *Tokenizer) flush() {
	if t.pending.Len() > 0 {
		t.tokens = append(t.tokens, Token{Text: t.pending.String(), Position: t.pendingStart})
		t.pending.Reset()
	}
	t.quote = 0
	t.escaped = false
	t.lastWasComparison = false
}
