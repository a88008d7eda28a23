package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	IllegalToken ErrorKind = iota
	IllegalKeyword
	IllegalField
	IllegalOperator
	IllegalIsValue
	IllegalValue
	IllegalOrderDirection
	IllegalFunction
	MissingOperator
	MissingValue
	MissingField
	MissingKeyword
	MissingToken
	MissingOrderDirection
)

var errorKindNames = [...]string{
	IllegalToken:          "IllegalToken",
	IllegalKeyword:        "IllegalKeyword",
	IllegalField:          "IllegalField",
	IllegalOperator:       "IllegalOperator",
	IllegalIsValue:        "IllegalIsValue",
	IllegalValue:          "IllegalValue",
	IllegalOrderDirection: "IllegalOrderDirection",
	IllegalFunction:       "IllegalFunction",
	MissingOperator:       "MissingOperator",
	MissingValue:          "MissingValue",
	MissingField:          "MissingField",
	MissingKeyword:        "MissingKeyword",
	MissingToken:          "MissingToken",
	MissingOrderDirection: "MissingOrderDirection",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}

// IsUnbalanced reports whether the kind describes an incomplete expression.
func (k ErrorKind) IsUnbalanced() bool {
	return k >= MissingOperator && k <= MissingOrderDirection
}

var (
	ErrIllegalToken          = errors.New("illegal token")
	ErrIllegalKeyword        = errors.New("illegal keyword")
	ErrIllegalField          = errors.New("illegal field")
	ErrIllegalOperator       = errors.New("illegal operator")
	ErrIllegalIsValue        = errors.New("illegal is value")
	ErrIllegalValue          = errors.New("illegal value")
	ErrIllegalOrderDirection = errors.New("illegal order direction")
	ErrIllegalFunction       = errors.New("illegal function")
	ErrMissingOperator       = errors.New("missing operator")
	ErrMissingValue          = errors.New("missing value")
	ErrMissingField          = errors.New("missing field")
	ErrMissingKeyword        = errors.New("missing keyword")
	ErrMissingToken          = errors.New("missing token")
	ErrMissingOrderDirection = errors.New("missing order direction")

	// ErrUnbalancedExpression matches every Missing* kind.
	ErrUnbalancedExpression = errors.New("unbalanced expression")
)

var kindSentinels = [...]error{
	IllegalToken:          ErrIllegalToken,
	IllegalKeyword:        ErrIllegalKeyword,
	IllegalField:          ErrIllegalField,
	IllegalOperator:       ErrIllegalOperator,
	IllegalIsValue:        ErrIllegalIsValue,
	IllegalValue:          ErrIllegalValue,
	IllegalOrderDirection: ErrIllegalOrderDirection,
	IllegalFunction:       ErrIllegalFunction,
	MissingOperator:       ErrMissingOperator,
	MissingValue:          ErrMissingValue,
	MissingField:          ErrMissingField,
	MissingKeyword:        ErrMissingKeyword,
	MissingToken:          ErrMissingToken,
	MissingOrderDirection: ErrMissingOrderDirection,
}

// NoPosition marks errors raised outside of parsing, where no token position is known.
const NoPosition = -1

// ParseError describes why an EQL statement could not be parsed, validated or translated.
type ParseError struct {
	Kind ErrorKind

	// ErrorExpression is the offending token or expression.
	ErrorExpression string
	// ErrorPosition is the byte offset the error refers to, or NoPosition.
	ErrorPosition int

	// ContextExpression holds the tokens of the enclosing condition, if known.
	ContextExpression string
	ContextStart      int

	message    string
	hasContext bool
	cause      error
}

func newParseError(kind ErrorKind, expr string, pos int, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:            kind,
		ErrorExpression: expr,
		ErrorPosition:   pos,
		message:         fmt.Sprintf(format, args...),
	}
}

// Message returns the error message without position and context.
func (e *ParseError) Message() string {
	return e.message
}

// HasContext reports whether a context expression was attached.
func (e *ParseError) HasContext() bool {
	return e.hasContext
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.message)
	if e.ErrorPosition != NoPosition {
		fmt.Fprintf(&b, " (position %d)", e.ErrorPosition)
	}
	if e.hasContext {
		fmt.Fprintf(&b, " in %q at position %d", e.ContextExpression, e.ContextStart)
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

// Unwrap returns the sentinel of the error kind and the underlying cause, if any.
func (e *ParseError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind >= 0 && int(e.Kind) < len(kindSentinels) {
		errs = append(errs, kindSentinels[e.Kind])
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// Is lets ErrUnbalancedExpression match every incomplete-expression kind.
func (e *ParseError) Is(target error) bool {
	return target == ErrUnbalancedExpression && e.Kind.IsUnbalanced()
}

// withContext attaches the context unless a more specific one is already set.
func (e *ParseError) withContext(expr string, start int) *ParseError {
	if !e.hasContext {
		e.ContextExpression = expr
		e.ContextStart = start
		e.hasContext = true
	}
	return e
}

func (e *ParseError) wrap(cause error) *ParseError {
	e.cause = cause
	return e
}

func errIllegalToken(tok Token) *ParseError {
	return newParseError(IllegalToken, tok.Text, tok.Position, "illegal token: %s", tok.Text)
}

func errIllegalKeyword(tok Token) *ParseError {
	return newParseError(IllegalKeyword, tok.Text, tok.Position,
		"illegal keyword %s: cannot combine and/or on the same level without explicit grouping", tok.Text)
}

func errIllegalField(field string, pos int) *ParseError {
	return newParseError(IllegalField, field, pos, "illegal field: %s", field)
}

func errIllegalOperator(op string, pos int) *ParseError {
	return newParseError(IllegalOperator, op, pos, "illegal operator: %s", op)
}

func errIllegalIsValue(field string, pos int) *ParseError {
	return newParseError(IllegalIsValue, field, pos,
		"illegal value for %s: is and is not can only be combined with null or empty", field)
}

func errIllegalValue(value, property string, op Operator, pos int) *ParseError {
	return newParseError(IllegalValue, value, pos, "illegal value for %s %s: %s", property, op.Token(), value)
}

func errIllegalOrderDirection(field string, dir Token) *ParseError {
	return newParseError(IllegalOrderDirection, dir.Text, dir.Position,
		"illegal order direction for %s: %s (only asc and desc are allowed)", field, dir.Text)
}

func errIllegalFunction(name string) *ParseError {
	return newParseError(IllegalFunction, name, NoPosition, "illegal function: %s", name)
}

func errMissingOperator(field Token) *ParseError {
	return newParseError(MissingOperator, field.Text, field.NextPosition(), "missing operator for: %s", field.Text)
}

func errMissingValue(expr string, pos int) *ParseError {
	return newParseError(MissingValue, expr, pos, "missing value after: %s", expr)
}

func errMissingField(pos int) *ParseError {
	return newParseError(MissingField, "", pos, "missing expected field")
}

func errMissingKeyword(tok Token) *ParseError {
	return newParseError(MissingKeyword, tok.Text, tok.Position, "missing keyword and/or before: %s", tok.Text)
}

func errMissingToken(expected string, after Token) *ParseError {
	return newParseError(MissingToken, after.Text, after.NextPosition(), "missing token %s after: %s", expected, after.Text)
}

func errMissingOrderDirection(field Token) *ParseError {
	return newParseError(MissingOrderDirection, field.Text, field.NextPosition(), "missing order direction after: %s", field.Text)
}
