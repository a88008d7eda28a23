package eql

import (
	"github.com/nlstn/go-eql/internal/convert"
	"github.com/nlstn/go-eql/internal/executor"
	"github.com/nlstn/go-eql/internal/query"
)

// ParseError describes why an expression could not be parsed, validated or
// translated. It matches the sentinel of its kind with errors.Is.
type ParseError = query.ParseError

// ErrorKind classifies a ParseError.
type ErrorKind = query.ErrorKind

const (
	IllegalToken          = query.IllegalToken
	IllegalKeyword        = query.IllegalKeyword
	IllegalField          = query.IllegalField
	IllegalOperator       = query.IllegalOperator
	IllegalIsValue        = query.IllegalIsValue
	IllegalValue          = query.IllegalValue
	IllegalOrderDirection = query.IllegalOrderDirection
	IllegalFunction       = query.IllegalFunction
	MissingOperator       = query.MissingOperator
	MissingValue          = query.MissingValue
	MissingField          = query.MissingField
	MissingKeyword        = query.MissingKeyword
	MissingToken          = query.MissingToken
	MissingOrderDirection = query.MissingOrderDirection
)

// NoPosition is the position of errors that are not tied to a token.
const NoPosition = query.NoPosition

var (
	ErrIllegalToken          = query.ErrIllegalToken
	ErrIllegalKeyword        = query.ErrIllegalKeyword
	ErrIllegalField          = query.ErrIllegalField
	ErrIllegalOperator       = query.ErrIllegalOperator
	ErrIllegalIsValue        = query.ErrIllegalIsValue
	ErrIllegalValue          = query.ErrIllegalValue
	ErrIllegalOrderDirection = query.ErrIllegalOrderDirection
	ErrIllegalFunction       = query.ErrIllegalFunction
	ErrMissingOperator       = query.ErrMissingOperator
	ErrMissingValue          = query.ErrMissingValue
	ErrMissingField          = query.ErrMissingField
	ErrMissingKeyword        = query.ErrMissingKeyword
	ErrMissingToken          = query.ErrMissingToken
	ErrMissingOrderDirection = query.ErrMissingOrderDirection

	// ErrUnbalancedExpression matches every error of a Missing* kind.
	ErrUnbalancedExpression = query.ErrUnbalancedExpression

	// ErrNoConverter is returned by a ConversionService without a converter for a type pair.
	ErrNoConverter = convert.ErrNoConverter

	ErrNotTranslated   = executor.ErrNotTranslated
	ErrUnsupported     = executor.ErrUnsupported
	ErrUnknownProperty = executor.ErrUnknownProperty
	ErrUnknownDialect  = executor.ErrUnknownDialect
)
