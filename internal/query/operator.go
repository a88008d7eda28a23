package query

import (
	"fmt"
	"strings"
)

// Operator is either a boolean operand combining expressions (AND, OR)
// or a comparison operator of a condition.
type Operator int

const (
	AND Operator = iota
	OR
	EQ
	NEQ
	CONTAINS
	NOT_CONTAINS
	IN
	NOT_IN
	LIKE
	LIKE_IC
	NOT_LIKE
	NOT_LIKE_IC
	GT
	GE
	LT
	LE
	IS_NULL
	IS_NOT_NULL
	IS_EMPTY
	IS_NOT_EMPTY
)

type operatorWriter func(property string, args []any) string

type operatorDef struct {
	name     string
	tokens   []string
	negation bool
	reverse  Operator
	write    operatorWriter
}

// operators is indexed by Operator; lookup by token walks it in declaration
// order so that "is" resolves to IS_NULL and "is not" to IS_NOT_NULL.
// It is filled in init because the AND/OR writers render nested queries.
var operators [IS_NOT_EMPTY + 1]operatorDef

func init() {
	operators = [...]operatorDef{
		AND:          {name: "AND", tokens: []string{"and"}, reverse: OR, write: joinExpressions(" and ")},
		OR:           {name: "OR", tokens: []string{"or"}, reverse: AND, write: joinExpressions(" or ")},
		EQ:           {name: "EQ", tokens: []string{"="}, reverse: NEQ, write: singleArg("=")},
		NEQ:          {name: "NEQ", tokens: []string{"!=", "<>"}, negation: true, reverse: EQ, write: singleArg("!=")},
		CONTAINS:     {name: "CONTAINS", tokens: []string{"contains"}, reverse: NOT_CONTAINS, write: singleArg("contains")},
		NOT_CONTAINS: {name: "NOT_CONTAINS", tokens: []string{"not contains"}, negation: true, reverse: CONTAINS, write: singleArg("not contains")},
		IN:           {name: "IN", tokens: []string{"in"}, reverse: NOT_IN, write: groupArgs("in")},
		NOT_IN:       {name: "NOT_IN", tokens: []string{"not in"}, negation: true, reverse: IN, write: groupArgs("not in")},
		LIKE:         {name: "LIKE", tokens: []string{"like"}, reverse: NOT_LIKE, write: singleArg("like")},
		LIKE_IC:      {name: "LIKE_IC", tokens: []string{"ilike"}, reverse: NOT_LIKE_IC, write: singleArg("ilike")},
		NOT_LIKE:     {name: "NOT_LIKE", tokens: []string{"not like"}, negation: true, reverse: LIKE, write: singleArg("not like")},
		NOT_LIKE_IC:  {name: "NOT_LIKE_IC", tokens: []string{"not ilike"}, negation: true, reverse: LIKE_IC, write: singleArg("not ilike")},
		GT:           {name: "GT", tokens: []string{">"}, reverse: LT, write: singleArg(">")},
		GE:           {name: "GE", tokens: []string{">="}, reverse: LE, write: singleArg(">=")},
		LT:           {name: "LT", tokens: []string{"<"}, reverse: GT, write: singleArg("<")},
		LE:           {name: "LE", tokens: []string{"<="}, reverse: GE, write: singleArg("<=")},
		IS_NULL:      {name: "IS_NULL", tokens: []string{"is"}, reverse: IS_NOT_NULL, write: fixed("is NULL")},
		IS_NOT_NULL:  {name: "IS_NOT_NULL", tokens: []string{"is not"}, negation: true, reverse: IS_NULL, write: fixed("is not NULL")},
		IS_EMPTY:     {name: "IS_EMPTY", tokens: []string{"is"}, reverse: IS_NOT_EMPTY, write: fixed("is EMPTY")},
		IS_NOT_EMPTY: {name: "IS_NOT_EMPTY", tokens: []string{"is not"}, negation: true, reverse: IS_EMPTY, write: fixed("is not EMPTY")},
	}
}

// Operators returns every operator in declaration order.
func Operators() []Operator {
	ops := make([]Operator, len(operators))
	for i := range operators {
		ops[i] = Operator(i)
	}
	return ops
}

// IsValid reports whether op is a known operator.
func (op Operator) IsValid() bool {
	return op >= 0 && int(op) < len(operators)
}

func (op Operator) String() string {
	if !op.IsValid() {
		return fmt.Sprintf("Operator(%d)", int(op))
	}
	return operators[op].name
}

// Token returns the primary token of the operator.
func (op Operator) Token() string {
	return operators[op].tokens[0]
}

// IsNegation reports whether this is the negated form of another operator.
func (op Operator) IsNegation() bool {
	return operators[op].negation
}

// Reverse returns the opposite operator (often the negation).
func (op Operator) Reverse() Operator {
	return operators[op].reverse
}

// IsLogical reports whether op is one of the boolean operands AND or OR.
func (op Operator) IsLogical() bool {
	return op == AND || op == OR
}

// Render writes the operator applied on a property and its arguments as EQL.
func (op Operator) Render(property string, args ...any) string {
	return operators[op].write(property, args)
}

// OperatorForToken resolves an operator by one of its (case insensitive) tokens.
func OperatorForToken(token string) (Operator, bool) {
	lookup := strings.TrimSpace(strings.ToLower(token))
	for i, def := range operators {
		for _, t := range def.tokens {
			if t == lookup {
				return Operator(i), true
			}
		}
	}
	return 0, false
}

// MultiValueOperator returns the multi-value equivalent of a single value operator,
// e.g. IN for EQ.
func MultiValueOperator(single Operator) (Operator, bool) {
	switch single {
	case EQ:
		return IN, true
	case NEQ:
		return NOT_IN, true
	case CONTAINS, NOT_CONTAINS, IN, NOT_IN:
		return single, true
	}
	return 0, false
}

func joinExpressions(sep string) operatorWriter {
	return func(_ string, args []any) string {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			if q, ok := a.(*Query); ok {
				parts = append(parts, "("+q.String()+")")
				continue
			}
			parts = append(parts, objectAsString(a))
		}
		return strings.Join(parts, sep)
	}
}

func singleArg(token string) operatorWriter {
	return func(property string, args []any) string {
		value := ""
		if len(args) > 0 {
			value = objectAsString(args[0])
		}
		return property + " " + token + " " + value
	}
}

func groupArgs(token string) operatorWriter {
	return func(property string, args []any) string {
		return property + " " + token + " " + joinAsGroup(args)
	}
}

func fixed(suffix string) operatorWriter {
	return func(property string, _ []any) string {
		return property + " " + suffix
	}
}

func joinAsGroup(args []any) string {
	if len(args) == 1 {
		switch a := args[0].(type) {
		case EQGroup, EQFunction:
			return a.(EQType).String()
		}
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = objectAsString(a)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// objectAsString renders a (raw or typed) argument as an EQL literal.
func objectAsString(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case EQType:
		return v.String()
	case string:
		return quoteString(v)
	case fmt.Stringer:
		return v.String()
	case []any:
		return joinAsGroup(v)
	}
	return fmt.Sprint(value)
}
