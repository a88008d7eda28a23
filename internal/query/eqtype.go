package query

import "strings"

// EQType is an untyped literal value as it appears in a raw query.
// It is one of EQValue, EQString, EQGroup or EQFunction.
type EQType interface {
	eqType()
	String() string
}

// EQValue is a bare, unquoted token such as a number or an identifier.
type EQValue struct {
	Value string
	null  bool
}

func (EQValue) eqType() {}

var (
	// NullValue is the sentinel for the literal null.
	NullValue = EQValue{Value: "NULL", null: true}

	// EmptyValue renders as an empty string and is used in diagnostics
	// for conditions that lack a value.
	EmptyValue = EQValue{}
)

// NewEQValue creates a bare value; the literal null (in any casing) yields NullValue.
func NewEQValue(value string) EQValue {
	if strings.EqualFold(value, "null") {
		return NullValue
	}
	return EQValue{Value: value}
}

// IsNull reports whether this is the null sentinel.
func (v EQValue) IsNull() bool {
	return v.null
}

func (v EQValue) String() string {
	return v.Value
}

// EQString is a quoted string literal with quotes removed and escapes resolved.
type EQString struct {
	Value string
}

func (EQString) eqType() {}

func (s EQString) String() string {
	return quoteString(s.Value)
}

// EQGroup is a parenthesized, comma separated list of values.
type EQGroup struct {
	Values []EQType
}

func (EQGroup) eqType() {}

// NewEQGroup creates a group; a directly nested group is flattened into the outer one.
func NewEQGroup(values ...EQType) EQGroup {
	flat := make([]EQType, 0, len(values))
	for _, v := range values {
		if g, ok := v.(EQGroup); ok {
			flat = append(flat, g.Values...)
			continue
		}
		flat = append(flat, v)
	}
	return EQGroup{Values: flat}
}

func (g EQGroup) String() string {
	return "(" + joinEQTypes(g.Values) + ")"
}

// EQFunction is a named function call with zero or more arguments.
type EQFunction struct {
	Name string
	Args []EQType
}

func (EQFunction) eqType() {}

// NewEQFunction creates a function value.
func NewEQFunction(name string, args ...EQType) EQFunction {
	return EQFunction{Name: name, Args: args}
}

func (f EQFunction) String() string {
	return f.Name + "(" + joinEQTypes(f.Args) + ")"
}

func joinEQTypes(values []EQType) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// quoteString renders a string as a single quoted EQL literal.
func quoteString(value string) string {
	escaped := strings.NewReplacer("\\", "\\\\", "'", "\\'").Replace(value)
	return "'" + escaped + "'"
}

// unescapeLiteral resolves backslash escapes inside a literal body.
func unescapeLiteral(body string) string {
	if !strings.Contains(body, "\\") {
		return body
	}
	var b strings.Builder
	b.Grow(len(body))
	escaped := false
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if !escaped && ch == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteByte(ch)
	}
	return b.String()
}
