package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nlstn/go-eql"
)

// ErrInvalidExpression is returned when at least one expression failed to parse.
var ErrInvalidExpression = errors.New("invalid expression")

// Result is the outcome of parsing one expression.
type Result struct {
	Line       int        `json:"line,omitempty"`
	Expression string     `json:"expression"`
	Valid      bool       `json:"valid"`
	Query      string     `json:"query,omitempty"`
	Conditions int        `json:"conditions,omitempty"`
	Error      *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes a parse error.
type ErrorInfo struct {
	Kind     string `json:"kind"`
	Position int    `json:"position"`
	Message  string `json:"message"`
}

func newResult(line int, expression string, q *eql.Query, err error) Result {
	r := Result{Line: line, Expression: expression, Valid: err == nil}
	if err != nil {
		info := &ErrorInfo{Kind: "Unknown", Position: eql.NoPosition, Message: err.Error()}
		var pe *eql.ParseError
		if errors.As(err, &pe) {
			info.Kind = pe.Kind.String()
			info.Position = pe.ErrorPosition
		}
		r.Error = info
		return r
	}
	r.Query = q.String()
	r.Conditions = len(q.Conditions())
	return r
}

// writeResults prints results in format and reports whether all were valid.
func writeResults(w io.Writer, format string, results []Result) (bool, error) {
	valid := true
	for _, r := range results {
		valid = valid && r.Valid
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return valid, enc.Encode(results[0])
		}
		return valid, enc.Encode(results)
	}

	for _, r := range results {
		if r.Valid {
			fmt.Fprintln(w, r.Query)
			continue
		}
		if r.Line > 0 {
			fmt.Fprintf(w, "line %d: ", r.Line)
		}
		fmt.Fprintf(w, "%s: %s\n", r.Error.Kind, r.Error.Message)
		if r.Error.Position >= 0 && r.Error.Position <= len(r.Expression) {
			fmt.Fprintf(w, "  %s\n  %s^\n", r.Expression, strings.Repeat(" ", r.Error.Position))
		}
	}
	return valid, nil
}
