// Package transform reshapes a fetched response body before rendering, using
// a restricted projection grammar: a dotted base path optionally followed by
// an ordered field list, e.g. cluster.status.[infrastructureProvider, health].
package transform

import (
	"fmt"
	"strings"

	"tmc/internal/fieldpath"
)

// Expression is a parsed transform.
type Expression struct {
	// Base addresses the value to project from.
	Base fieldpath.Path
	// Fields, when non-empty, selects these fields of the base value, in
	// declaration order.
	Fields []string
}

// PathError indicates the expression's base path does not resolve in the
// response body.
type PathError struct {
	// Path is the base path that failed to resolve.
	Path string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("transform path %q not found in response", e.Path)
}

// Parse splits an expression into base path and projection list. A bare
// dotted path parses to an expression with no fields.
func Parse(expr string) Expression {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Expression{}
	}

	base := expr
	var fields []string
	if strings.HasSuffix(expr, "]") {
		if open := strings.LastIndex(expr, "["); open >= 0 && !isListIndex(expr[open+1:len(expr)-1]) {
			base = strings.TrimSuffix(expr[:open], ".")
			for _, f := range strings.Split(expr[open+1:len(expr)-1], ",") {
				if f = strings.TrimSpace(f); f != "" {
					fields = append(fields, f)
				}
			}
		}
	}
	return Expression{Base: fieldpath.Parse(base), Fields: fields}
}

// isListIndex distinguishes a trailing list index such as items[0] from a
// projection list.
func isListIndex(inner string) bool {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return false
	}
	for _, r := range inner {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsZero reports whether the expression does nothing.
func (e Expression) IsZero() bool {
	return e.Base.IsEmpty() && len(e.Fields) == 0
}

// Apply evaluates the expression against a response body. A base path that
// does not resolve returns a *PathError. With a field list, a map base
// yields the ordered field values and a list base yields one such row per
// element; fields that are absent come back as nulls.
func Apply(body any, e Expression) (any, error) {
	if e.IsZero() {
		return body, nil
	}

	value, ok := fieldpath.Navigate(body, e.Base)
	if !ok {
		return nil, &PathError{Path: e.Base.String()}
	}
	if len(e.Fields) == 0 {
		return value, nil
	}

	if list, ok := value.([]any); ok {
		rows := make([]any, 0, len(list))
		for _, item := range list {
			rows = append(rows, project(item, e.Fields))
		}
		return rows, nil
	}
	return project(value, e.Fields), nil
}

func project(value any, fields []string) []any {
	row := make([]any, 0, len(fields))
	for _, f := range fields {
		v, _ := fieldpath.Lookup(value, f)
		row = append(row, v)
	}
	return row
}
