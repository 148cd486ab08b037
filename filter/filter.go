// Package filter provides client-side filtering of listed object property
// maps with CEL expressions. The server's search endpoints only filter on a
// few indexed fields; everything else is narrowed down locally after
// listing, which is what these predicates are for.
//
// Expressions see each object's properties under the variable "o":
//
//	f, err := filter.Compile(`o.type == "folder" && o.hidden != true`)
//	if err != nil {
//		return err
//	}
//	folders, err := filter.Apply(f, listed)
package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Filter is a compiled predicate over object property maps.
// A Filter is safe for concurrent use.
type Filter struct {
	expr    string
	program cel.Program
}

// Compile parses and type-checks a CEL expression into a reusable
// predicate. The expression must evaluate to a boolean.
func Compile(expr string) (*Filter, error) {
	env, err := cel.NewEnv(
		cel.Variable("o", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("filter: environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("filter: compile %q: %w", expr, issues.Err())
	}
	if ast.OutputType().String() != "bool" {
		return nil, fmt.Errorf("filter: expression %q must evaluate to bool, got %s",
			expr, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("filter: program %q: %w", expr, err)
	}

	return &Filter{expr: expr, program: program}, nil
}

// MustCompile compiles an expression and panics on failure. Intended for
// package-level filter constants.
func MustCompile(expr string) *Filter {
	f, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return f
}

// Expr returns the source expression.
func (f *Filter) Expr() string {
	return f.expr
}

// Match evaluates the predicate against one object's properties.
func (f *Filter) Match(props map[string]any) (bool, error) {
	out, _, err := f.program.Eval(map[string]any{"o": props})
	if err != nil {
		return false, fmt.Errorf("filter: eval %q: %w", f.expr, err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter: %q evaluated to %T, want bool", f.expr, out.Value())
	}
	return matched, nil
}

// Apply returns the items matching the predicate, preserving order.
func Apply(f *Filter, items []map[string]any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		matched, err := f.Match(item)
		if err != nil {
			return nil, err
		}
		if matched {
			out = append(out, item)
		}
	}
	return out, nil
}
