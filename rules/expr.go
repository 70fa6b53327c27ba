package rules

import (
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/dsl"
)

// Expr compiles a boolean expr-lang predicate over the checked value, bound as
// `value`. Numbers are presented as float64. Evaluation errors count as failure.
//
//	rules.Expr(`value.start <= value.end`, "start must not be after end")
func Expr(code, message string) (dsl.Refinement, error) {
	prog, err := expr.Compile(code, expr.Env(env(nil)), expr.AsBool())
	if err != nil {
		return dsl.Refinement{}, fmt.Errorf("rules: compile %q: %w", code, err)
	}
	if message == "" {
		message = "Expected " + code
	}
	return dsl.Refinement{
		Test:    func(v any) bool { return eval(prog, v) },
		Message: func(any) string { return message },
	}, nil
}

// MustExpr is Expr that panics on compile errors.
func MustExpr(code, message string) dsl.Refinement {
	r, err := Expr(code, message)
	if err != nil {
		panic(err)
	}
	return r
}

func eval(prog *vm.Program, v any) bool {
	out, err := expr.Run(prog, env(v))
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

func env(v any) map[string]any { return map[string]any{"value": plain(v)} }

// plain converts a checked tree into values expr-lang operators understand.
func plain(v any) any {
	switch x := v.(type) {
	case json.Number:
		f, _ := x.Float64()
		return f
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			if sf.IsUndefined(e) {
				continue
			}
			out[k] = plain(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	}
	if sf.IsUndefined(v) {
		return nil
	}
	if f, ok := sf.Number(v); ok {
		return f
	}
	return v
}
