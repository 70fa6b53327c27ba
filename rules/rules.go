// Package rules provides ready-made refinements for dsl.Refine: length and
// range bounds, patterns, collection rules over JSON Pointers, conditionals and
// expr-lang predicates.
//
//	name := dsl.Refine(dsl.String(), rules.All(rules.NonEmpty(), rules.MaxLen(64)))
//	order := dsl.Refine(orderObject, rules.If("/status", rules.Eq, "paid").Then(rules.AtLeastOne("/items")))
package rules

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/dsl"
)

// MinLen requires strings (in runes), arrays and objects to have at least n elements.
func MinLen(n int) dsl.Refinement {
	return dsl.Refinement{
		Test:    func(v any) bool { l, ok := length(v); return !ok || l >= n },
		Message: func(v any) string { return fmt.Sprintf("Expected length >= %d but got %d", n, lengthOf(v)) },
	}
}

// MaxLen requires strings (in runes), arrays and objects to have at most n elements.
func MaxLen(n int) dsl.Refinement {
	return dsl.Refinement{
		Test:    func(v any) bool { l, ok := length(v); return !ok || l <= n },
		Message: func(v any) string { return fmt.Sprintf("Expected length <= %d but got %d", n, lengthOf(v)) },
	}
}

// NonEmpty rejects "", [] and {}.
func NonEmpty() dsl.Refinement {
	return dsl.Refinement{
		Test:    func(v any) bool { l, ok := length(v); return !ok || l > 0 },
		Message: func(v any) string { return "Expected a non-empty " + sf.TypeName(v) },
	}
}

// Range requires numbers within [min, max]. Use math.Inf for open bounds.
func Range(min, max float64) dsl.Refinement {
	return dsl.Refinement{
		Test: func(v any) bool {
			f, ok := sf.Number(v)
			return !ok || (f >= min && f <= max)
		},
		Message: func(v any) string {
			return fmt.Sprintf("Expected a number in [%s, %s] but got %s", bound(min), bound(max), sf.Print(v))
		},
	}
}

// Integer requires numbers without a fractional part.
func Integer() dsl.Refinement {
	return dsl.Refinement{
		Test: func(v any) bool {
			f, ok := sf.Number(v)
			return !ok || f == math.Trunc(f)
		},
		Message: func(v any) string { return "Expected an integer but got " + sf.Print(v) },
	}
}

// Pattern requires strings to match the regular expression. It panics when
// the expression does not compile, like regexp.MustCompile.
func Pattern(expr string) dsl.Refinement {
	re := regexp.MustCompile(expr)
	return dsl.Refinement{
		Test: func(v any) bool {
			s, ok := v.(string)
			return !ok || re.MatchString(s)
		},
		Message: func(v any) string { return fmt.Sprintf("Expected a string matching %s but got %s", expr, sf.Print(v)) },
	}
}

// All requires every refinement to hold; the message is the first failing one.
func All(rs ...dsl.Refinement) dsl.Refinement {
	first := func(v any) (dsl.Refinement, bool) {
		for _, r := range rs {
			if r.Test != nil && !r.Test(v) {
				return r, true
			}
		}
		return dsl.Refinement{}, false
	}
	return dsl.Refinement{
		Test: func(v any) bool { _, failed := first(v); return !failed },
		Message: func(v any) string {
			if r, ok := first(v); ok && r.Message != nil {
				return r.Message(v)
			}
			return ""
		},
	}
}

// OrElse sets the value used when r fails. Objects and arrays are deep-copied
// per use so repaired trees never share state.
func OrElse(r dsl.Refinement, fallback any) dsl.Refinement {
	r.Fallback = func() any { return clone(fallback) }
	return r
}

// ------- helpers -------

func length(v any) (int, bool) {
	switch x := v.(type) {
	case string:
		return utf8.RuneCountInString(x), true
	case []any:
		return len(x), true
	case map[string]any:
		return len(x), true
	}
	return 0, false
}

func lengthOf(v any) int { l, _ := length(v); return l }

func bound(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return sf.FormatNumber(f)
}

func clone(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = clone(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = clone(e)
		}
		return out
	}
	return v
}

func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	if p[0] != '/' {
		return "/" + p
	}
	return p
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// valueAt navigates a generic tree by JSON Pointer.
func valueAt(v any, pointer string) (any, bool) {
	rel := strings.TrimPrefix(normalizePath(pointer), "/")
	if rel == "" {
		return v, true
	}
	cur := v
	for _, seg := range strings.Split(rel, "/") {
		seg = pointerUnescaper.Replace(seg)
		switch x := cur.(type) {
		case map[string]any:
			e, ok := x[seg]
			if !ok || sf.IsUndefined(e) {
				return nil, false
			}
			cur = e
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(x) {
				return nil, false
			}
			cur = x[i]
		default:
			return nil, false
		}
	}
	return cur, true
}
