package rules_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/dsl"
	"github.com/reoring/shapefix/internal/testkit"
	"github.com/reoring/shapefix/rules"
)

func TestPresets(t *testing.T) {
	cases := []struct {
		name string
		r    dsl.Refinement
		ok   []any
		bad  []any
	}{
		{"minlen", rules.MinLen(2), []any{"ab", "日本", []any{1, 2}, 5}, []any{"a", []any{}}},
		{"maxlen", rules.MaxLen(2), []any{"ab", map[string]any{}}, []any{"abc", []any{1, 2, 3}}},
		{"nonempty", rules.NonEmpty(), []any{"x", []any{nil}}, []any{"", []any{}, map[string]any{}}},
		{"range", rules.Range(0, 10), []any{0, 10, json.Number("2.5"), "x"}, []any{-1, 10.5}},
		{"open range", rules.Range(1, math.Inf(1)), []any{1e300}, []any{0}},
		{"integer", rules.Integer(), []any{3, 4.0, json.Number("7")}, []any{3.5}},
		{"pattern", rules.Pattern(`^[a-z]+$`), []any{"abc", 1}, []any{"ABC", ""}},
		{"all", rules.All(rules.NonEmpty(), rules.MaxLen(3)), []any{"abc"}, []any{"", "abcd"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for _, v := range c.ok {
				if !c.r.Test(v) {
					t.Errorf("Test(%v) = false, want true", v)
				}
			}
			for _, v := range c.bad {
				if c.r.Test(v) {
					t.Errorf("Test(%v) = true, want false", v)
				}
			}
		})
	}
}

func TestMessages(t *testing.T) {
	testkit.BothModes(t, func(t *testing.T, v *sf.Validator) {
		s := dsl.Object(
			dsl.Field("name", dsl.Refine(dsl.String(), rules.All(rules.NonEmpty(), rules.MaxLen(3)))),
			dsl.Field("age", dsl.Refine(dsl.Number(), rules.OrElse(rules.Range(0, 150), 0))),
		)
		got, errs := v.Fix(s, map[string]any{"name": "abcdef", "age": 200})
		want := []string{
			"$.age: Expected a number in [0, 150] but got 200",
			"$.name: Expected length <= 3 but got 6",
		}
		if d := cmp.Diff(want, errs.Strings()); d != "" {
			t.Fatalf("errors (-want +got):\n%s", d)
		}
		if d := cmp.Diff(map[string]any{"name": "", "age": 0}, got); d != "" {
			t.Fatalf("repaired (-want +got):\n%s", d)
		}
	})
}

func TestConditional(t *testing.T) {
	paid := rules.If("/status", rules.Eq, "paid").Then(rules.AtLeastOne("/items"))
	if !paid.Test(map[string]any{"status": "open", "items": []any{}}) {
		t.Fatalf("condition false must pass")
	}
	if paid.Test(map[string]any{"status": "paid", "items": []any{}}) {
		t.Fatalf("paid order without items must fail")
	}
	if got := paid.Message(nil); got != "/items: at least 1 item is required" {
		t.Fatalf("message = %q", got)
	}

	big := rules.IfAny(rules.If("total", rules.Gt, 100), rules.If("/vip", rules.Eq, true)).
		Then(rules.MustExpr(`value.reviewer != nil`, "reviewer required"))
	if big.Test(map[string]any{"total": json.Number("150")}) {
		t.Fatalf("large order without reviewer must fail")
	}
	if !big.Test(map[string]any{"total": 150, "reviewer": "kim"}) {
		t.Fatalf("large order with reviewer must pass")
	}
	if !big.Test(map[string]any{"total": 50}) {
		t.Fatalf("small order must pass")
	}
	both := rules.If("a", rules.Ge, 1).And(rules.If("b", rules.Lt, "m")).Then(rules.AtLeastOne("/c"))
	if both.Test(map[string]any{"a": 1, "b": "k", "c": []any{}}) {
		t.Fatalf("AND condition held; rule should apply")
	}
	if !both.Test(map[string]any{"a": 1, "b": "z", "c": []any{}}) {
		t.Fatalf("AND condition failed; rule should not apply")
	}
}

func TestUniqueBy(t *testing.T) {
	r := rules.UniqueBy("/items", "sku")
	ok := map[string]any{"items": []any{
		map[string]any{"sku": "a"},
		map[string]any{"sku": 1},
		map[string]any{"sku": "1"},
		map[string]any{},
	}}
	if !r.Test(ok) {
		t.Fatalf("distinct keys must pass")
	}
	bad := map[string]any{"items": []any{
		map[string]any{"sku": "a"},
		map[string]any{"sku": "b"},
		map[string]any{"sku": "a"},
	}}
	if r.Test(bad) {
		t.Fatalf("duplicate keys must fail")
	}
	if got := r.Message(bad); got != `/items: duplicate value "a" at 2 (first seen at 0)` {
		t.Fatalf("message = %q", got)
	}
}

func TestExpr(t *testing.T) {
	r, err := rules.Expr(`value.start <= value.end`, "")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !r.Test(map[string]any{"start": json.Number("1"), "end": 2}) {
		t.Fatalf("1 <= 2 must pass")
	}
	if r.Test(map[string]any{"start": 3, "end": 2}) {
		t.Fatalf("3 <= 2 must fail")
	}
	if r.Test("not an object") {
		t.Fatalf("evaluation error must fail")
	}
	if got := r.Message(nil); got != "Expected value.start <= value.end" {
		t.Fatalf("message = %q", got)
	}
	if _, err := rules.Expr(`value +`, ""); err == nil {
		t.Fatalf("expected compile error")
	}
}
