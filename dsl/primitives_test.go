package dsl_test

import (
	"encoding/json"
	"math"
	"testing"

	sf "github.com/reoring/shapefix"
	g "github.com/reoring/shapefix/dsl"
)

func TestPrimitives_AcceptAndRepair(t *testing.T) {
	cases := []struct {
		name     string
		schema   sf.Schema
		ok       []any
		bad      any
		fallback any
		msg      string
	}{
		{"string", g.String(), []any{"", "x"}, 1, "", "$: Expected string but got number"},
		{"number", g.Number(), []any{0, 1.5, int64(-3), json.Number("12")}, "1", float64(0), "$: Expected number but got string"},
		{"bool", g.Bool(), []any{true, false}, nil, false, "$: Expected boolean but got null"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for _, v := range c.ok {
				if !sf.Is(c.schema, v) {
					t.Fatalf("%#v rejected", v)
				}
			}
			got, errs := sf.Fix(c.schema, c.bad)
			if got != c.fallback {
				t.Fatalf("fallback = %#v, want %#v", got, c.fallback)
			}
			if len(errs) != 1 || errs[0].String() != c.msg || errs[0].Code != sf.CodeInvalidType {
				t.Fatalf("errors = %v", errs)
			}
		})
	}
}

func TestAnyAndNever(t *testing.T) {
	for _, v := range []any{nil, sf.Undefined, "x", []any{1}} {
		if !sf.Is(g.Any(), v) {
			t.Fatalf("any rejected %#v", v)
		}
		if sf.Is(g.Never(), v) != sf.IsUndefined(v) {
			t.Fatalf("never: Is(%#v) = %v", v, !sf.IsUndefined(v))
		}
	}
	if got, errs := sf.Fix(g.Never(), sf.Undefined); len(errs) != 0 || !sf.IsUndefined(got) {
		t.Fatalf("never on undefined = %#v, %v", got, errs)
	}
	got, errs := sf.Fix(g.Never(), "x")
	if !sf.IsUndefined(got) {
		t.Fatalf("never fallback = %#v", got)
	}
	if len(errs) != 1 || errs[0].Message != "Expected no value but got string" {
		t.Fatalf("errors = %v", errs)
	}
	if g.Unknown() != g.Any() {
		t.Fatalf("Unknown should alias Any")
	}
}

func TestLiteral_IdentityCache(t *testing.T) {
	if g.Literal("free") != g.Literal("free") {
		t.Fatalf("equal string literals must share an instance")
	}
	if g.Literal(1) != g.Literal(1.0) || g.Literal(int64(1)) != g.Literal(json.Number("1")) {
		t.Fatalf("numeric literals must normalize")
	}
	if g.Literal(math.NaN()) != g.Literal(math.NaN()) {
		t.Fatalf("NaN literals must share an instance")
	}
	if g.Literal(math.Copysign(0, -1)) != g.Literal(0) {
		t.Fatalf("-0 and 0 must share an instance")
	}
	if g.Literal("1") == g.Literal(1) || g.Literal(nil) == g.Literal(false) {
		t.Fatalf("literals of different kinds must differ")
	}
}

func TestLiteral_Check(t *testing.T) {
	free := g.Literal("free")
	if !sf.Is(free, "free") || sf.Is(free, "paid") {
		t.Fatalf("string literal matching broken")
	}
	if !sf.Is(g.Literal(math.NaN()), math.NaN()) {
		t.Fatalf("NaN literal should accept NaN")
	}
	if !sf.Is(g.Literal(2), int32(2)) {
		t.Fatalf("numeric literal should accept other numeric types")
	}
	got, errs := sf.Fix(free, "paid")
	if got != "free" {
		t.Fatalf("fallback = %#v", got)
	}
	if len(errs) != 1 || errs[0].String() != `$: Expected "free" but got "paid"` || errs[0].Code != sf.CodeInvalidLiteral {
		t.Fatalf("errors = %v", errs)
	}
	_, errs = sf.Fix(g.Literal(3), sf.Undefined)
	if errs[0].Message != "Expected 3 but got undefined" {
		t.Fatalf("message = %q", errs[0].Message)
	}
}

func TestLiteral_UnsupportedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	g.Literal(struct{}{})
}

func TestArray_RepairKeepsLength(t *testing.T) {
	s := g.Array(g.Number())
	in := []any{float64(1), float64(2), "three", float64(4), float64(5)}
	got, errs := sf.Fix(s, in)
	arr := got.([]any)
	if len(arr) != 5 || arr[2] != float64(0) {
		t.Fatalf("repaired = %#v", arr)
	}
	if len(errs) != 1 || errs[0].String() != "$[2]: Expected number but got string" {
		t.Fatalf("errors = %v", errs)
	}
	if p := errs[0].Pointer(); p != "/2" {
		t.Fatalf("pointer = %q", p)
	}
	if got, _ := sf.Fix(s, "nope"); len(got.([]any)) != 0 {
		t.Fatalf("non-array should repair to []")
	}
}
