package dsl_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	sf "github.com/reoring/shapefix"
	g "github.com/reoring/shapefix/dsl"
	"github.com/reoring/shapefix/internal/testkit"
)

func TestUnion_Primitives(t *testing.T) {
	cases := []struct {
		name   string
		schema func() sf.Schema
		in     any
		want   string
		code   string
	}{
		{"whole kinds", func() sf.Schema { return g.Union(g.String(), g.Number()) }, true,
			"$: Unexpected boolean true", sf.CodeInvalidEnum},
		{"constants", func() sf.Schema { return g.Union("a", "b") }, "c",
			`$: Unexpected string "c" (allowed: "a" | "b")`, sf.CodeInvalidEnum},
		{"null without value", func() sf.Schema { return g.Union("a", "b") }, nil,
			"$: Unexpected null", sf.CodeInvalidEnum},
		{"undefined without value", func() sf.Schema { return g.Union("a", g.Number()) }, sf.Undefined,
			"$: Unexpected undefined", sf.CodeInvalidEnum},
		{"numbers", func() sf.Schema { return g.Union(1, 2.5, "x") }, 3,
			"$: Unexpected number 3 (allowed: 1 | 2.5)", sf.CodeInvalidEnum},
		{"empty array", func() sf.Schema { return g.Union(g.String(), g.Number()) }, []any{},
			"$: Unexpected array", sf.CodeDisallowedShape},
		{"object", func() sf.Schema { return g.Union(g.String(), g.Number()) }, map[string]any{},
			"$: Object not allowed here", sf.CodeDisallowedShape},
		{"arrays", func() sf.Schema { return g.Union(g.Array(g.String()), g.Array(g.Number())) }, []any{true},
			"$: Array found, but no matching schema", sf.CodeUnionNoMatch},
		{"single array", func() sf.Schema { return g.Union(g.String(), g.Array(g.String())) }, []any{"a", 1},
			"$[1]: Expected string but got number", sf.CodeInvalidType},
		{"object only", func() sf.Schema {
			return g.Union(g.Object(g.Field("t", "a")), g.Object(g.Field("t", "b")))
		}, "x", "$: Expected object but got string", sf.CodeInvalidType},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			testkit.BothModes(t, func(t *testing.T, v *sf.Validator) {
				s, in := c.schema(), testkit.Clone(c.in)
				if v.Is(s, in) {
					t.Fatalf("accepted %#v", in)
				}
				got, errs := v.Fix(s, in)
				if len(errs) != 1 || errs[0].String() != c.want || errs[0].Code != c.code {
					t.Fatalf("errors = %v", errs)
				}
				if !v.Is(s, got) {
					t.Fatalf("fallback %#v does not conform", got)
				}
			})
		})
	}
}

func TestUnion_Tags(t *testing.T) {
	cases := []struct {
		schema sf.Schema
		tag    string
		score  int
	}{
		{g.Union("a", "b"), "string", 20000},
		{g.Nullable(g.String()), "(null | string)", 20001},
		{g.Union(g.Object(), g.Array(g.Number()), 1), "(object | array | number)", 20001},
	}
	for _, c := range cases {
		if c.schema.Tag() != c.tag || c.schema.Score() != c.score {
			t.Fatalf("tag/score = %q/%d, want %q/%d", c.schema.Tag(), c.schema.Score(), c.tag, c.score)
		}
	}
}

func TestUnion_Construction(t *testing.T) {
	if g.Union().Tag() != "never" {
		t.Fatalf("empty union should be never")
	}
	s := g.String()
	if g.Union(s) != s {
		t.Fatalf("single member union should return the member")
	}
	inner := g.Union("a", "b").(*g.UnionSchema)
	outer := g.Union(inner, "c", inner).(*g.UnionSchema)
	if n := len(outer.Members()); n != 5 {
		t.Fatalf("flattened members = %d", n)
	}
	_, errs := sf.Fix(outer, "d")
	if len(errs) != 1 || errs[0].Message != `Unexpected string "d" (allowed: "a" | "b" | "c")` {
		t.Fatalf("duplicates should be ignored: %v", errs)
	}
	if got, _ := sf.Fix(outer, 1); got != "a" {
		t.Fatalf("fallback = %#v", got)
	}
}

func TestUnion_AnyMember(t *testing.T) {
	s := g.Union(g.String(), g.Any())
	for _, v := range []any{1, nil, []any{}, map[string]any{}} {
		if !sf.Is(s, v) {
			t.Fatalf("rejected %#v", v)
		}
	}
}

func TestUnion_RefinedPrimitive(t *testing.T) {
	testkit.BothModes(t, func(t *testing.T, v *sf.Validator) {
		long := g.Refine(g.String(), g.Refinement{
			Test:    func(x any) bool { return len(x.(string)) >= 3 },
			Message: func(any) string { return "too short" },
		})
		s := g.Union(long, g.Number())
		if !v.Is(s, "abc") || !v.Is(s, 1) {
			t.Fatalf("valid members rejected")
		}
		_, errs := v.Fix(s, "ab")
		if len(errs) != 1 || errs[0].String() != "$: too short" || errs[0].Code != sf.CodeCustom {
			t.Fatalf("errors = %v", errs)
		}
	})
}

func TestUnion_DiscriminatedObjects(t *testing.T) {
	testkit.BothModes(t, func(t *testing.T, v *sf.Validator) {
		s := g.Union(
			g.Object(g.Field("type", "card"), g.Field("number", g.String())),
			g.Object(g.Field("type", "bank"), g.Field("iban", g.String())),
		)
		if !v.Is(s, map[string]any{"type": "bank", "iban": "DE00"}) {
			t.Fatalf("bank rejected")
		}
		// the discriminant selects the branch, whose own errors are reported
		_, errs := v.Fix(s, map[string]any{"type": "bank", "iban": 1})
		if diff := cmp.Diff([]string{"$.iban: Expected string but got number"}, errs.Strings()); diff != "" {
			t.Fatalf("errors (-want +got):\n%s", diff)
		}
		got, errs := v.Fix(s, map[string]any{"type": "cash"})
		if diff := cmp.Diff([]string{"$: Object matches none of the possible structures"}, errs.Strings()); diff != "" {
			t.Fatalf("errors (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(map[string]any{"type": "card", "number": ""}, got); diff != "" {
			t.Fatalf("fallback (-want +got):\n%s", diff)
		}
	})
}

func TestUnion_SharedDiscriminant(t *testing.T) {
	testkit.BothModes(t, func(t *testing.T, v *sf.Validator) {
		// both branches share kind: "a"; the tree keeps trying the leaf candidates
		s := g.Union(
			g.Object(g.Field("kind", "a"), g.Field("n", g.Number())),
			g.Object(g.Field("kind", "a"), g.Field("s", g.String())),
			g.Object(g.Field("kind", "b")),
		)
		for _, in := range []map[string]any{
			{"kind": "a", "n": 1},
			{"kind": "a", "s": "x"},
			{"kind": "b"},
		} {
			if !v.Is(s, in) {
				t.Fatalf("rejected %#v", in)
			}
		}
		_, errs := v.Fix(s, map[string]any{"kind": "a"})
		if diff := cmp.Diff([]string{"$: Object matches none of the possible structures"}, errs.Strings()); diff != "" {
			t.Fatalf("errors (-want +got):\n%s", diff)
		}
	})
}

func TestUnion_NullableObject(t *testing.T) {
	testkit.BothModes(t, func(t *testing.T, v *sf.Validator) {
		s := g.Object(g.Field("next", g.Nullable(g.Object(g.Field("id", g.Number())))))
		if !v.Is(s, map[string]any{"next": nil}) || !v.Is(s, map[string]any{"next": map[string]any{"id": 1}}) {
			t.Fatalf("valid input rejected")
		}
		// a lone candidate is still guarded by its discriminant
		_, errs := v.Fix(s, map[string]any{"next": map[string]any{}})
		if diff := cmp.Diff([]string{"$.next: Object matches none of the possible structures"}, errs.Strings()); diff != "" {
			t.Fatalf("errors (-want +got):\n%s", diff)
		}
		_, errs = v.Fix(s, map[string]any{"next": "x"})
		if diff := cmp.Diff([]string{`$.next: Unexpected string "x"`}, errs.Strings()); diff != "" {
			t.Fatalf("errors (-want +got):\n%s", diff)
		}
	})
}

func TestUnion_Specializes(t *testing.T) {
	v := sf.New(sf.Config{Threshold: 1})
	s := g.Union(
		g.Object(g.Field("t", "x")),
		g.Object(g.Field("t", "y")),
	).(*g.UnionSchema)
	v.Is(s, map[string]any{"t": "x"})
	if s.Specialized() {
		t.Fatalf("specialized too early")
	}
	v.Is(s, map[string]any{"t": "y"})
	if !s.Specialized() {
		t.Fatalf("not specialized")
	}
}
