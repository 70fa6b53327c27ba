package dsl_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	sf "github.com/reoring/shapefix"
	g "github.com/reoring/shapefix/dsl"
	"github.com/reoring/shapefix/internal/testkit"
)

func TestIntersection_Construction(t *testing.T) {
	if g.Intersection() != g.Any() {
		t.Fatalf("empty intersection should be any")
	}
	if g.Intersection(g.String(), g.Number()) != g.Never() {
		t.Fatalf("incompatible tags should yield never")
	}
	// a heterogeneous union as cheapest member skips the tag check
	mixed := g.Intersection(g.Union(g.String(), g.Number()), g.Any())
	if mixed == g.Never() {
		t.Fatalf("heterogeneous union should bypass the tag check")
	}
	nested := g.Intersection(g.Intersection(g.Object(), g.Object()), g.Object()).(*g.IntersectionSchema)
	if len(nested.Members()) != 3 {
		t.Fatalf("nested intersections should flatten")
	}
}

func TestIntersection_Objects(t *testing.T) {
	testkit.BothModes(t, func(t *testing.T, v *sf.Validator) {
		s := g.Intersection(
			g.Object(g.Field("a", g.String())),
			g.Object(g.Field("b", g.Number())),
		)
		if !v.Is(s, map[string]any{"a": "x", "b": 1}) {
			t.Fatalf("valid input rejected")
		}
		got, errs := v.Fix(s, map[string]any{"a": "x"})
		if diff := cmp.Diff([]string{"$: Missing key b"}, errs.Strings()); diff != "" {
			t.Fatalf("errors (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(map[string]any{"a": "x", "b": float64(0)}, got); diff != "" {
			t.Fatalf("repaired (-want +got):\n%s", diff)
		}
		got, errs = v.Fix(s, "nope")
		if diff := cmp.Diff([]string{"$: Expected object but got string"}, errs.Strings()); diff != "" {
			t.Fatalf("errors (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(map[string]any{"a": "", "b": float64(0)}, got); diff != "" {
			t.Fatalf("merged fallback (-want +got):\n%s", diff)
		}
	})
}

func TestIntersection_FallbackMerge(t *testing.T) {
	same := g.Intersection(g.String(), g.Refine(g.String(), g.Refinement{Test: func(any) bool { return true }}))
	if same.Fallback() != "" {
		t.Fatalf("equal primitive fallbacks should survive")
	}
	differ := g.Intersection(g.String(), g.Refine(g.String(), g.Refinement{
		Test:     func(any) bool { return true },
		Fallback: func() any { return "x" },
	}))
	if !sf.IsUndefined(differ.Fallback()) {
		t.Fatalf("different primitive fallbacks should give undefined")
	}
	over := g.Intersection(
		g.Object(g.Field("k", g.String())),
		g.Object(g.Field("k", "fixed")),
	)
	if diff := cmp.Diff(map[string]any{"k": "fixed"}, over.Fallback()); diff != "" {
		t.Fatalf("later members should overwrite (-want +got):\n%s", diff)
	}
}

func TestIntersection_ThreadsRepairs(t *testing.T) {
	testkit.BothModes(t, func(t *testing.T, v *sf.Validator) {
		upper := g.Refine(g.String(), g.Refinement{
			Test:     func(x any) bool { return x.(string) == strings.ToUpper(x.(string)) },
			Fallback: func() any { return "XXXX" },
		})
		short := g.Refine(g.String(), g.Refinement{
			Test:     func(x any) bool { return len(x.(string)) <= 3 },
			Fallback: func() any { return "Y" },
		})
		s := g.Intersection(upper, short)
		// upper repairs to "XXXX", which short then repairs to "Y"
		got, errs := v.Fix(s, "abcd")
		if len(errs) != 2 || got != "Y" {
			t.Fatalf("got %#v, errors = %v", got, errs)
		}
		if !v.Is(s, got) {
			t.Fatalf("repaired %#v does not conform", got)
		}
	})
}

func TestIntersection_IncompatibleIsTotal(t *testing.T) {
	testkit.BothModes(t, func(t *testing.T, v *sf.Validator) {
		s := g.Intersection(g.String(), g.Number())
		got, errs := v.Fix(s, "a")
		if len(errs) != 1 || !sf.IsUndefined(got) {
			t.Fatalf("fix = %#v, %v", got, errs.Strings())
		}
		if !v.Is(s, got) || len(v.Validate(s, got)) != 0 {
			t.Fatalf("repaired value %#v does not conform", got)
		}
	})
}
