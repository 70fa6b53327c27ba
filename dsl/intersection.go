package dsl

import (
	"maps"
	"slices"

	sf "github.com/reoring/shapefix"
)

// IntersectionSchema accepts values satisfying every member. Members share
// one type tag and run cheapest first.
type IntersectionSchema struct {
	members []sf.Schema
	tag     string
	kind    sf.Kind
	kinded  bool
	check   *sf.Adaptive
}

// Intersection builds an intersection of definitions (see Define). Zero
// members yield Any; members with different type tags yield Never, unless
// the cheapest member is a union spanning several kinds.
func Intersection(defs ...any) sf.Schema {
	if len(defs) == 0 {
		return Any()
	}
	var flat []sf.Schema
	var add func(s sf.Schema)
	add = func(s sf.Schema) {
		if x, ok := s.(*IntersectionSchema); ok {
			for _, m := range x.members {
				add(m)
			}
			return
		}
		flat = append(flat, s)
	}
	for _, d := range defs {
		add(Define(d))
	}
	slices.SortStableFunc(flat, func(a, b sf.Schema) int { return a.Score() - b.Score() })

	first := flat[0]
	tag := first.Tag()
	if u, ok := first.(*UnionSchema); !ok || !u.MultiKind() {
		for _, s := range flat {
			if s.Tag() != tag {
				return Never()
			}
		}
	}

	x := &IntersectionSchema{members: flat, tag: tag}
	if k, ok := sf.KindFromTag(tag); ok && k != sf.KindNever {
		x.kind, x.kinded = k, true
	}
	x.check = sf.NewAdaptive("intersection", x.interpret, x.specialize)
	return x
}

// Members returns the members in check order.
func (x *IntersectionSchema) Members() []sf.Schema { return slices.Clone(x.members) }

func (x *IntersectionSchema) objectProperties() []Property {
	var props []Property
	for _, s := range x.members {
		if o, ok := s.(*ObjectSchema); ok {
			props = append(props, o.properties()...)
		}
	}
	return props
}

// Fallback merges the members' fallbacks: equal primitives survive (else
// Undefined), objects are merged key by key with later members winning.
func (x *IntersectionSchema) Fallback() any {
	if len(x.members) == 1 {
		return x.members[0].Fallback()
	}
	values := make([]any, len(x.members))
	for i, s := range x.members {
		values[i] = s.Fallback()
	}
	return intersect(values)
}

func intersect(values []any) any {
	first := values[0]
	switch sf.KindOf(first) {
	case sf.KindString, sf.KindNumber, sf.KindBoolean:
		for _, v := range values[1:] {
			if !sf.SameValue(first, v) {
				return sf.Undefined
			}
		}
		return first
	case sf.KindNull:
		return nil
	case sf.KindArray:
		return []any{}
	case sf.KindObject:
		out := map[string]any{}
		for _, v := range values {
			if m, ok := v.(map[string]any); ok {
				maps.Copy(out, m)
			}
		}
		return out
	}
	return sf.Undefined
}

func (x *IntersectionSchema) Tag() string { return x.tag }
func (x *IntersectionSchema) Score() int  { return 10000 }

// Specialized reports whether the specialized plan is installed.
func (x *IntersectionSchema) Specialized() bool { return x.check.Specialized() }

func (x *IntersectionSchema) Check(c *sf.Ctx, v any, k sf.Kind, pos int, sink sf.Sink) (any, bool) {
	if x.kinded && k != x.kind {
		if sink == nil {
			return nil, false
		}
		sink(c, pos, sf.CodeInvalidType, sf.Mismatch(x.tag, v))
		return x.Fallback(), true
	}
	return x.check.Check(c, v, k, pos, sink)
}

func (x *IntersectionSchema) interpret(c *sf.Ctx, v any, k sf.Kind, pos int, sink sf.Sink) (any, bool) {
	for _, s := range x.members {
		out, ok := s.Check(c, v, k, pos, sink)
		if !ok {
			return nil, false
		}
		if c.Repairing() && !sf.Identical(out, v) {
			v, k = out, sf.KindOf(out)
		}
	}
	return v, true
}

// specialize binds the member checks once so the loop skips interface
// dispatch.
func (x *IntersectionSchema) specialize() sf.CheckFunc {
	checks := make([]sf.CheckFunc, len(x.members))
	for i, s := range x.members {
		checks[i] = s.Check
	}
	return func(c *sf.Ctx, v any, k sf.Kind, pos int, sink sf.Sink) (any, bool) {
		for _, check := range checks {
			out, ok := check(c, v, k, pos, sink)
			if !ok {
				return nil, false
			}
			if c.Repairing() && !sf.Identical(out, v) {
				v, k = out, sf.KindOf(out)
			}
		}
		return v, true
	}
}
