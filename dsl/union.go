package dsl

import (
	"strings"
	"sync"

	sf "github.com/reoring/shapefix"
)

// UnionSchema accepts values satisfying at least one member. Members are
// partitioned by kind on first use: whole primitive kinds and constants
// are answered by lookup, arrays by their array members and objects by a
// decision tree over discriminating properties.
type UnionSchema struct {
	members   []sf.Schema
	shaped    sync.Once
	once      sync.Once
	whole     [sf.KindCount]bool
	literals  [sf.KindCount][]any
	refined   [sf.KindCount][]sf.Schema
	arrays    []sf.Schema
	objects   *sf.Adaptive
	tag       string
	multi     bool
	acceptAll bool
}

// Union builds a union of definitions (see Define). Zero members yield Never
// and a single member is returned as is. Nested unions are flattened.
func Union(defs ...any) sf.Schema {
	schemas := make([]sf.Schema, len(defs))
	for i, d := range defs {
		schemas[i] = Define(d)
	}
	switch len(schemas) {
	case 0:
		return Never()
	case 1:
		return schemas[0]
	}
	return newUnion(schemas)
}

// Nullable is Union(nil, def).
func Nullable(def any) sf.Schema { return Union(nil, def) }

func newUnion(schemas []sf.Schema) *UnionSchema {
	u := &UnionSchema{}
	for _, s := range schemas {
		if nested, ok := s.(*UnionSchema); ok {
			u.members = append(u.members, nested.members...)
			continue
		}
		u.members = append(u.members, s)
	}
	return u
}

// leaves calls fn for every member with nested unions and lazy references
// flattened, each schema once.
func (u *UnionSchema) leaves(fn func(s sf.Schema)) {
	seen := map[sf.Schema]bool{}
	var visit func(s sf.Schema)
	visit = func(s sf.Schema) {
		if seen[s] {
			return
		}
		seen[s] = true
		switch s := s.(type) {
		case *LazySchema:
			visit(s.Resolve())
		case *UnionSchema:
			for _, m := range s.members {
				visit(m)
			}
		default:
			fn(s)
		}
	}
	for _, s := range u.members {
		visit(s)
	}
}

// shape computes the tag. It only needs member tags, so object properties
// may be scored while their own union members are still unpartitioned.
func (u *UnionSchema) shape() *UnionSchema {
	u.shaped.Do(func() {
		var kinds []string
		u.leaves(func(s sf.Schema) {
			if tag := s.Tag(); !contains(kinds, tag) {
				kinds = append(kinds, tag)
			}
		})
		u.multi = len(kinds) > 1
		if u.multi {
			u.tag = "(" + strings.Join(kinds, " | ") + ")"
		} else if len(kinds) == 1 {
			u.tag = kinds[0]
		}
	})
	return u
}

// prepare partitions the members once. It runs on first use rather than at
// construction so members may refer to definitions completed later.
func (u *UnionSchema) prepare() *UnionSchema {
	u.shape()
	u.once.Do(u.partition)
	return u
}

func (u *UnionSchema) partition() {
	var cands []candidate
	u.leaves(func(s sf.Schema) {
		switch s := s.(type) {
		case *primitiveSchema:
			u.whole[s.kind] = true
			return
		case *LiteralSchema:
			u.literals[s.kind] = append(u.literals[s.kind], s.value)
			return
		case *anySchema:
			u.acceptAll = true
			return
		case *ObjectSchema:
			cands = append(cands, candidate{schema: s, props: s.Properties()})
			return
		case *IntersectionSchema:
			if s.Tag() == "object" {
				cands = append(cands, candidate{schema: s, props: s.objectProperties()})
				return
			}
		}
		switch k, ok := sf.KindFromTag(s.Tag()); {
		case ok && k == sf.KindArray:
			u.arrays = append(u.arrays, s)
		case ok && k <= sf.KindString:
			u.refined[k] = append(u.refined[k], s)
		default:
			cands = append(cands, candidate{schema: s})
		}
	})

	if len(cands) > 0 {
		t := plan(cands)
		u.objects = sf.NewAdaptive("union",
			func(c *sf.Ctx, v any, _ sf.Kind, pos int, sink sf.Sink) (any, bool) {
				return u.walk(t, c, v.(map[string]any), pos, sink)
			},
			func() sf.CheckFunc { return u.compile(t) })
	}
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

// Members returns the flattened members in declaration order.
func (u *UnionSchema) Members() []sf.Schema { return append([]sf.Schema(nil), u.members...) }

// Specialized reports whether the object dispatch has been specialized.
func (u *UnionSchema) Specialized() bool {
	u.prepare()
	return u.objects != nil && u.objects.Specialized()
}

// Fallback is the fallback of the first member.
func (u *UnionSchema) Fallback() any { return u.members[0].Fallback() }
func (u *UnionSchema) Tag() string   { return u.shape().tag }

func (u *UnionSchema) Score() int {
	if u.shape().multi {
		return 20001
	}
	return 20000
}

// MultiKind reports whether members span more than one type tag.
func (u *UnionSchema) MultiKind() bool { return u.shape().multi }

func (u *UnionSchema) Check(c *sf.Ctx, v any, k sf.Kind, pos int, sink sf.Sink) (any, bool) {
	if u.prepare().acceptAll {
		return v, true
	}
	if !u.multi && u.objects != nil {
		// object-only union: the decision tree is the whole check
		if k != sf.KindObject {
			if sink == nil {
				return nil, false
			}
			sink(c, pos, sf.CodeInvalidType, sf.Mismatch("object", v))
			return u.Fallback(), true
		}
		return u.objects.Check(c, v, k, pos, sink)
	}
	switch k {
	case sf.KindString, sf.KindNumber, sf.KindBoolean, sf.KindNull, sf.KindUndefined:
		return u.checkPrimitive(c, v, k, pos, sink)
	case sf.KindArray:
		return u.checkArray(c, v, k, pos, sink)
	case sf.KindObject:
		if u.objects == nil {
			if sink == nil {
				return nil, false
			}
			sink(c, pos, sf.CodeDisallowedShape, sf.Disallowed("object"))
			return u.Fallback(), true
		}
		return u.objects.Check(c, v, k, pos, sink)
	}
	return v, true
}

func (u *UnionSchema) checkPrimitive(c *sf.Ctx, v any, k sf.Kind, pos int, sink sf.Sink) (any, bool) {
	if u.whole[k] {
		return v, true
	}
	lits := u.literals[k]
	for _, l := range lits {
		if sf.SameValue(l, v) {
			return v, true
		}
	}
	if refined := u.refined[k]; len(refined) > 0 {
		for _, s := range refined {
			if _, ok := s.Check(c, v, k, pos, nil); ok {
				return v, true
			}
		}
		if len(refined) == 1 && len(lits) == 0 {
			return refined[0].Check(c, v, k, pos, sink)
		}
	}
	if sink == nil {
		return nil, false
	}
	sink(c, pos, sf.CodeInvalidEnum, sf.Unexpected(v, lits))
	return u.Fallback(), true
}

func (u *UnionSchema) checkArray(c *sf.Ctx, v any, k sf.Kind, pos int, sink sf.Sink) (any, bool) {
	switch len(u.arrays) {
	case 0:
		if sink == nil {
			return nil, false
		}
		sink(c, pos, sf.CodeDisallowedShape, sf.Disallowed("array"))
		return u.Fallback(), true
	case 1:
		return u.arrays[0].Check(c, v, k, pos, sink)
	}
	for _, a := range u.arrays {
		if _, ok := a.Check(c, v, k, pos, nil); ok {
			return v, true
		}
	}
	if sink == nil {
		return nil, false
	}
	sink(c, pos, sf.CodeUnionNoMatch, sf.NoMatch("array"))
	return u.Fallback(), true
}

// noMatch reports an object that no candidate accepts.
func (u *UnionSchema) noMatch(c *sf.Ctx, _ any, _ sf.Kind, pos int, sink sf.Sink) (any, bool) {
	if sink == nil {
		return nil, false
	}
	sink(c, pos, sf.CodeUnionNoMatch, sf.NoMatch("object"))
	return u.Fallback(), true
}
