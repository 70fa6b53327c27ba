package dsl

import (
	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/internal/ir"
)

// candidate is an object-like union member with the properties still
// available for discrimination, cheapest first.
type candidate struct {
	schema sf.Schema
	props  []Property
}

// node is a decision tree node: a branch when prop is set, a leaf otherwise.
type node struct {
	prop     *Property
	then     *node
	els      *node
	positive bool
	schemas  []sf.Schema
}

// plan builds the decision tree over cands.
func plan(cands []candidate) *node { return build(cands, false) }

// build recurses over the candidates. positive marks that the path to this
// node proved every remaining candidate's discriminants.
func build(cands []candidate, positive bool) *node {
	limit := 0
	if positive {
		limit = 1
	}
	if len(cands) > limit {
		if prop := discriminant(cands); prop != nil {
			cons, alt := partition(cands, prop)
			if len(alt) == 0 && len(cons) > 1 {
				// no actual branching: keep going with the pruned properties
				return build(cons, positive)
			}
			return &node{prop: prop, then: build(cons, true), els: build(alt, false)}
		}
	}
	leaf := &node{positive: positive, schemas: make([]sf.Schema, len(cands))}
	for i, c := range cands {
		leaf.schemas[i] = c.schema
	}
	return leaf
}

// discriminant picks, among the first remaining property of each candidate,
// the cheapest one when it scores below an object.
func discriminant(cands []candidate) *Property {
	best := 10000
	for _, c := range cands {
		if len(c.props) > 0 && c.props[0].Score() < best {
			if best = c.props[0].Score(); best == 0 {
				break
			}
		}
	}
	if best >= 100 {
		return nil
	}
	for _, c := range cands {
		if len(c.props) > 0 && c.props[0].Score() == best {
			p := c.props[0]
			return &p
		}
	}
	return nil
}

// partition splits cands into those declaring prop (same key and the same
// schema instance), with prop removed, and the rest.
func partition(cands []candidate, prop *Property) (cons, alt []candidate) {
	for _, c := range cands {
		i := -1
		for j, p := range c.props {
			if p.Key == prop.Key && p.Schema == prop.Schema {
				i = j
				break
			}
		}
		if i < 0 {
			alt = append(alt, c)
			continue
		}
		rest := make([]Property, 0, len(c.props)-1)
		rest = append(rest, c.props[:i]...)
		rest = append(rest, c.props[i+1:]...)
		cons = append(cons, candidate{schema: c.schema, props: rest})
	}
	return cons, alt
}

// walk interprets the tree for object m.
func (u *UnionSchema) walk(t *node, c *sf.Ctx, m map[string]any, pos int, sink sf.Sink) (any, bool) {
	for t.prop != nil {
		found, ok := m[t.prop.Key]
		if !ok {
			found = sf.Undefined
		}
		if _, match := t.prop.Schema.Check(c, found, sf.KindOf(found), pos, nil); match {
			t = t.then
		} else {
			t = t.els
		}
	}
	if t.positive && len(t.schemas) == 1 {
		return t.schemas[0].Check(c, m, sf.KindObject, pos, sink)
	}
	for _, s := range t.schemas {
		if _, ok := s.Check(c, m, sf.KindObject, pos, nil); ok {
			return m, true
		}
	}
	return u.noMatch(c, m, sf.KindObject, pos, sink)
}

// compile lowers the tree to an instruction list. Constant discriminants
// become inline equality tests.
func (u *UnionSchema) compile(t *node) sf.CheckFunc {
	var prog ir.Program
	emit(&prog, t)
	return func(c *sf.Ctx, v any, _ sf.Kind, pos int, sink sf.Sink) (any, bool) {
		return prog.Run(c, v.(map[string]any), pos, sink, u.noMatch)
	}
}

func emit(prog *ir.Program, t *node) {
	if t.prop == nil {
		if t.positive && len(t.schemas) == 1 {
			prog.Emit(ir.Instr{Op: ir.OpDelegate, Schemas: t.schemas})
		} else {
			prog.Emit(ir.Instr{Op: ir.OpFirst, Schemas: t.schemas})
		}
		return
	}
	var at int
	if lit, ok := t.prop.Schema.(*LiteralSchema); ok {
		at = prog.Emit(ir.Instr{Op: ir.OpEqual, Key: t.prop.Key, Value: lit.value})
	} else {
		at = prog.Emit(ir.Instr{Op: ir.OpTest, Key: t.prop.Key, Schema: t.prop.Schema})
	}
	emit(prog, t.then)
	prog.Patch(at)
	emit(prog, t.els)
}
