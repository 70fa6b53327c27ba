package ir

// Package ir defines the instruction list a union decision tree compiles to
// and the loop that executes it. This package is internal and not part of
// the public API.

import sf "github.com/reoring/shapefix"

// Op identifies an instruction.
type Op int

const (
	// OpEqual compares the value at Key with the constant Value: equal falls
	// through to the next instruction, otherwise control jumps to Else.
	OpEqual Op = iota
	// OpTest probes the value at Key with Schema in abort mode: a match falls
	// through, otherwise control jumps to Else.
	OpTest
	// OpDelegate runs a full check of Schemas[0] and returns its result.
	OpDelegate
	// OpFirst probes Schemas in order and accepts the value on the first
	// match; with no match it returns the no-match handler's result.
	OpFirst
)

// Instr is one instruction of a Program.
type Instr struct {
	Op      Op
	Key     string
	Value   any
	Schema  sf.Schema
	Schemas []sf.Schema
	Else    int
}

// Program is a flat instruction list. Branch instructions fall through to
// their consequence; leaves (OpDelegate, OpFirst) terminate execution.
type Program []Instr

// Emit appends in and returns its index.
func (p *Program) Emit(in Instr) int {
	*p = append(*p, in)
	return len(*p) - 1
}

// Patch points the Else of the branch at index at to the next emitted
// instruction.
func (p Program) Patch(at int) { p[at].Else = len(p) }

// Run executes the program against object m. noMatch produces the result of
// an OpFirst leaf in which no candidate matched.
func (p Program) Run(c *sf.Ctx, m map[string]any, pos int, sink sf.Sink, noMatch sf.CheckFunc) (any, bool) {
	pc := 0
	for {
		in := &p[pc]
		switch in.Op {
		case OpEqual:
			if sf.SameValue(in.Value, lookup(m, in.Key)) {
				pc++
			} else {
				pc = in.Else
			}
		case OpTest:
			found := lookup(m, in.Key)
			if _, ok := in.Schema.Check(c, found, sf.KindOf(found), pos, nil); ok {
				pc++
			} else {
				pc = in.Else
			}
		case OpDelegate:
			return in.Schemas[0].Check(c, m, sf.KindObject, pos, sink)
		case OpFirst:
			for _, s := range in.Schemas {
				if _, ok := s.Check(c, m, sf.KindObject, pos, nil); ok {
					return m, true
				}
			}
			return noMatch(c, m, sf.KindObject, pos, sink)
		}
	}
}

func lookup(m map[string]any, key string) any {
	if v, ok := m[key]; ok {
		return v
	}
	return sf.Undefined
}
