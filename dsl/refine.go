package dsl

import sf "github.com/reoring/shapefix"

// Refinement is an extra predicate layered over a base schema.
type Refinement struct {
	// Test reports whether a value the base accepted is valid.
	Test func(v any) bool
	// Message describes a failure; nil uses the default custom message.
	Message func(v any) string
	// Fallback replaces a failing value; nil keeps the base fallback.
	Fallback func() any
}

// RefinedSchema is a base schema plus a predicate.
type RefinedSchema struct {
	base sf.Schema
	r    Refinement
}

// Refine layers r over def (see Define). The result keeps the base tag and
// scores 10 above the base.
func Refine(def any, r Refinement) *RefinedSchema {
	return &RefinedSchema{base: Define(def), r: r}
}

// Base returns the refined schema.
func (s *RefinedSchema) Base() sf.Schema { return s.base }

func (s *RefinedSchema) Fallback() any {
	if s.r.Fallback != nil {
		return s.r.Fallback()
	}
	return s.base.Fallback()
}

func (s *RefinedSchema) Tag() string { return s.base.Tag() }
func (s *RefinedSchema) Score() int  { return s.base.Score() + 10 }

func (s *RefinedSchema) Check(c *sf.Ctx, v any, k sf.Kind, pos int, sink sf.Sink) (any, bool) {
	if sink == nil {
		if _, ok := s.base.Check(c, v, k, pos, nil); !ok || !s.r.Test(v) {
			return nil, false
		}
		return v, true
	}
	var failed bool
	out, _ := s.base.Check(c, v, k, pos, func(c *sf.Ctx, at int, code, msg string) {
		failed = true
		sink(c, at, code, msg)
	})
	if s.r.Test(out) {
		return out, true
	}
	// the predicate is not reported against a value the base already replaced
	if failed {
		return s.Fallback(), true
	}
	msg := ""
	if s.r.Message != nil {
		msg = s.r.Message(out)
	}
	sink(c, pos, sf.CodeCustom, sf.Custom(msg))
	return s.Fallback(), true
}
