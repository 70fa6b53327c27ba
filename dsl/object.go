package dsl

import (
	"slices"
	"sync"

	sf "github.com/reoring/shapefix"
)

// Property is one named entry of an object schema.
type Property struct {
	Key      string
	Schema   sf.Schema
	Optional bool
}

// Field declares a required property. def follows Define.
func Field(key string, def any) Property { return Property{Key: key, Schema: Define(def)} }

// Optional declares a property that may be absent or Undefined.
func Optional(key string, def any) Property {
	return Property{Key: key, Schema: Define(def), Optional: true}
}

// Score is the child score, plus 100 when optional.
func (p Property) Score() int {
	if p.Optional {
		return p.Schema.Score() + 100
	}
	return p.Schema.Score()
}

// ObjectSchema accepts maps satisfying every property. Unknown keys are kept
// untouched.
type ObjectSchema struct {
	decl  []Property
	once  sync.Once
	props []Property
	check *sf.Adaptive
}

// Object builds an object schema. Properties are checked cheapest first;
// equal scores keep declaration order.
func Object(props ...Property) *ObjectSchema {
	o := &ObjectSchema{decl: slices.Clone(props)}
	o.check = sf.NewAdaptive("object", o.interpret, o.specialize)
	return o
}

// properties sorts on first use, so a property may refer to a definition
// that is completed after the object is built.
func (o *ObjectSchema) properties() []Property {
	o.once.Do(func() {
		o.props = slices.Clone(o.decl)
		slices.SortStableFunc(o.props, func(a, b Property) int { return a.Score() - b.Score() })
	})
	return o.props
}

// Extend returns a new object with other's properties followed by o's.
func (o *ObjectSchema) Extend(other *ObjectSchema) *ObjectSchema {
	return Object(append(slices.Clone(other.decl), o.decl...)...)
}

// Properties returns the properties in check order.
func (o *ObjectSchema) Properties() []Property { return slices.Clone(o.properties()) }

// Specialized reports whether the specialized plan is installed.
func (o *ObjectSchema) Specialized() bool { return o.check.Specialized() }

func (o *ObjectSchema) Fallback() any {
	props := o.properties()
	m := make(map[string]any, len(props))
	for _, p := range props {
		m[p.Key] = p.Schema.Fallback()
	}
	return m
}

func (o *ObjectSchema) Tag() string { return "object" }
func (o *ObjectSchema) Score() int  { return 100 }

func (o *ObjectSchema) Check(c *sf.Ctx, v any, k sf.Kind, pos int, sink sf.Sink) (any, bool) {
	return o.check.Check(c, v, k, pos, sink)
}

func (o *ObjectSchema) mismatch(c *sf.Ctx, v any, pos int, sink sf.Sink) (any, bool) {
	if sink == nil {
		return nil, false
	}
	sink(c, pos, sf.CodeInvalidType, sf.Mismatch("object", v))
	return o.Fallback(), true
}

func (o *ObjectSchema) interpret(c *sf.Ctx, v any, k sf.Kind, pos int, sink sf.Sink) (any, bool) {
	if k != sf.KindObject {
		return o.mismatch(c, v, pos, sink)
	}
	m := v.(map[string]any)
	props := o.properties()
	for i := range props {
		if !props[i].check(c, m, pos, sink) {
			return nil, false
		}
	}
	return v, true
}

func (p *Property) check(c *sf.Ctx, m map[string]any, pos int, sink sf.Sink) bool {
	found, exists := m[p.Key]
	if exists && !sf.IsUndefined(found) {
		if sink != nil {
			c.Set(pos, sf.Key(p.Key))
		}
		valid, ok := p.Schema.Check(c, found, sf.KindOf(found), pos+1, sink)
		if !ok {
			return false
		}
		if c.Repairing() {
			m[p.Key] = valid
		}
		return true
	}
	return p.absent(c, m, exists, pos, sink)
}

// absent handles a key that is missing or holds Undefined.
func (p *Property) absent(c *sf.Ctx, m map[string]any, exists bool, pos int, sink sf.Sink) bool {
	if p.Optional {
		return true
	}
	if sink == nil {
		return false
	}
	if exists {
		c.Set(pos, sf.Key(p.Key))
		sink(c, pos+1, sf.CodeInvalidType, sf.Mismatch(p.Schema.Tag(), sf.Undefined))
	} else {
		sink(c, pos, sf.CodeRequired, sf.MissingKey(p.Key))
	}
	if c.Repairing() {
		m[p.Key] = p.Schema.Fallback()
	}
	return true
}
