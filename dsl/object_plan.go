package dsl

import sf "github.com/reoring/shapefix"

// propStep checks one property of a map; false aborts.
type propStep func(c *sf.Ctx, m map[string]any, pos int, sink sf.Sink) bool

// specialize flattens the property list into per-property closures. Leaf
// kinds and constants are tested inline instead of through a Check call;
// messages, paths and writes stay identical to interpret.
func (o *ObjectSchema) specialize() sf.CheckFunc {
	props := o.properties()
	steps := make([]propStep, len(props))
	for i := range props {
		steps[i] = compileProperty(props[i])
	}
	return func(c *sf.Ctx, v any, k sf.Kind, pos int, sink sf.Sink) (any, bool) {
		if k != sf.KindObject {
			return o.mismatch(c, v, pos, sink)
		}
		m := v.(map[string]any)
		for _, step := range steps {
			if !step(c, m, pos, sink) {
				return nil, false
			}
		}
		return v, true
	}
}

func compileProperty(p Property) propStep {
	key := p.Key
	switch s := p.Schema.(type) {
	case *primitiveSchema:
		kind, tag := s.kind, s.Tag()
		return func(c *sf.Ctx, m map[string]any, pos int, sink sf.Sink) bool {
			found, exists := m[key]
			if exists && !sf.IsUndefined(found) {
				if sf.KindOf(found) == kind {
					return true
				}
				if sink == nil {
					return false
				}
				c.Set(pos, sf.Key(key))
				sink(c, pos+1, sf.CodeInvalidType, sf.Mismatch(tag, found))
				if c.Repairing() {
					m[key] = s.fallback
				}
				return true
			}
			return p.absent(c, m, exists, pos, sink)
		}
	case *LiteralSchema:
		value := s.value
		return func(c *sf.Ctx, m map[string]any, pos int, sink sf.Sink) bool {
			found, exists := m[key]
			if exists && !sf.IsUndefined(found) {
				if sf.SameValue(value, found) {
					return true
				}
				if sink == nil {
					return false
				}
				c.Set(pos, sf.Key(key))
				sink(c, pos+1, sf.CodeInvalidLiteral, sf.LiteralMismatch(value, found))
				if c.Repairing() {
					m[key] = value
				}
				return true
			}
			return p.absent(c, m, exists, pos, sink)
		}
	}
	check := p.Schema.Check
	return func(c *sf.Ctx, m map[string]any, pos int, sink sf.Sink) bool {
		found, exists := m[key]
		if exists && !sf.IsUndefined(found) {
			if sink != nil {
				c.Set(pos, sf.Key(key))
			}
			valid, ok := check(c, found, sf.KindOf(found), pos+1, sink)
			if !ok {
				return false
			}
			if c.Repairing() {
				m[key] = valid
			}
			return true
		}
		return p.absent(c, m, exists, pos, sink)
	}
}
