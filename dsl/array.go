package dsl

import sf "github.com/reoring/shapefix"

// ArraySchema accepts arrays whose elements all satisfy the item schema.
type ArraySchema struct {
	item sf.Schema
}

// Array builds an array schema from an element definition (see Define).
func Array(item any) *ArraySchema { return &ArraySchema{item: Define(item)} }

// Item returns the element schema.
func (a *ArraySchema) Item() sf.Schema { return a.item }

func (a *ArraySchema) Fallback() any { return []any{} }
func (a *ArraySchema) Tag() string   { return "array" }
func (a *ArraySchema) Score() int    { return 1000 }

func (a *ArraySchema) Check(c *sf.Ctx, v any, k sf.Kind, pos int, sink sf.Sink) (any, bool) {
	if k != sf.KindArray {
		if sink == nil {
			return nil, false
		}
		sink(c, pos, sf.CodeInvalidType, sf.Mismatch("array", v))
		return []any{}, true
	}
	arr := v.([]any)
	for i, found := range arr {
		if sink != nil {
			c.Set(pos, sf.Index(i))
		}
		valid, ok := a.item.Check(c, found, sf.KindOf(found), pos+1, sink)
		if !ok {
			return nil, false
		}
		if c.Repairing() {
			arr[i] = valid
		}
	}
	return arr, true
}
