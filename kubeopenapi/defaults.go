package kubeopenapi

import sf "github.com/reoring/shapefix"

// defaulted repairs a value of the wrong type (or a missing required key)
// with the schema's default. Violations nested deeper keep their own repair.
type defaulted struct {
	sf.Schema
	value any
}

func (d *defaulted) Fallback() any { return clone(d.value) }

func (d *defaulted) Check(c *sf.Ctx, v any, k sf.Kind, pos int, sink sf.Sink) (any, bool) {
	if sink == nil {
		return d.Schema.Check(c, v, k, pos, nil)
	}
	replaced := false
	out, ok := d.Schema.Check(c, v, k, pos, func(c *sf.Ctx, at int, code, msg string) {
		if at == pos {
			replaced = true
		}
		sink(c, at, code, msg)
	})
	if replaced {
		return d.Fallback(), ok
	}
	return out, ok
}

func clone(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = clone(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = clone(e)
		}
		return out
	}
	return v
}
