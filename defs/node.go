package defs

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/dsl"
	"github.com/reoring/shapefix/rules"
)

type builder struct {
	defs     *dsl.Defs
	nodes    map[string]*yaml.Node
	building map[string]bool
	err      error
}

// build is the resolver of a definition. Failures are kept in b.err and
// yield Never, since resolvers cannot return errors.
func (b *builder) build(name string) any {
	if b.building[name] {
		b.fail(errorf(b.nodes[name], "definition %q depends on itself outside an object, array or union", name))
		return dsl.Never()
	}
	b.building[name] = true
	defer delete(b.building, name)
	s, err := b.schema(b.nodes[name])
	if err != nil {
		b.fail(err)
		return dsl.Never()
	}
	return s
}

func (b *builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *builder) schema(n *yaml.Node) (sf.Schema, error) {
	if n.Kind == yaml.AliasNode {
		return b.schema(n.Alias)
	}
	switch n.Tag {
	case "!string":
		return dsl.String(), nil
	case "!number":
		return dsl.Number(), nil
	case "!boolean":
		return dsl.Bool(), nil
	case "!any", "!unknown":
		return dsl.Any(), nil
	case "!never":
		return dsl.Never(), nil
	case "!ref":
		if n.Kind != yaml.ScalarNode || n.Value == "" {
			return nil, errorf(n, "!ref needs a definition name")
		}
		if _, ok := b.nodes[n.Value]; !ok {
			return nil, errorf(n, "undefined reference %q", n.Value)
		}
		return b.defs.Ref(n.Value), nil
	case "!union", "!intersection":
		if n.Kind != yaml.SequenceNode {
			return nil, errorf(n, "%s needs a sequence", n.Tag)
		}
		members, err := b.list(n.Content)
		if err != nil {
			return nil, err
		}
		if n.Tag == "!union" {
			return dsl.Union(members...), nil
		}
		return dsl.Intersection(members...), nil
	case "!nullable":
		switch n.Kind {
		case yaml.MappingNode:
			obj, err := b.object(n)
			if err != nil {
				return nil, err
			}
			return dsl.Nullable(obj), nil
		case yaml.SequenceNode:
			members, err := b.list(n.Content)
			if err != nil {
				return nil, err
			}
			return dsl.Nullable(dsl.Union(members...)), nil
		}
		return nil, errorf(n, "!nullable needs a mapping or a sequence")
	case "!refine":
		return b.refine(n)
	}
	if strings.HasPrefix(n.Tag, "!") && !strings.HasPrefix(n.Tag, "!!") && n.Tag != "!" {
		return nil, errorf(n, "unknown tag %s", n.Tag)
	}

	switch n.Kind {
	case yaml.MappingNode:
		return b.object(n)
	case yaml.SequenceNode:
		if len(n.Content) != 1 {
			return nil, errorf(n, "an array definition needs exactly one element, got %d", len(n.Content))
		}
		item, err := b.schema(n.Content[0])
		if err != nil {
			return nil, err
		}
		return dsl.Array(item), nil
	case yaml.ScalarNode:
		v, err := value(n)
		if err != nil {
			return nil, err
		}
		return dsl.Literal(v), nil
	}
	return nil, errorf(n, "unsupported node")
}

func (b *builder) list(nodes []*yaml.Node) ([]any, error) {
	out := make([]any, 0, len(nodes))
	for _, c := range nodes {
		s, err := b.schema(c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// object keeps declaration order, which breaks score ties between properties.
func (b *builder) object(n *yaml.Node) (*dsl.ObjectSchema, error) {
	var props []dsl.Property
	err := pairs(n, func(k, v *yaml.Node) error {
		s, err := b.schema(v)
		if err != nil {
			return err
		}
		if name, ok := strings.CutSuffix(k.Value, "?"); ok {
			props = append(props, dsl.Optional(name, s))
		} else {
			props = append(props, dsl.Field(k.Value, s))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dsl.Object(props...), nil
}

func (b *builder) refine(n *yaml.Node) (sf.Schema, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errorf(n, "!refine needs a mapping")
	}
	var (
		base     sf.Schema
		checks   []dsl.Refinement
		message  string
		test     *yaml.Node
		fallback any
		hasFb    bool
	)
	err := pairs(n, func(k, v *yaml.Node) error {
		var err error
		switch k.Value {
		case "schema":
			base, err = b.schema(v)
		case "test":
			test = v
		case "message":
			message = v.Value
		case "fallback":
			fallback, err = value(v)
			hasFb = true
		case "minLen", "maxLen":
			var l int
			if err = v.Decode(&l); err == nil {
				if k.Value == "minLen" {
					checks = append(checks, rules.MinLen(l))
				} else {
					checks = append(checks, rules.MaxLen(l))
				}
			}
		case "min", "max":
			var f float64
			if err = v.Decode(&f); err == nil {
				if k.Value == "min" {
					checks = append(checks, rules.Range(f, math.Inf(1)))
				} else {
					checks = append(checks, rules.Range(math.Inf(-1), f))
				}
			}
		case "pattern":
			if _, err = regexp.Compile(v.Value); err == nil {
				checks = append(checks, rules.Pattern(v.Value))
			}
		case "integer", "nonEmpty":
			var on bool
			if err = v.Decode(&on); err == nil && on {
				if k.Value == "integer" {
					checks = append(checks, rules.Integer())
				} else {
					checks = append(checks, rules.NonEmpty())
				}
			}
		default:
			return errorf(k, "unknown !refine key %q", k.Value)
		}
		if err != nil {
			return errorf(v, "%s: %v", k.Value, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, errorf(n, "!refine needs a \"schema\"")
	}
	if test != nil {
		r, err := rules.Expr(test.Value, message)
		if err != nil {
			return nil, errorf(test, "%v", err)
		}
		checks = append(checks, r)
	}
	if len(checks) == 0 {
		return nil, errorf(n, "!refine needs at least one check")
	}
	r := rules.All(checks...)
	if message != "" {
		r.Message = func(any) string { return message }
	}
	if hasFb {
		r = rules.OrElse(r, fallback)
	}
	return dsl.Refine(base, r), nil
}

// value converts a plain YAML node into a generic tree.
func value(n *yaml.Node) (any, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, errorf(n, "%v", err)
	}
	return normalize(v), nil
}

func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	}
	return v
}
