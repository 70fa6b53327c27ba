// Package defs loads named schema definitions from YAML.
//
// A definitions file maps names to schemas. Plain YAML describes shapes
// directly: a mapping is an object (a "key?" entry is optional), a one-element
// sequence is an array of that element and a scalar is a constant. Tags build
// everything else:
//
//	root: User
//	definitions:
//	  User: !union
//	    - type: admin
//	      id: !string
//	      permissions: [!string]
//	    - type: customer
//	      id: !string
//	      plan: !union [free, premium]
//	      address?: !ref Address
//	  Address:
//	    street: !string
//	    zip: !refine {schema: !string, pattern: "^[0-9]{5}$"}
//
// Leaf tags are !string, !number, !boolean, !any, !unknown and !never.
// Combinators are !union [...], !intersection [...], !nullable (a mapping, or a
// sequence whose items form a union) and !ref Name. !refine takes a mapping
// with the base schema under "schema" and any of test (an expr-lang predicate
// over `value`), message, fallback, minLen, maxLen, min, max, pattern,
// integer and nonEmpty.
package defs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/dsl"
)

// Error locates a problem in the definitions source.
type Error struct {
	Line, Column int
	Msg          string
}

func (e *Error) Error() string { return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg) }

func errorf(n *yaml.Node, format string, args ...any) error {
	return &Error{Line: n.Line, Column: n.Column, Msg: fmt.Sprintf(format, args...)}
}

// Set is a loaded definitions file.
type Set struct {
	defs *dsl.Defs
	root string
}

// Names lists the definitions in sorted order.
func (s *Set) Names() []string { return s.defs.Names() }

// Schema returns the reference to a definition.
func (s *Set) Schema(name string) (sf.Schema, bool) {
	if _, ok := s.defs.Lookup(name); !ok {
		return nil, false
	}
	return s.defs.Ref(name), true
}

// RootName is the entry definition: the "root" key, or the only definition.
func (s *Set) RootName() string { return s.root }

// Root returns the entry definition.
func (s *Set) Root() (sf.Schema, error) {
	if s.root == "" {
		return nil, errors.New("defs: no root definition; set \"root\" or pick one by name")
	}
	if sc, ok := s.Schema(s.root); ok {
		return sc, nil
	}
	return nil, fmt.Errorf("defs: root definition %q not found", s.root)
}

// LoadFile reads a definitions file.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	set, err := Parse(data)
	var pe *Error
	if errors.As(err, &pe) {
		return nil, fmt.Errorf("%s:%w", path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Load reads definitions from r.
func Load(r io.Reader) (*Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds the definitions found in data. Every !ref must name a
// definition of the same file.
func Parse(data []byte) (*Set, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("defs: empty document")
		}
		return nil, fmt.Errorf("defs: %w", err)
	}
	top := &doc
	if top.Kind == yaml.DocumentNode && len(top.Content) > 0 {
		top = top.Content[0]
	}
	if top.Kind != yaml.MappingNode {
		return nil, errorf(top, "expected a mapping with \"definitions\"")
	}

	b := &builder{defs: dsl.NewDefs(), nodes: map[string]*yaml.Node{}, building: map[string]bool{}}
	set := &Set{defs: b.defs}
	var definitions *yaml.Node
	if err := pairs(top, func(k, v *yaml.Node) error {
		switch k.Value {
		case "root":
			set.root = v.Value
		case "definitions":
			definitions = v
		default:
			return errorf(k, "unknown key %q", k.Value)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if definitions == nil || definitions.Kind != yaml.MappingNode {
		return nil, errorf(top, "missing \"definitions\" mapping")
	}

	// Definitions are built on first resolution, so references may point
	// forward; every one is then forced in file order to surface errors.
	var names []string
	if err := pairs(definitions, func(k, v *yaml.Node) error {
		name := k.Value
		b.nodes[name] = v
		b.defs.Define(name, dsl.Lazy(func() any { return b.build(name) }))
		names = append(names, name)
		return nil
	}); err != nil {
		return nil, err
	}
	for _, name := range names {
		s, _ := b.defs.Lookup(name)
		s.(*dsl.LazySchema).Resolve()
		if b.err != nil {
			return nil, b.err
		}
	}
	if set.root == "" && len(names) == 1 {
		set.root = names[0]
	}
	return set, nil
}

// pairs walks a mapping in order and rejects duplicate keys.
func pairs(m *yaml.Node, fn func(k, v *yaml.Node) error) error {
	seen := make(map[string]*yaml.Node, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		if first, dup := seen[k.Value]; dup {
			return errorf(k, "duplicate key %q (first at %d:%d)", k.Value, first.Line, first.Column)
		}
		seen[k.Value] = k
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}
