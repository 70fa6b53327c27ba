package dsl

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	sf "github.com/reoring/shapefix"
)

// LazySchema defers building its definition until first use, which allows
// recursive schemas. Resolution happens once; concurrent first uses may run
// the resolver more than once, but only the first result is kept.
type LazySchema struct {
	resolve func() any
	def     atomic.Pointer[resolved]
}

type resolved struct{ s sf.Schema }

// Lazy wraps a resolver returning a definition (see Define).
func Lazy(resolve func() any) *LazySchema { return &LazySchema{resolve: resolve} }

// Resolve returns the definition, building it on first call.
func (l *LazySchema) Resolve() sf.Schema {
	if r := l.def.Load(); r != nil {
		return r.s
	}
	l.def.CompareAndSwap(nil, &resolved{s: Define(l.resolve())})
	return l.def.Load().s
}

func (l *LazySchema) Fallback() any { return l.Resolve().Fallback() }
func (l *LazySchema) Tag() string   { return l.Resolve().Tag() }
func (l *LazySchema) Score() int    { return l.Resolve().Score() }

func (l *LazySchema) Check(c *sf.Ctx, v any, k sf.Kind, pos int, sink sf.Sink) (any, bool) {
	return l.Resolve().Check(c, v, k, pos, sink)
}

// Defs is an arena of named definitions. Ref hands out a lazy reference by
// name, so definitions may refer to each other (or themselves) regardless of
// declaration order.
type Defs struct {
	mu    sync.RWMutex
	index map[string]int
	nodes []sf.Schema
	refs  []*LazySchema
}

// NewDefs returns an empty arena.
func NewDefs() *Defs { return &Defs{index: map[string]int{}} }

func (d *Defs) slot(name string) int {
	d.mu.RLock()
	i, ok := d.index[name]
	d.mu.RUnlock()
	if ok {
		return i
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if i, ok := d.index[name]; ok {
		return i
	}
	i = len(d.nodes)
	d.index[name] = i
	d.nodes = append(d.nodes, nil)
	d.refs = append(d.refs, Lazy(func() any { return d.at(name, i) }))
	return i
}

func (d *Defs) at(name string, i int) sf.Schema {
	d.mu.RLock()
	s := d.nodes[i]
	d.mu.RUnlock()
	if s == nil {
		panic(fmt.Sprintf("shapefix: undefined definition %q", name))
	}
	return s
}

// Define stores def under name and returns the reference to it.
func (d *Defs) Define(name string, def any) *LazySchema {
	i := d.slot(name)
	s := Define(def)
	d.mu.Lock()
	d.nodes[i] = s
	ref := d.refs[i]
	d.mu.Unlock()
	return ref
}

// Ref returns the reference for name. The same name always yields the same
// schema instance. Using a reference whose name was never defined panics.
func (d *Defs) Ref(name string) *LazySchema {
	i := d.slot(name)
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.refs[i]
}

// Lookup returns the definition stored under name.
func (d *Defs) Lookup(name string) (sf.Schema, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.index[name]
	if !ok || d.nodes[i] == nil {
		return nil, false
	}
	return d.nodes[i], true
}

// Names lists the defined names in sorted order.
func (d *Defs) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.index))
	for n, i := range d.index {
		if d.nodes[i] != nil {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}
