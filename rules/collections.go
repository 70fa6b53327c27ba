package rules

import (
	"fmt"
	"strings"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/dsl"
)

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional gates refinements on a value found inside the checked tree.
type Conditional struct {
	path string
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If compares the value at a JSON Pointer (relative to the refined value) with want.
// A missing value never satisfies the condition.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: normalizePath(path), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Then applies rs only when the condition holds.
func (c Conditional) Then(rs ...dsl.Refinement) dsl.Refinement {
	inner := All(rs...)
	return dsl.Refinement{
		Test:    func(v any) bool { return !c.eval(v) || inner.Test(v) },
		Message: inner.Message,
	}
}

func (c Conditional) eval(v any) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.eval(v) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.eval(v) {
				return true
			}
		}
		return false
	}
	cur, ok := valueAt(v, c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

func compare(cur any, op Op, want any) bool {
	switch op {
	case Eq:
		return sf.SameValue(cur, want)
	case Ne:
		return !sf.SameValue(cur, want)
	}
	a, ok := sf.Number(cur)
	if !ok {
		if s, isStr := cur.(string); isStr {
			if w, wStr := want.(string); wStr {
				return ordered(strings.Compare(s, w), op)
			}
		}
		return false
	}
	b, ok := sf.Number(want)
	if !ok {
		return false
	}
	switch {
	case a < b:
		return ordered(-1, op)
	case a > b:
		return ordered(1, op)
	case a == b:
		return ordered(0, op)
	}
	return false // NaN
}

func ordered(cmp int, op Op) bool {
	switch op {
	case Lt:
		return cmp < 0
	case Le:
		return cmp <= 0
	case Gt:
		return cmp > 0
	case Ge:
		return cmp >= 0
	}
	return false
}

// AtLeastOne requires the array at collectionPath to be non-empty. Missing or
// non-array values are left to the schema.
func AtLeastOne(collectionPath string) dsl.Refinement {
	p := normalizePath(collectionPath)
	return dsl.Refinement{
		Test: func(v any) bool {
			arr, ok := arrayAt(v, p)
			return !ok || len(arr) > 0
		},
		Message: func(any) string { return p + ": at least 1 item is required" },
	}
}

// UniqueBy requires elements of the array at collectionPath to carry distinct
// values at keyPath (relative to each element, e.g. "sku" or "/sku").
// Elements without the key are ignored.
func UniqueBy(collectionPath, keyPath string) dsl.Refinement {
	cp := normalizePath(collectionPath)
	kp := normalizePath(keyPath)
	dup := func(v any) (first, second int, key string, found bool) {
		arr, ok := arrayAt(v, cp)
		if !ok {
			return 0, 0, "", false
		}
		seen := map[string]int{}
		for i, elem := range arr {
			kv, ok := valueAt(elem, kp)
			if !ok {
				continue
			}
			key := sf.TypeName(kv) + ":" + sf.Print(kv)
			if j, exists := seen[key]; exists {
				return j, i, sf.Print(kv), true
			}
			seen[key] = i
		}
		return 0, 0, "", false
	}
	return dsl.Refinement{
		Test: func(v any) bool { _, _, _, found := dup(v); return !found },
		Message: func(v any) string {
			j, i, key, _ := dup(v)
			return fmt.Sprintf("%s: duplicate value %s at %d (first seen at %d)", cp, key, i, j)
		},
	}
}

func arrayAt(v any, p string) ([]any, bool) {
	x, ok := valueAt(v, p)
	if !ok {
		return nil, false
	}
	arr, ok := x.([]any)
	return arr, ok
}
