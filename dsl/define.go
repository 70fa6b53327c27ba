package dsl

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	sf "github.com/reoring/shapefix"
)

// Define turns a definition into a schema:
//
//   - a Schema is returned as is
//   - nil, booleans, numbers and strings become Literal
//   - map[string]any becomes an Object; a "key?" entry declares an optional key
//   - a one-element []any becomes an Array of that element
//
// Anything else panics.
func Define(def any) sf.Schema {
	switch d := def.(type) {
	case sf.Schema:
		return d
	case nil, bool, string, json.Number:
		return Literal(d)
	case map[string]any:
		return ObjectOf(d)
	case []any:
		if len(d) != 1 {
			panic(fmt.Sprintf("shapefix: array definition needs exactly one element, got %d", len(d)))
		}
		return Array(d[0])
	}
	if sf.KindOf(def) == sf.KindNumber {
		return Literal(def)
	}
	panic(fmt.Sprintf("shapefix: cannot define a schema from %T", def))
}

// ObjectOf builds an object from a map definition. Keys are taken in sorted
// order; a trailing "?" marks the key optional.
func ObjectOf(def map[string]any) *ObjectSchema {
	keys := make([]string, 0, len(def))
	for k := range def {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	props := make([]Property, 0, len(keys))
	for _, k := range keys {
		if name, ok := strings.CutSuffix(k, "?"); ok {
			props = append(props, Optional(name, def[k]))
			continue
		}
		props = append(props, Field(k, def[k]))
	}
	return Object(props...)
}
