package shapefix

import (
	"encoding/json"
	"fmt"
)

// Kind is the coarse runtime category of a value, used for fast dispatch.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindObject
	KindArray
	KindNever

	kindCount
)

// KindCount is the number of distinct kinds; handy for per-kind lookup tables.
const KindCount = int(kindCount)

var kindNames = [kindCount]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBoolean:   "boolean",
	KindNumber:    "number",
	KindString:    "string",
	KindObject:    "object",
	KindArray:     "array",
	KindNever:     "never",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "never"
}

// KindFromTag maps a type tag back to its Kind. Synthesized tags (unions of
// several kinds, "any") report false.
func KindFromTag(tag string) (Kind, bool) {
	for k, name := range kindNames {
		if name == tag {
			return Kind(k), true
		}
	}
	return KindNever, false
}

type undefined struct{}

func (undefined) String() string { return "undefined" }

// MarshalJSON renders Undefined as null; use Strip to drop it from trees instead.
func (undefined) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Undefined marks an absent value. A map entry holding Undefined is treated as
// a key that exists but carries no value, which is distinct from a missing key.
var Undefined any = undefined{}

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// KindOf returns the coarse category of v. Objects are map[string]any and
// arrays are []any, the shapes produced by generic JSON/YAML decoding. Every
// Go numeric type and json.Number count as numbers.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case undefined:
		return KindUndefined
	case bool:
		return KindBoolean
	case string:
		return KindString
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return KindNumber
	case map[string]any:
		return KindObject
	case []any:
		return KindArray
	}
	return KindNever
}

// TypeName names the type of v the way messages report it ("null", "array",
// "object", "string", ...). Values outside the generic tree shapes report
// their Go type.
func TypeName(v any) string {
	k := KindOf(v)
	if k == KindNever {
		return fmt.Sprintf("%T", v)
	}
	return k.String()
}
