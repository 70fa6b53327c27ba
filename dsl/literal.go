package dsl

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"

	sf "github.com/reoring/shapefix"
)

// LiteralSchema accepts exactly one null, boolean, number or string value.
type LiteralSchema struct {
	value any
	kind  sf.Kind
}

type literalKey struct {
	kind sf.Kind
	b    bool
	f    float64
	nan  bool
	s    string
}

var (
	literalsMu sync.Mutex
	literals   = map[literalKey]*LiteralSchema{}
)

// Literal returns the constant schema for v. Equal constants share one
// instance: numbers compare by value across Go numeric types, every NaN is
// the same constant and -0 is 0. Unsupported types panic.
func Literal(v any) *LiteralSchema {
	key, value := literalKeyOf(v)
	literalsMu.Lock()
	defer literalsMu.Unlock()
	if l, ok := literals[key]; ok {
		return l
	}
	l := &LiteralSchema{value: value, kind: key.kind}
	literals[key] = l
	return l
}

func literalKeyOf(v any) (literalKey, any) {
	switch x := v.(type) {
	case nil:
		return literalKey{kind: sf.KindNull}, nil
	case bool:
		return literalKey{kind: sf.KindBoolean, b: x}, x
	case string:
		return literalKey{kind: sf.KindString, s: x}, x
	}
	if _, isNum := v.(json.Number); isNum || sf.KindOf(v) == sf.KindNumber {
		f, _ := sf.Number(v)
		switch {
		case math.IsNaN(f):
			return literalKey{kind: sf.KindNumber, nan: true}, math.NaN()
		case f == 0:
			f = 0
		}
		return literalKey{kind: sf.KindNumber, f: f}, f
	}
	panic(fmt.Sprintf("shapefix: unsupported literal type %T", v))
}

// Value returns the constant.
func (l *LiteralSchema) Value() any { return l.value }

// Matches reports whether v equals the constant.
func (l *LiteralSchema) Matches(v any) bool { return sf.SameValue(l.value, v) }

func (l *LiteralSchema) Fallback() any { return l.value }
func (l *LiteralSchema) Tag() string   { return l.kind.String() }
func (l *LiteralSchema) Score() int    { return 0 }

func (l *LiteralSchema) Check(c *sf.Ctx, v any, _ sf.Kind, pos int, sink sf.Sink) (any, bool) {
	if sf.SameValue(l.value, v) {
		return v, true
	}
	if sink == nil {
		return nil, false
	}
	sink(c, pos, sf.CodeInvalidLiteral, sf.LiteralMismatch(l.value, v))
	return l.value, true
}
