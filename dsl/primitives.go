package dsl

import sf "github.com/reoring/shapefix"

// primitiveSchema accepts every value of one kind.
type primitiveSchema struct {
	kind     sf.Kind
	score    int
	fallback any
}

var (
	boolSchema   = &primitiveSchema{kind: sf.KindBoolean, score: 1, fallback: false}
	numberSchema = &primitiveSchema{kind: sf.KindNumber, score: 2, fallback: float64(0)}
	stringSchema = &primitiveSchema{kind: sf.KindString, score: 3, fallback: ""}
)

// Bool accepts booleans; fallback false.
func Bool() sf.Schema { return boolSchema }

// Number accepts any numeric value; fallback 0.
func Number() sf.Schema { return numberSchema }

// String accepts strings; fallback "".
func String() sf.Schema { return stringSchema }

func (p *primitiveSchema) Fallback() any { return p.fallback }
func (p *primitiveSchema) Tag() string   { return p.kind.String() }
func (p *primitiveSchema) Score() int    { return p.score }

func (p *primitiveSchema) Check(c *sf.Ctx, v any, k sf.Kind, pos int, sink sf.Sink) (any, bool) {
	if k == p.kind {
		return v, true
	}
	if sink == nil {
		return nil, false
	}
	sink(c, pos, sf.CodeInvalidType, sf.Mismatch(p.Tag(), v))
	return p.fallback, true
}

type anySchema struct{}

var anyInstance = &anySchema{}

// Any accepts every value. Its fallback is Undefined.
func Any() sf.Schema { return anyInstance }

// Unknown is an alias of Any.
func Unknown() sf.Schema { return anyInstance }

func (*anySchema) Fallback() any { return sf.Undefined }
func (*anySchema) Tag() string   { return "any" }
func (*anySchema) Score() int    { return 100000 }

func (*anySchema) Check(_ *sf.Ctx, v any, _ sf.Kind, _ int, _ sf.Sink) (any, bool) {
	return v, true
}

type neverSchema struct{}

var neverInstance = &neverSchema{}

// Never rejects every value except Undefined.
func Never() sf.Schema { return neverInstance }

func (*neverSchema) Fallback() any { return sf.Undefined }
func (*neverSchema) Tag() string   { return "never" }
func (*neverSchema) Score() int    { return -1 }

func (*neverSchema) Check(c *sf.Ctx, v any, k sf.Kind, pos int, sink sf.Sink) (any, bool) {
	if k == sf.KindUndefined {
		return v, true
	}
	if sink == nil {
		return nil, false
	}
	sink(c, pos, sf.CodeInvalidType, sf.Mismatch("no value", v))
	return sf.Undefined, true
}
