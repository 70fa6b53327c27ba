package shapefix

import "sync"

// Schema is the contract every validator node implements.
//
// Check validates v (whose Kind is k) at path position pos. When sink is nil
// the call runs in abort mode: the first violation returns ok == false and
// nothing is reported or written to the path. Otherwise every violation is
// reported through sink and the call never aborts; the returned value is the
// repaired replacement for v (v itself when valid). Containers write repaired
// children back in place only when c.Repairing().
type Schema interface {
	// Fallback returns a fresh conforming placeholder value.
	Fallback() any
	// Tag names the accepted type ("string", "object", "(null | string)", ...).
	Tag() string
	// Score estimates check cost; lower is cheaper. Used to order properties
	// and intersection members.
	Score() int
	Check(c *Ctx, v any, k Kind, pos int, sink Sink) (any, bool)
}

// CheckFunc is the shape of Schema.Check, used for interpreted and
// specialized check plans.
type CheckFunc func(c *Ctx, v any, k Kind, pos int, sink Sink) (any, bool)

// Sink receives a violation found at path position pos. The segments of the
// location are c.Path(pos).
type Sink func(c *Ctx, pos int, code, msg string)

// Mode selects whether a check writes repaired values back into the input.
type Mode uint8

const (
	ModeRepair Mode = iota
	ModeDryRun
)

const pathCapacity = 100

// Ctx is the per-call scratch space: mode, path buffer and effective config.
// A Ctx is owned by a single call and must not be retained.
type Ctx struct {
	mode Mode
	path []Segment
	cfg  *Config
}

var ctxPool = sync.Pool{New: func() any {
	return &Ctx{path: make([]Segment, pathCapacity)}
}}

func acquire(mode Mode, cfg *Config) *Ctx {
	c := ctxPool.Get().(*Ctx)
	c.mode = mode
	c.cfg = cfg
	return c
}

func release(c *Ctx) {
	c.cfg = nil
	if len(c.path) > pathCapacity {
		// drop buffers grown by deep inputs
		c.path = make([]Segment, pathCapacity)
	}
	ctxPool.Put(c)
}

// Repairing reports whether containers should write repaired children back.
func (c *Ctx) Repairing() bool { return c.mode == ModeRepair }

// Mode returns the call mode.
func (c *Ctx) Mode() Mode { return c.mode }

// Set records seg at position pos, growing the buffer for deep inputs.
func (c *Ctx) Set(pos int, seg Segment) {
	if pos >= len(c.path) {
		grown := make([]Segment, max(2*len(c.path), pos+1))
		copy(grown, c.path)
		c.path = grown
	}
	c.path[pos] = seg
}

// Path copies the first pos segments of the current location.
func (c *Ctx) Path(pos int) []Segment {
	if pos == 0 {
		return nil
	}
	out := make([]Segment, pos)
	copy(out, c.path[:pos])
	return out
}

// Threshold is the number of interpreted calls an adaptive check performs
// before it specializes.
func (c *Ctx) Threshold() int64 { return c.cfg.Threshold }
