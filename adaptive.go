package shapefix

import "sync/atomic"

// Adaptive routes checks to an interpreted implementation until the call
// count passes the caller's threshold, then builds and installs a
// specialized plan once. Both implementations must be observationally
// identical: same results, same errors in the same order, same writes.
//
// Concurrent callers may build more than one plan; only the first one
// installed is kept.
type Adaptive struct {
	kind   string
	interp CheckFunc
	build  func() CheckFunc
	calls  atomic.Int64
	plan   atomic.Pointer[CheckFunc]
}

// NewAdaptive wraps interp; build produces the specialized equivalent.
func NewAdaptive(kind string, interp CheckFunc, build func() CheckFunc) *Adaptive {
	return &Adaptive{kind: kind, interp: interp, build: build}
}

// Check dispatches to the installed plan or the interpreted path.
func (a *Adaptive) Check(c *Ctx, v any, k Kind, pos int, sink Sink) (any, bool) {
	if p := a.plan.Load(); p != nil {
		return (*p)(c, v, k, pos, sink)
	}
	if a.calls.Add(1) <= c.cfg.Threshold {
		return a.interp(c, v, k, pos, sink)
	}
	return a.specialize(c)(c, v, k, pos, sink)
}

func (a *Adaptive) specialize(c *Ctx) CheckFunc {
	fn := a.build()
	if !a.plan.CompareAndSwap(nil, &fn) {
		return *a.plan.Load()
	}
	c.cfg.specialized(a.kind, a.calls.Load())
	return fn
}

// Specialized reports whether the plan is installed.
func (a *Adaptive) Specialized() bool { return a.plan.Load() != nil }

// Calls returns how many calls reached the interpreted router.
func (a *Adaptive) Calls() int64 { return a.calls.Load() }
