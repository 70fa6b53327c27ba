package shapefix

// Validator runs schemas under a fixed Config. It is safe for concurrent use.
type Validator struct {
	cfg Config
}

// New returns a Validator for cfg. MaxErrors <= 0 falls back to
// DefaultMaxErrors and a negative Threshold is treated as 0.
func New(cfg Config) *Validator {
	return &Validator{cfg: cfg.normalized()}
}

// Config returns the effective configuration.
func (v *Validator) Config() Config { return v.cfg }

// collector accumulates up to max errors; later reports are dropped.
type collector struct {
	max  int
	errs Errors
}

func (col *collector) report(c *Ctx, pos int, code, msg string) {
	if len(col.errs) >= col.max {
		return
	}
	col.errs = append(col.errs, ValidationError{Path: c.Path(pos), Code: code, Message: msg})
}

// Fix repairs input in place and returns the conforming value with the errors
// found (at most MaxErrors). Every invalid location is replaced by its
// schema's fallback; when the root itself is invalid the returned value is a
// fresh fallback. Valid parts are left untouched.
func (v *Validator) Fix(s Schema, input any) (any, Errors) {
	return v.run("fix", ModeRepair, s, input)
}

// Validate reports every violation (at most MaxErrors) without modifying
// input. Since nothing is repaired, checks that Fix would run against a
// repaired value (later intersection members, for one) see the original and
// may report the same problem again.
func (v *Validator) Validate(s Schema, input any) Errors {
	_, errs := v.run("validate", ModeDryRun, s, input)
	return errs
}

func (v *Validator) run(op string, mode Mode, s Schema, input any) (any, Errors) {
	c := acquire(mode, &v.cfg)
	defer release(c)
	col := &collector{max: v.cfg.MaxErrors}
	out, _ := s.Check(c, input, KindOf(input), 0, col.report)
	v.cfg.finished(op, len(col.errs))
	return out, col.errs
}

type assertFailure struct{ err ValidationError }

// Assert returns the first violation as a ValidationError, or nil when input
// conforms. It stops at the first violation and never modifies input.
func (v *Validator) Assert(s Schema, input any) (err error) {
	c := acquire(ModeDryRun, &v.cfg)
	defer release(c)
	defer func() {
		r := recover()
		if r == nil {
			v.cfg.finished("assert", 0)
			return
		}
		f, ok := r.(assertFailure)
		if !ok {
			panic(r)
		}
		v.cfg.finished("assert", 1)
		err = f.err
	}()
	s.Check(c, input, KindOf(input), 0, func(c *Ctx, pos int, code, msg string) {
		panic(assertFailure{ValidationError{Path: c.Path(pos), Code: code, Message: msg}})
	})
	return nil
}

// Is reports whether input conforms, in abort mode with no error
// construction.
func (v *Validator) Is(s Schema, input any) bool {
	c := acquire(ModeDryRun, &v.cfg)
	defer release(c)
	_, ok := s.Check(c, input, KindOf(input), 0, nil)
	if ok {
		v.cfg.finished("is", 0)
	} else {
		v.cfg.finished("is", 1)
	}
	return ok
}

// Fix runs Validator.Fix on the default validator.
func Fix(s Schema, input any) (any, Errors) { return Default().Fix(s, input) }

// Validate runs Validator.Validate on the default validator.
func Validate(s Schema, input any) Errors { return Default().Validate(s, input) }

// Assert runs Validator.Assert on the default validator.
func Assert(s Schema, input any) error { return Default().Assert(s, input) }

// Is runs Validator.Is on the default validator.
func Is(s Schema, input any) bool { return Default().Is(s, input) }
