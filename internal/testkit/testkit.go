// Package testkit holds helpers shared by package tests.
package testkit

import (
	"testing"

	sf "github.com/reoring/shapefix"
)

// Mode is one optimizer setting scenarios run under.
type Mode struct {
	Name      string
	Threshold int64
}

// Modes lists the interpreted-only and specialize-immediately settings.
var Modes = []Mode{
	{Name: "interpreted", Threshold: sf.NeverOptimize},
	{Name: "specialized", Threshold: 0},
}

// BothModes runs fn once per optimizer mode with a Validator configured for
// it. Callers build their schemas inside fn so adaptive state is per mode.
func BothModes(t *testing.T, fn func(t *testing.T, v *sf.Validator)) {
	t.Helper()
	for _, m := range Modes {
		t.Run(m.Name, func(t *testing.T) {
			cfg := sf.DefaultConfig()
			cfg.Threshold = m.Threshold
			fn(t, sf.New(cfg))
		})
	}
}

// Contains reports whether want is among the rendered errors.
func Contains(errs sf.Errors, want string) bool {
	for _, e := range errs {
		if e.String() == want {
			return true
		}
	}
	return false
}

// MustContain fails t for every entry of want missing from errs.
func MustContain(t *testing.T, errs sf.Errors, want ...string) {
	t.Helper()
	for _, w := range want {
		if !Contains(errs, w) {
			t.Errorf("missing error %q in:\n%v", w, errs.Strings())
		}
	}
}

// Clone deep-copies a generic value tree.
func Clone(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Clone(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Clone(e)
		}
		return out
	}
	return v
}
