package kubeopenapi

import "fmt"

// Options controls import behavior for Kubernetes OpenAPI v3 schemas.
type Options struct {
	// Strict turns unsupported keywords into errors instead of warnings.
	Strict bool
	// EnableEmbeddedChecks requires apiVersion, kind and metadata on objects
	// marked x-kubernetes-embedded-resource.
	EnableEmbeddedChecks bool
	// IgnoreDefaults keeps the type fallback when repairing a value whose
	// schema declares a default.
	IgnoreDefaults bool
}

// Diag carries non-fatal warnings produced during import.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool  { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string { return append([]string(nil), d.ws...) }

func (d *simpleDiag) warnf(ptr, f string, a ...any) {
	d.ws = append(d.ws, at(ptr)+": "+fmt.Sprintf(f, a...))
}

// Error is an import failure located by JSON Pointer inside the schema document.
type Error struct {
	Pointer string
	Msg     string
}

func (e *Error) Error() string { return "kubeopenapi: " + at(e.Pointer) + ": " + e.Msg }

func errorf(ptr, f string, a ...any) error {
	return &Error{Pointer: ptr, Msg: fmt.Sprintf(f, a...)}
}

func at(ptr string) string {
	if ptr == "" {
		return "/"
	}
	return ptr
}
