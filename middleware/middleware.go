// Package middleware checks JSON request bodies against a schema before they
// reach a handler. The net/http adapter lives here; echo and gin adapters are
// separate modules under this directory that reuse Check and ErrorPayload.
package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"

	gojson "github.com/goccy/go-json"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/source"
)

// Options configures request checking.
type Options struct {
	// Mode ModeDryRun rejects invalid bodies; ModeRepair passes the repaired
	// value on and records what was fixed.
	Mode sf.Mode
	// Validator runs the schema; nil uses shapefix.Default().
	Validator *sf.Validator
	// Source bounds the accepted body.
	Source source.Options
}

// DefaultOptions rejects invalid bodies, duplicate keys and bodies over 1 MiB.
func DefaultOptions() Options {
	return Options{
		Mode:   sf.ModeDryRun,
		Source: source.Options{MaxBytes: 1 << 20, MaxDepth: 64, RejectDuplicateKeys: true},
	}
}

// Body is the checked request body stored in the request context.
type Body struct {
	Value any
	// Repaired lists what ModeRepair fixed; empty in ModeDryRun.
	Repaired sf.Errors
}

type ctxKeyBody struct{}

// ContextWithBody attaches a Body to the context.
func ContextWithBody(ctx context.Context, b Body) context.Context {
	return context.WithValue(ctx, ctxKeyBody{}, b)
}

// BodyFromContext retrieves the Body stored by the middleware.
func BodyFromContext(ctx context.Context) (Body, bool) {
	b, ok := ctx.Value(ctxKeyBody{}).(Body)
	return b, ok
}

// ParseError wraps a body that could not be decoded.
type ParseError struct{ Err error }

func (e *ParseError) Error() string { return e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// Check decodes r as JSON and runs s on it. It fails with *ParseError for
// undecodable bodies and sf.Errors for invalid ones.
func Check(r io.Reader, s sf.Schema, opt Options) (Body, error) {
	v, err := source.Decode(r, source.JSON, opt.Source)
	if err != nil {
		return Body{}, &ParseError{Err: err}
	}
	val := opt.Validator
	if val == nil {
		val = sf.Default()
	}
	if opt.Mode == sf.ModeRepair {
		fixed, errs := val.Fix(s, v)
		return Body{Value: fixed, Repaired: errs}, nil
	}
	if errs := val.Validate(s, v); len(errs) > 0 {
		return Body{}, errs
	}
	return Body{Value: v}, nil
}

// Status maps a Check error to an HTTP status: 413 for oversized bodies,
// 400 otherwise.
func Status(err error) int {
	if errors.Is(err, source.ErrTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// Issue is the JSON shape of one reported error.
type Issue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorPayload shapes a Check error for JSON responses.
func ErrorPayload(err error) map[string]any {
	var pe *ParseError
	if errors.As(err, &pe) {
		p, _ := source.Pointer(pe.Err)
		return map[string]any{"issues": []Issue{{Path: p, Code: sf.CodeParseError, Message: pe.Error()}}}
	}
	es, ok := sf.AsErrors(err)
	if !ok {
		return map[string]any{"error": err.Error()}
	}
	issues := make([]Issue, len(es))
	for i, e := range es {
		issues[i] = Issue{Path: e.Pointer(), Code: e.Code, Message: e.Message}
	}
	return map[string]any{"issues": issues}
}

// Handler checks the body of every request against s. On success the body is
// available through BodyFromContext; on failure the request is answered with
// ErrorPayload and next is not called.
func Handler(s sf.Schema, opt Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := Check(r.Body, s, opt)
			if err != nil {
				writeJSON(w, Status(err), ErrorPayload(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithBody(r.Context(), body)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = gojson.NewEncoder(w).Encode(v)
}
