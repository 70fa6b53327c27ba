// Package source decodes JSON and YAML documents into the generic trees checked
// by shapefix schemas, and encodes repaired trees back.
//
// JSON is streamed through goccy/go-json tokens into the internal engine, which
// enforces depth and duplicate-key limits while building the tree. Numbers stay
// json.Number so that large integers keep their text. YAML documents are decoded
// with goccy/go-yaml and normalized to the same shapes.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/internal/engine"
)

// Format selects the document syntax.
type Format int

const (
	JSON Format = iota
	YAML
)

func (f Format) String() string {
	if f == YAML {
		return "yaml"
	}
	return "json"
}

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return JSON, fmt.Errorf("unknown format %q", s)
}

// FormatOf guesses the format from a file name; anything that is not .yaml/.yml is JSON.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// Options bound the accepted input. Zero values disable a limit.
type Options struct {
	MaxBytes            int64 `json:"maxBytes" yaml:"maxBytes"`
	MaxDepth            int   `json:"maxDepth" yaml:"maxDepth"`
	RejectDuplicateKeys bool  `json:"rejectDuplicateKeys" yaml:"rejectDuplicateKeys"`
}

func (o Options) limits() engine.Limits {
	l := engine.Limits{MaxDepth: o.MaxDepth}
	if o.RejectDuplicateKeys {
		l.OnDuplicate = engine.DupError
	}
	return l
}

// ErrTooLarge is returned when the input exceeds Options.MaxBytes.
var ErrTooLarge = errors.New("max bytes exceeded")

// Decode reads one document of format f from r.
func Decode(r io.Reader, f Format, opt Options) (any, error) {
	data, err := readAll(r, opt.MaxBytes)
	if err != nil {
		return nil, err
	}
	if f == YAML {
		return DecodeYAML(data, opt)
	}
	return DecodeJSON(data, opt)
}

// DecodeJSON decodes a single JSON value.
func DecodeJSON(data []byte, opt Options) (any, error) {
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, ErrTooLarge
	}
	v, err := engine.Decode(engine.Enforce(newTokens(bytes.NewReader(data)), opt.limits()))
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return v, nil
}

func readAll(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, ErrTooLarge
	}
	return data, nil
}

// Issues converts a decoding error into a single parse_error entry so that
// callers can report decoding and validation failures the same way.
func Issues(err error) sf.Errors {
	if err == nil {
		return nil
	}
	return sf.Errors{{Code: sf.CodeParseError, Message: err.Error()}}
}

// Pointer extracts the JSON Pointer of a limit violation, if err carries one.
func Pointer(err error) (string, bool) {
	var le *engine.Error
	if errors.As(err, &le) {
		return le.Pointer, true
	}
	return "", false
}
