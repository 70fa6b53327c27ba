package source

import (
	"bytes"
	"encoding/json"

	gojson "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	sf "github.com/reoring/shapefix"
)

// Encode renders v in format f. Undefined entries are dropped from objects and
// become null inside arrays.
func Encode(v any, f Format) ([]byte, error) {
	if f == YAML {
		return EncodeYAML(v)
	}
	return EncodeJSON(v)
}

// EncodeJSON writes indented JSON without HTML escaping, terminated by a newline.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := gojson.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sf.Strip(v)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeYAML writes block-style YAML.
func EncodeYAML(v any) ([]byte, error) {
	return yaml.Marshal(numbers(sf.Strip(v)))
}

// numbers turns json.Number leaves into int64/float64; YAML would quote them otherwise.
func numbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = numbers(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = numbers(e)
		}
		return out
	}
	return v
}
