package kubeopenapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	sf "github.com/reoring/shapefix"
)

// ImportYAMLForCRDKind scans a multi-document YAML (e.g., CRD bundle) and imports
// the first CustomResourceDefinition matching the given spec.names.kind.
func ImportYAMLForCRDKind(data []byte, kind string, opts Options) (sf.Schema, Diag, error) {
	return importMatching(data, opts, func(m map[string]any) bool {
		spec, _ := m["spec"].(map[string]any)
		names, _ := spec["names"].(map[string]any)
		k, _ := names["kind"].(string)
		return k == kind
	}, fmt.Sprintf("kind %q", kind))
}

// ImportYAMLForCRDName scans a multi-document YAML and imports the CRD
// with given metadata.name.
func ImportYAMLForCRDName(data []byte, name string, opts Options) (sf.Schema, Diag, error) {
	return importMatching(data, opts, func(m map[string]any) bool {
		meta, _ := m["metadata"].(map[string]any)
		n, _ := meta["name"].(string)
		return n == name
	}, fmt.Sprintf("name %q", name))
}

func importMatching(data []byte, opts Options, match func(map[string]any) bool, what string) (sf.Schema, Diag, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var node any
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &simpleDiag{}, fmt.Errorf("kubeopenapi: %w", err)
		}
		m, ok := yamlNormalizeValue(node).(map[string]any)
		if !ok {
			continue
		}
		if k, _ := m["kind"].(string); k != "CustomResourceDefinition" || !match(m) {
			continue
		}
		return Import(m, opts)
	}
	return nil, &simpleDiag{}, fmt.Errorf("kubeopenapi: CRD with %s not found in YAML bundle", what)
}

// yamlNormalizeValue converts YAML-decoded values (which may contain map[any]any)
// into JSON-like trees. Non-string keys are rendered with fmt.
func yamlNormalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = yamlNormalizeValue(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = yamlNormalizeValue(t[i])
		}
		return arr
	}
	return v
}
