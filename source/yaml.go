package source

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// DecodeYAML decodes the first YAML document in data. An empty document is null.
func DecodeYAML(data []byte, opt Options) (any, error) {
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, ErrTooLarge
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	out, err := normalize(v, "", 0, opt.MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return out, nil
}

// normalize rewrites decoder output into map[string]any / []any trees.
func normalize(v any, pointer string, depth, max int) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		if err := deeper(pointer, depth, max); err != nil {
			return nil, err
		}
		out := make(map[string]any, len(x))
		for k, e := range x {
			n, err := normalize(e, pointer+"/"+k, depth+1, max)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		if err := deeper(pointer, depth, max); err != nil {
			return nil, err
		}
		out := make(map[string]any, len(x))
		for k, e := range x {
			key := fmt.Sprint(k)
			n, err := normalize(e, pointer+"/"+key, depth+1, max)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		if err := deeper(pointer, depth, max); err != nil {
			return nil, err
		}
		out := make([]any, len(x))
		for i, e := range x {
			n, err := normalize(e, fmt.Sprintf("%s/%d", pointer, i), depth+1, max)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}
	return v, nil
}

func deeper(pointer string, depth, max int) error {
	if max > 0 && depth >= max {
		if pointer == "" {
			pointer = "/"
		}
		return fmt.Errorf("%s: max depth exceeded", pointer)
	}
	return nil
}
