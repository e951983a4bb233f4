package assessment

import (
	"encoding/json"
	"fmt"
)

// Decode converts a loosely-typed provider result (a struct, a map decoded
// from JSON or YAML, or raw JSON bytes) into the typed section record T.
func Decode[T any](v any) (T, error) {
	var out T

	var data []byte
	switch val := v.(type) {
	case nil:
		return out, fmt.Errorf("decode %T: nil result", out)
	case T:
		return val, nil
	case *T:
		if val == nil {
			return out, fmt.Errorf("decode %T: nil result", out)
		}
		return *val, nil
	case json.RawMessage:
		data = val
	case []byte:
		data = val
	default:
		b, err := json.Marshal(normalizeYAML(v))
		if err != nil {
			return out, fmt.Errorf("decode %T: %w", out, err)
		}
		data = b
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	return out, nil
}

// normalizeYAML rewrites map[any]any nodes, which encoding/json rejects,
// into map[string]any.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return v
	}
}
