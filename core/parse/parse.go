package parse

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingField is returned by [Field] when the key is absent.
var ErrMissingField = errors.New("field not present in document")

// As decodes doc into T by round-tripping it through JSON. When the direct
// decode fails, schema-style {"type": ..., "value": ...} wrappers are
// replaced by their values and the decode is retried.
//
// Example usage:
//
//	type Itinerary struct {
//	    Flights  []Flight            `json:"flights"`
//	    Hotels   []Hotel             `json:"hotels"`
//	    DailyPlan map[string][]string `json:"daily_plan"`
//	}
//
//	result := extract.Extract(raw, "flights", "hotels", "daily_plan")
//	itinerary, err := parse.As[Itinerary](result.Document)
func As[T any](doc map[string]any) (T, error) {
	if doc == nil {
		var zero T
		return zero, errors.New("cannot decode a nil document")
	}
	result, err := decodeValue[T](doc)
	if err != nil {
		return result, fmt.Errorf("decode document as %T: %w", result, err)
	}
	return result, nil
}

// Field decodes the top-level key of doc into T. It wraps [ErrMissingField]
// when the key is absent.
func Field[T any](doc map[string]any, key string) (T, error) {
	value, ok := doc[key]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%q: %w", key, ErrMissingField)
	}
	result, err := decodeValue[T](value)
	if err != nil {
		return result, fmt.Errorf("decode field %q as %T: %w", key, result, err)
	}
	return result, nil
}

func decodeValue[T any](value any) (T, error) {
	var result T
	encoded, err := json.Marshal(value)
	if err != nil {
		return result, err
	}
	err = json.Unmarshal(encoded, &result)
	if err == nil {
		return result, nil
	}

	// Models sometimes echo the schema instead of the data; try again with
	// the wrappers removed.
	unwrapped, changed := unwrapSchemaValues(value)
	if !changed {
		return result, err
	}
	var retry T
	encoded, marshalErr := json.Marshal(unwrapped)
	if marshalErr != nil {
		return result, err
	}
	if retryErr := json.Unmarshal(encoded, &retry); retryErr != nil {
		return result, err
	}
	return retry, nil
}

// unwrapSchemaValues replaces every {"type": ..., "value": ...} object (and
// nothing else) with its value, recursively. It reports whether anything
// was replaced.
//
// Example input:
//
//	{"city": {"type": "string", "value": "Rome"}, "nights": {"type": "integer", "value": 3}}
//
// Example output:
//
//	{"city": "Rome", "nights": 3}
func unwrapSchemaValues(data any) (any, bool) {
	switch v := data.(type) {
	case map[string]any:
		if inner, ok := schemaWrapped(v); ok {
			unwrapped, _ := unwrapSchemaValues(inner)
			return unwrapped, true
		}
		changed := false
		out := make(map[string]any, len(v))
		for key, val := range v {
			unwrapped, c := unwrapSchemaValues(val)
			out[key] = unwrapped
			changed = changed || c
		}
		return out, changed

	case []any:
		changed := false
		out := make([]any, len(v))
		for i, val := range v {
			unwrapped, c := unwrapSchemaValues(val)
			out[i] = unwrapped
			changed = changed || c
		}
		return out, changed

	default:
		return data, false
	}
}

func schemaWrapped(m map[string]any) (any, bool) {
	if len(m) != 2 {
		return nil, false
	}
	if _, hasType := m["type"]; !hasType {
		return nil, false
	}
	value, hasValue := m["value"]
	return value, hasValue
}
