package resource

import (
	"fmt"
	"math"
	"time"
)

// Serialize projects a record onto the resource's declared shape. When
// fields is non-nil only those names are included. Internal fields and
// anything the record does not carry are omitted.
func (r *Resource) Serialize(rec Record, fields []string) map[string]any {
	subset := map[string]bool{}
	for _, f := range fields {
		subset[f] = true
	}
	out := make(map[string]any, len(r.Fields))
	for _, f := range r.Fields {
		if f.Internal {
			continue
		}
		if len(subset) > 0 && !subset[f.Name] {
			continue
		}
		if v, ok := rec[f.Name]; ok {
			out[f.Name] = v
		}
	}
	return out
}

// Deserialize validates an input payload against the declared fields and
// returns the record to persist. Unknown fields are rejected; readonly
// fields are silently dropped; with partial=false every required field must
// be present and non-null. All field problems are collected into a single
// ValidationError.
func (r *Resource) Deserialize(input map[string]any, partial bool) (Record, error) {
	problems := map[string]string{}
	rec := Record{}

	for name, value := range input {
		f := r.FieldByName(name)
		if f == nil {
			problems[name] = "unknown field"
			continue
		}
		if f.ReadOnly {
			continue
		}
		if value == nil {
			if f.Required {
				problems[name] = "must not be null"
				continue
			}
			rec[name] = nil
			continue
		}
		coerced, err := coerceValue(value, f.Type)
		if err != nil {
			problems[name] = err.Error()
			continue
		}
		rec[name] = coerced
	}

	if !partial {
		for _, f := range r.Fields {
			if !f.Required || f.ReadOnly {
				continue
			}
			if _, ok := rec[f.Name]; !ok {
				if _, reported := problems[f.Name]; !reported {
					problems[f.Name] = "this field is required"
				}
			}
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Fields: problems}
	}
	return rec, nil
}

// coerceValue checks a decoded JSON value against a declared field type.
// JSON numbers arrive as float64; integral floats satisfy "int".
func coerceValue(value any, fieldType string) (any, error) {
	switch fieldType {
	case "", "any":
		return value, nil
	case "string":
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string")
		}
		return s, nil
	case "bool":
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected a boolean")
		}
		return b, nil
	case "int":
		switch n := value.(type) {
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("expected an integer")
			}
			return int64(n), nil
		case int, int32, int64:
			return n, nil
		}
		return nil, fmt.Errorf("expected an integer")
	case "float":
		switch n := value.(type) {
		case float64:
			return n, nil
		case int, int32, int64:
			return n, nil
		}
		return nil, fmt.Errorf("expected a number")
	case "time":
		switch t := value.(type) {
		case time.Time:
			return t, nil
		case string:
			parsed, err := time.Parse(time.RFC3339, t)
			if err != nil {
				return nil, fmt.Errorf("expected an RFC3339 timestamp")
			}
			return parsed, nil
		}
		return nil, fmt.Errorf("expected an RFC3339 timestamp")
	default:
		return nil, fmt.Errorf("unsupported field type %q", fieldType)
	}
}
