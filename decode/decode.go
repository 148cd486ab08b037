// Package decode converts raw JSON values from Intelligence Server payloads
// into richer in-memory forms: enums, timestamps, nested composites, and
// lists of composites.
//
// Every rule is total over nil: decoding a nil raw value yields (nil, nil).
// An enum value outside the registered range is a hard error, because it
// indicates client/server version skew the caller must resolve rather than
// retry. An empty JSON object is treated as nil instead of constructing an
// empty composite.
package decode

import (
	"fmt"
	"time"
)

// Rule transforms a raw decoded-JSON value into its in-memory form.
type Rule interface {
	// Decode returns the transformed value. It must return (nil, nil) for a
	// nil input and an error when the raw value cannot be coerced.
	Decode(raw any) (any, error)
}

// Func adapts an ordinary function to the Rule interface.
type Func func(raw any) (any, error)

// Decode implements Rule.
func (f Func) Decode(raw any) (any, error) {
	return f(raw)
}

// Identity returns the raw value unchanged. It is the rule applied to
// attributes with no registered transformation.
func Identity() Rule {
	return Func(func(raw any) (any, error) {
		return raw, nil
	})
}

// Enum builds a rule mapping raw string values onto typed enum values.
// A raw value missing from the mapping is a hard error.
func Enum[E any](mapping map[string]E) Rule {
	return Func(func(raw any) (any, error) {
		if raw == nil {
			return nil, nil
		}
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("enum value must be a string, got %T", raw)
		}
		v, ok := mapping[s]
		if !ok {
			return nil, fmt.Errorf("unknown enum value %q", s)
		}
		return v, nil
	})
}

// IntEnum builds a rule mapping raw numeric values onto typed enum values.
// JSON numbers arrive as float64; integral int values are accepted too.
// A raw value missing from the mapping is a hard error.
func IntEnum[E any](mapping map[int]E) Rule {
	return Func(func(raw any) (any, error) {
		if raw == nil {
			return nil, nil
		}
		n, ok := asInt(raw)
		if !ok {
			return nil, fmt.Errorf("enum value must be a number, got %T", raw)
		}
		v, ok := mapping[n]
		if !ok {
			return nil, fmt.Errorf("unknown enum value %d", n)
		}
		return v, nil
	})
}

// Server timestamp layouts. The layout is configured per attribute; most
// object info fields use FullDateTime.
const (
	// FullDateTime matches timestamps such as "2021-01-06T12:00:00.000+0000".
	FullDateTime = "2006-01-02T15:04:05.000-0700"

	// DateOnly matches plain dates such as "2021-01-06".
	DateOnly = "2006-01-02"
)

// Time builds a rule parsing raw string timestamps with the given layout.
func Time(layout string) Rule {
	return Func(func(raw any) (any, error) {
		if raw == nil {
			return nil, nil
		}
		if t, ok := raw.(time.Time); ok {
			return t, nil
		}
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("timestamp must be a string, got %T", raw)
		}
		t, err := time.Parse(layout, s)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", s, err)
		}
		return t, nil
	})
}

// Factory constructs a composite value from a decoded JSON object.
type Factory func(source map[string]any) (any, error)

// Composite builds a rule constructing a nested value from a JSON object.
// An empty object decodes to nil rather than an empty composite, which would
// satisfy none of the composite type's invariants.
func Composite(factory Factory) Rule {
	return Func(func(raw any) (any, error) {
		if raw == nil {
			return nil, nil
		}
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("composite value must be an object, got %T", raw)
		}
		if len(m) == 0 {
			return nil, nil
		}
		return factory(m)
	})
}

// CompositeList builds a rule constructing a slice of nested values from a
// JSON array of objects. An empty array decodes to an empty slice, never
// nil. A nil raw value decodes to nil unless emptyOnNil is set, in which
// case absence yields an empty slice.
func CompositeList(factory Factory, emptyOnNil bool) Rule {
	return Func(func(raw any) (any, error) {
		if raw == nil {
			if emptyOnNil {
				return []any{}, nil
			}
			return nil, nil
		}
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("composite list must be an array, got %T", raw)
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("composite list element %d must be an object, got %T", i, item)
			}
			v, err := factory(m)
			if err != nil {
				return nil, fmt.Errorf("composite list element %d: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	})
}

func asInt(raw any) (int, bool) {
	switch n := raw.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
