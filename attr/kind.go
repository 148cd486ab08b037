package attr

import (
	"fmt"
	"time"
)

// Kind is the runtime shape an attribute's values must have. Assignments of
// a mismatched kind are rejected locally, before any network call.
type Kind int

const (
	// Any places no constraint on assignments.
	Any Kind = iota

	// String accepts string values.
	String

	// Int accepts int values.
	Int

	// Float accepts float64 values.
	Float

	// Bool accepts bool values.
	Bool

	// Map accepts map[string]any values.
	Map

	// List accepts []any values.
	List

	// Time accepts time.Time values.
	Time
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case Any:
		return "any"
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Map:
		return "map"
	case List:
		return "list"
	case Time:
		return "time"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Check reports whether value matches the kind. A nil value is accepted for
// every kind, mirroring the wire protocol where any field may be absent.
func (k Kind) Check(value any) error {
	if value == nil || k == Any {
		return nil
	}

	ok := false
	switch k {
	case String:
		_, ok = value.(string)
	case Int:
		_, ok = value.(int)
	case Float:
		_, ok = value.(float64)
	case Bool:
		_, ok = value.(bool)
	case Map:
		_, ok = value.(map[string]any)
	case List:
		_, ok = value.([]any)
	case Time:
		_, ok = value.(time.Time)
	}
	if !ok {
		return fmt.Errorf("value of type %T does not match declared kind %s", value, k)
	}
	return nil
}
