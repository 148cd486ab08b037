package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a dotted Intelligence Server version such as "11.3.0000" or
// "11.3.10.103". Components are compared numerically, left to right; a
// missing component counts as zero, so "11.3" equals "11.3.0000".
type Version struct {
	parts []int
	raw   string
}

// ParseVersion parses a dotted server version string.
func ParseVersion(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Version{}, fmt.Errorf("empty version string")
	}

	fields := strings.Split(trimmed, ".")
	parts := make([]int, 0, len(fields))
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		parts = append(parts, n)
	}

	return Version{parts: parts, raw: trimmed}, nil
}

// MustParseVersion parses a dotted version string and panics on failure.
// Intended for package-level version constants in attribute registries.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether the version is the zero value (never parsed).
func (v Version) IsZero() bool {
	return len(v.parts) == 0
}

// String returns the original dotted form.
func (v Version) String() string {
	return v.raw
}

// Compare returns -1, 0 or 1 depending on whether v is lower than, equal to
// or higher than other.
func (v Version) Compare(other Version) int {
	n := len(v.parts)
	if len(other.parts) > n {
		n = len(other.parts)
	}
	for i := 0; i < n; i++ {
		a, b := 0, 0
		if i < len(v.parts) {
			a = v.parts[i]
		}
		if i < len(other.parts) {
			b = other.parts[i]
		}
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v is the same as or newer than min.
func (v Version) AtLeast(min Version) bool {
	return v.Compare(min) >= 0
}
