package attr

import (
	"strings"
	"unicode"
)

// ToSnake converts a camelCase wire field name to the snake_case attribute
// name used throughout the SDK ("dateCreated" -> "date_created"). Runs of
// upper-case letters are kept together ("ownerID" -> "owner_id").
func ToSnake(name string) string {
	if name == "" {
		return name
	}

	var b strings.Builder
	b.Grow(len(name) + 4)
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || (nextLower && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToCamel converts a snake_case attribute name to the camelCase form the
// REST API expects ("date_created" -> "dateCreated").
func ToCamel(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) == 1 {
		return name
	}

	var b strings.Builder
	b.Grow(len(name))
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			b.WriteString(part)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// CamelToSnake renames every key of a payload to snake_case, recursing into
// nested objects and arrays so composite attributes decode with uniform
// keys.
func CamelToSnake(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[ToSnake(k)] = convertKeys(v, ToSnake)
	}
	return out
}

// SnakeToCamel renames every key of a request body to camelCase, recursing
// into nested objects and arrays.
func SnakeToCamel(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[ToCamel(k)] = convertKeys(v, ToCamel)
	}
	return out
}

func convertKeys(v any, rename func(string) string) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, nested := range val {
			out[rename(k)] = convertKeys(nested, rename)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, nested := range val {
			out[i] = convertKeys(nested, rename)
		}
		return out
	default:
		return v
	}
}
