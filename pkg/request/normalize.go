package request

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/formbridge/formbridge/pkg/meta"
)

// IsEmpty reports whether a supplied value carries no usable content.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	default:
		return false
	}
}

// coerce converts a raw value into the wire primitive for a schema type.
// The second result is false when the value must be omitted (empty input
// or failed parse).
func coerce(schemaType string, raw any) (any, bool) {
	if IsEmpty(raw) {
		return nil, false
	}
	switch schemaType {
	case "number":
		n, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, false
		}
		return n, true
	case "integer":
		n, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, false
		}
		return int64(n), true
	case "boolean":
		switch b := raw.(type) {
		case bool:
			return b, true
		case string:
			switch strings.ToLower(strings.TrimSpace(b)) {
			case "true":
				return true, true
			case "false":
				return false, true
			}
			return nil, false
		default:
			return nil, false
		}
	default:
		return cast.ToString(raw), true
	}
}

// NormalizePrimitive coerces a supplied value into the wire primitive for
// a body field. The second result is false when the value must be omitted.
// A blank string on an explicitly nullable field becomes an explicit null.
func NormalizePrimitive(f *meta.BodyField, raw any) (any, bool) {
	switch f.SchemaType {
	case "number", "integer", "boolean":
		return coerce(f.SchemaType, raw)
	default:
		if raw == nil {
			if f.Nullable {
				return nil, true
			}
			return nil, false
		}
		s := cast.ToString(raw)
		if strings.TrimSpace(s) == "" {
			if f.Nullable {
				return nil, true
			}
			return nil, false
		}
		return s, true
	}
}

// NormalizeQueryValue coerces a supplied value for a simple query field.
// Unlike body normalization it never omits: query simple values are always
// coercible, falling back to their string form.
func NormalizeQueryValue(f *meta.SimpleField, raw any) any {
	switch f.SchemaType {
	case "number":
		return cast.ToFloat64(raw)
	case "integer":
		return cast.ToInt64(raw)
	case "boolean":
		return cast.ToBool(raw)
	default:
		return cast.ToString(raw)
	}
}

// isBareZero reports whether a normalized value is a zero number or false
// boolean, which reads as "left at its blank default" rather than an
// explicit choice.
func isBareZero(v any) bool {
	switch x := v.(type) {
	case bool:
		return !x
	case int:
		return x == 0
	case int64:
		return x == 0
	case float64:
		return x == 0
	default:
		return false
	}
}

// ShouldInclude decides whether a simple query value makes it onto the
// wire. Required fields always do; empty values never do. A bare zero or
// false is dropped unless the field declares an explicit default, which
// is what distinguishes "left at zero" from "explicitly wants zero". This
// is the one place values are silently dropped, by policy.
func ShouldInclude(f *meta.SimpleField, v any) bool {
	if f.Required {
		return true
	}
	if IsEmpty(v) {
		return false
	}
	if isBareZero(v) {
		return f.Default != nil
	}
	return true
}
