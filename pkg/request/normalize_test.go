package request

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/formbridge/formbridge/pkg/meta"
)

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected bool
	}{
		{"nil", nil, true},
		{"blank string", "   ", true},
		{"string", "x", false},
		{"empty slice", []any{}, true},
		{"slice", []any{1}, false},
		{"empty string slice", []string{}, true},
		{"empty map", map[string]any{}, true},
		{"map", map[string]any{"k": 1}, false},
		{"zero int", 0, false},
		{"false", false, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, IsEmpty(test.value))
		})
	}
}

func TestNormalizePrimitive(t *testing.T) {
	tests := []struct {
		name     string
		field    meta.BodyField
		raw      any
		expected any
		ok       bool
	}{
		{"string passthrough", meta.BodyField{SchemaType: "string"}, "hello", "hello", true},
		{"string from number", meta.BodyField{SchemaType: "string"}, 42, "42", true},
		{"blank string omitted", meta.BodyField{SchemaType: "string"}, "  ", nil, false},
		{"nil omitted", meta.BodyField{SchemaType: "string"}, nil, nil, false},
		{"nullable blank becomes null", meta.BodyField{SchemaType: "string", Nullable: true}, "", nil, true},
		{"nullable nil becomes null", meta.BodyField{SchemaType: "string", Nullable: true}, nil, nil, true},
		{"number from string", meta.BodyField{SchemaType: "number"}, "3.5", 3.5, true},
		{"number bad input", meta.BodyField{SchemaType: "number"}, "abc", nil, false},
		{"integer from float", meta.BodyField{SchemaType: "integer"}, 5.0, int64(5), true},
		{"integer truncates", meta.BodyField{SchemaType: "integer"}, "7.9", int64(7), true},
		{"integer already int", meta.BodyField{SchemaType: "integer"}, 5, int64(5), true},
		{"boolean true", meta.BodyField{SchemaType: "boolean"}, true, true, true},
		{"boolean string false", meta.BodyField{SchemaType: "boolean"}, "False", false, true},
		{"boolean garbage", meta.BodyField{SchemaType: "boolean"}, "yes please", nil, false},
		{"boolean number rejected", meta.BodyField{SchemaType: "boolean"}, 1, nil, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v, ok := NormalizePrimitive(&test.field, test.raw)
			assert.Equal(t, test.ok, ok)
			if test.ok {
				assert.Equal(t, test.expected, v)
			}
		})
	}
}

func TestNormalizePrimitiveIdempotent(t *testing.T) {
	f := meta.BodyField{SchemaType: "integer"}
	v, ok := NormalizePrimitive(&f, "5")
	assert.True(t, ok)
	again, ok := NormalizePrimitive(&f, v)
	assert.True(t, ok)
	assert.Equal(t, v, again)
}

func TestNormalizeQueryValue(t *testing.T) {
	tests := []struct {
		name     string
		field    meta.SimpleField
		raw      any
		expected any
	}{
		{"integer", meta.SimpleField{SchemaType: "integer"}, "12", int64(12)},
		{"number", meta.SimpleField{SchemaType: "number"}, "1.5", 1.5},
		{"boolean", meta.SimpleField{SchemaType: "boolean"}, "true", true},
		{"string", meta.SimpleField{SchemaType: "string"}, 9, "9"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, NormalizeQueryValue(&test.field, test.raw))
		})
	}
}

func TestShouldInclude(t *testing.T) {
	plain := meta.SimpleField{Name: "status", SchemaType: "integer"}
	required := meta.SimpleField{Name: "status", SchemaType: "integer", Required: true}
	defaulted := meta.SimpleField{Name: "status", SchemaType: "integer", Default: 0}

	tests := []struct {
		name     string
		field    *meta.SimpleField
		value    any
		expected bool
	}{
		{"required always included", &required, nil, true},
		{"empty dropped", &plain, "", false},
		{"nil dropped", &plain, nil, false},
		{"bare zero dropped", &plain, int64(0), false},
		{"bare false dropped", &plain, false, false},
		{"zero kept with declared default", &defaulted, int64(0), true},
		{"nonzero kept", &plain, int64(3), true},
		{"string kept", &plain, "open", true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, ShouldInclude(test.field, test.value))
		})
	}
}
