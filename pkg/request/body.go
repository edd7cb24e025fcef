package request

import (
	"github.com/formbridge/formbridge/pkg/fields"
	"github.com/formbridge/formbridge/pkg/meta"
)

// AssembleBody rebuilds the nested JSON request body of an operation from
// the flat set of supplied field values, re-keyed from generated field
// identifiers back to API keys. A missing required field anywhere in the
// tree aborts assembly for the whole request.
func AssembleBody(op *meta.Operation, vals Values) (map[string]any, error) {
	body := make(map[string]any)
	if op.Body == nil {
		return body, nil
	}
	for _, f := range op.Body.Fields() {
		f := f
		v, ok, err := assembleField(op, &f, vals)
		if err != nil {
			return nil, err
		}
		if ok {
			body[f.APIKey] = v
		}
	}
	return body, nil
}

// assembleField resolves one body field from the value container. The
// second result is false when the field is absent and must be omitted.
func assembleField(op *meta.Operation, f *meta.BodyField, container Values) (any, bool, error) {
	switch f.Kind {
	case meta.KindObject:
		return assembleObject(op, f, container)
	case meta.KindArray:
		return assembleArray(op, f, container)
	default:
		return assemblePrimitive(op, f, container)
	}
}

func assemblePrimitive(op *meta.Operation, f *meta.BodyField, container Values) (any, bool, error) {
	raw := container[fields.BodyFieldID(op, f)]
	v, ok := NormalizePrimitive(f, raw)
	if !ok && f.Required {
		return nil, false, validationErrorf(f.APIPath, "required body field is missing")
	}
	return v, ok, nil
}

func assembleObject(op *meta.Operation, f *meta.BodyField, container Values) (any, bool, error) {
	out := make(map[string]any)
	for i := range f.Children {
		child := &f.Children[i]
		v, ok, err := assembleField(op, child, container)
		if err != nil {
			return nil, false, err
		}
		if ok {
			out[child.APIKey] = v
		}
	}
	if len(out) == 0 {
		if f.Required {
			return nil, false, validationErrorf(f.APIPath, "required object has no fields set")
		}
		return nil, false, nil
	}
	return out, true, nil
}

func assembleArray(op *meta.Operation, f *meta.BodyField, container Values) (any, bool, error) {
	raw, present := container[fields.BodyFieldID(op, f)]
	var items []any
	if present {
		switch list := raw.(type) {
		case []any:
			items = list
		case []string:
			items = make([]any, len(list))
			for i, s := range list {
				items[i] = s
			}
		}
	}

	out := make([]any, 0, len(items))
	for _, item := range items {
		itemContainer, ok := item.(map[string]any)
		if !ok && f.ItemField != nil {
			// A bare value stands in for a single-field item container.
			itemContainer = map[string]any{fields.BodyFieldID(op, f.ItemField): item}
		}
		if f.ItemField == nil {
			out = append(out, item)
			continue
		}
		v, ok, err := assembleField(op, f.ItemField, Values(itemContainer))
		if err != nil {
			return nil, false, err
		}
		if ok {
			out = append(out, v)
		}
	}

	if len(out) == 0 {
		if f.Required {
			return nil, false, validationErrorf(f.APIPath, "required array has no items")
		}
		return nil, false, nil
	}
	return out, true, nil
}
