// Package meta defines the typed metadata model consumed by formbridge: a
// static description of a REST API's resources, operations, and request
// shapes. The model is pure data; compilation and request assembly live in
// the fields, request, and runtime packages.
package meta

// Reserved query parameter names that drive pagination.
const (
	PageParam  = "page"
	LimitParam = "limit"
)

// Document is the root of a metadata document.
type Document struct {
	Resources      []Resource `json:"resources"`
	OperationCount int        `json:"operationCount"`
}

// Resource groups the operations exposed under one API resource (tag).
type Resource struct {
	Value      string      `json:"resourceValue"`
	Label      string      `json:"resourceLabel"`
	Operations []Operation `json:"operations"`
}

// Operation describes one HTTP endpoint variant (method + path template).
type Operation struct {
	Value       string      `json:"operationValue"`
	ID          string      `json:"operationId"`
	Label       string      `json:"operationLabel"`
	Method      string      `json:"method"`
	Path        string      `json:"path"`
	Summary     string      `json:"summary"`
	Description string      `json:"description"`
	PathFields  []PathField `json:"pathUi"`
	Query       QuerySpec   `json:"queryUi"`
	Body        *BodySpec   `json:"bodyUi,omitempty"`
}

// PathField describes one {placeholder} in an operation's path template.
type PathField struct {
	Name        string `json:"name"`
	APIPath     string `json:"apiPath"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Example     any    `json:"example,omitempty"`
}

// QuerySpec describes an operation's query string surface.
type QuerySpec struct {
	Simple  []SimpleField `json:"simple"`
	Include *IncludeField `json:"include,omitempty"`
	Sort    *SortField    `json:"sort,omitempty"`
	Filters []FilterField `json:"filters"`
}

// SimpleField is a plain, typed query parameter. The reserved names "page"
// and "limit" mark the pagination pair.
type SimpleField struct {
	Name        string   `json:"name"`
	APIPath     string   `json:"apiPath"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	SchemaType  string   `json:"schemaType"`
	Format      string   `json:"format,omitempty"`
	EnumValues  []string `json:"enumValues"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
	Default     any      `json:"default,omitempty"`
	Example     any      `json:"example,omitempty"`
}

// IsPaging reports whether the field is one of the reserved paging names.
func (f SimpleField) IsPaging() bool {
	return f.Name == PageParam || f.Name == LimitParam
}

// Option is a selectable (label, value) pair.
type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// IncludeField is the multi-select relation include parameter.
type IncludeField struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Options     []Option `json:"options"`
}

// SortField is the single-select sort parameter.
type SortField struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Options     []Option `json:"options"`
}

// Filter field types. All other values are treated as strings.
const (
	FilterString          = "string"
	FilterInteger         = "integer"
	FilterNumber          = "number"
	FilterBoolean         = "boolean"
	FilterBetweenDateTime = "betweenDateTime"
)

// FilterField is one key of the deep-object "filter" query parameter.
type FilterField struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
	FieldType   string `json:"fieldType"`
	Example     any    `json:"example,omitempty"`
}

// BodySpec describes an operation's request body.
type BodySpec struct {
	ContentType    string      `json:"contentType"`
	BinaryProperty string      `json:"binaryProperty,omitempty"`
	RequiredFields []BodyField `json:"requiredFields"`
	OptionalFields []BodyField `json:"optionalFields"`
}

// Fields returns required fields followed by optional fields.
func (b *BodySpec) Fields() []BodyField {
	out := make([]BodyField, 0, len(b.RequiredFields)+len(b.OptionalFields))
	out = append(out, b.RequiredFields...)
	out = append(out, b.OptionalFields...)
	return out
}

// BodyField kinds.
const (
	KindPrimitive = "primitive"
	KindObject    = "object"
	KindArray     = "array"
)

// BodyField is a tagged union over primitive, object, and array body
// schema nodes. Kind selects the variant; the compiler, normalizer, and
// assembler all switch exhaustively on it instead of probing shapes.
type BodyField struct {
	Kind        string `json:"kind"`
	APIKey      string `json:"apiKey"`
	APIPath     string `json:"apiPath"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Nullable    bool   `json:"nullable"`

	// Primitive
	SchemaType string   `json:"schemaType,omitempty"`
	Format     string   `json:"format,omitempty"`
	EnumValues []string `json:"enumValues,omitempty"`
	Example    any      `json:"example,omitempty"`
	Default    any      `json:"default,omitempty"`

	// Object
	Children []BodyField `json:"children,omitempty"`

	// Array
	ItemField *BodyField `json:"itemField,omitempty"`
}

// FindOperation resolves a (resource, operation) value pair.
func (d *Document) FindOperation(resource, operation string) (*Resource, *Operation, bool) {
	for i := range d.Resources {
		r := &d.Resources[i]
		if r.Value != resource {
			continue
		}
		for j := range r.Operations {
			op := &r.Operations[j]
			if op.Value == operation {
				return r, op, true
			}
		}
	}
	return nil, nil, false
}

// PagingFields returns the reserved page and limit fields when present.
func (q QuerySpec) PagingFields() (page, limit *SimpleField) {
	for i := range q.Simple {
		switch q.Simple[i].Name {
		case PageParam:
			page = &q.Simple[i]
		case LimitParam:
			limit = &q.Simple[i]
		}
	}
	return
}
