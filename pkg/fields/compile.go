package fields

import (
	"strings"
	"sync"

	"github.com/formbridge/formbridge/pkg/meta"
	"github.com/formbridge/formbridge/pkg/naming"
)

// DefaultPageSize is the page size used when a limit field declares
// neither a maximum nor a default.
const DefaultPageSize = 15

// Identifier builders for the synthetic fields the compiler introduces.
// The request assemblers call the same functions at run time, so the two
// phases can never disagree about an id.

// FetchAllID identifies the "fetch all pages" toggle of an operation.
func FetchAllID(op *meta.Operation) string {
	return naming.FieldID(naming.KindQuery, op.Value, "fetch all")
}

// LimitID identifies the page-size field of an operation.
func LimitID(op *meta.Operation) string {
	return naming.FieldID(naming.KindQuery, op.Value, meta.LimitParam)
}

// PageID identifies the page-number field of an operation.
func PageID(op *meta.Operation) string {
	return naming.FieldID(naming.KindQuery, op.Value, meta.PageParam)
}

// OptionsGroupID identifies the options group holding the page number.
func OptionsGroupID(op *meta.Operation) string {
	return naming.FieldID(naming.KindQuery, op.Value, "options")
}

// IncludeID identifies the include multi-choice of an operation.
func IncludeID(op *meta.Operation) string {
	return naming.FieldID(naming.KindQuery, op.Value, "include")
}

// SortID identifies the sort choice of an operation.
func SortID(op *meta.Operation) string {
	return naming.FieldID(naming.KindQuery, op.Value, "sort")
}

// FilterGroupID identifies the filter group of an operation.
func FilterGroupID(op *meta.Operation) string {
	return naming.FieldID(naming.KindQuery, op.Value, "filter")
}

// SimpleFieldID identifies a plain query field.
func SimpleFieldID(op *meta.Operation, f *meta.SimpleField) string {
	return naming.FieldID(naming.KindQuery, op.Value, f.Name)
}

// FilterFieldID identifies a single-valued filter field.
func FilterFieldID(op *meta.Operation, f *meta.FilterField) string {
	return naming.FieldID(naming.KindQuery, op.Value, "filter "+f.Name)
}

// FilterFromID and FilterToID identify the two endpoints of a date-range
// filter.
func FilterFromID(op *meta.Operation, f *meta.FilterField) string {
	return naming.FieldID(naming.KindQuery, op.Value, "filter "+f.Name+" from")
}

// FilterToID identifies the upper endpoint of a date-range filter.
func FilterToID(op *meta.Operation, f *meta.FilterField) string {
	return naming.FieldID(naming.KindQuery, op.Value, "filter "+f.Name+" to")
}

// CustomFilterGroupID identifies the repeatable custom-field filter group.
func CustomFilterGroupID(op *meta.Operation) string {
	return naming.FieldID(naming.KindQuery, op.Value, "custom fields")
}

// CustomFilterUUIDID and CustomFilterValueID identify the two inputs of
// one custom-field filter entry.
func CustomFilterUUIDID(op *meta.Operation) string {
	return naming.FieldID(naming.KindQuery, op.Value, "custom fields uuid")
}

// CustomFilterValueID identifies the value input of a custom-field filter
// entry.
func CustomFilterValueID(op *meta.Operation) string {
	return naming.FieldID(naming.KindQuery, op.Value, "custom fields value")
}

// PathFieldID identifies a path placeholder field.
func PathFieldID(op *meta.Operation, f *meta.PathField) string {
	return naming.FieldID(naming.KindPath, op.Value, f.Name)
}

// BodyFieldID identifies a body field by its full API path.
func BodyFieldID(op *meta.Operation, f *meta.BodyField) string {
	return naming.FieldID(naming.KindBody, op.Value, f.APIPath)
}

// AdditionalFieldsID identifies the group wrapping optional body fields.
func AdditionalFieldsID(op *meta.Operation) string {
	return naming.FieldID(naming.KindBody, op.Value, "additional fields")
}

// BinaryPropertyID identifies the input naming the binary attachment for
// multipart uploads.
func BinaryPropertyID(op *meta.Operation) string {
	return naming.FieldID(naming.KindBody, op.Value, "binary property")
}

// Compile walks every operation of the document in metadata order and
// emits its field descriptors. It fails when the document exposes no
// resources, since there is no API surface to compile.
func Compile(doc *meta.Document) ([]Descriptor, error) {
	if doc == nil || len(doc.Resources) == 0 {
		return nil, meta.ErrNoResources
	}
	var out []Descriptor
	for ri := range doc.Resources {
		res := &doc.Resources[ri]
		for oi := range res.Operations {
			op := &res.Operations[oi]
			out = append(out, compileOperation(res, op)...)
		}
	}
	return out, nil
}

var (
	compileOnce sync.Once
	compiled    []Descriptor
	compileErr  error
)

// CompileOnce compiles the document exactly once per process and returns
// the cached result on every later call. The compiled list is read-only
// and safe for concurrent use.
func CompileOnce(doc *meta.Document) ([]Descriptor, error) {
	compileOnce.Do(func() {
		compiled, compileErr = Compile(doc)
	})
	return compiled, compileErr
}

func compileOperation(res *meta.Resource, op *meta.Operation) []Descriptor {
	var out []Descriptor
	for i := range op.PathFields {
		out = append(out, compilePathField(res, op, &op.PathFields[i]))
	}
	out = append(out, compileQuery(res, op)...)
	if op.Body != nil {
		out = append(out, compileBody(res, op)...)
	}
	return out
}

// annotate suffixes a description with the originating API field path so
// every generated input stays traceable to its source.
func annotate(desc, apiPath string) string {
	if desc == "" {
		return "API field: " + apiPath
	}
	return desc + " (API field: " + apiPath + ")"
}

func labelOr(label, identifier string) string {
	if label != "" {
		return label
	}
	return naming.Humanize(identifier)
}

func compilePathField(res *meta.Resource, op *meta.Operation, f *meta.PathField) Descriptor {
	d := Descriptor{
		ID:          PathFieldID(op, f),
		Label:       labelOr(f.Label, f.Name),
		Kind:        KindString,
		Description: annotate(f.Description, f.Name),
		Required:    f.Required,
		Meta:        &Ref{Resource: res, Operation: op, Path: f},
	}
	if s, ok := f.Example.(string); ok {
		d.Placeholder = s
	}
	return d
}

func enumOptions(values []string) []meta.Option {
	opts := make([]meta.Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, meta.Option{Name: naming.Humanize(v), Value: v})
	}
	return opts
}

func simpleKind(f *meta.SimpleField) Kind {
	switch {
	case len(f.EnumValues) > 0:
		return KindChoice
	case f.SchemaType == "integer" || f.SchemaType == "number":
		return KindNumber
	case f.SchemaType == "boolean":
		return KindBoolean
	case f.Format == "date-time" || f.Format == "date":
		return KindDate
	default:
		return KindString
	}
}

func compileQuery(res *meta.Resource, op *meta.Operation) []Descriptor {
	var out []Descriptor

	for i := range op.Query.Simple {
		f := &op.Query.Simple[i]
		if f.IsPaging() {
			continue
		}
		d := Descriptor{
			ID:          SimpleFieldID(op, f),
			Label:       labelOr(f.Label, f.Name),
			Kind:        simpleKind(f),
			Description: annotate(f.Description, f.Name),
			Default:     f.Default,
			Required:    f.Required,
			Meta:        &Ref{Resource: res, Operation: op, Query: f},
		}
		if d.Kind == KindChoice {
			d.Options = enumOptions(f.EnumValues)
		}
		out = append(out, d)
	}

	out = append(out, compilePagination(res, op)...)

	if inc := op.Query.Include; inc != nil && len(inc.Options) > 0 {
		out = append(out, Descriptor{
			ID:          IncludeID(op),
			Label:       labelOr(inc.Label, inc.Name),
			Kind:        KindMultiChoice,
			Description: annotate(inc.Description, "include"),
			Options:     inc.Options,
			Meta:        &Ref{Resource: res, Operation: op},
		})
	}
	if srt := op.Query.Sort; srt != nil && len(srt.Options) > 0 {
		out = append(out, Descriptor{
			ID:          SortID(op),
			Label:       labelOr(srt.Label, srt.Name),
			Kind:        KindChoice,
			Description: annotate(srt.Description, "sort"),
			Options:     srt.Options,
			Meta:        &Ref{Resource: res, Operation: op},
		})
	}

	if g := compileFilters(res, op); g != nil {
		out = append(out, *g)
	}
	return out
}

// compilePagination emits the fetch-all toggle plus conditionally visible
// page-size and page-number inputs when the operation declares both
// reserved paging fields, or the single declared field otherwise.
func compilePagination(res *meta.Resource, op *meta.Operation) []Descriptor {
	page, limit := op.Query.PagingFields()
	if page == nil && limit == nil {
		return nil
	}

	pageDesc := func() Descriptor {
		return Descriptor{
			ID:          PageID(op),
			Label:       "Page",
			Kind:        KindNumber,
			Description: annotate("Page number to request", meta.PageParam),
			Default:     1,
			Meta:        &Ref{Resource: res, Operation: op, Query: page},
		}
	}
	limitDesc := func() Descriptor {
		def := limit.Default
		if def == nil {
			def = DefaultPageSize
		}
		return Descriptor{
			ID:          LimitID(op),
			Label:       "Limit",
			Kind:        KindNumber,
			Description: annotate("Maximum number of results per page", meta.LimitParam),
			Default:     def,
			Meta:        &Ref{Resource: res, Operation: op, Query: limit},
		}
	}
	optionsGroup := func(children ...Descriptor) Descriptor {
		return Descriptor{
			ID:       OptionsGroupID(op),
			Label:    "Options",
			Kind:     KindGroup,
			Children: children,
			Meta:     &Ref{Resource: res, Operation: op},
		}
	}

	if page != nil && limit != nil {
		toggle := Descriptor{
			ID:          FetchAllID(op),
			Label:       "Fetch All",
			Kind:        KindBoolean,
			Description: "Fetch every page of results instead of a single page",
			Default:     false,
			Meta:        &Ref{Resource: res, Operation: op},
		}
		ld := limitDesc()
		ld.ShowIf = &Condition{FieldID: toggle.ID, Equals: false}
		og := optionsGroup(pageDesc())
		og.ShowIf = &Condition{FieldID: toggle.ID, Equals: false}
		return []Descriptor{toggle, ld, og}
	}
	if limit != nil {
		return []Descriptor{limitDesc()}
	}
	return []Descriptor{optionsGroup(pageDesc())}
}

func filterKind(f *meta.FilterField) Kind {
	switch f.FieldType {
	case meta.FilterBoolean:
		return KindBoolean
	case meta.FilterInteger, meta.FilterNumber:
		return KindNumber
	default:
		return KindString
	}
}

func compileFilters(res *meta.Resource, op *meta.Operation) *Descriptor {
	var children []Descriptor
	for i := range op.Query.Filters {
		f := &op.Query.Filters[i]
		ref := &Ref{Resource: res, Operation: op, Filter: f}
		if f.FieldType == meta.FilterBetweenDateTime {
			children = append(children,
				Descriptor{
					ID:          FilterFromID(op, f),
					Label:       labelOr(f.Label, f.Name) + " From",
					Kind:        KindDate,
					Description: annotate(f.Description, "filter."+f.Name),
					Meta:        ref,
				},
				Descriptor{
					ID:          FilterToID(op, f),
					Label:       labelOr(f.Label, f.Name) + " To",
					Kind:        KindDate,
					Description: annotate(f.Description, "filter."+f.Name),
					Meta:        ref,
				})
			continue
		}
		children = append(children, Descriptor{
			ID:          FilterFieldID(op, f),
			Label:       labelOr(f.Label, f.Name),
			Kind:        filterKind(f),
			Description: annotate(f.Description, "filter."+f.Name),
			Meta:        ref,
		})
	}

	if _, ok := meta.CustomFieldModel(res.Value); ok {
		children = append(children, Descriptor{
			ID:         CustomFilterGroupID(op),
			Label:      "Custom Fields",
			Kind:       KindGroup,
			Repeatable: true,
			Description: annotate("Filter by tenant-defined custom fields",
				"filter.custom_fields"),
			Children: []Descriptor{
				{
					ID:          CustomFilterUUIDID(op),
					Label:       "Field",
					Kind:        KindDynamicChoice,
					Description: annotate("Custom field to filter on", "filter.custom_fields"),
					Meta:        &Ref{Resource: res, Operation: op},
				},
				{
					ID:          CustomFilterValueID(op),
					Label:       "Value",
					Kind:        KindString,
					Description: annotate("Value to match", "filter.custom_fields"),
					Meta:        &Ref{Resource: res, Operation: op},
				},
			},
			Meta: &Ref{Resource: res, Operation: op},
		})
	}

	if len(children) == 0 {
		return nil
	}
	return &Descriptor{
		ID:       FilterGroupID(op),
		Label:    "Filters",
		Kind:     KindGroup,
		Children: children,
		Meta:     &Ref{Resource: res, Operation: op},
	}
}

func compileBody(res *meta.Resource, op *meta.Operation) []Descriptor {
	body := op.Body

	// Multipart uploads bypass field-level body assembly: the only input
	// is the name of the binary attachment to stream.
	if body.BinaryProperty != "" {
		return []Descriptor{{
			ID:          BinaryPropertyID(op),
			Label:       "Input Binary Field",
			Kind:        KindString,
			Description: annotate("Name of the binary attachment holding the file to upload", body.BinaryProperty),
			Default:     "data",
			Required:    true,
			Meta:        &Ref{Resource: res, Operation: op},
		}}
	}

	var out []Descriptor
	for i := range body.RequiredFields {
		out = append(out, compileBodyField(res, op, &body.RequiredFields[i]))
	}
	if len(body.OptionalFields) > 0 {
		group := Descriptor{
			ID:       AdditionalFieldsID(op),
			Label:    "Additional Fields",
			Kind:     KindGroup,
			Meta:     &Ref{Resource: res, Operation: op},
			Children: make([]Descriptor, 0, len(body.OptionalFields)),
		}
		for i := range body.OptionalFields {
			group.Children = append(group.Children, compileBodyField(res, op, &body.OptionalFields[i]))
		}
		out = append(out, group)
	}
	return out
}

// isCustomFieldRef recognizes the custom-field uuid reference: a primitive
// "uuid" key somewhere under a custom_fields path.
func isCustomFieldRef(f *meta.BodyField) bool {
	return f.Kind == meta.KindPrimitive &&
		f.APIKey == "uuid" &&
		strings.Contains(f.APIPath, "custom_fields")
}

func primitiveKind(f *meta.BodyField) Kind {
	switch {
	case len(f.EnumValues) > 0:
		return KindChoice
	case f.SchemaType == "integer" || f.SchemaType == "number":
		return KindNumber
	case f.SchemaType == "boolean":
		return KindBoolean
	case f.Format == "date-time" || f.Format == "date":
		return KindDate
	default:
		return KindString
	}
}

func compileBodyField(res *meta.Resource, op *meta.Operation, f *meta.BodyField) Descriptor {
	d := Descriptor{
		ID:          BodyFieldID(op, f),
		Label:       labelOr(f.Label, f.APIKey),
		Description: annotate(f.Description, f.APIPath),
		Required:    f.Required,
		Meta:        &Ref{Resource: res, Operation: op, Body: f},
	}

	switch f.Kind {
	case meta.KindObject:
		d.Kind = KindGroup
		d.Children = make([]Descriptor, 0, len(f.Children))
		for i := range f.Children {
			d.Children = append(d.Children, compileBodyField(res, op, &f.Children[i]))
		}
	case meta.KindArray:
		d.Kind = KindGroup
		d.Repeatable = true
		if f.ItemField != nil {
			d.Children = []Descriptor{compileBodyField(res, op, f.ItemField)}
		}
	default:
		if isCustomFieldRef(f) {
			d.Kind = KindDynamicChoice
			break
		}
		d.Kind = primitiveKind(f)
		if d.Kind == KindChoice {
			d.Options = enumOptions(f.EnumValues)
		}
		if f.Default != nil {
			d.Default = f.Default
		} else if f.Example != nil {
			d.Default = f.Example
		}
	}
	return d
}
