package openapi

import (
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cast"

	"github.com/formbridge/formbridge/pkg/meta"
	"github.com/formbridge/formbridge/pkg/naming"
)

var (
	slugRe     = regexp.MustCompile(`[^a-z0-9]+`)
	backtickRe = regexp.MustCompile("`([^`]+)`")
	strongRe   = regexp.MustCompile(`(?i)<strong>([^<]+)</strong>`)
)

// slugify produces the resource value for a tag.
func slugify(value string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(value), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "general"
	}
	return s
}

// ExtractFile loads an OpenAPI spec and extracts the metadata document.
func ExtractFile(input string) (*meta.Document, error) {
	doc, err := LoadDocument(input)
	if err != nil {
		return nil, err
	}
	return Extract(doc)
}

// Extract builds a metadata document from a loaded OpenAPI spec:
// operations grouped into resources by their first tag, each carrying the
// path, query, and body field descriptions the compiler consumes.
func Extract(doc *openapi3.T) (*meta.Document, error) {
	resources := map[string]*meta.Resource{}
	count := 0

	paths := doc.Paths.Map()
	pathKeys := make([]string, 0, len(paths))
	for p := range paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	methods := []string{"GET", "POST", "PUT", "PATCH", "DELETE"}
	for _, path := range pathKeys {
		item := paths[path]
		if item == nil {
			continue
		}
		ops := []*openapi3.Operation{item.Get, item.Post, item.Put, item.Patch, item.Delete}
		for i, op := range ops {
			if op == nil {
				continue
			}
			operation, tag := buildOperation(path, methods[i], item, op)

			key := slugify(tag)
			res, ok := resources[key]
			if !ok {
				res = &meta.Resource{Value: key, Label: tag}
				resources[key] = res
			}
			res.Operations = append(res.Operations, operation)
			count++
		}
	}

	out := &meta.Document{OperationCount: count}
	for _, res := range resources {
		sort.Slice(res.Operations, func(i, j int) bool {
			return res.Operations[i].Label < res.Operations[j].Label
		})
		out.Resources = append(out.Resources, *res)
	}
	sort.Slice(out.Resources, func(i, j int) bool {
		return out.Resources[i].Label < out.Resources[j].Label
	})
	if len(out.Resources) == 0 {
		return nil, meta.ErrNoResources
	}
	return out, nil
}

func buildOperation(path, method string, item *openapi3.PathItem, op *openapi3.Operation) (meta.Operation, string) {
	id := op.OperationID
	if id == "" {
		id = strings.ToLower(method) + "_" + slugify(path)
	}
	params := resolveParameters(item, op)

	tag := "General"
	if len(op.Tags) > 0 && op.Tags[0] != "" {
		tag = op.Tags[0]
	}

	description := collapseSpace(op.Description)
	if description == "" {
		description = collapseSpace(op.Summary)
	}

	return meta.Operation{
		Value:       id,
		ID:          id,
		Label:       naming.Humanize(id),
		Method:      method,
		Path:        path,
		Summary:     collapseSpace(op.Summary),
		Description: description,
		PathFields:  buildPathFields(params),
		Query:       buildQuerySpec(params),
		Body:        buildBodySpec(op),
	}, tag
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolveParameters(item *openapi3.PathItem, op *openapi3.Operation) []*openapi3.Parameter {
	var out []*openapi3.Parameter
	for _, src := range []openapi3.Parameters{item.Parameters, op.Parameters} {
		for _, pr := range src {
			if pr != nil && pr.Value != nil {
				out = append(out, pr.Value)
			}
		}
	}
	return out
}

func buildPathFields(params []*openapi3.Parameter) []meta.PathField {
	var out []meta.PathField
	for _, p := range params {
		if p.In != openapi3.ParameterInPath || p.Name == "" {
			continue
		}
		out = append(out, meta.PathField{
			Name:        p.Name,
			APIPath:     p.Name,
			Label:       naming.Humanize(p.Name),
			Description: collapseSpace(p.Description),
			Required:    p.Required,
			Example:     p.Example,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// resolveSchema flattens allOf compositions into one schema, merging
// properties and required names across the branches. $refs are already
// resolved by the loader.
func resolveSchema(ref *openapi3.SchemaRef) *openapi3.Schema {
	if ref == nil || ref.Value == nil {
		return nil
	}
	s := ref.Value
	if len(s.AllOf) == 0 {
		return s
	}

	merged := *s
	merged.AllOf = nil
	merged.Properties = openapi3.Schemas{}
	requiredSet := map[string]struct{}{}

	for _, sub := range s.AllOf {
		subSchema := resolveSchema(sub)
		if subSchema == nil {
			continue
		}
		if merged.Type == nil {
			merged.Type = subSchema.Type
		}
		for name, prop := range subSchema.Properties {
			merged.Properties[name] = prop
		}
		for _, name := range subSchema.Required {
			requiredSet[name] = struct{}{}
		}
	}
	for name, prop := range s.Properties {
		merged.Properties[name] = prop
	}
	for _, name := range s.Required {
		requiredSet[name] = struct{}{}
	}

	merged.Required = make([]string, 0, len(requiredSet))
	for name := range requiredSet {
		merged.Required = append(merged.Required, name)
	}
	sort.Strings(merged.Required)
	return &merged
}

// schemaTypeOf infers the schema type, falling back to the dynamic type
// of an example value.
func schemaTypeOf(s *openapi3.Schema, fallback any) string {
	if s != nil && s.Type != nil {
		for _, t := range []string{
			openapi3.TypeString, openapi3.TypeInteger, openapi3.TypeNumber,
			openapi3.TypeBoolean, openapi3.TypeArray, openapi3.TypeObject,
		} {
			if s.Type.Is(t) {
				return t
			}
		}
	}
	switch fallback.(type) {
	case bool:
		return "boolean"
	case int, int64:
		return "integer"
	case float64, float32:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return "string"
}

func enumStrings(s *openapi3.Schema) []string {
	if s == nil || len(s.Enum) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(s.Enum))
	for _, v := range s.Enum {
		out = append(out, cast.ToString(v))
	}
	return out
}

// parseIncludeOptions mines the selectable relation names out of an
// include parameter: backticked tokens and <strong> lists in the
// description, plus comma-separated example values.
func parseIncludeOptions(p *openapi3.Parameter) []string {
	var options []string
	for _, m := range backtickRe.FindAllStringSubmatch(p.Description, -1) {
		if v := collapseSpace(m[1]); v != "" {
			options = append(options, v)
		}
	}
	for _, m := range strongRe.FindAllStringSubmatch(p.Description, -1) {
		for _, part := range strings.Split(m[1], ",") {
			if v := collapseSpace(part); v != "" {
				options = append(options, v)
			}
		}
	}
	for _, key := range sortedExampleKeys(p.Examples) {
		ex := p.Examples[key]
		if ex == nil || ex.Value == nil {
			continue
		}
		if s, ok := ex.Value.Value.(string); ok {
			for _, part := range strings.Split(s, ",") {
				if v := collapseSpace(part); v != "" {
					options = append(options, v)
				}
			}
		}
	}

	seen := map[string]struct{}{}
	out := make([]string, 0, len(options))
	for _, o := range options {
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}

func sortedExampleKeys(examples openapi3.Examples) []string {
	keys := make([]string, 0, len(examples))
	for k := range examples {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parseSortOptions collects sort values from the parameter's examples and
// its schema enum.
func parseSortOptions(p *openapi3.Parameter) []meta.Option {
	var options []meta.Option
	for _, key := range sortedExampleKeys(p.Examples) {
		ex := p.Examples[key]
		if ex == nil || ex.Value == nil || ex.Value.Value == nil {
			continue
		}
		value := cast.ToString(ex.Value.Value)
		name := collapseSpace(ex.Value.Summary)
		if name == "" {
			name = naming.Humanize(value)
		}
		if name == "" {
			name = key
		}
		options = append(options, meta.Option{Name: name, Value: value})
	}

	if schema := resolveSchema(p.Schema); schema != nil {
		for _, raw := range schema.Enum {
			value := cast.ToString(raw)
			exists := false
			for _, o := range options {
				if o.Value == value {
					exists = true
					break
				}
			}
			if !exists {
				options = append(options, meta.Option{Name: naming.Humanize(value), Value: value})
			}
		}
	}
	return options
}

func filterTypeOf(key string, example any) string {
	if strings.HasSuffix(key, "_between") {
		return meta.FilterBetweenDateTime
	}
	switch example.(type) {
	case bool:
		return meta.FilterBoolean
	case int, int64:
		return meta.FilterInteger
	case float64, float32:
		return meta.FilterNumber
	default:
		return meta.FilterString
	}
}

// parseFilterFields builds the filter surface of a deep-object filter
// parameter, preferring example payloads and falling back to the schema's
// properties.
func parseFilterFields(p *openapi3.Parameter) []meta.FilterField {
	byName := map[string]meta.FilterField{}

	for _, key := range sortedExampleKeys(p.Examples) {
		ex := p.Examples[key]
		if ex == nil || ex.Value == nil {
			continue
		}
		payload, ok := ex.Value.Value.(map[string]any)
		if !ok {
			continue
		}
		summary := collapseSpace(ex.Value.Summary)
		for name, example := range payload {
			if f, ok := byName[name]; ok {
				if f.Description == "" && summary != "" {
					f.Description = summary
					byName[name] = f
				}
				continue
			}
			byName[name] = meta.FilterField{
				Name:        name,
				Label:       naming.Humanize(name),
				Description: summary,
				FieldType:   filterTypeOf(name, example),
				Example:     example,
			}
		}
	}

	if len(byName) == 0 {
		if schema := resolveSchema(p.Schema); schema != nil {
			for name, propRef := range schema.Properties {
				prop := resolveSchema(propRef)
				if prop == nil {
					continue
				}
				fieldType := schemaTypeOf(prop, prop.Example)
				if strings.HasSuffix(name, "_between") {
					fieldType = meta.FilterBetweenDateTime
				}
				byName[name] = meta.FilterField{
					Name:        name,
					Label:       naming.Humanize(name),
					Description: collapseSpace(prop.Description),
					FieldType:   fieldType,
					Example:     prop.Example,
				}
			}
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]meta.FilterField, 0, len(names))
	for _, name := range names {
		out = append(out, byName[name])
	}
	return out
}

func buildQuerySpec(params []*openapi3.Parameter) meta.QuerySpec {
	spec := meta.QuerySpec{Simple: []meta.SimpleField{}, Filters: []meta.FilterField{}}

	for _, p := range params {
		if p.In != openapi3.ParameterInQuery || p.Name == "" {
			continue
		}
		switch {
		case p.Name == "include":
			options := parseIncludeOptions(p)
			field := &meta.IncludeField{
				Name:        "include",
				Label:       "Include",
				Description: collapseSpace(p.Description),
				Options:     make([]meta.Option, 0, len(options)),
			}
			for _, v := range options {
				field.Options = append(field.Options, meta.Option{Name: naming.Humanize(v), Value: v})
			}
			spec.Include = field
			continue
		case p.Name == "sort":
			spec.Sort = &meta.SortField{
				Name:        "sort",
				Label:       "Sort",
				Description: collapseSpace(p.Description),
				Options:     parseSortOptions(p),
			}
			continue
		case p.Name == "filter" && p.Style == "deepObject":
			spec.Filters = parseFilterFields(p)
			continue
		}

		schema := resolveSchema(p.Schema)
		example := p.Example
		var def any
		var minimum, maximum *float64
		format := ""
		if schema != nil {
			if schema.Example != nil {
				example = schema.Example
			}
			def = schema.Default
			minimum = schema.Min
			maximum = schema.Max
			format = schema.Format
		}
		spec.Simple = append(spec.Simple, meta.SimpleField{
			Name:        p.Name,
			APIPath:     p.Name,
			Label:       naming.Humanize(p.Name),
			Description: collapseSpace(p.Description),
			Required:    p.Required,
			SchemaType:  schemaTypeOf(schema, p.Example),
			Format:      format,
			EnumValues:  enumStrings(schema),
			Minimum:     minimum,
			Maximum:     maximum,
			Default:     def,
			Example:     example,
		})
	}

	sort.Slice(spec.Simple, func(i, j int) bool { return spec.Simple[i].Label < spec.Simple[j].Label })
	return spec
}

var preferredContentTypes = []string{
	"application/json",
	"multipart/form-data",
	"application/x-www-form-urlencoded",
}

func buildBodySpec(op *openapi3.Operation) *meta.BodySpec {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	if len(content) == 0 {
		return nil
	}

	contentType := ""
	for _, ct := range preferredContentTypes {
		if _, ok := content[ct]; ok {
			contentType = ct
			break
		}
	}
	if contentType == "" {
		cts := make([]string, 0, len(content))
		for ct := range content {
			cts = append(cts, ct)
		}
		sort.Strings(cts)
		contentType = cts[0]
	}

	media := content[contentType]
	if media == nil {
		return nil
	}
	schema := resolveSchema(media.Schema)
	if schema == nil {
		return nil
	}

	spec := &meta.BodySpec{
		ContentType:    contentType,
		RequiredFields: []meta.BodyField{},
		OptionalFields: []meta.BodyField{},
	}

	if len(schema.Properties) > 0 {
		requiredNames := map[string]struct{}{}
		for _, name := range schema.Required {
			requiredNames[name] = struct{}{}
		}
		names := make([]string, 0, len(schema.Properties))
		for name := range schema.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			_, required := requiredNames[name]
			field := buildBodyField(name, schema.Properties[name], required, "")
			if required {
				spec.RequiredFields = append(spec.RequiredFields, field)
			} else {
				spec.OptionalFields = append(spec.OptionalFields, field)
			}
		}
	} else {
		spec.RequiredFields = append(spec.RequiredFields,
			buildBodyField("value", media.Schema, true, ""))
	}

	if contentType == "multipart/form-data" {
		for _, f := range spec.Fields() {
			if f.Kind == meta.KindPrimitive && f.Format == "binary" {
				spec.BinaryProperty = f.APIKey
				break
			}
		}
	}
	return spec
}

// buildBodyField recursively converts a body schema node into the tagged
// BodyField union, tracking the dotted API path. Array item paths get a
// "[]" suffix so nested ids stay distinct.
func buildBodyField(name string, ref *openapi3.SchemaRef, required bool, parentPath string) meta.BodyField {
	schema := resolveSchema(ref)
	apiPath := name
	if parentPath != "" {
		apiPath = parentPath + "." + name
	}

	field := meta.BodyField{
		Kind:     meta.KindPrimitive,
		APIKey:   name,
		APIPath:  apiPath,
		Label:    naming.Humanize(name),
		Required: required,
	}
	if schema == nil {
		field.SchemaType = "string"
		field.EnumValues = []string{}
		return field
	}
	field.Description = collapseSpace(schema.Description)
	field.Nullable = schema.Nullable

	schemaType := schemaTypeOf(schema, schema.Example)
	if schemaType == "object" || len(schema.Properties) > 0 {
		requiredNames := map[string]struct{}{}
		for _, n := range schema.Required {
			requiredNames[n] = struct{}{}
		}
		names := make([]string, 0, len(schema.Properties))
		for n := range schema.Properties {
			names = append(names, n)
		}
		sort.Strings(names)
		field.Kind = meta.KindObject
		field.Children = make([]meta.BodyField, 0, len(names))
		for _, n := range names {
			_, childRequired := requiredNames[n]
			field.Children = append(field.Children, buildBodyField(n, schema.Properties[n], childRequired, apiPath))
		}
		return field
	}

	if schemaType == "array" {
		item := buildBodyField("value", schema.Items, true, apiPath+"[]")
		field.Kind = meta.KindArray
		field.ItemField = &item
		return field
	}

	field.SchemaType = schemaType
	field.Format = schema.Format
	field.EnumValues = enumStrings(schema)
	field.Example = schema.Example
	field.Default = schema.Default
	return field
}
