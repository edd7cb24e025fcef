// Package docgen renders a markdown reference of the compiled input
// fields, grouped by resource and operation.
package docgen

import (
	"embed"
	"io"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/formbridge/formbridge/pkg/fields"
	"github.com/formbridge/formbridge/pkg/meta"
)

//go:embed templates/*
var templatesFS embed.FS

// operationSection groups the descriptors generated for one operation.
type operationSection struct {
	Resource    *meta.Resource
	Operation   *meta.Operation
	Descriptors []fields.Descriptor
}

// Render compiles the document and writes the field reference to w.
func Render(doc *meta.Document, w io.Writer) error {
	descs, err := fields.Compile(doc)
	if err != nil {
		return err
	}
	return renderDescriptors(doc, descs, w)
}

func renderDescriptors(doc *meta.Document, descs []fields.Descriptor, w io.Writer) error {
	funcMap := template.FuncMap{
		"kindLabel": kindLabel,
	}
	for k, v := range sprig.FuncMap() {
		funcMap[k] = v
	}

	tmpl, err := template.New("fields.md.tmpl").Funcs(funcMap).ParseFS(templatesFS, "templates/fields.md.tmpl")
	if err != nil {
		return err
	}
	return tmpl.Execute(w, map[string]any{
		"Document": doc,
		"Sections": groupByOperation(descs),
	})
}

// groupByOperation splits the flat descriptor list into per-operation
// sections, preserving metadata order.
func groupByOperation(descs []fields.Descriptor) []operationSection {
	var sections []operationSection
	index := map[*meta.Operation]int{}
	for _, d := range descs {
		if d.Meta == nil || d.Meta.Operation == nil {
			continue
		}
		op := d.Meta.Operation
		i, ok := index[op]
		if !ok {
			i = len(sections)
			index[op] = i
			sections = append(sections, operationSection{
				Resource:  d.Meta.Resource,
				Operation: op,
			})
		}
		sections[i].Descriptors = append(sections[i].Descriptors, d)
	}
	return sections
}

func kindLabel(k fields.Kind) string {
	switch k {
	case fields.KindString:
		return "text"
	case fields.KindNumber:
		return "number"
	case fields.KindBoolean:
		return "boolean"
	case fields.KindDate:
		return "date"
	case fields.KindChoice:
		return "choice"
	case fields.KindMultiChoice:
		return "multi-choice"
	case fields.KindGroup:
		return "group"
	case fields.KindDynamicChoice:
		return "dynamic choice"
	default:
		return string(k)
	}
}
