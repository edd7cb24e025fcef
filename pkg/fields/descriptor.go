// Package fields compiles a metadata document into the flat list of input
// field descriptors shown to the caller. Compilation is deterministic and
// side-effect free; CompileOnce caches the result for the process lifetime.
package fields

import "github.com/formbridge/formbridge/pkg/meta"

// Kind is the presentation type of a descriptor.
type Kind string

const (
	KindString        Kind = "string"
	KindNumber        Kind = "number"
	KindBoolean       Kind = "boolean"
	KindDate          Kind = "date"
	KindChoice        Kind = "choice"
	KindMultiChoice   Kind = "multiChoice"
	KindGroup         Kind = "group"
	KindDynamicChoice Kind = "dynamicChoice"
)

// Condition keys a descriptor's visibility off another field's value.
type Condition struct {
	FieldID string `json:"fieldId"`
	Equals  any    `json:"equals"`
}

// Ref carries the metadata entry a descriptor was generated from. It is
// the only way back from an identifier to its source field; identifiers
// are never parsed.
type Ref struct {
	Resource  *meta.Resource
	Operation *meta.Operation
	Path      *meta.PathField
	Query     *meta.SimpleField
	Filter    *meta.FilterField
	Body      *meta.BodyField
}

// Descriptor is one generated input field. Group descriptors hold their
// children; repeatable groups accept a list of child-value containers at
// run time, every other value is supplied in one flat map keyed by ID.
type Descriptor struct {
	ID          string        `json:"id"`
	Label       string        `json:"label"`
	Kind        Kind          `json:"kind"`
	Description string        `json:"description,omitempty"`
	Placeholder string        `json:"placeholder,omitempty"`
	Default     any           `json:"default,omitempty"`
	Options     []meta.Option `json:"options,omitempty"`
	Required    bool          `json:"required,omitempty"`
	Repeatable  bool          `json:"repeatable,omitempty"`
	ShowIf      *Condition    `json:"showIf,omitempty"`
	Children    []Descriptor  `json:"children,omitempty"`

	Meta *Ref `json:"-"`
}

// walk visits d and every descendant descriptor.
func (d *Descriptor) walk(visit func(*Descriptor)) {
	visit(d)
	for i := range d.Children {
		d.Children[i].walk(visit)
	}
}

// WalkAll visits every descriptor in a compiled list, including nested
// children.
func WalkAll(descs []Descriptor, visit func(*Descriptor)) {
	for i := range descs {
		descs[i].walk(visit)
	}
}
