// Package openapi extracts a formbridge metadata document from an OpenAPI
// specification. The extraction is a build-time concern: the resulting
// document is what the rest of the system loads and treats as read-only.
package openapi

import (
	"fmt"
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"
)

// LoadDocument reads an OpenAPI spec from a local file path or an HTTP(S)
// URL and resolves its references.
func LoadDocument(input string) (*openapi3.T, error) {
	doc, err := load(newLoader(), input)
	if err != nil {
		return nil, fmt.Errorf("load openapi document %s: %w", input, err)
	}
	return doc, nil
}

// ValidateDocument loads an OpenAPI spec and runs the full structural
// validation on it.
func ValidateDocument(input string) error {
	loader := newLoader()
	doc, err := load(loader, input)
	if err != nil {
		return fmt.Errorf("load openapi document %s: %w", input, err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return fmt.Errorf("validate openapi document %s: %w", input, err)
	}
	return nil
}

func newLoader() *openapi3.Loader {
	return &openapi3.Loader{IsExternalRefsAllowed: true}
}

func load(loader *openapi3.Loader, input string) (*openapi3.T, error) {
	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return loader.LoadFromURI(u)
	}
	return loader.LoadFromFile(input)
}
