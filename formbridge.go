// Package formbridge turns a static description of a REST API into
// dynamically generated input fields and a runtime request builder.
//
// The metadata document (resources → operations → path/query/body
// schemas) is compiled once into uniquely identified field descriptors;
// at run time, filled-in field values are normalized and reassembled into
// HTTP requests, with list endpoints optionally aggregated across pages.
//
// Quick start:
//
//	doc, err := formbridge.LoadMetadata("./metadata.json")
//	if err != nil { ... }
//	descs, err := formbridge.CompileFields(doc)
//	if err != nil { ... }
//
//	runner := formbridge.NewRunner(doc, "https://api.example.com/v1", "my-token")
//	records, err := runner.Run(ctx, "order", "listOrders", []runtime.Item{{Params: values}})
//
// For finer control see the meta, fields, request, and runtime packages.
package formbridge

import (
	"github.com/formbridge/formbridge/pkg/fields"
	"github.com/formbridge/formbridge/pkg/meta"
	"github.com/formbridge/formbridge/pkg/openapi"
	"github.com/formbridge/formbridge/pkg/runtime"
)

// LoadMetadata reads and parses a metadata JSON document.
func LoadMetadata(path string) (*meta.Document, error) {
	return meta.Load(path)
}

// CompileFields compiles a metadata document into its field descriptors.
func CompileFields(doc *meta.Document) ([]fields.Descriptor, error) {
	return fields.Compile(doc)
}

// NewRunner creates a runner executing operations against baseURL with
// the given API token. The token may carry a Bearer prefix or not.
func NewRunner(doc *meta.Document, baseURL, apiToken string, opts ...runtime.RunnerOption) *runtime.Runner {
	client := runtime.NewClient(baseURL, apiToken)
	return runtime.NewRunner(doc, client, opts...)
}

// ExtractMetadata builds a metadata document from an OpenAPI spec file or
// URL.
func ExtractMetadata(spec string) (*meta.Document, error) {
	return openapi.ExtractFile(spec)
}
