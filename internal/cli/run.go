// Package cli implements the command handlers behind the formbridge
// binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/formbridge/formbridge/pkg/config"
	"github.com/formbridge/formbridge/pkg/docgen"
	"github.com/formbridge/formbridge/pkg/fields"
	"github.com/formbridge/formbridge/pkg/meta"
	"github.com/formbridge/formbridge/pkg/openapi"
	"github.com/formbridge/formbridge/pkg/request"
	"github.com/formbridge/formbridge/pkg/runtime"
)

// RunFields compiles the metadata document and dumps the generated field
// descriptors as JSON or YAML.
func RunFields(metaPath, format, out string) error {
	doc, err := meta.Load(metaPath)
	if err != nil {
		return err
	}
	descs, err := fields.Compile(doc)
	if err != nil {
		return err
	}
	return writeEncoded(descs, format, out)
}

// RunExtract converts an OpenAPI spec into a metadata document.
func RunExtract(input, format, out string) error {
	doc, err := openapi.ExtractFile(input)
	if err != nil {
		return err
	}
	return writeEncoded(doc, format, out)
}

// RunValidate validates an OpenAPI spec.
func RunValidate(input string) error {
	return openapi.ValidateDocument(input)
}

// RunDocs renders the markdown field reference for a metadata document.
func RunDocs(metaPath, out string) error {
	doc, err := meta.Load(metaPath)
	if err != nil {
		return err
	}
	w, closeFn, err := outputWriter(out)
	if err != nil {
		return err
	}
	defer closeFn()
	return docgen.Render(doc, w)
}

// RunOperationParams carries everything needed to execute one operation.
type RunOperationParams struct {
	ConfigPath string
	Resource   string
	Operation  string
	// Params are field values in "fieldId=value" form; values that parse
	// as JSON are passed through structured.
	Params  []string
	Verbose bool
}

// RunOperation executes one operation for a single input item built from
// the command line and prints the output records.
func RunOperation(p RunOperationParams) error {
	if p.Resource == "" || p.Operation == "" {
		return errors.New("both --resource and --operation must be provided")
	}
	cfg, err := config.Load(p.ConfigPath)
	if err != nil {
		return err
	}
	doc, err := meta.Load(cfg.Metadata)
	if err != nil {
		return err
	}
	values, err := parseParams(p.Params)
	if err != nil {
		return err
	}

	log := zerolog.Nop()
	if p.Verbose {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	httpc := &http.Client{Timeout: runtime.DefaultTimeout}
	if cfg.TimeoutSeconds > 0 {
		httpc.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := runtime.NewClient(cfg.BaseURL, cfg.APIToken,
		runtime.WithHTTPClient(httpc),
		runtime.WithLogger(log),
	)
	runner := runtime.NewRunner(doc, client,
		runtime.WithContinueOnFail(cfg.ContinueOnFail),
		runtime.WithMaxPages(cfg.MaxPages),
		runtime.WithRunnerLogger(log),
	)

	records, err := runner.Run(context.Background(), p.Resource, p.Operation,
		[]runtime.Item{{Params: values}})
	if err != nil {
		return err
	}
	return writeEncoded(records, "json", "")
}

// parseParams converts "fieldId=value" pairs into a value container.
func parseParams(pairs []string) (request.Values, error) {
	values := request.Values{}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected fieldId=value", pair)
		}
		var structured any
		if err := json.Unmarshal([]byte(raw), &structured); err == nil {
			values[key] = structured
			continue
		}
		values[key] = raw
	}
	return values, nil
}

func writeEncoded(v any, format, out string) error {
	w, closeFn, err := outputWriter(out)
	if err != nil {
		return err
	}
	defer closeFn()

	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func outputWriter(out string) (*os.File, func(), error) {
	if out == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(out)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
