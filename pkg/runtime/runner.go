package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gregwebs/go-recovery"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/formbridge/formbridge/pkg/fields"
	"github.com/formbridge/formbridge/pkg/meta"
	"github.com/formbridge/formbridge/pkg/naming"
	"github.com/formbridge/formbridge/pkg/request"
)

// Item is one unit of input to a run: field values keyed by generated
// identifiers, plus named binary attachments for upload operations.
type Item struct {
	Params request.Values
	Binary map[string][]byte
}

// Record is one logical output of a run. Either Data or Error is set;
// ItemIndex correlates the record with the input item that produced it.
type Record struct {
	ItemIndex int            `json:"itemIndex"`
	Data      map[string]any `json:"data,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Runner orchestrates operation execution per input item. Items are
// processed strictly sequentially; so are the pages of one item.
type Runner struct {
	doc            *meta.Document
	client         *Client
	continueOnFail bool
	maxPages       int
	log            zerolog.Logger
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithContinueOnFail captures per-item failures as error records instead
// of aborting the run.
func WithContinueOnFail(v bool) RunnerOption {
	return func(r *Runner) { r.continueOnFail = v }
}

// WithMaxPages overrides the pagination safety ceiling.
func WithMaxPages(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxPages = n
		}
	}
}

// WithRunnerLogger attaches a structured logger.
func WithRunnerLogger(log zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// NewRunner creates a runner over a loaded metadata document.
func NewRunner(doc *meta.Document, client *Client, opts ...RunnerOption) *Runner {
	r := &Runner{
		doc:      doc,
		client:   client,
		maxPages: DefaultMaxPages,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one operation for every input item. An unknown
// resource/operation pair is a configuration error and aborts immediately
// regardless of the failure policy. Every item yields at least one data
// record or one error record.
func (r *Runner) Run(ctx context.Context, resource, operation string, items []Item) ([]Record, error) {
	_, op, ok := r.doc.FindOperation(resource, operation)
	if !ok {
		return nil, &ConfigError{Msg: fmt.Sprintf("unknown resource/operation combination %q/%q", resource, operation)}
	}

	var records []Record
	for i := range items {
		recs, err := r.runItem(ctx, op, i, &items[i])
		if err != nil {
			if r.continueOnFail {
				r.log.Warn().Int("item", i).Err(err).Msg("item failed, continuing")
				records = append(records, Record{ItemIndex: i, Error: err.Error()})
				continue
			}
			var verr *request.ValidationError
			var aerr *APIError
			if errors.As(err, &verr) || errors.As(err, &aerr) {
				return nil, err
			}
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		records = append(records, recs...)
	}
	return records, nil
}

// runItem walks one item through path substitution, query and body
// assembly, dispatch, and response normalization. Panics inside the item
// are converted to errors so the failure policy applies to them too.
func (r *Runner) runItem(ctx context.Context, op *meta.Operation, idx int, item *Item) (recs []Record, err error) {
	err = recovery.Call(func() error {
		path, err := substitutePath(op, item.Params)
		if err != nil {
			return err
		}
		query, pag, err := request.AssembleQuery(op, item.Params)
		if err != nil {
			return err
		}

		var resp any
		switch {
		case op.Body != nil && op.Body.BinaryProperty != "":
			resp, err = r.dispatchBinary(ctx, op, path, query, item)
		case pag.Enabled && pag.FetchAll:
			var items []any
			items, resp, err = r.fetchAllPages(ctx, op, path, query, pag)
			if err == nil && len(items) > 0 {
				recs = recordsFromList(items, idx)
				return nil
			}
		default:
			var body any
			if op.Body != nil {
				body, err = request.AssembleBody(op, item.Params)
				if err != nil {
					return err
				}
			}
			resp, err = r.client.Do(ctx, op.Method, path, query, body)
		}
		if err != nil {
			return err
		}
		recs = normalizeResponse(resp, idx)
		return nil
	})
	return recs, err
}

// dispatchBinary sends the multipart variant: one named binary attachment
// wrapped as a file part under the body's declared binary property.
func (r *Runner) dispatchBinary(ctx context.Context, op *meta.Operation, path string, query map[string]any, item *Item) (any, error) {
	name := strings.TrimSpace(cast.ToString(item.Params[fields.BinaryPropertyID(op)]))
	if name == "" {
		name = "data"
	}
	data, ok := item.Binary[name]
	if !ok {
		return nil, &request.ValidationError{
			Field: op.Body.BinaryProperty,
			Msg:   fmt.Sprintf("binary attachment %q not found on input item", name),
		}
	}
	return r.client.DoMultipart(ctx, op.Method, path, query, op.Body.BinaryProperty, name, data)
}

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// substitutePath fills every {name} placeholder of the path template with
// the supplied, URL-escaped value. A missing value for a required
// placeholder fails validation; placeholders without metadata are treated
// as required.
func substitutePath(op *meta.Operation, vals request.Values) (string, error) {
	var verr error
	out := placeholderRe.ReplaceAllStringFunc(op.Path, func(m string) string {
		name := m[1 : len(m)-1]
		pf := findPathField(op, name)

		var raw any
		if pf != nil {
			raw = vals[fields.PathFieldID(op, pf)]
		} else {
			raw = vals[naming.FieldID(naming.KindPath, op.Value, name)]
		}
		s := strings.TrimSpace(cast.ToString(raw))
		if s == "" {
			if (pf == nil || pf.Required) && verr == nil {
				verr = &request.ValidationError{Field: name, Msg: "required path parameter is missing"}
			}
			return ""
		}
		return url.PathEscape(s)
	})
	if verr != nil {
		return "", verr
	}
	return out, nil
}

func findPathField(op *meta.Operation, name string) *meta.PathField {
	for i := range op.PathFields {
		if op.PathFields[i].Name == name {
			return &op.PathFields[i]
		}
	}
	return nil
}

// normalizeResponse guarantees at least one output record per dispatched
// item: arrays fan out to one record per element, objects map directly,
// scalars are wrapped, anything else is stringified.
func normalizeResponse(resp any, idx int) []Record {
	switch v := resp.(type) {
	case []any:
		return recordsFromList(v, idx)
	case map[string]any:
		return []Record{{ItemIndex: idx, Data: v}}
	case nil:
		return []Record{{ItemIndex: idx, Data: map[string]any{}}}
	case string, bool, float64, int, int64:
		return []Record{{ItemIndex: idx, Data: map[string]any{"value": v}}}
	default:
		return []Record{{ItemIndex: idx, Data: map[string]any{"value": fmt.Sprintf("%v", v)}}}
	}
}

func recordsFromList(items []any, idx int) []Record {
	recs := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			recs = append(recs, Record{ItemIndex: idx, Data: m})
			continue
		}
		recs = append(recs, Record{ItemIndex: idx, Data: map[string]any{"value": item}})
	}
	return recs
}
