package runtime

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/formbridge/formbridge/pkg/meta"
)

// CustomFieldsEndpoint is the fixed read path for tenant-defined custom
// field definitions.
const CustomFieldsEndpoint = "/custom-fields"

// customFieldsPageSize bounds the definition listing; tenants rarely have
// more than a handful of custom fields per model.
const customFieldsPageSize = 50

// ListCustomFields queries the custom-field definitions for one model and
// returns (value, label) choices sorted by label, case-insensitively.
// Items without a uuid are skipped; labels resolve from name, then title,
// then code, then the uuid itself.
func (c *Client) ListCustomFields(ctx context.Context, model string) ([]meta.Option, error) {
	query := map[string]any{
		"filter": map[string]any{"model": model},
		"limit":  customFieldsPageSize,
	}
	resp, err := c.Do(ctx, http.MethodGet, CustomFieldsEndpoint, query, nil)
	if err != nil {
		return nil, err
	}

	var items []any
	switch v := resp.(type) {
	case []any:
		items = v
	case map[string]any:
		if d, ok := v["data"].([]any); ok {
			items = d
		}
	}

	options := make([]meta.Option, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		uuid := strings.TrimSpace(cast.ToString(m["uuid"]))
		if uuid == "" {
			continue
		}
		options = append(options, meta.Option{Value: uuid, Name: customFieldLabel(m, uuid)})
	}

	col := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(options, func(i, j int) bool {
		return col.CompareString(options[i].Name, options[j].Name) < 0
	})
	return options, nil
}

// ListCustomFieldsForResource lists custom-field choices for the model
// derived from the active resource. Resources without a custom-field
// model yield no choices.
func (c *Client) ListCustomFieldsForResource(ctx context.Context, resourceValue string) ([]meta.Option, error) {
	model, ok := meta.CustomFieldModel(resourceValue)
	if !ok {
		return nil, nil
	}
	return c.ListCustomFields(ctx, model)
}

func customFieldLabel(m map[string]any, uuid string) string {
	for _, key := range []string{"name", "title", "code"} {
		if s := strings.TrimSpace(cast.ToString(m[key])); s != "" {
			return s
		}
	}
	return uuid
}
