package runtime

import (
	"context"

	"github.com/spf13/cast"

	"github.com/formbridge/formbridge/pkg/meta"
	"github.com/formbridge/formbridge/pkg/request"
)

// DefaultMaxPages is the hard safety ceiling on the fetch-all loop. It
// exists purely to bound work against APIs that expose no pagination
// metadata and never return a short page.
const DefaultMaxPages = 1000

// extractItems pulls the item collection out of a page response: a bare
// array, else an object's "data" array, else its "items" array.
func extractItems(resp any) []any {
	switch v := resp.(type) {
	case []any:
		return v
	case map[string]any:
		if d, ok := v["data"].([]any); ok {
			return d
		}
		if d, ok := v["items"].([]any); ok {
			return d
		}
	}
	return nil
}

func numberField(m map[string]any, key string) (float64, bool) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return 0, false
	}
	n, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case int:
		return x != 0
	default:
		return true
	}
}

// hasMore decides whether another page should be fetched, checking the
// known pagination shapes in order before falling back to the full-page
// heuristic bounded by the safety ceiling.
func hasMore(resp any, page, got, limit, maxPages int) bool {
	if m, ok := resp.(map[string]any); ok {
		if cur, ok1 := numberField(m, "current_page"); ok1 {
			if last, ok2 := numberField(m, "last_page"); ok2 && last > 0 {
				return cur < last
			}
		}
		if cur, ok1 := numberField(m, "page"); ok1 {
			if last, ok2 := numberField(m, "last_page"); ok2 && last > 0 {
				return cur < last
			}
		}
		if v, ok := m["next_page_url"]; ok {
			return truthy(v)
		}
		if links, ok := m["links"].(map[string]any); ok {
			if v, ok := links["next"]; ok {
				return truthy(v)
			}
		}
	}
	return got >= limit && page < maxPages
}

// fetchAllPages drives the sequential pagination loop: one request per
// page with page/limit injected, items accumulated across pages. It
// returns the accumulated items and the last raw response, so callers can
// fall back to normalizing the response when nothing list-shaped ever
// came back.
func (r *Runner) fetchAllPages(ctx context.Context, op *meta.Operation, path string, query map[string]any, pag *request.Pagination) ([]any, any, error) {
	var accumulated []any
	var lastResp any

	for page := 1; ; page++ {
		pq := make(map[string]any, len(query)+2)
		for k, v := range query {
			pq[k] = v
		}
		pq[meta.PageParam] = page
		pq[meta.LimitParam] = pag.Limit

		resp, err := r.client.Do(ctx, op.Method, path, pq, nil)
		if err != nil {
			return nil, nil, err
		}
		lastResp = resp

		items := extractItems(resp)
		accumulated = append(accumulated, items...)
		r.log.Debug().
			Str("operation", op.Value).
			Int("page", page).
			Int("items", len(items)).
			Msg("fetched page")

		if !hasMore(resp, page, len(items), pag.Limit, r.maxPages) {
			break
		}
	}
	return accumulated, lastResp, nil
}
