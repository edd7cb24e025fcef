package request

import (
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/formbridge/formbridge/pkg/fields"
	"github.com/formbridge/formbridge/pkg/meta"
)

// DateTimeLayout is the wire format for date-range filter endpoints.
const DateTimeLayout = "2006-01-02 15:04:05"

// Pagination carries the paging decision for one request. Enabled means
// the operation declares both reserved paging fields; FetchAll hands the
// loop over to the pagination engine, which injects page/limit per page
// instead of the one-shot query carrying them.
type Pagination struct {
	Enabled  bool
	FetchAll bool
	Page     int
	Limit    int
}

// AssembleQuery builds the query object for an operation from supplied
// values: simple fields, paging, include, sort, and the filter object.
func AssembleQuery(op *meta.Operation, vals Values) (map[string]any, *Pagination, error) {
	q := make(map[string]any)

	for i := range op.Query.Simple {
		f := &op.Query.Simple[i]
		if f.IsPaging() {
			continue
		}
		raw, present := vals[fields.SimpleFieldID(op, f)]
		if !present && !f.Required {
			continue
		}
		v := NormalizeQueryValue(f, raw)
		if ShouldInclude(f, v) {
			q[f.Name] = v
		}
	}

	pag, err := assemblePaging(op, vals, q)
	if err != nil {
		return nil, nil, err
	}

	if op.Query.Include != nil {
		if inc := includeList(vals[fields.IncludeID(op)]); len(inc) > 0 {
			q["include"] = strings.Join(inc, ",")
		}
	}
	if op.Query.Sort != nil {
		if sort := cast.ToString(vals[fields.SortID(op)]); sort != "" {
			q["sort"] = sort
		}
	}

	filter, err := assembleFilter(op, vals)
	if err != nil {
		return nil, nil, err
	}
	if len(filter) > 0 {
		q["filter"] = filter
	}
	return q, pag, nil
}

// EffectivePageSize picks the page size used when fetching all pages: the
// limit field's declared maximum, else its default, else the fixed
// fallback.
func EffectivePageSize(limit *meta.SimpleField) int {
	if limit != nil {
		if limit.Maximum != nil && *limit.Maximum > 0 {
			return int(*limit.Maximum)
		}
		if limit.Default != nil {
			if n := cast.ToInt(limit.Default); n > 0 {
				return n
			}
		}
	}
	return fields.DefaultPageSize
}

func positiveInt(raw any, field string) (int, error) {
	n, err := cast.ToIntE(raw)
	if err != nil || n <= 0 {
		return 0, validationErrorf(field, "must be a positive integer, got %v", raw)
	}
	return n, nil
}

func assemblePaging(op *meta.Operation, vals Values, q map[string]any) (*Pagination, error) {
	pageField, limitField := op.Query.PagingFields()
	pag := &Pagination{
		Enabled: pageField != nil && limitField != nil,
		Page:    1,
		Limit:   EffectivePageSize(limitField),
	}
	if pageField == nil && limitField == nil {
		return pag, nil
	}

	if pag.Enabled {
		pag.FetchAll = cast.ToBool(vals[fields.FetchAllID(op)])
		if pag.FetchAll {
			// The pagination engine injects page/limit per page.
			return pag, nil
		}
	}

	if limitField != nil {
		if raw, ok := vals[fields.LimitID(op)]; ok && !IsEmpty(raw) {
			n, err := positiveInt(raw, meta.LimitParam)
			if err != nil {
				return nil, err
			}
			pag.Limit = n
		}
		q[meta.LimitParam] = pag.Limit
	}
	if pageField != nil {
		if raw, ok := vals[fields.PageID(op)]; ok && !IsEmpty(raw) {
			n, err := positiveInt(raw, meta.PageParam)
			if err != nil {
				return nil, err
			}
			pag.Page = n
		}
		q[meta.PageParam] = pag.Page
	}
	return pag, nil
}

func includeList(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := cast.ToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// FormatDateTimeUTC renders a supplied date or date-time as the fixed
// "YYYY-MM-DD HH:MM:SS" UTC string used by range filters.
func FormatDateTimeUTC(raw any) (string, error) {
	if t, ok := raw.(time.Time); ok {
		return t.UTC().Format(DateTimeLayout), nil
	}
	s := strings.TrimSpace(cast.ToString(raw))
	if s == "" {
		return "", validationErrorf("", "empty date value")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(DateTimeLayout), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", DateTimeLayout, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.Format(DateTimeLayout), nil
		}
	}
	return "", validationErrorf("", "invalid date value %q", s)
}

func assembleFilter(op *meta.Operation, vals Values) (map[string]any, error) {
	filter := make(map[string]any)

	for i := range op.Query.Filters {
		f := &op.Query.Filters[i]
		if f.FieldType == meta.FilterBetweenDateTime {
			if err := assembleDateRange(op, f, vals, filter); err != nil {
				return nil, err
			}
			continue
		}

		raw, present := vals[fields.FilterFieldID(op, f)]
		if !present || IsEmpty(raw) {
			continue
		}
		switch f.FieldType {
		case meta.FilterInteger:
			n, err := cast.ToInt64E(raw)
			if err != nil {
				return nil, validationErrorf("filter."+f.Name, "must be an integer, got %v", raw)
			}
			filter[f.Name] = n
		case meta.FilterNumber:
			n, err := cast.ToFloat64E(raw)
			if err != nil {
				return nil, validationErrorf("filter."+f.Name, "must be a number, got %v", raw)
			}
			filter[f.Name] = n
		case meta.FilterBoolean:
			filter[f.Name] = cast.ToBool(raw)
		default:
			filter[f.Name] = cast.ToString(raw)
		}
	}

	if cf, err := assembleCustomFieldFilter(op, vals); err != nil {
		return nil, err
	} else if len(cf) > 0 {
		filter["custom_fields"] = cf
	}
	return filter, nil
}

// assembleDateRange encodes a betweenDateTime filter: both endpoints
// present become "<from>, <to>", neither means the filter is skipped, and
// a one-sided range is a validation error.
func assembleDateRange(op *meta.Operation, f *meta.FilterField, vals Values, filter map[string]any) error {
	fromRaw := vals[fields.FilterFromID(op, f)]
	toRaw := vals[fields.FilterToID(op, f)]
	fromSet := !IsEmpty(fromRaw)
	toSet := !IsEmpty(toRaw)

	if !fromSet && !toSet {
		return nil
	}
	if fromSet != toSet {
		return validationErrorf("filter."+f.Name, "both From and To must be set for a date range filter")
	}

	from, err := FormatDateTimeUTC(fromRaw)
	if err != nil {
		return validationErrorf("filter."+f.Name, "invalid From value %v", fromRaw)
	}
	to, err := FormatDateTimeUTC(toRaw)
	if err != nil {
		return validationErrorf("filter."+f.Name, "invalid To value %v", toRaw)
	}
	filter[f.Name] = from + ", " + to
	return nil
}

func assembleCustomFieldFilter(op *meta.Operation, vals Values) (map[string]string, error) {
	raw, present := vals[fields.CustomFilterGroupID(op)]
	if !present {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, nil
	}

	out := make(map[string]string)
	uuidKey := fields.CustomFilterUUIDID(op)
	valueKey := fields.CustomFilterValueID(op)
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id := strings.TrimSpace(cast.ToString(entry[uuidKey]))
		if id == "" {
			continue
		}
		out[id] = cast.ToString(entry[valueKey])
	}
	return out, nil
}
