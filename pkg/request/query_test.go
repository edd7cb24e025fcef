package request

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formbridge/formbridge/pkg/fields"
	"github.com/formbridge/formbridge/pkg/meta"
)

func float64Ptr(v float64) *float64 { return &v }

func listOrdersOp() *meta.Operation {
	return &meta.Operation{
		Value:  "listOrders",
		Method: "GET",
		Path:   "/order",
		Query: meta.QuerySpec{
			Simple: []meta.SimpleField{
				{Name: "page", APIPath: "page", SchemaType: "integer"},
				{Name: "limit", APIPath: "limit", SchemaType: "integer", Maximum: float64Ptr(50)},
				{Name: "status", APIPath: "status", SchemaType: "string"},
				{Name: "archived", APIPath: "archived", SchemaType: "boolean"},
			},
			Include: &meta.IncludeField{
				Name: "include",
				Options: []meta.Option{
					{Name: "Buyer", Value: "buyer"},
					{Name: "Products", Value: "products"},
				},
			},
			Sort: &meta.SortField{
				Name:    "sort",
				Options: []meta.Option{{Name: "Id", Value: "id"}},
			},
			Filters: []meta.FilterField{
				{Name: "source_id", FieldType: meta.FilterInteger},
				{Name: "is_paid", FieldType: meta.FilterBoolean},
				{Name: "created_between", FieldType: meta.FilterBetweenDateTime},
			},
		},
	}
}

func TestAssembleQuerySimpleFields(t *testing.T) {
	op := listOrdersOp()
	vals := Values{
		fields.SimpleFieldID(op, &op.Query.Simple[2]): "open",
		fields.SimpleFieldID(op, &op.Query.Simple[3]): false,
	}

	q, pag, err := AssembleQuery(op, vals)
	require.NoError(t, err)
	assert.Equal(t, "open", q["status"])
	assert.NotContains(t, q, "archived", "bare false without a default is dropped")
	assert.True(t, pag.Enabled)
	assert.False(t, pag.FetchAll)
	assert.Equal(t, 1, q["page"])
	assert.Equal(t, 50, q["limit"])
}

func TestAssembleQueryRequiredFieldAlwaysIncluded(t *testing.T) {
	op := listOrdersOp()
	op.Query.Simple[2].Required = true

	// Even an absent required value lands on the wire, normalized.
	q, _, err := AssembleQuery(op, Values{})
	require.NoError(t, err)
	require.Contains(t, q, "status")
	assert.Equal(t, "", q["status"])

	q, _, err = AssembleQuery(op, Values{
		fields.SimpleFieldID(op, &op.Query.Simple[2]): "open",
	})
	require.NoError(t, err)
	assert.Equal(t, "open", q["status"])
}

func TestAssembleQueryExplicitPaging(t *testing.T) {
	op := listOrdersOp()
	vals := Values{
		fields.PageID(op):  3,
		fields.LimitID(op): "25",
	}

	q, pag, err := AssembleQuery(op, vals)
	require.NoError(t, err)
	assert.Equal(t, 3, q["page"])
	assert.Equal(t, 25, q["limit"])
	assert.Equal(t, 3, pag.Page)
	assert.Equal(t, 25, pag.Limit)
}

func TestAssembleQueryFetchAll(t *testing.T) {
	op := listOrdersOp()
	vals := Values{
		fields.FetchAllID(op): true,
		fields.PageID(op):     7,
	}

	q, pag, err := AssembleQuery(op, vals)
	require.NoError(t, err)
	assert.True(t, pag.FetchAll)
	assert.Equal(t, 50, pag.Limit, "fetch-all pages at the declared maximum")
	assert.NotContains(t, q, "page")
	assert.NotContains(t, q, "limit")
}

func TestAssembleQueryBadLimit(t *testing.T) {
	op := listOrdersOp()

	for _, bad := range []any{0, -2, "many"} {
		_, _, err := AssembleQuery(op, Values{fields.LimitID(op): bad})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "limit %v", bad)
		assert.Equal(t, "limit", verr.Field)
	}
}

func TestAssembleQueryIncludeAndSort(t *testing.T) {
	op := listOrdersOp()
	vals := Values{
		fields.IncludeID(op): []any{"buyer", "products"},
		fields.SortID(op):    "id",
	}

	q, _, err := AssembleQuery(op, vals)
	require.NoError(t, err)
	assert.Equal(t, "buyer,products", q["include"])
	assert.Equal(t, "id", q["sort"])
}

func TestAssembleQueryFilter(t *testing.T) {
	op := listOrdersOp()
	vals := Values{
		fields.FilterFieldID(op, &op.Query.Filters[0]): "12",
		fields.FilterFieldID(op, &op.Query.Filters[1]): "true",
	}

	q, _, err := AssembleQuery(op, vals)
	require.NoError(t, err)
	filter, ok := q["filter"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(12), filter["source_id"])
	assert.Equal(t, true, filter["is_paid"])
}

func TestAssembleQueryFilterOmittedWhenEmpty(t *testing.T) {
	op := listOrdersOp()
	q, _, err := AssembleQuery(op, Values{})
	require.NoError(t, err)
	assert.NotContains(t, q, "filter")
}

func TestAssembleQueryBadIntegerFilter(t *testing.T) {
	op := listOrdersOp()
	vals := Values{
		fields.FilterFieldID(op, &op.Query.Filters[0]): "not a number",
	}

	_, _, err := AssembleQuery(op, vals)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "filter.source_id", verr.Field)
}

func TestAssembleQueryDateRange(t *testing.T) {
	op := listOrdersOp()
	between := &op.Query.Filters[2]
	vals := Values{
		fields.FilterFromID(op, between): "2024-01-01",
		fields.FilterToID(op, between):   "2024-01-31",
	}

	q, _, err := AssembleQuery(op, vals)
	require.NoError(t, err)
	filter := q["filter"].(map[string]any)
	assert.Equal(t, "2024-01-01 00:00:00, 2024-01-31 00:00:00", filter["created_between"])
}

func TestAssembleQueryDateRangeOneSided(t *testing.T) {
	op := listOrdersOp()
	between := &op.Query.Filters[2]
	vals := Values{
		fields.FilterFromID(op, between): "2024-01-01",
	}

	_, _, err := AssembleQuery(op, vals)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "filter.created_between", verr.Field)
}

func TestAssembleQueryCustomFieldFilter(t *testing.T) {
	op := listOrdersOp()
	vals := Values{
		fields.CustomFilterGroupID(op): []any{
			map[string]any{
				fields.CustomFilterUUIDID(op):  "CT_1001",
				fields.CustomFilterValueID(op): "gold",
			},
			map[string]any{
				fields.CustomFilterUUIDID(op):  "  ",
				fields.CustomFilterValueID(op): "skipped",
			},
		},
	}

	q, _, err := AssembleQuery(op, vals)
	require.NoError(t, err)
	filter := q["filter"].(map[string]any)
	assert.Equal(t, map[string]string{"CT_1001": "gold"}, filter["custom_fields"])
}

func TestFormatDateTimeUTC(t *testing.T) {
	kyiv := time.FixedZone("EET", 2*3600)
	tests := []struct {
		name     string
		raw      any
		expected string
	}{
		{"time value", time.Date(2024, 3, 10, 12, 30, 0, 0, kyiv), "2024-03-10 10:30:00"},
		{"rfc3339", "2024-03-10T12:30:00+02:00", "2024-03-10 10:30:00"},
		{"naive datetime", "2024-03-10T12:30:00", "2024-03-10 12:30:00"},
		{"wire layout", "2024-03-10 12:30:00", "2024-03-10 12:30:00"},
		{"date only", "2024-03-10", "2024-03-10 00:00:00"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := FormatDateTimeUTC(test.raw)
			require.NoError(t, err)
			assert.Equal(t, test.expected, got)
		})
	}

	_, err := FormatDateTimeUTC("next tuesday")
	assert.Error(t, err)
	_, err = FormatDateTimeUTC("")
	assert.Error(t, err)
}

func TestEffectivePageSize(t *testing.T) {
	assert.Equal(t, 50, EffectivePageSize(&meta.SimpleField{Maximum: float64Ptr(50)}))
	assert.Equal(t, 25, EffectivePageSize(&meta.SimpleField{Default: 25}))
	assert.Equal(t, fields.DefaultPageSize, EffectivePageSize(&meta.SimpleField{}))
	assert.Equal(t, fields.DefaultPageSize, EffectivePageSize(nil))
}
