package runtime

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formbridge/formbridge/pkg/meta"
)

func TestListCustomFields(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, CustomFieldsEndpoint, r.URL.Path)
		gotModel = r.URL.Query().Get("filter[model]")
		fmt.Fprint(w, `{"data": [
			{"uuid": "CT_3", "name": "zeta"},
			{"uuid": "CT_1", "title": "Alpha"},
			{"uuid": "CT_2", "code": "beta_code"},
			{"uuid": "CT_4"},
			{"name": "no uuid, skipped"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	options, err := c.ListCustomFields(context.Background(), "order")
	require.NoError(t, err)
	assert.Equal(t, "order", gotModel)

	// Sorted by label, case-insensitively; labels fall back through
	// name, title, code, and finally the uuid itself.
	require.Len(t, options, 4)
	assert.Equal(t, []meta.Option{
		{Name: "Alpha", Value: "CT_1"},
		{Name: "beta_code", Value: "CT_2"},
		{Name: "CT_4", Value: "CT_4"},
		{Name: "zeta", Value: "CT_3"},
	}, options)
}

func TestListCustomFieldsBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"uuid": "CT_1", "name": "One"}]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	options, err := c.ListCustomFields(context.Background(), "lead")
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "CT_1", options[0].Value)
}

func TestListCustomFieldsForResource(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotModel = r.URL.Query().Get("filter[model]")
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")

	// "pipelines" maps onto the lead model.
	_, err := c.ListCustomFieldsForResource(context.Background(), "pipelines")
	require.NoError(t, err)
	assert.Equal(t, "lead", gotModel)

	// Unmapped resources never hit the API.
	gotModel = ""
	options, err := c.ListCustomFieldsForResource(context.Background(), "webhooks")
	require.NoError(t, err)
	assert.Nil(t, options)
	assert.Empty(t, gotModel)
}
