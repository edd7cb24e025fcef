package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `{
  "resources": [
    {
      "resourceValue": "order",
      "resourceLabel": "Order",
      "operations": [
        {
          "operationValue": "listOrders",
          "operationId": "listOrders",
          "operationLabel": "List orders",
          "method": "GET",
          "path": "/order",
          "summary": "List orders",
          "description": "List orders",
          "pathUi": [],
          "queryUi": {
            "simple": [
              {"name": "page", "apiPath": "page", "label": "Page", "description": "", "required": false, "schemaType": "integer", "enumValues": []},
              {"name": "limit", "apiPath": "limit", "label": "Limit", "description": "", "required": false, "schemaType": "integer", "enumValues": [], "maximum": 50}
            ],
            "include": {"name": "include", "label": "Include", "description": "", "options": [{"name": "Buyer", "value": "buyer"}]},
            "sort": {"name": "sort", "label": "Sort", "description": "", "options": [{"name": "Id", "value": "id"}]},
            "filters": [
              {"name": "created_between", "label": "Created between", "description": "", "fieldType": "betweenDateTime"}
            ]
          }
        },
        {
          "operationValue": "createOrder",
          "operationId": "createOrder",
          "operationLabel": "Create order",
          "method": "POST",
          "path": "/order",
          "summary": "Create order",
          "description": "Create order",
          "pathUi": [],
          "queryUi": {"simple": [], "filters": []},
          "bodyUi": {
            "contentType": "application/json",
            "requiredFields": [
              {"kind": "primitive", "apiKey": "title", "apiPath": "title", "label": "Title", "description": "", "required": true, "nullable": false, "schemaType": "string"}
            ],
            "optionalFields": [
              {
                "kind": "object", "apiKey": "buyer", "apiPath": "buyer", "label": "Buyer", "description": "", "required": false, "nullable": false,
                "children": [
                  {"kind": "primitive", "apiKey": "full_name", "apiPath": "buyer.full_name", "label": "Full name", "description": "", "required": false, "nullable": false, "schemaType": "string"}
                ]
              }
            ]
          }
        }
      ]
    }
  ],
  "operationCount": 2
}`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	require.NoError(t, err)
	require.Len(t, doc.Resources, 1)
	assert.Equal(t, 2, doc.OperationCount)

	res := doc.Resources[0]
	assert.Equal(t, "order", res.Value)
	require.Len(t, res.Operations, 2)

	list := res.Operations[0]
	assert.Equal(t, "GET", list.Method)
	require.NotNil(t, list.Query.Include)
	require.NotNil(t, list.Query.Sort)
	require.Len(t, list.Query.Filters, 1)
	assert.Equal(t, FilterBetweenDateTime, list.Query.Filters[0].FieldType)

	create := res.Operations[1]
	require.NotNil(t, create.Body)
	require.Len(t, create.Body.RequiredFields, 1)
	require.Len(t, create.Body.OptionalFields, 1)
	buyer := create.Body.OptionalFields[0]
	assert.Equal(t, KindObject, buyer.Kind)
	require.Len(t, buyer.Children, 1)
	assert.Equal(t, "buyer.full_name", buyer.Children[0].APIPath)
}

func TestParseEmptyResources(t *testing.T) {
	_, err := Parse([]byte(`{"resources": [], "operationCount": 0}`))
	assert.ErrorIs(t, err, ErrNoResources)
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{`))
	assert.Error(t, err)
}

func TestFindOperation(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	require.NoError(t, err)

	res, op, ok := doc.FindOperation("order", "createOrder")
	require.True(t, ok)
	assert.Equal(t, "order", res.Value)
	assert.Equal(t, "createOrder", op.Value)

	_, _, ok = doc.FindOperation("order", "missing")
	assert.False(t, ok)
	_, _, ok = doc.FindOperation("missing", "createOrder")
	assert.False(t, ok)
}

func TestPagingFields(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	require.NoError(t, err)

	page, limit := doc.Resources[0].Operations[0].Query.PagingFields()
	require.NotNil(t, page)
	require.NotNil(t, limit)
	assert.Equal(t, "page", page.Name)
	require.NotNil(t, limit.Maximum)
	assert.Equal(t, float64(50), *limit.Maximum)

	page, limit = doc.Resources[0].Operations[1].Query.PagingFields()
	assert.Nil(t, page)
	assert.Nil(t, limit)
}

func TestCustomFieldModel(t *testing.T) {
	model, ok := CustomFieldModel("order")
	require.True(t, ok)
	assert.Equal(t, "order", model)

	model, ok = CustomFieldModel("pipelines")
	require.True(t, ok)
	assert.Equal(t, "lead", model)

	_, ok = CustomFieldModel("webhooks")
	assert.False(t, ok)
}
