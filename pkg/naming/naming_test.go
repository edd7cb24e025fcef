package naming

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToken(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "field"},
		{"!!!", "field"},
		{"   ", "field"},
		{"name", "name"},
		{"Name", "name"},
		{"first_name", "first__name"},
		{"data.name", "data__name"},
		{"customer.address.city", "customer__address__city"},
		{"items[].value", "items__value"},
		{"Créé à", "cree__a"},
		{"a--b__c", "a__b__c"},
		{"__wrapped__", "wrapped"},
		{"listOrders", "listorders"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, Token(test.input), "Token(%q)", test.input)
	}
}

func TestTokenAlphabet(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9_]+$`)
	inputs := []string{"hello world", "a.b.c", "ЖЁ", "x!y?z", "9lives", "mixedCase_and-dashes"}
	for _, in := range inputs {
		tok := Token(in)
		assert.True(t, valid.MatchString(tok), "Token(%q) = %q contains invalid characters", in, tok)
		assert.False(t, strings.HasPrefix(tok, "_"), "Token(%q) = %q starts with separator", in, tok)
		assert.False(t, strings.HasSuffix(tok, "_"), "Token(%q) = %q ends with separator", in, tok)
	}
}

func TestTokenIdempotent(t *testing.T) {
	for _, in := range []string{"data.name", "First Name", "!!!", "already__token"} {
		once := Token(in)
		assert.Equal(t, once, Token(once), "Token is not idempotent for %q", in)
	}
}

func TestFieldID(t *testing.T) {
	tests := []struct {
		kind     Kind
		op       string
		path     string
		expected string
	}{
		{KindPath, "getOrder", "id", "path__getorder__id"},
		{KindQuery, "listOrders", "page", "query__listorders__page"},
		{KindBody, "createOrder", "data.name", "body__createorder__data__name"},
		{KindBody, "createOrder", "items[].value", "body__createorder__items__value"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, FieldID(test.kind, test.op, test.path))
	}
}

func TestFieldIDDistinctAcrossOperations(t *testing.T) {
	a := FieldID(KindBody, "createOrder", "name")
	b := FieldID(KindBody, "updateOrder", "name")
	assert.NotEqual(t, a, b)
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"first_name", "First name"},
		{"createdAt", "Created at"},
		{"data.name", "Data name"},
		{"manager-id", "Manager id"},
		{"listOrders", "List orders"},
		{"", ""},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, Humanize(test.input), "Humanize(%q)", test.input)
	}
}
