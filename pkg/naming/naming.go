// Package naming provides the deterministic token and field-identifier
// scheme that keeps every generated input field globally unique. The same
// pure functions are used at field-compile time and at request-build time;
// identifiers are never reverse-parsed, callers carry the originating
// metadata reference alongside the id.
package naming

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Kind namespaces field identifiers by the request part they feed.
type Kind string

const (
	KindPath  Kind = "path"
	KindQuery Kind = "query"
	KindBody  Kind = "body"
)

// Separator joins token segments inside a field identifier.
const Separator = "__"

// FallbackToken replaces tokens that sanitize to nothing.
const FallbackToken = "field"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// removeAccents converts accented characters to their base forms.
func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// Token sanitizes a raw string into a lowercase [a-z0-9_] token: accents
// are stripped, every run of other characters becomes one separator, and
// leading/trailing separators are trimmed. An input that sanitizes to
// nothing yields FallbackToken.
func Token(raw string) string {
	s := strings.ToLower(removeAccents(raw))
	s = nonAlnum.ReplaceAllString(s, Separator)
	s = strings.Trim(s, "_")
	if s == "" {
		return FallbackToken
	}
	return s
}

// FieldID builds the globally unique identifier for a field: the kind
// prefix namespaces path/query/body fields, the operation token keeps
// distinct operations from colliding, and the sanitized API path keeps
// fields within one operation apart. Two API paths that sanitize to the
// same token are a metadata authoring defect and are not defended against.
func FieldID(kind Kind, operationValue, apiPath string) string {
	return string(kind) + Separator + Token(operationValue) + Separator + Token(apiPath)
}

// Humanize turns an identifier like "first_name" or "createdAt" into a
// sentence-case label.
func Humanize(identifier string) string {
	s := strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(identifier)
	s = camelBoundary.ReplaceAllString(s, "$1 $2")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return identifier
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
