// Package request turns supplied field values into wire-correct request
// parts: the value normalizer, the JSON body assembler, and the query
// assembler.
package request

import "fmt"

// Values holds supplied field values keyed by generated field identifiers.
// Repeatable groups hold a list of per-item containers of the same shape.
type Values map[string]any

// ValidationError reports bad or missing user input for one API field. It
// aborts the whole request; partial bodies are never sent.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func validationErrorf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
