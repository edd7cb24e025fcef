// Package runtime executes compiled operations: it dispatches HTTP
// requests built by the request package, drives the pagination loop, and
// normalizes responses into output records.
package runtime

import "fmt"

// ConfigError indicates the metadata and the caller are out of sync, e.g.
// an unknown resource/operation combination. It always aborts the whole
// run; it is never recoverable per item.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// APIError surfaces a non-2xx HTTP response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed with status %d: %s", e.Status, e.Body)
}
