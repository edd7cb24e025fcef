package meta

import (
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// ErrNoResources is returned when a metadata document describes no API
// surface at all.
var ErrNoResources = errors.New("metadata document contains no resources")

// Load reads and parses a metadata document from a JSON file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a metadata document and validates that it exposes at least
// one resource.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse metadata document: %w", err)
	}
	if len(doc.Resources) == 0 {
		return nil, ErrNoResources
	}
	return &doc, nil
}
