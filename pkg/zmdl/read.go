package zmdl

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Decode reads a document from r.
func Decode(r io.Reader) (*Document, error) {
	doc := NewDocument()
	if err := json.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return doc, nil
}

// ReadFile reads a document from disk.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	defer f.Close()
	return Decode(f)
}
