package zmdl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
)

// ErrIO marks a failure to write or read a document file.
var ErrIO = errors.New("zmdl I/O error")

// Indent is the per-level indentation of encoded documents.
const Indent = "\t"

// Marshal encodes a document as pretty-printed, tab-indented JSON.
func Marshal(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", Indent)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return data, nil
}

// Encode writes a document to w.
func Encode(w io.Writer, doc *Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// WriteFile encodes doc and replaces path atomically. On failure path is
// left untouched. An existing file keeps its mode; a new one gets 0644.
func WriteFile(path string, doc *Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}

	_, statErr := os.Stat(path)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	if os.IsNotExist(statErr) {
		if err := os.Chmod(path, 0o644); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrIO, path, err)
		}
	}
	return nil
}
