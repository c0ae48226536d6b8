package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
)

// Source identifies where an OpenAPI document originated.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// Document wraps a raw OpenAPI payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("openapi: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("openapi: raw document is empty")
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// LoadFile reads a document from disk.
func LoadFile(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("openapi: read %s: %w", path, err)
	}
	return NewDocument(SourceFromFile(path), raw)
}

// LoadFS reads a document from files.
func LoadFS(files fs.FS, name string) (Document, error) {
	if files == nil {
		return Document{}, errors.New("openapi: missing file system")
	}
	raw, err := fs.ReadFile(files, name)
	if err != nil {
		return Document{}, fmt.Errorf("openapi: read %s: %w", name, err)
	}
	return NewDocument(SourceFromFS(name), raw)
}

// LoadURL fetches a document over HTTP. A nil client uses
// http.DefaultClient.
func LoadURL(ctx context.Context, client *http.Client, raw string) (Document, error) {
	src, err := SourceFromURL(raw)
	if err != nil {
		return Document{}, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return Document{}, fmt.Errorf("openapi: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("openapi: fetch %s: %w", raw, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Document{}, fmt.Errorf("openapi: fetch %s: unexpected status %d", raw, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, fmt.Errorf("openapi: read %s: %w", raw, err)
	}
	return NewDocument(src, body)
}
