// Package mimetype maps file extensions to content types for static
// file serving. The table ships with common defaults and can be
// extended or replaced at runtime, including from a YAML file.
//
// Lookups take the extension lowercased and without the leading dot,
// though both are tolerated:
//
//	table := mimetype.Default()
//	ct, ok := table.Lookup("json") // "application/json", true
package mimetype

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table maps file extensions (lowercase, no leading dot) to content
// types. Build it before serving starts; Lookup is safe for concurrent
// use as long as no concurrent Set calls happen.
type Table struct {
	types map[string]string
}

// defaultTypes covers the extensions a static-file root commonly holds.
var defaultTypes = map[string]string{
	"css":   "text/css",
	"csv":   "text/csv",
	"gif":   "image/gif",
	"htm":   "text/html",
	"html":  "text/html",
	"ico":   "image/x-icon",
	"jpeg":  "image/jpeg",
	"jpg":   "image/jpeg",
	"js":    "text/javascript",
	"json":  "application/json",
	"md":    "text/markdown",
	"mp3":   "audio/mpeg",
	"mp4":   "video/mp4",
	"otf":   "font/otf",
	"pdf":   "application/pdf",
	"png":   "image/png",
	"svg":   "image/svg+xml",
	"ttf":   "font/ttf",
	"txt":   "text/plain",
	"wasm":  "application/wasm",
	"webm":  "video/webm",
	"webp":  "image/webp",
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"xml":   "application/xml",
	"yaml":  "application/yaml",
	"yml":   "application/yaml",
	"zip":   "application/zip",
}

// New returns an empty table.
func New() *Table {
	return &Table{types: make(map[string]string)}
}

// Default returns a new table seeded with the built-in defaults.
func Default() *Table {
	t := &Table{types: make(map[string]string, len(defaultTypes))}
	for ext, ct := range defaultTypes {
		t.types[ext] = ct
	}
	return t
}

// Lookup returns the content type registered for ext and whether the
// extension is known.
func (t *Table) Lookup(ext string) (string, bool) {
	ct, ok := t.types[normalize(ext)]
	return ct, ok
}

// Set registers or replaces the content type for ext.
func (t *Table) Set(ext, contentType string) {
	t.types[normalize(ext)] = contentType
}

// Delete removes the registration for ext.
func (t *Table) Delete(ext string) {
	delete(t.types, normalize(ext))
}

// Len returns the number of registered extensions.
func (t *Table) Len() int {
	return len(t.types)
}

// LoadFile merges extension-to-content-type pairs from a YAML file into
// the table, overriding existing entries. The file is a flat mapping:
//
//	markdown: text/markdown
//	geojson: application/geo+json
func (t *Table) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("mimetype: read %s: %w", path, err)
	}

	var entries map[string]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("mimetype: parse %s: %w", path, err)
	}

	for ext, ct := range entries {
		t.Set(ext, ct)
	}
	return nil
}

// normalize lowercases the extension and strips a leading dot.
func normalize(ext string) string {
	return strings.TrimPrefix(strings.ToLower(ext), ".")
}
