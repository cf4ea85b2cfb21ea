// Package loader loads source documents for ingestion: local text and
// Markdown files, local PDFs and arXiv papers.
package loader

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrEmptyDocument is returned when a source yields no text.
var ErrEmptyDocument = errors.New("document contains no text")

// titleFromPath derives a readable title from a file name.
func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
