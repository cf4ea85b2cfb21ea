package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"

	"github.com/jemygraw/researchgraph/rag"
)

// PDFLoader loads a PDF, one document per page.
type PDFLoader struct {
	open     func() (io.ReaderAt, int64, func() error, error)
	metadata map[string]any
}

// NewPDFLoader loads the PDF at filePath.
func NewPDFLoader(filePath string) *PDFLoader {
	return &PDFLoader{
		open: func() (io.ReaderAt, int64, func() error, error) {
			f, err := os.Open(filePath)
			if err != nil {
				return nil, 0, nil, fmt.Errorf("failed to open file: %w", err)
			}
			info, err := f.Stat()
			if err != nil {
				f.Close()
				return nil, 0, nil, err
			}
			return f, info.Size(), f.Close, nil
		},
		metadata: map[string]any{
			rag.MetaSource: filePath,
			rag.MetaType:   "pdf",
			rag.MetaTitle:  titleFromPath(filePath),
		},
	}
}

// NewPDFLoaderFromBytes loads an in-memory PDF, tagging pages with metadata.
func NewPDFLoaderFromBytes(data []byte, metadata map[string]any) *PDFLoader {
	md := map[string]any{rag.MetaType: "pdf"}
	for k, v := range metadata {
		md[k] = v
	}
	return &PDFLoader{
		open: func() (io.ReaderAt, int64, func() error, error) {
			return bytes.NewReader(data), int64(len(data)), func() error { return nil }, nil
		},
		metadata: md,
	}
}

// Load extracts the text of every page. Pages without text are skipped.
func (l *PDFLoader) Load(ctx context.Context) ([]rag.Document, error) {
	r, size, closeFn, err := l.open()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	pages, err := rag.NewLangChainDocumentLoader(documentloaders.NewPDF(r, size), l.metadata).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}

	docs := pages[:0]
	for _, p := range pages {
		if strings.TrimSpace(p.Content) != "" {
			docs = append(docs, p)
		}
	}
	if len(docs) == 0 {
		return nil, ErrEmptyDocument
	}
	return docs, nil
}
