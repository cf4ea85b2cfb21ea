package loader

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"

	"github.com/jemygraw/researchgraph/rag"
)

// TextLoader loads a plain text or Markdown file as a single document.
type TextLoader struct {
	filePath string
	metadata map[string]any
}

// NewTextLoader creates a new TextLoader
func NewTextLoader(filePath string) *TextLoader {
	return &TextLoader{
		filePath: filePath,
		metadata: map[string]any{
			rag.MetaSource: filePath,
			rag.MetaType:   "text",
		},
	}
}

// Load reads the file. The title is the first Markdown heading, or the file
// name when there is none.
func (l *TextLoader) Load(ctx context.Context) ([]rag.Document, error) {
	f, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	docs, err := rag.NewLangChainDocumentLoader(documentloaders.NewText(f), l.metadata).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.filePath, err)
	}
	if len(docs) == 0 || strings.TrimSpace(docs[0].Content) == "" {
		return nil, fmt.Errorf("%s: %w", l.filePath, ErrEmptyDocument)
	}

	docs[0].Metadata[rag.MetaTitle] = markdownTitle(docs[0].Content, l.filePath)
	return docs, nil
}

func markdownTitle(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return titleFromPath(path)
}
