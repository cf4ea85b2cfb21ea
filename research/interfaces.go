package research

import (
	"context"
	"errors"
)

// Retriever finds document fragments relevant to a query. When ids is
// non-empty only chunks of those documents are returned. An empty result is
// not an error.
type Retriever interface {
	Search(ctx context.Context, query string, ids []string, k int) ([]Chunk, error)
}

// TextGenerator produces a reply for a conversation.
type TextGenerator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// Ingestor loads a local file or an external paper identifier into the
// retrieval index and returns the document ID it was stored under.
type Ingestor interface {
	Ingest(ctx context.Context, source string) (string, error)
}

// Catalog is implemented by ingestors that remember document metadata.
type Catalog interface {
	Describe(id string) (Document, bool)
}

// GeneratorFunc adapts a function to TextGenerator.
type GeneratorFunc func(ctx context.Context, messages []Message) (string, error)

// Generate implements TextGenerator.
func (f GeneratorFunc) Generate(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}

// RetrieverFunc adapts a function to Retriever.
type RetrieverFunc func(ctx context.Context, query string, ids []string, k int) ([]Chunk, error)

// Search implements Retriever.
func (f RetrieverFunc) Search(ctx context.Context, query string, ids []string, k int) ([]Chunk, error) {
	return f(ctx, query, ids, k)
}

var (
	// ErrNoGenerator is returned by NewAgent when no TextGenerator is configured.
	ErrNoGenerator = errors.New("text generator is required")

	// ErrNoRetriever is returned by NewAgent when no Retriever is configured.
	ErrNoRetriever = errors.New("retriever is required")
)
