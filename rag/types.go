package rag

import "context"

// Metadata keys set on indexed chunks.
const (
	MetaDocumentID = "document_id"
	MetaChunkID    = "chunk_id"
	MetaSource     = "source"
	MetaTitle      = "title"
	MetaAuthors    = "authors"
	MetaType       = "type"
)

// Document is a piece of text with metadata. Loaders return whole documents
// or pages; after splitting, each Document is one chunk.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]any
	Embedding []float32
}

// MetaString returns the metadata value under key as a string.
func (d Document) MetaString(key string) string {
	v, ok := d.Metadata[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// DocumentSearchResult is a document with its similarity score.
type DocumentSearchResult struct {
	Document Document
	Score    float64
}

// Embedder turns text into vectors. The method set matches langchaingo's
// embeddings.Embedder, so its implementations can be used directly.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore stores embedded documents and searches them by similarity.
type VectorStore interface {
	Add(ctx context.Context, docs []Document) error
	Search(ctx context.Context, query []float32, k int) ([]DocumentSearchResult, error)
	SearchWithFilter(ctx context.Context, query []float32, k int, filter map[string]any) ([]DocumentSearchResult, error)
	Delete(ctx context.Context, ids []string) error
}

// DocumentLoader loads documents from a source.
type DocumentLoader interface {
	Load(ctx context.Context) ([]Document, error)
}

// TextSplitter splits documents into chunks.
type TextSplitter interface {
	SplitText(text string) ([]string, error)
	SplitDocuments(docs []Document) ([]Document, error)
}
