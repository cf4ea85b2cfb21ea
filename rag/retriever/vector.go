package retriever

import (
	"context"
	"fmt"

	"github.com/jemygraw/researchgraph/rag"
	"github.com/jemygraw/researchgraph/research"
)

// VectorRetriever implements research.Retriever over a vector store.
type VectorRetriever struct {
	vectorStore    rag.VectorStore
	embedder       rag.Embedder
	scoreThreshold float64
}

// Option configures a VectorRetriever.
type Option func(*VectorRetriever)

// WithScoreThreshold drops results scoring below threshold.
func WithScoreThreshold(threshold float64) Option {
	return func(r *VectorRetriever) { r.scoreThreshold = threshold }
}

// NewVectorRetriever creates a new vector retriever
func NewVectorRetriever(vectorStore rag.VectorStore, embedder rag.Embedder, opts ...Option) *VectorRetriever {
	r := &VectorRetriever{
		vectorStore: vectorStore,
		embedder:    embedder,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search returns up to k chunks most similar to query. When documentIDs is
// not empty only chunks of those documents are considered. An empty result
// is not an error.
func (r *VectorRetriever) Search(ctx context.Context, query string, documentIDs []string, k int) ([]research.Chunk, error) {
	if k <= 0 {
		return []research.Chunk{}, nil
	}

	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	var results []rag.DocumentSearchResult
	if len(documentIDs) > 0 {
		filter := map[string]any{rag.MetaDocumentID: documentIDs}
		results, err = r.vectorStore.SearchWithFilter(ctx, queryEmbedding, k, filter)
	} else {
		results, err = r.vectorStore.Search(ctx, queryEmbedding, k)
	}
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	chunks := make([]research.Chunk, 0, len(results))
	for _, result := range results {
		if result.Score < r.scoreThreshold {
			continue
		}
		doc := result.Document
		chunkID := doc.MetaString(rag.MetaChunkID)
		if chunkID == "" {
			chunkID = doc.ID
		}
		chunks = append(chunks, research.Chunk{
			Text:       doc.Content,
			DocumentID: doc.MetaString(rag.MetaDocumentID),
			ChunkID:    chunkID,
		})
	}
	return chunks, nil
}
