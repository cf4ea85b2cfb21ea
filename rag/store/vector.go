package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"sort"
	"sync"

	"github.com/jemygraw/researchgraph/rag"
)

// ErrInvalidK is returned by searches with a non-positive k.
var ErrInvalidK = errors.New("k must be positive")

// InMemoryVectorStore is a thread-safe in-memory vector store.
type InMemoryVectorStore struct {
	mu         sync.RWMutex
	documents  []rag.Document
	embeddings [][]float32
	embedder   rag.Embedder
}

// NewInMemoryVectorStore creates a new InMemoryVectorStore. The embedder is
// used for documents added without an embedding.
func NewInMemoryVectorStore(embedder rag.Embedder) *InMemoryVectorStore {
	return &InMemoryVectorStore{
		documents:  make([]rag.Document, 0),
		embeddings: make([][]float32, 0),
		embedder:   embedder,
	}
}

// Add adds documents, embedding those that carry no embedding in one batch.
// A document whose ID is already stored replaces the earlier entry.
func (s *InMemoryVectorStore) Add(ctx context.Context, documents []rag.Document) error {
	var texts []string
	var missing []int
	for i, doc := range documents {
		if len(doc.Embedding) == 0 {
			texts = append(texts, doc.Content)
			missing = append(missing, i)
		}
	}

	embeddings := make([][]float32, len(documents))
	for i, doc := range documents {
		embeddings[i] = doc.Embedding
	}
	if len(texts) > 0 {
		if s.embedder == nil {
			return fmt.Errorf("no embedder configured and %d documents have no embedding", len(texts))
		}
		vectors, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed documents: %w", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(texts))
		}
		for j, i := range missing {
			embeddings[i] = vectors[j]
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, doc := range documents {
		doc.Embedding = nil
		if idx := s.indexOf(doc.ID); idx >= 0 {
			s.documents[idx] = doc
			s.embeddings[idx] = embeddings[i]
			continue
		}
		s.documents = append(s.documents, doc)
		s.embeddings = append(s.embeddings, embeddings[i])
	}
	return nil
}

func (s *InMemoryVectorStore) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, doc := range s.documents {
		if doc.ID == id {
			return i
		}
	}
	return -1
}

// Search performs similarity search
func (s *InMemoryVectorStore) Search(ctx context.Context, queryEmbedding []float32, k int) ([]rag.DocumentSearchResult, error) {
	return s.SearchWithFilter(ctx, queryEmbedding, k, nil)
}

// SearchWithFilter performs similarity search over the documents whose
// metadata matches every filter entry. A filter value may be a single value
// or a []string, which matches any of its elements. String values also match
// list metadata such as authors that contains them.
func (s *InMemoryVectorStore) SearchWithFilter(_ context.Context, queryEmbedding []float32, k int, filter map[string]any) ([]rag.DocumentSearchResult, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]rag.DocumentSearchResult, 0)
	for i, doc := range s.documents {
		if !matchesFilter(doc, filter) {
			continue
		}
		results = append(results, rag.DocumentSearchResult{
			Document: doc,
			Score:    cosineSimilarity32(queryEmbedding, s.embeddings[i]),
		})
	}

	// Sort by similarity score (descending); ties keep insertion order
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Delete removes documents by ID
func (s *InMemoryVectorStore) Delete(_ context.Context, ids []string) error {
	idMap := make(map[string]bool, len(ids))
	for _, id := range ids {
		idMap[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var newDocs []rag.Document
	var newEmbeddings [][]float32
	for i, doc := range s.documents {
		if !idMap[doc.ID] {
			newDocs = append(newDocs, doc)
			newEmbeddings = append(newEmbeddings, s.embeddings[i])
		}
	}

	s.documents = newDocs
	s.embeddings = newEmbeddings
	return nil
}

// Count returns the number of stored documents.
func (s *InMemoryVectorStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

func matchesFilter(doc rag.Document, filter map[string]any) bool {
	for key, want := range filter {
		got, ok := doc.Metadata[key]
		if !ok {
			return false
		}
		switch w := want.(type) {
		case []string:
			if !containsValue(w, got) {
				return false
			}
		case string:
			if !containsValue([]string{w}, got) {
				return false
			}
		default:
			if !reflect.DeepEqual(got, want) {
				return false
			}
		}
	}
	return true
}

// containsValue reports whether got, a string or a list of strings such as
// authors, holds any of values.
func containsValue(values []string, got any) bool {
	switch g := got.(type) {
	case string:
		return slices.Contains(values, g)
	case []string:
		for _, s := range g {
			if slices.Contains(values, s) {
				return true
			}
		}
	}
	return false
}

func cosineSimilarity32(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
