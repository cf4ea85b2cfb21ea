package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jemygraw/researchgraph/rag"
	"github.com/jemygraw/researchgraph/rag/store"
	"github.com/jemygraw/researchgraph/research"
)

var _ research.Retriever = (*VectorRetriever)(nil)

func seededStore(t *testing.T, embedder rag.Embedder) *store.InMemoryVectorStore {
	t.Helper()
	vs := store.NewInMemoryVectorStore(embedder)
	docs := []rag.Document{
		{ID: "a_chunk_0", Content: "convolutional networks for images", Metadata: map[string]any{rag.MetaDocumentID: "a", rag.MetaChunkID: "a_chunk_0"}},
		{ID: "b_chunk_0", Content: "recurrent networks for speech", Metadata: map[string]any{rag.MetaDocumentID: "b", rag.MetaChunkID: "b_chunk_0"}},
		{ID: "c_chunk_0", Content: "networks for images and speech", Metadata: map[string]any{rag.MetaDocumentID: "c", rag.MetaChunkID: "c_chunk_0"}},
	}
	require.NoError(t, vs.Add(context.Background(), docs))
	return vs
}

func TestVectorRetriever_Search(t *testing.T) {
	embedder := rag.NewHashEmbedder(128)
	r := NewVectorRetriever(seededStore(t, embedder), embedder)

	chunks, err := r.Search(context.Background(), "networks for images", nil, 2)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.NotEmpty(t, chunks[0].DocumentID)
	assert.Equal(t, chunks[0].DocumentID+"_chunk_0", chunks[0].ChunkID)
}

func TestVectorRetriever_FiltersByDocument(t *testing.T) {
	embedder := rag.NewHashEmbedder(128)
	r := NewVectorRetriever(seededStore(t, embedder), embedder)

	chunks, err := r.Search(context.Background(), "networks for images", []string{"b"}, 5)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, research.Chunk{Text: "recurrent networks for speech", DocumentID: "b", ChunkID: "b_chunk_0"}, chunks[0])

	chunks, err = r.Search(context.Background(), "networks", []string{"unknown"}, 5)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestVectorRetriever_ScoreThreshold(t *testing.T) {
	embedder := rag.NewHashEmbedder(128)
	r := NewVectorRetriever(seededStore(t, embedder), embedder, WithScoreThreshold(0.99))

	chunks, err := r.Search(context.Background(), "quantum chromodynamics", nil, 3)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

type failingEmbedder struct{}

func (failingEmbedder) EmbedDocuments(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("offline")
}

func (failingEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, errors.New("offline")
}

func TestVectorRetriever_EmbedderError(t *testing.T) {
	r := NewVectorRetriever(store.NewInMemoryVectorStore(nil), failingEmbedder{})

	_, err := r.Search(context.Background(), "q", nil, 3)
	assert.Error(t, err)
}
