package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jemygraw/researchgraph/log"
	"github.com/jemygraw/researchgraph/rag"
	"github.com/jemygraw/researchgraph/rag/loader"
	"github.com/jemygraw/researchgraph/rag/retriever"
	"github.com/jemygraw/researchgraph/rag/store"
	"github.com/jemygraw/researchgraph/research"
)

var (
	_ research.Ingestor = (*Ingestor)(nil)
	_ research.Catalog  = (*Ingestor)(nil)
)

func newTestIngestor(opts ...Option) (*Ingestor, *store.InMemoryVectorStore, rag.Embedder) {
	embedder := rag.NewHashEmbedder(128)
	vs := store.NewInMemoryVectorStore(embedder)
	opts = append([]Option{WithLogger(&log.NoOpLogger{})}, opts...)
	return New(vs, rag.NewRecursiveSplitter(200, 20), opts...), vs, embedder
}

func TestIngest_TextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.md")
	body := "# Survey of Retrieval\n\n" + strings.Repeat("Dense retrieval uses embeddings to rank passages. ", 20)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	ing, vs, embedder := newTestIngestor()

	id, err := ing.Ingest(context.Background(), path)

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^doc_\d+_[0-9a-f]{8}$`), id)
	assert.Greater(t, vs.Count(), 1)

	doc, ok := ing.Describe(id)
	require.True(t, ok)
	assert.Equal(t, "Survey of Retrieval", doc.Title)
	assert.Equal(t, path, doc.Source)

	chunks, err := retriever.NewVectorRetriever(vs, embedder).Search(context.Background(), "dense retrieval", []string{id}, 3)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, id, chunks[0].DocumentID)
	assert.True(t, strings.HasPrefix(chunks[0].ChunkID, id+"_chunk_"))

	again, err := ing.Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Len(t, ing.Documents(), 1)
}

func TestIngest_Arxiv(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/abs/1706.03762" {
			_, _ = w.Write([]byte(`<h1 class="title">Title:Attention Is All You Need</h1>
<div class="authors"><a>Ashish Vaswani</a></div>
<blockquote class="abstract">Abstract: We propose the Transformer.</blockquote>`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()
	ing, _, _ := newTestIngestor(WithArxivOptions(loader.WithBaseURL(srv.URL), loader.WithHTTPClient(srv.Client())))

	id, err := ing.Ingest(context.Background(), "arxiv:1706.03762")

	require.NoError(t, err)
	assert.Equal(t, "arxiv_1706_03762", id)
	doc, _ := ing.Describe(id)
	assert.Equal(t, research.Document{
		ID:      "arxiv_1706_03762",
		Source:  "arxiv:1706.03762",
		Title:   "Attention Is All You Need",
		Authors: []string{"Ashish Vaswani"},
	}, doc)
}

func TestIngest_UnsupportedSource(t *testing.T) {
	ing, _, _ := newTestIngestor()

	_, err := ing.Ingest(context.Background(), "the attention paper")
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b"), 0o644))
	_, err = ing.Ingest(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestArxivDocumentID(t *testing.T) {
	assert.Equal(t, "arxiv_2301_00001v2", ArxivDocumentID("2301.00001v2"))
	assert.Equal(t, "arxiv_hep-th_9901001", ArxivDocumentID("hep-th/9901001"))
}
