// Package ingest loads research sources, splits them into chunks and indexes
// the chunks in a vector store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jemygraw/researchgraph/log"
	"github.com/jemygraw/researchgraph/rag"
	"github.com/jemygraw/researchgraph/rag/loader"
	"github.com/jemygraw/researchgraph/research"
)

// ErrUnsupportedSource is returned for sources that are neither a readable
// local file nor an arXiv identifier.
var ErrUnsupportedSource = errors.New("unsupported source")

// Ingestor implements research.Ingestor and research.Catalog.
type Ingestor struct {
	store    rag.VectorStore
	splitter rag.TextSplitter
	logger   log.Logger
	arxiv    []loader.ArxivOption
	now      func() time.Time

	mu      sync.RWMutex
	catalog map[string]research.Document
	sources map[string]string
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(i *Ingestor) { i.logger = logger }
}

// WithArxivOptions configures the arXiv loader.
func WithArxivOptions(opts ...loader.ArxivOption) Option {
	return func(i *Ingestor) { i.arxiv = append(i.arxiv, opts...) }
}

// New creates an Ingestor writing to store.
func New(store rag.VectorStore, splitter rag.TextSplitter, opts ...Option) *Ingestor {
	i := &Ingestor{
		store:    store,
		splitter: splitter,
		now:      time.Now,
		catalog:  make(map[string]research.Document),
		sources:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = log.OrDefault(i.logger)
	i.arxiv = append(i.arxiv, loader.WithLogger(i.logger))
	return i
}

// Ingest loads source, indexes its chunks and returns the document ID.
// Ingesting a source twice returns the ID of the first ingestion.
func (i *Ingestor) Ingest(ctx context.Context, source string) (string, error) {
	source = strings.TrimSpace(source)
	i.mu.RLock()
	id, seen := i.sources[source]
	i.mu.RUnlock()
	if seen {
		return id, nil
	}

	docID, l, err := i.route(source)
	if err != nil {
		return "", err
	}

	pages, err := l.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", source, err)
	}
	chunks, err := i.splitter.SplitDocuments(pages)
	if err != nil {
		return "", fmt.Errorf("split %s: %w", source, err)
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("%s: %w", source, loader.ErrEmptyDocument)
	}

	for n := range chunks {
		chunkID := fmt.Sprintf("%s_chunk_%d", docID, n)
		chunks[n].ID = chunkID
		chunks[n].Metadata[rag.MetaDocumentID] = docID
		chunks[n].Metadata[rag.MetaChunkID] = chunkID
	}
	if err := i.store.Add(ctx, chunks); err != nil {
		return "", fmt.Errorf("index %s: %w", source, err)
	}

	doc := research.Document{
		ID:      docID,
		Source:  source,
		Title:   pages[0].MetaString(rag.MetaTitle),
		Authors: authors(pages[0].Metadata[rag.MetaAuthors]),
	}
	i.mu.Lock()
	i.catalog[docID] = doc
	i.sources[source] = docID
	i.mu.Unlock()

	i.logger.Info("ingested %s as %s (%d chunks)", source, docID, len(chunks))
	return docID, nil
}

// Describe returns the metadata recorded for an ingested document.
func (i *Ingestor) Describe(id string) (research.Document, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	doc, ok := i.catalog[id]
	return doc, ok
}

// Documents lists the ingested documents.
func (i *Ingestor) Documents() []research.Document {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]research.Document, 0, len(i.catalog))
	for _, doc := range i.catalog {
		out = append(out, doc)
	}
	return out
}

func (i *Ingestor) route(source string) (string, rag.DocumentLoader, error) {
	if info, err := os.Stat(source); err == nil && !info.IsDir() {
		switch strings.ToLower(filepath.Ext(source)) {
		case ".pdf":
			return i.localID(), loader.NewPDFLoader(source), nil
		case ".txt", ".md", ".markdown":
			return i.localID(), loader.NewTextLoader(source), nil
		default:
			return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
		}
	}
	if id, ok := loader.ParseArxivID(source); ok {
		return ArxivDocumentID(id), loader.NewArxivLoader(id, i.arxiv...), nil
	}
	return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
}

func (i *Ingestor) localID() string {
	return fmt.Sprintf("doc_%d_%s", i.now().Unix(), uuid.NewString()[:8])
}

// ArxivDocumentID is the document ID used for an arXiv paper.
func ArxivDocumentID(arxivID string) string {
	return "arxiv_" + strings.NewReplacer(".", "_", "/", "_").Replace(arxivID)
}

func authors(v any) []string {
	switch a := v.(type) {
	case []string:
		return a
	case string:
		if a != "" {
			return []string{a}
		}
	}
	return nil
}
