package rag

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

// LangChainDocumentLoader adapts langchaingo's documentloaders.Loader to our DocumentLoader interface
type LangChainDocumentLoader struct {
	loader   documentloaders.Loader
	metadata map[string]any
}

// NewLangChainDocumentLoader creates a new adapter for langchaingo document loaders.
// The optional metadata is merged into every loaded document.
func NewLangChainDocumentLoader(loader documentloaders.Loader, metadata map[string]any) *LangChainDocumentLoader {
	return &LangChainDocumentLoader{
		loader:   loader,
		metadata: metadata,
	}
}

// Load loads documents using the underlying langchaingo loader
func (l *LangChainDocumentLoader) Load(ctx context.Context) ([]Document, error) {
	schemaDocs, err := l.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	docs := convertSchemaDocuments(schemaDocs)
	for i := range docs {
		maps.Copy(docs[i].Metadata, l.metadata)
	}
	return docs, nil
}

// convertSchemaDocuments converts langchaingo schema.Document to our Document type
func convertSchemaDocuments(schemaDocs []schema.Document) []Document {
	docs := make([]Document, len(schemaDocs))
	for i, schemaDoc := range schemaDocs {
		metadata := make(map[string]any, len(schemaDoc.Metadata))
		maps.Copy(metadata, schemaDoc.Metadata)
		docs[i] = Document{
			ID:       fmt.Sprintf("doc_%d", i),
			Content:  schemaDoc.PageContent,
			Metadata: metadata,
		}
	}
	return docs
}

// LangChainTextSplitter adapts langchaingo's textsplitter.TextSplitter to our TextSplitter interface
type LangChainTextSplitter struct {
	splitter textsplitter.TextSplitter
}

// NewLangChainTextSplitter creates a new adapter for langchaingo text splitters
func NewLangChainTextSplitter(splitter textsplitter.TextSplitter) *LangChainTextSplitter {
	return &LangChainTextSplitter{
		splitter: splitter,
	}
}

// NewRecursiveSplitter returns langchaingo's recursive character splitter
// with the given chunk size and overlap, in characters.
func NewRecursiveSplitter(chunkSize, chunkOverlap int) *LangChainTextSplitter {
	return NewLangChainTextSplitter(textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	))
}

// SplitText splits text with the underlying splitter, dropping blank chunks.
func (l *LangChainTextSplitter) SplitText(text string) ([]string, error) {
	chunks, err := l.splitter.SplitText(text)
	if err != nil {
		return nil, err
	}
	out := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

// SplitDocuments splits every document; each chunk inherits a copy of its
// parent's metadata.
func (l *LangChainTextSplitter) SplitDocuments(docs []Document) ([]Document, error) {
	var result []Document
	for _, doc := range docs {
		chunks, err := l.SplitText(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("split %s: %w", doc.ID, err)
		}
		for _, chunk := range chunks {
			metadata := make(map[string]any, len(doc.Metadata))
			maps.Copy(metadata, doc.Metadata)
			result = append(result, Document{Content: chunk, Metadata: metadata})
		}
	}
	return result, nil
}
