package research

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var errBoom = errors.New("boom")

// scriptedGenerator answers router prompts with route and everything else
// with reply. Every call is recorded.
type scriptedGenerator struct {
	mu    sync.Mutex
	reply string
	route string
	err   error
	calls [][]Message
}

func (g *scriptedGenerator) Generate(_ context.Context, messages []Message) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, messages)
	if g.err != nil {
		return "", g.err
	}
	if isRouterPrompt(messages) {
		return g.route, nil
	}
	return g.reply, nil
}

func (g *scriptedGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func isRouterPrompt(messages []Message) bool {
	return len(messages) > 0 && strings.HasPrefix(messages[0].Content, "You are the controller")
}

// stubRetriever returns one chunk per requested document.
type stubRetriever struct {
	mu    sync.Mutex
	err   error
	empty bool
	calls int
}

func (r *stubRetriever) Search(_ context.Context, _ string, ids []string, _ int) ([]Chunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.empty {
		return nil, nil
	}
	if len(ids) == 0 {
		ids = []string{"d1"}
	}
	chunks := make([]Chunk, 0, len(ids))
	for _, id := range ids {
		chunks = append(chunks, Chunk{Text: "text of " + id, DocumentID: id, ChunkID: id + "_chunk_0"})
	}
	return chunks, nil
}

func (r *stubRetriever) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// stubIngestor maps sources to IDs and fails for sources listed in failing.
type stubIngestor struct {
	failing map[string]bool
	docs    map[string]Document
}

func (i *stubIngestor) Ingest(_ context.Context, source string) (string, error) {
	if i.failing[source] {
		return "", errBoom
	}
	return "doc_" + strings.ReplaceAll(source, ".", "_"), nil
}

func (i *stubIngestor) Describe(id string) (Document, bool) {
	doc, ok := i.docs[id]
	return doc, ok
}

func newTestToolkit(gen TextGenerator, ret Retriever) *Toolkit {
	return NewToolkit(ret, gen, nil, Settings{}, nil)
}

// processedState returns a state whose query targets the given processed documents.
func processedState(ids ...string) AgentState {
	s := NewAgentState(ResearchQuery{Text: "What do these papers say?", DocumentIDs: ids})
	for _, id := range ids {
		s.RegisterDocument(Document{ID: id, Processed: true})
	}
	return s
}

func lastMessage(s AgentState) string {
	if len(s.Messages) == 0 {
		return ""
	}
	return s.Messages[len(s.Messages)-1].Content
}
