package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAgentState(t *testing.T) {
	s := NewAgentState(ResearchQuery{Text: "what is attention?"})

	assert.Equal(t, []Message{HumanMessage("what is attention?")}, s.Messages)
	assert.NotNil(t, s.Documents)
	assert.Empty(t, s.Extracted.Kinds())
	assert.Zero(t, s.StepCount)
}

func TestRegisterDocument_MergesMetadata(t *testing.T) {
	s := NewAgentState(ResearchQuery{})
	s.RegisterDocument(Document{ID: "d1", Processed: true, Title: "Old"})

	doc := s.RegisterDocument(Document{ID: "d1", Title: "New", Source: "paper.pdf", Authors: []string{"Ada"}})

	assert.True(t, doc.Processed)
	assert.Equal(t, "Old", doc.Title)
	assert.Equal(t, "paper.pdf", doc.Source)
	assert.Equal(t, []string{"Ada"}, doc.Authors)
	assert.False(t, s.MarkProcessed("missing"))
}

func TestTargetDocumentIDs(t *testing.T) {
	s := NewAgentState(ResearchQuery{})
	s.RegisterDocument(Document{ID: "b"})
	s.RegisterDocument(Document{ID: "a"})
	assert.Equal(t, []string{"a", "b"}, s.TargetDocumentIDs())

	s.Query.DocumentIDs = []string{"b"}
	assert.Equal(t, []string{"b"}, s.TargetDocumentIDs())
}

func TestQueryOption(t *testing.T) {
	q := ResearchQuery{Options: map[string]any{"style": "MLA", "length": " ", "k": 3, "none": nil}}

	assert.Equal(t, "MLA", q.Option("style", "APA"))
	assert.Equal(t, "medium", q.Option("length", "medium"))
	assert.Equal(t, "3", q.Option("k", ""))
	assert.Equal(t, "x", q.Option("none", "x"))
	assert.Equal(t, "x", q.Option("missing", "x"))
}
