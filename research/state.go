package research

import (
	"fmt"
	"sort"
	"strings"
)

// Role identifies the author of a trace message.
type Role string

const (
	RoleHuman  Role = "human"
	RoleAI     Role = "ai"
	RoleSystem Role = "system"
)

// Message is one entry of the run trace, also used as generator input.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// HumanMessage builds a human-authored message.
func HumanMessage(content string) Message { return Message{Role: RoleHuman, Content: content} }

// AIMessage builds an assistant-authored message.
func AIMessage(content string) Message { return Message{Role: RoleAI, Content: content} }

// SystemMessage builds a system message. System messages only appear in prompts.
func SystemMessage(content string) Message { return Message{Role: RoleSystem, Content: content} }

// ResearchQuery is the user's request.
type ResearchQuery struct {
	Text        string         `json:"query_text"`
	DocumentIDs []string       `json:"document_ids"`
	Options     map[string]any `json:"options,omitempty"`
}

// Option returns the option stored under key rendered as a string, or def
// when the option is missing or empty.
func (q ResearchQuery) Option(key, def string) string {
	v, ok := q.Options[key]
	if !ok || v == nil {
		return def
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return def
	}
	return s
}

// Document is the core's view of an ingested document.
type Document struct {
	ID        string   `json:"id"`
	Processed bool     `json:"processed"`
	Source    string   `json:"source,omitempty"`
	Title     string   `json:"title,omitempty"`
	Authors   []string `json:"authors,omitempty"`
}

// AgentState is the record threaded through every router and handler call
// of a single run. Every field always exists; empty collections mean "not
// computed yet".
type AgentState struct {
	Query         ResearchQuery       `json:"query"`
	Messages      []Message           `json:"messages"`
	Documents     map[string]Document `json:"documents"`
	Extracted     ExtractedInfo       `json:"extracted_info"`
	CurrentAction Action              `json:"current_action,omitempty"`
	NextActions   []Action            `json:"next_actions,omitempty"`
	FinalAnswer   string              `json:"final_answer,omitempty"`
	Error         string              `json:"error,omitempty"`
	StepCount     int                 `json:"step_count"`
	LastOutcome   Outcome             `json:"last_outcome,omitempty"`
}

// NewAgentState creates the state for a fresh run, seeding the trace with
// the query as a human message.
func NewAgentState(query ResearchQuery) AgentState {
	return AgentState{
		Query:     query,
		Messages:  []Message{HumanMessage(query.Text)},
		Documents: make(map[string]Document),
	}
}

// AddMessage appends an AI trace message.
func (s *AgentState) AddMessage(format string, args ...any) {
	s.Messages = append(s.Messages, AIMessage(fmt.Sprintf(format, args...)))
}

// Fail records a soft failure: the error becomes state.Error and a trace message.
func (s *AgentState) Fail(what string, err error) {
	s.Error = fmt.Sprintf("Error %s: %v", what, err)
	s.Messages = append(s.Messages, AIMessage(s.Error))
}

// RegisterDocument adds doc when its ID is unknown and returns the stored entry.
// Known documents keep their processed flag; empty metadata fields are filled in.
func (s *AgentState) RegisterDocument(doc Document) Document {
	if s.Documents == nil {
		s.Documents = make(map[string]Document)
	}
	existing, ok := s.Documents[doc.ID]
	if !ok {
		s.Documents[doc.ID] = doc
		return doc
	}
	if existing.Source == "" {
		existing.Source = doc.Source
	}
	if existing.Title == "" {
		existing.Title = doc.Title
	}
	if len(existing.Authors) == 0 {
		existing.Authors = doc.Authors
	}
	existing.Processed = existing.Processed || doc.Processed
	s.Documents[doc.ID] = existing
	return existing
}

// MarkProcessed flags a registered document as processed. The flag never reverts.
func (s *AgentState) MarkProcessed(id string) bool {
	doc, ok := s.Documents[id]
	if !ok {
		return false
	}
	doc.Processed = true
	s.Documents[id] = doc
	return true
}

// HasUnprocessed reports whether any registered document awaits ingestion.
func (s *AgentState) HasUnprocessed() bool {
	for _, doc := range s.Documents {
		if !doc.Processed {
			return true
		}
	}
	return false
}

// DocumentIDs returns the registered document IDs in sorted order.
func (s *AgentState) DocumentIDs() []string {
	ids := make([]string, 0, len(s.Documents))
	for id := range s.Documents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TargetDocumentIDs returns the documents an action operates on: the query's
// explicit IDs, or every registered document when the query names none.
func (s *AgentState) TargetDocumentIDs() []string {
	if len(s.Query.DocumentIDs) > 0 {
		return append([]string(nil), s.Query.DocumentIDs...)
	}
	return s.DocumentIDs()
}
