package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/jemygraw/researchgraph/log"
)

// Toolkit holds the collaborators shared by all handlers.
type Toolkit struct {
	Retriever Retriever
	Generator TextGenerator
	// Ingestor is optional; without it inferred identifiers are registered as-is.
	Ingestor Ingestor
	Settings Settings
	Logger   log.Logger
}

// NewToolkit creates a toolkit, filling unset settings with defaults.
func NewToolkit(retriever Retriever, generator TextGenerator, ingestor Ingestor, settings Settings, logger log.Logger) *Toolkit {
	return &Toolkit{
		Retriever: retriever,
		Generator: generator,
		Ingestor:  ingestor,
		Settings:  settings.withDefaults(),
		Logger:    log.OrDefault(logger),
	}
}

func (t *Toolkit) logger() log.Logger {
	return log.OrDefault(t.Logger)
}

func (t *Toolkit) catalog() Catalog {
	if c, ok := t.Ingestor.(Catalog); ok {
		return c
	}
	return nil
}

func (t *Toolkit) describe(id string) Document {
	if c := t.catalog(); c != nil {
		if doc, ok := c.Describe(id); ok {
			doc.ID = id
			return doc
		}
	}
	return Document{ID: id}
}

func (t *Toolkit) summarizeDocument(ctx context.Context, docID, summaryType, length string) (Summary, error) {
	chunks, err := t.Retriever.Search(ctx, fmt.Sprintf("Create a %s summary", summaryType), []string{docID}, t.Settings.SummaryK)
	if err != nil {
		return Summary{}, err
	}
	text, err := t.Generator.Generate(ctx, summaryPrompt(summaryType, length, joinChunks(chunks)))
	if err != nil {
		return Summary{}, err
	}
	return Summary{Text: text, Type: summaryType, Length: length}, nil
}

func (t *Toolkit) extractMethodology(ctx context.Context, docID string) (Parsed[Methodology], error) {
	chunks, err := t.Retriever.Search(ctx, methodologyQuery, []string{docID}, t.Settings.ExtractionK)
	if err != nil {
		return Parsed[Methodology]{}, err
	}
	return structured(ctx, t.Generator, methodologyPrompt(joinChunks(chunks)), methodologySchema, decodeMethodology, methodologySentinel)
}

func (t *Toolkit) extractClaims(ctx context.Context, docID string) (Parsed[[]Claim], error) {
	chunks, err := t.Retriever.Search(ctx, claimsQuery, []string{docID}, t.Settings.ExtractionK)
	if err != nil {
		return Parsed[[]Claim]{}, err
	}
	return structured(ctx, t.Generator, claimsPrompt(joinChunks(chunks)), claimsSchema, decodeClaims, claimsSentinel())
}

// summaryFor reuses a memoized summary of docID or computes a general one.
func (t *Toolkit) summaryFor(ctx context.Context, s *AgentState, docID string) (string, error) {
	if sum, ok := s.Extracted.Summaries[docID]; ok {
		return sum.Text, nil
	}
	sum, err := t.summarizeDocument(ctx, docID, "general", "medium")
	if err != nil {
		return "", err
	}
	return sum.Text, nil
}

func (t *Toolkit) compareDocuments(ctx context.Context, s *AgentState, ids []string) (Parsed[Comparison], error) {
	var sb strings.Builder
	sb.WriteString("Documents to compare:\n\n")
	for i, id := range ids {
		summary, err := t.summaryFor(ctx, s, id)
		if err != nil {
			return Parsed[Comparison]{}, err
		}
		fmt.Fprintf(&sb, "Document %d (%s):\n%s\n", i+1, id, summary)
		if m, ok := s.Extracted.Methodologies[id]; ok {
			fmt.Fprintf(&sb, "Methodology: %s\n", m.Approach)
		}
		sb.WriteString("\n")
	}
	return structured(ctx, t.Generator, comparisonPrompt(sb.String()), comparisonSchema, decodeComparison, comparisonSentinel())
}

func (t *Toolkit) generateCitation(ctx context.Context, doc Document, style string) (Citation, error) {
	chunks, err := t.Retriever.Search(ctx, citationQuery, []string{doc.ID}, t.Settings.CitationK)
	if err != nil {
		return Citation{}, err
	}
	text, err := t.Generator.Generate(ctx, citationPrompt(style, doc, joinChunks(chunks)))
	if err != nil {
		return Citation{}, err
	}
	return Citation{Text: text, Style: style}, nil
}

func (t *Toolkit) answerQuestion(ctx context.Context, question string, ids []string) (string, error) {
	chunks, err := t.Retriever.Search(ctx, question, ids, t.Settings.AnswerK)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return noAnswerReply, nil
	}

	seen := make(map[string]bool)
	var refs []string
	for _, c := range chunks {
		if c.DocumentID != "" && !seen[c.DocumentID] {
			seen[c.DocumentID] = true
			refs = append(refs, fmt.Sprintf("%s: Document %s", c.DocumentID, c.DocumentID))
		}
	}
	return t.Generator.Generate(ctx, answerPrompt(question, joinChunks(chunks), refs))
}

func (t *Toolkit) literatureReview(ctx context.Context, s *AgentState, ids []string, focus string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Documents for literature review:\n\n")
	for i, id := range ids {
		summary, err := t.summaryFor(ctx, s, id)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "Document %d (%s):\nSummary: %s\n\n", i+1, id, summary)

		m, ok := s.Extracted.Methodologies[id]
		if !ok {
			parsed, err := t.extractMethodology(ctx, id)
			if err != nil {
				return "", err
			}
			m = parsed.Value
		}
		fmt.Fprintf(&sb, "Methodology: %s\n", m.Approach)
		if len(m.Datasets) > 0 {
			fmt.Fprintf(&sb, "Datasets: %s\n", strings.Join(m.Datasets, ", "))
		}
		if len(m.Algorithms) > 0 {
			fmt.Fprintf(&sb, "Algorithms: %s\n", strings.Join(m.Algorithms, ", "))
		}
		sb.WriteString("\n")

		claims, ok := s.Extracted.Claims[id]
		if !ok {
			parsed, err := t.extractClaims(ctx, id)
			if err != nil {
				return "", err
			}
			claims = parsed.Value
		}
		sb.WriteString("Key claims:\n")
		for _, c := range claims {
			fmt.Fprintf(&sb, "- %s\n", c.Claim)
		}
		sb.WriteString("\n")
	}
	return t.Generator.Generate(ctx, literatureReviewPrompt(focus, sb.String()))
}
