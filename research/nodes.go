package research

import (
	"context"
	"fmt"
	"strings"
)

// Handler performs one action against the state. Only ingest and finalize
// return errors; the other handlers record failures in the state and report
// OutcomeFailed.
type Handler func(ctx context.Context, s *AgentState) (Outcome, error)

// Handler returns the handler implementing action.
func (t *Toolkit) Handler(action Action) (Handler, bool) {
	switch action {
	case ActionIngest:
		return t.Ingest, true
	case ActionRetrieve:
		return t.Retrieve, true
	case ActionSummarize:
		return t.Summarize, true
	case ActionExtractMethodology:
		return t.ExtractMethodology, true
	case ActionExtractClaims:
		return t.ExtractClaims, true
	case ActionCompareDocuments:
		return t.CompareDocuments, true
	case ActionGenerateCitation:
		return t.GenerateCitation, true
	case ActionAnswerQuestion:
		return t.AnswerQuestion, true
	case ActionGenerateLiteratureReview:
		return t.GenerateLiteratureReview, true
	case ActionFinalize:
		return t.Finalize, true
	default:
		return nil, false
	}
}

func (t *Toolkit) softFail(s *AgentState, what string, err error) Outcome {
	s.Fail(what, err)
	t.logger().Warn("%s", s.Error)
	return OutcomeFailed
}

func (t *Toolkit) degraded(s *AgentState, kind Kind, docID, reason string) {
	s.Extracted.Degraded = append(s.Extracted.Degraded, DegradedRecord{Kind: kind, DocumentID: docID, Reason: reason})
	t.logger().Warn("%s for %q degraded: %s", kind, docID, reason)
}

// Ingest registers the documents of the query. Explicit document IDs, and any
// registered document still pending, are marked processed. Without explicit
// IDs the generator is asked for identifiers in the query text; each is
// passed to the Ingestor when one is configured.
func (t *Toolkit) Ingest(ctx context.Context, s *AgentState) (Outcome, error) {
	if len(s.Query.DocumentIDs) > 0 {
		ids := append([]string(nil), s.Query.DocumentIDs...)
		for _, id := range ids {
			s.RegisterDocument(t.describe(id))
		}
		for _, id := range s.DocumentIDs() {
			s.MarkProcessed(id)
		}
		s.AddMessage("Processed documents: %s", strings.Join(ids, ", "))
		return OutcomeDone, nil
	}

	reply, err := t.Generator.Generate(ctx, ingestPrompt(s.Query.Text))
	if err != nil {
		return OutcomeFailed, fmt.Errorf("infer document references: %w", err)
	}

	candidates := splitIdentifiers(reply)
	if len(candidates) == 0 {
		s.AddMessage("No document references found in the query.")
		return OutcomeEmpty, nil
	}

	var ids []string
	for _, candidate := range candidates {
		id := candidate
		if t.Ingestor != nil {
			docID, err := t.Ingestor.Ingest(ctx, candidate)
			if err != nil {
				t.logger().Warn("could not ingest %q: %v", candidate, err)
				continue
			}
			id = docID
		}
		doc := t.describe(id)
		if doc.Source == "" {
			doc.Source = candidate
		}
		s.RegisterDocument(doc)
		s.MarkProcessed(id)
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		s.AddMessage("Could not ingest any of the referenced documents: %s", strings.Join(candidates, ", "))
		return OutcomeEmpty, nil
	}
	s.Query.DocumentIDs = ids
	s.AddMessage("Processed documents: %s", strings.Join(ids, ", "))
	return OutcomeDone, nil
}

// splitIdentifiers parses the comma-separated identifier list of an ingest reply.
func splitIdentifiers(reply string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.FieldsFunc(reply, func(r rune) bool { return r == ',' || r == '\n' }) {
		id := strings.Trim(strings.TrimSpace(part), "\"'`")
		switch strings.ToLower(id) {
		case "", "none", "n/a", "null":
			continue
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Retrieve stores the chunks most relevant to the query.
func (t *Toolkit) Retrieve(ctx context.Context, s *AgentState) (Outcome, error) {
	if len(s.Documents) == 0 {
		s.AddMessage("No documents available to retrieve information from.")
		return OutcomeSkipped, nil
	}
	if s.Extracted.Has(KindRetrievedChunks) {
		return OutcomeMemoized, nil
	}

	ids := s.TargetDocumentIDs()
	chunks, err := t.Retriever.Search(ctx, s.Query.Text, ids, t.Settings.RetrieveK)
	if err != nil {
		return t.softFail(s, "retrieving information", err), nil
	}
	if len(chunks) == 0 {
		s.AddMessage("No relevant information found in the documents.")
		return OutcomeEmpty, nil
	}

	s.Extracted.RetrievedChunks = chunks
	s.AddMessage("Retrieved %d relevant chunks from documents: %s", len(chunks), strings.Join(ids, ", "))
	return OutcomeDone, nil
}

// Summarize writes one summary per target document.
func (t *Toolkit) Summarize(ctx context.Context, s *AgentState) (Outcome, error) {
	if len(s.Documents) == 0 {
		s.AddMessage("No documents available to summarize.")
		return OutcomeSkipped, nil
	}
	if s.Extracted.Has(KindSummaries) {
		return OutcomeMemoized, nil
	}

	summaryType := s.Query.Option("summary_type", t.Settings.SummaryType)
	length := s.Query.Option("length", t.Settings.SummaryLength)
	ids := s.TargetDocumentIDs()

	summaries := make(map[string]Summary, len(ids))
	for _, id := range ids {
		summary, err := t.summarizeDocument(ctx, id, summaryType, length)
		if err != nil {
			return t.softFail(s, "generating summaries", err), nil
		}
		summaries[id] = summary
	}

	s.Extracted.Summaries = summaries
	s.AddMessage("Generated %s summaries for documents: %s", summaryType, strings.Join(ids, ", "))
	return OutcomeDone, nil
}

// ExtractMethodology writes one methodology record per target document.
func (t *Toolkit) ExtractMethodology(ctx context.Context, s *AgentState) (Outcome, error) {
	if len(s.Documents) == 0 {
		s.AddMessage("No documents available for methodology extraction.")
		return OutcomeSkipped, nil
	}
	if s.Extracted.Has(KindMethodologies) {
		return OutcomeMemoized, nil
	}

	ids := s.TargetDocumentIDs()
	methodologies := make(map[string]Methodology, len(ids))
	var degraded []DegradedRecord
	for _, id := range ids {
		parsed, err := t.extractMethodology(ctx, id)
		if err != nil {
			return t.softFail(s, "extracting methodologies", err), nil
		}
		if parsed.Degraded {
			degraded = append(degraded, DegradedRecord{Kind: KindMethodologies, DocumentID: id, Reason: parsed.Reason})
		}
		methodologies[id] = parsed.Value
	}

	for _, d := range degraded {
		t.degraded(s, d.Kind, d.DocumentID, d.Reason)
	}
	s.Extracted.Methodologies = methodologies
	s.AddMessage("Extracted methodology information from documents: %s", strings.Join(ids, ", "))
	return OutcomeDone, nil
}

// ExtractClaims writes the key claims of each target document.
func (t *Toolkit) ExtractClaims(ctx context.Context, s *AgentState) (Outcome, error) {
	if len(s.Documents) == 0 {
		s.AddMessage("No documents available for claim extraction.")
		return OutcomeSkipped, nil
	}
	if s.Extracted.Has(KindClaims) {
		return OutcomeMemoized, nil
	}

	ids := s.TargetDocumentIDs()
	claims := make(map[string][]Claim, len(ids))
	var degraded []DegradedRecord
	for _, id := range ids {
		parsed, err := t.extractClaims(ctx, id)
		if err != nil {
			return t.softFail(s, "extracting claims", err), nil
		}
		if parsed.Degraded {
			degraded = append(degraded, DegradedRecord{Kind: KindClaims, DocumentID: id, Reason: parsed.Reason})
		}
		claims[id] = parsed.Value
	}

	for _, d := range degraded {
		t.degraded(s, d.Kind, d.DocumentID, d.Reason)
	}
	s.Extracted.Claims = claims
	s.AddMessage("Extracted key claims from documents: %s", strings.Join(ids, ", "))
	return OutcomeDone, nil
}

// CompareDocuments compares the target documents; it needs at least two.
func (t *Toolkit) CompareDocuments(ctx context.Context, s *AgentState) (Outcome, error) {
	const tooFew = "Need at least two documents for comparison."
	if len(s.Documents) < 2 {
		s.AddMessage(tooFew)
		return OutcomeSkipped, nil
	}
	ids := s.TargetDocumentIDs()
	if len(ids) < 2 {
		s.AddMessage(tooFew)
		return OutcomeSkipped, nil
	}
	if s.Extracted.Has(KindComparison) {
		return OutcomeMemoized, nil
	}

	parsed, err := t.compareDocuments(ctx, s, ids)
	if err != nil {
		return t.softFail(s, "comparing documents", err), nil
	}
	if parsed.Degraded {
		t.degraded(s, KindComparison, "", parsed.Reason)
	}

	comparison := parsed.Value
	s.Extracted.Comparison = &comparison
	s.AddMessage("Compared documents: %s", strings.Join(ids, ", "))
	return OutcomeDone, nil
}

// GenerateCitation writes one citation per target document.
func (t *Toolkit) GenerateCitation(ctx context.Context, s *AgentState) (Outcome, error) {
	if len(s.Documents) == 0 {
		s.AddMessage("No documents available for citation generation.")
		return OutcomeSkipped, nil
	}
	if s.Extracted.Has(KindCitations) {
		return OutcomeMemoized, nil
	}

	style := s.Query.Option("style", t.Settings.CitationStyle)
	ids := s.TargetDocumentIDs()
	citations := make(map[string]Citation, len(ids))
	for _, id := range ids {
		doc, ok := s.Documents[id]
		if !ok {
			doc = Document{ID: id}
		}
		citation, err := t.generateCitation(ctx, doc, style)
		if err != nil {
			return t.softFail(s, "generating citations", err), nil
		}
		citations[id] = citation
	}

	s.Extracted.Citations = citations
	s.AddMessage("Generated %s citations for documents: %s", style, strings.Join(ids, ", "))
	return OutcomeDone, nil
}

// AnswerQuestion answers the query text from the target documents.
func (t *Toolkit) AnswerQuestion(ctx context.Context, s *AgentState) (Outcome, error) {
	if len(s.Documents) == 0 {
		s.AddMessage("No documents available to answer questions from.")
		return OutcomeSkipped, nil
	}
	if s.Extracted.Has(KindAnswer) {
		return OutcomeMemoized, nil
	}

	answer, err := t.answerQuestion(ctx, s.Query.Text, s.TargetDocumentIDs())
	if err != nil {
		return t.softFail(s, "answering question", err), nil
	}

	s.Extracted.Answer = answer
	s.AddMessage("Answer: %s", answer)
	return OutcomeDone, nil
}

// GenerateLiteratureReview synthesises a review of the target documents; it
// needs at least two.
func (t *Toolkit) GenerateLiteratureReview(ctx context.Context, s *AgentState) (Outcome, error) {
	const tooFew = "Need at least two documents for a literature review."
	if len(s.Documents) < 2 {
		s.AddMessage(tooFew)
		return OutcomeSkipped, nil
	}
	ids := s.TargetDocumentIDs()
	if len(ids) < 2 {
		s.AddMessage(tooFew)
		return OutcomeSkipped, nil
	}
	if s.Extracted.Has(KindLiteratureReview) {
		return OutcomeMemoized, nil
	}

	focus := s.Query.Option("focus", "")
	review, err := t.literatureReview(ctx, s, ids, focus)
	if err != nil {
		return t.softFail(s, "generating literature review", err), nil
	}

	s.Extracted.LiteratureReview = review
	s.AddMessage("Generated literature review for %d documents.", len(ids))
	return OutcomeDone, nil
}

// Finalize asks the generator for the final answer over a bounded digest of
// everything extracted so far.
func (t *Toolkit) Finalize(ctx context.Context, s *AgentState) (Outcome, error) {
	digest := BuildDigest(s.Extracted, t.Settings)
	answer, err := t.Generator.Generate(ctx, finalizePrompt(s.Query.Text, digest))
	if err != nil {
		return OutcomeFailed, fmt.Errorf("generate final answer: %w", err)
	}

	s.FinalAnswer = answer
	s.Messages = append(s.Messages, AIMessage(answer))
	return OutcomeDone, nil
}
