package research

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngest_ExplicitDocuments(t *testing.T) {
	tk := newTestToolkit(&scriptedGenerator{}, &stubRetriever{})
	s := NewAgentState(ResearchQuery{Text: "q", DocumentIDs: []string{"d2", "d1"}})
	s.RegisterDocument(Document{ID: "d0"})

	outcome, err := tk.Ingest(context.Background(), &s)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	assert.Equal(t, []string{"d0", "d1", "d2"}, s.DocumentIDs())
	assert.False(t, s.HasUnprocessed())
	assert.Equal(t, "Processed documents: d2, d1", lastMessage(s))
	assert.Len(t, s.Messages, 2)
}

func TestIngest_InfersReferences(t *testing.T) {
	gen := &scriptedGenerator{reply: "2301.00001, NONE\npaper.pdf\nbroken.pdf"}
	tk := newTestToolkit(gen, &stubRetriever{})
	tk.Ingestor = &stubIngestor{
		failing: map[string]bool{"broken.pdf": true},
		docs:    map[string]Document{"doc_paper_pdf": {Title: "A Paper", Authors: []string{"Ada"}}},
	}
	s := NewAgentState(ResearchQuery{Text: "Summarize arXiv 2301.00001 and paper.pdf"})

	outcome, err := tk.Ingest(context.Background(), &s)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	assert.Equal(t, []string{"doc_2301_00001", "doc_paper_pdf"}, s.Query.DocumentIDs)
	assert.Equal(t, "A Paper", s.Documents["doc_paper_pdf"].Title)
	assert.Equal(t, "2301.00001", s.Documents["doc_2301_00001"].Source)
	assert.True(t, s.Documents["doc_paper_pdf"].Processed)
	assert.Equal(t, "Processed documents: doc_2301_00001, doc_paper_pdf", lastMessage(s))
}

func TestIngest_WithoutIngestorRegistersIdentifiers(t *testing.T) {
	tk := newTestToolkit(&scriptedGenerator{reply: `"p1", p2`}, &stubRetriever{})
	s := NewAgentState(ResearchQuery{Text: "compare p1 with p2"})

	_, err := tk.Ingest(context.Background(), &s)

	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, s.DocumentIDs())
}

func TestIngest_NoReferences(t *testing.T) {
	tk := newTestToolkit(&scriptedGenerator{reply: "NONE"}, &stubRetriever{})
	s := NewAgentState(ResearchQuery{Text: "hello"})

	outcome, err := tk.Ingest(context.Background(), &s)

	require.NoError(t, err)
	assert.Equal(t, OutcomeEmpty, outcome)
	assert.Empty(t, s.Documents)
	assert.Equal(t, "No document references found in the query.", lastMessage(s))
}

func TestIngest_GeneratorErrorIsFatal(t *testing.T) {
	tk := newTestToolkit(&scriptedGenerator{err: errBoom}, &stubRetriever{})
	s := NewAgentState(ResearchQuery{Text: "hello"})

	_, err := tk.Ingest(context.Background(), &s)

	assert.ErrorIs(t, err, errBoom)
}

func TestProcessedFlagIsMonotonic(t *testing.T) {
	tk := newTestToolkit(&scriptedGenerator{reply: "x"}, &stubRetriever{})
	s := processedState("d1")

	s.RegisterDocument(Document{ID: "d1", Processed: false, Title: "T"})
	_, err := tk.Ingest(context.Background(), &s)
	require.NoError(t, err)
	for _, action := range Actions {
		if action == ActionFinalize {
			continue
		}
		h, ok := tk.Handler(action)
		require.True(t, ok)
		_, _ = h(context.Background(), &s)
		require.True(t, s.Documents["d1"].Processed, "after %s", action)
	}
	assert.Equal(t, "T", s.Documents["d1"].Title)
}

func TestRetrieve_Memoized(t *testing.T) {
	ret := &stubRetriever{}
	tk := newTestToolkit(&scriptedGenerator{}, ret)
	s := processedState("d1")

	outcome, err := tk.Retrieve(context.Background(), &s)
	require.NoError(t, err)
	require.Equal(t, OutcomeDone, outcome)
	chunks := s.Extracted.RetrievedChunks
	messages := len(s.Messages)

	outcome, err = tk.Retrieve(context.Background(), &s)

	require.NoError(t, err)
	assert.Equal(t, OutcomeMemoized, outcome)
	assert.Equal(t, ActionSummarize, Next(ActionRetrieve, outcome))
	assert.Equal(t, chunks, s.Extracted.RetrievedChunks)
	assert.Equal(t, 1, ret.callCount())
	assert.Len(t, s.Messages, messages)
}

func TestRetrieve_Outcomes(t *testing.T) {
	t.Run("no documents", func(t *testing.T) {
		tk := newTestToolkit(&scriptedGenerator{}, &stubRetriever{})
		s := NewAgentState(ResearchQuery{Text: "q"})
		outcome, _ := tk.Retrieve(context.Background(), &s)
		assert.Equal(t, OutcomeSkipped, outcome)
		assert.Equal(t, "No documents available to retrieve information from.", lastMessage(s))
	})

	t.Run("nothing found", func(t *testing.T) {
		tk := newTestToolkit(&scriptedGenerator{}, &stubRetriever{empty: true})
		s := processedState("d1")
		outcome, _ := tk.Retrieve(context.Background(), &s)
		assert.Equal(t, OutcomeEmpty, outcome)
		assert.False(t, s.Extracted.Has(KindRetrievedChunks))
	})

	t.Run("retriever error", func(t *testing.T) {
		tk := newTestToolkit(&scriptedGenerator{}, &stubRetriever{err: errBoom})
		s := processedState("d1")
		outcome, err := tk.Retrieve(context.Background(), &s)
		require.NoError(t, err)
		assert.Equal(t, OutcomeFailed, outcome)
		assert.Equal(t, "Error retrieving information: boom", s.Error)
		assert.Equal(t, s.Error, lastMessage(s))
		assert.Equal(t, ActionRoute, Next(ActionRetrieve, outcome))
	})
}

func TestSummarize_UsesQueryOptions(t *testing.T) {
	gen := &scriptedGenerator{reply: "short summary"}
	tk := newTestToolkit(gen, &stubRetriever{})
	s := processedState("d1", "d2")
	s.Query.Options = map[string]any{"summary_type": "technical", "length": ""}

	outcome, err := tk.Summarize(context.Background(), &s)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	assert.Equal(t, Summary{Text: "short summary", Type: "technical", Length: "medium"}, s.Extracted.Summaries["d1"])
	assert.Len(t, s.Extracted.Summaries, 2)
	assert.Equal(t, 2, gen.callCount())
	assert.Equal(t, "Generated technical summaries for documents: d1, d2", lastMessage(s))
}

func TestExtractClaims_GeneratorFailureSoftFails(t *testing.T) {
	tk := newTestToolkit(&scriptedGenerator{err: errBoom}, &stubRetriever{})
	s := processedState("d1")

	outcome, err := tk.ExtractClaims(context.Background(), &s)

	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.False(t, s.Extracted.Has(KindClaims))
	assert.Equal(t, "Error extracting claims: boom", s.Error)
	assert.Equal(t, RoleAI, s.Messages[len(s.Messages)-1].Role)
	assert.Contains(t, lastMessage(s), "boom")
	assert.Equal(t, ActionRoute, Next(ActionExtractClaims, outcome))
}

func TestExtractClaims_Parsed(t *testing.T) {
	reply := "Here you go:\n```json\n{\"claims\": [{\"claim\": \"X beats Y\", \"evidence\": \"Table 2\", \"confidence\": \"0.9\"}, {\"claim\": \"Z\"}]}\n```"
	tk := newTestToolkit(&scriptedGenerator{reply: reply}, &stubRetriever{})
	s := processedState("d1")

	outcome, err := tk.ExtractClaims(context.Background(), &s)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	assert.Equal(t, []Claim{
		{Claim: "X beats Y", Evidence: "Table 2", Confidence: 0.9},
		{Claim: "Z", Confidence: 0.5},
	}, s.Extracted.Claims["d1"])
	assert.Empty(t, s.Extracted.Degraded)
}

func TestExtractMethodology_Degraded(t *testing.T) {
	tk := newTestToolkit(&scriptedGenerator{reply: "I could not find a methodology."}, &stubRetriever{})
	s := processedState("d1")

	outcome, err := tk.ExtractMethodology(context.Background(), &s)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	m := s.Extracted.Methodologies["d1"]
	assert.Equal(t, extractionFailed, m.Approach)
	assert.Empty(t, m.Datasets)
	assert.True(t, s.Extracted.IsDegraded(KindMethodologies, "d1"))
	assert.Empty(t, s.Error)
}

func TestMultiDocumentHandlersNeedTwoDocuments(t *testing.T) {
	for _, action := range []Action{ActionCompareDocuments, ActionGenerateLiteratureReview} {
		t.Run(string(action), func(t *testing.T) {
			gen := &scriptedGenerator{reply: "x"}
			tk := newTestToolkit(gen, &stubRetriever{})
			h, _ := tk.Handler(action)

			for _, s := range []AgentState{processedState(), processedState("d1")} {
				before := s.Extracted
				outcome, err := h(context.Background(), &s)

				require.NoError(t, err)
				assert.Equal(t, OutcomeSkipped, outcome)
				assert.Equal(t, before, s.Extracted)
				assert.True(t, strings.HasPrefix(lastMessage(s), "Need at least two documents"))
				assert.Equal(t, ActionRoute, Next(action, outcome))
			}
			assert.Equal(t, 0, gen.callCount())
		})
	}
}

func TestCompareDocuments(t *testing.T) {
	reply := `{"similarities": ["both use transformers"], "differences": "datasets", "methodology_comparison": {"a": "x"}, "result_comparison": ["r1", "r2"]}`
	gen := &scriptedGenerator{reply: reply}
	tk := newTestToolkit(gen, &stubRetriever{})
	s := processedState("d1", "d2")
	s.Extracted.Summaries = map[string]Summary{"d1": {Text: "s1"}, "d2": {Text: "s2"}}

	outcome, err := tk.CompareDocuments(context.Background(), &s)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	require.NotNil(t, s.Extracted.Comparison)
	assert.Equal(t, Comparison{
		Similarities:          []string{"both use transformers"},
		Differences:           []string{"datasets"},
		MethodologyComparison: `{"a":"x"}`,
		ResultComparison:      "r1; r2",
	}, *s.Extracted.Comparison)
	assert.Equal(t, 2, gen.callCount(), "memoized summaries must be reused")
	assert.Contains(t, gen.calls[0][1].Content, "Document 1 (d1):\ns1")
}

func TestGenerateCitation_UsesDocumentMetadata(t *testing.T) {
	gen := &scriptedGenerator{reply: "Ada (2024). A Paper."}
	tk := newTestToolkit(gen, &stubRetriever{})
	s := NewAgentState(ResearchQuery{Text: "cite", Options: map[string]any{"style": "MLA"}})
	s.RegisterDocument(Document{ID: "d1", Processed: true, Title: "A Paper", Authors: []string{"Ada"}})

	outcome, err := tk.GenerateCitation(context.Background(), &s)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	assert.Equal(t, Citation{Text: "Ada (2024). A Paper.", Style: "MLA"}, s.Extracted.Citations["d1"])
	var prompt strings.Builder
	for _, m := range gen.calls[0] {
		prompt.WriteString(m.Content)
	}
	assert.Contains(t, prompt.String(), "A Paper")
	assert.Contains(t, prompt.String(), "MLA")
}

func TestAnswerQuestion(t *testing.T) {
	t.Run("answer", func(t *testing.T) {
		tk := newTestToolkit(&scriptedGenerator{reply: "42"}, &stubRetriever{})
		s := processedState("d1")
		outcome, err := tk.AnswerQuestion(context.Background(), &s)
		require.NoError(t, err)
		assert.Equal(t, OutcomeDone, outcome)
		assert.Equal(t, "42", s.Extracted.Answer)
		assert.Equal(t, "Answer: 42", lastMessage(s))
	})

	t.Run("nothing retrieved", func(t *testing.T) {
		gen := &scriptedGenerator{reply: "42"}
		tk := newTestToolkit(gen, &stubRetriever{empty: true})
		s := processedState("d1")
		_, err := tk.AnswerQuestion(context.Background(), &s)
		require.NoError(t, err)
		assert.Equal(t, noAnswerReply, s.Extracted.Answer)
		assert.Equal(t, 0, gen.callCount())
	})
}

func TestGenerateLiteratureReview(t *testing.T) {
	gen := &scriptedGenerator{reply: "review text"}
	tk := newTestToolkit(gen, &stubRetriever{})
	s := processedState("d1", "d2")
	s.Extracted.Summaries = map[string]Summary{"d1": {Text: "s1"}, "d2": {Text: "s2"}}
	s.Query.Options = map[string]any{"focus": "evaluation"}

	outcome, err := tk.GenerateLiteratureReview(context.Background(), &s)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	assert.Equal(t, "review text", s.Extracted.LiteratureReview)
	assert.False(t, s.Extracted.Has(KindMethodologies), "intermediate extractions are not stored")
	assert.False(t, s.Extracted.Has(KindClaims))
	// two documents, two passes each for methodology and claims, plus the review
	assert.Equal(t, 9, gen.callCount())
	assert.Equal(t, "Generated literature review for 2 documents.", lastMessage(s))
}

func TestMemoizedHandlersSkipWork(t *testing.T) {
	gen := &scriptedGenerator{reply: "x"}
	ret := &stubRetriever{}
	tk := newTestToolkit(gen, ret)
	s := processedState("d1", "d2")
	s.Extracted = ExtractedInfo{
		RetrievedChunks:  []Chunk{{Text: "t"}},
		Summaries:        map[string]Summary{"d1": {Text: "s"}},
		Methodologies:    map[string]Methodology{"d1": {Approach: "a"}},
		Claims:           map[string][]Claim{"d1": {{Claim: "c"}}},
		Comparison:       &Comparison{},
		Citations:        map[string]Citation{"d1": {Text: "c"}},
		LiteratureReview: "r",
		Answer:           "a",
	}
	messages := len(s.Messages)

	for _, action := range Actions {
		if action == ActionIngest || action == ActionFinalize {
			continue
		}
		h, _ := tk.Handler(action)
		outcome, err := h(context.Background(), &s)
		require.NoError(t, err)
		assert.Equal(t, OutcomeMemoized, outcome, string(action))
	}
	assert.Equal(t, 0, gen.callCount())
	assert.Equal(t, 0, ret.callCount())
	assert.Len(t, s.Messages, messages)
}

func TestFinalize(t *testing.T) {
	t.Run("answer", func(t *testing.T) {
		gen := &scriptedGenerator{reply: "final"}
		tk := newTestToolkit(gen, &stubRetriever{})
		s := processedState("d1")
		s.Extracted.Summaries = map[string]Summary{"d1": {Text: "summary one"}}

		outcome, err := tk.Finalize(context.Background(), &s)

		require.NoError(t, err)
		assert.Equal(t, OutcomeDone, outcome)
		assert.Equal(t, "final", s.FinalAnswer)
		assert.Equal(t, AIMessage("final"), s.Messages[len(s.Messages)-1])
		assert.Contains(t, gen.calls[0][1].Content, "Document d1 Summary: summary one...")
		assert.Equal(t, ActionEnd, Next(ActionFinalize, outcome))
	})

	t.Run("generator error is fatal", func(t *testing.T) {
		tk := newTestToolkit(&scriptedGenerator{err: errBoom}, &stubRetriever{})
		s := processedState("d1")
		_, err := tk.Finalize(context.Background(), &s)
		assert.ErrorIs(t, err, errBoom)
		assert.Empty(t, s.FinalAnswer)
	})
}

func TestHandlerUnknownAction(t *testing.T) {
	tk := newTestToolkit(&scriptedGenerator{}, &stubRetriever{})
	for _, a := range []Action{ActionRoute, ActionEnd, "dance"} {
		_, ok := tk.Handler(a)
		assert.False(t, ok, string(a))
	}
}
