package research

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(gen TextGenerator) *Router {
	return NewRouter(gen, Settings{}, nil)
}

func TestRouter_NoDocumentsIngests(t *testing.T) {
	s := NewAgentState(ResearchQuery{Text: "anything"})

	next := newTestRouter(&scriptedGenerator{}).Route(context.Background(), &s)

	assert.Equal(t, ActionIngest, next)
	assert.Equal(t, ActionIngest, s.CurrentAction)
	assert.Equal(t, 1, s.StepCount)
}

func TestRouter_ProcessedWithoutResultsRetrieves(t *testing.T) {
	s := NewAgentState(ResearchQuery{Text: "q"})
	s.RegisterDocument(Document{ID: "d1", Processed: true})

	assert.Equal(t, ActionRetrieve, newTestRouter(nil).Route(context.Background(), &s))
}

func TestRouter_RetrievedWithoutSummariesSummarizes(t *testing.T) {
	s := processedState("d1")
	s.Extracted.RetrievedChunks = []Chunk{{Text: "t", DocumentID: "d1", ChunkID: "d1_chunk_0"}}

	assert.Equal(t, ActionSummarize, newTestRouter(nil).Route(context.Background(), &s))
}

func TestRouter_StepBudgetForcesFinalize(t *testing.T) {
	s := NewAgentState(ResearchQuery{Text: "q"})
	s.StepCount = 10

	next := newTestRouter(nil).Route(context.Background(), &s)

	assert.Equal(t, ActionFinalize, next)
	assert.Equal(t, 11, s.StepCount)
}

func TestRouter_StepCountTracksCalls(t *testing.T) {
	r := newTestRouter(&scriptedGenerator{route: "answer_question"})
	s := processedState("d1")
	s.Extracted.RetrievedChunks = []Chunk{{Text: "t", DocumentID: "d1"}}
	s.Extracted.Summaries = map[string]Summary{"d1": {Text: "sum"}}

	for n := 1; n <= 15; n++ {
		next := r.Route(context.Background(), &s)
		require.Equal(t, n, s.StepCount)
		if n > 10 {
			assert.Equal(t, ActionFinalize, next, "step %d", n)
		} else {
			assert.Equal(t, ActionAnswerQuestion, next, "step %d", n)
		}
	}
}

func TestRouter_MessageCeilingForcesFinalize(t *testing.T) {
	s := NewAgentState(ResearchQuery{Text: "q"})
	for i := 0; i < 10; i++ {
		s.AddMessage("message %d", i)
	}
	require.Len(t, s.Messages, 11)

	assert.Equal(t, ActionFinalize, newTestRouter(nil).Route(context.Background(), &s))
}

func TestRouter_RetrieveFollowsIngestEvenWithPendingDocuments(t *testing.T) {
	s := NewAgentState(ResearchQuery{Text: "q"})
	s.RegisterDocument(Document{ID: "d1"})
	s.CurrentAction = ActionIngest

	assert.Equal(t, ActionRetrieve, newTestRouter(nil).Route(context.Background(), &s))
}

func TestRouter_PendingDocumentsIngest(t *testing.T) {
	s := NewAgentState(ResearchQuery{Text: "q"})
	s.RegisterDocument(Document{ID: "d1", Processed: true})
	s.RegisterDocument(Document{ID: "d2"})
	s.CurrentAction = ActionRetrieve

	assert.Equal(t, ActionIngest, newTestRouter(nil).Route(context.Background(), &s))
}

func summarizedState() AgentState {
	s := processedState("d1", "d2")
	s.Extracted.RetrievedChunks = []Chunk{{Text: "t", DocumentID: "d1"}}
	s.Extracted.Summaries = map[string]Summary{"d1": {Text: "a"}, "d2": {Text: "b"}}
	s.CurrentAction = ActionSummarize
	return s
}

func TestRouter_PopsPlannedActions(t *testing.T) {
	gen := &scriptedGenerator{route: "finalize"}
	s := summarizedState()
	s.NextActions = []Action{ActionExtractClaims, ActionCompareDocuments}

	r := newTestRouter(gen)
	assert.Equal(t, ActionExtractClaims, r.Route(context.Background(), &s))
	assert.Equal(t, []Action{ActionCompareDocuments}, s.NextActions)
	assert.Equal(t, ActionCompareDocuments, r.Route(context.Background(), &s))
	assert.Empty(t, s.NextActions)
	assert.Equal(t, 0, gen.callCount())
}

func TestRouter_InvalidPlannedActionFinalizes(t *testing.T) {
	s := summarizedState()
	s.NextActions = []Action{"dance"}

	next := newTestRouter(&scriptedGenerator{}).Route(context.Background(), &s)

	assert.Equal(t, ActionFinalize, next)
	assert.Contains(t, s.Error, "Error routing")
	assert.Contains(t, s.Error, "dance")
}

func TestRouter_Fallback(t *testing.T) {
	tests := []struct {
		name      string
		gen       *scriptedGenerator
		want      Action
		wantError bool
	}{
		{name: "valid", gen: &scriptedGenerator{route: "Action: Extract Methodology."}, want: ActionExtractMethodology},
		{name: "alias", gen: &scriptedGenerator{route: "literature review"}, want: ActionGenerateLiteratureReview},
		{name: "unknown", gen: &scriptedGenerator{route: "write a poem"}, want: ActionFinalize, wantError: true},
		{name: "generator error", gen: &scriptedGenerator{err: errBoom}, want: ActionFinalize, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := summarizedState()
			before := len(s.Messages)

			next := newTestRouter(tt.gen).Route(context.Background(), &s)

			assert.Equal(t, tt.want, next)
			assert.Len(t, s.Messages, before, "router must not append trace messages")
			if tt.wantError {
				assert.Contains(t, s.Error, "Error routing")
			} else {
				assert.Empty(t, s.Error)
			}
			assert.Equal(t, 1, tt.gen.callCount())
		})
	}
}

func TestRouter_FallbackPromptCarriesState(t *testing.T) {
	gen := &scriptedGenerator{route: "finalize"}
	s := summarizedState()

	newTestRouter(gen).Route(context.Background(), &s)

	require.Len(t, gen.calls, 1)
	prompt := gen.calls[0]
	last := prompt[len(prompt)-1]
	assert.Equal(t, RoleHuman, last.Role)
	assert.Contains(t, last.Content, `"documents":["d1","d2"]`)
	assert.Contains(t, last.Content, `"extracted_info":["retrieved_chunks","summaries"]`)
	assert.Contains(t, last.Content, `"current_action":"summarize"`)
	assert.Equal(t, RoleSystem, prompt[0].Role)
	assert.Len(t, prompt, len(s.Messages)+2)
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		reply string
		want  Action
	}{
		{"retrieve", ActionRetrieve},
		{"  Summarize\n", ActionSummarize},
		{"'compare_documents'", ActionCompareDocuments},
		{"Next action: generate citation", ActionGenerateCitation},
		{"answer-question.", ActionAnswerQuestion},
		{"**finalize**", ActionFinalize},
		{"\n\nextract_claims\nbecause claims are missing", ActionExtractClaims},
		{"process_documents", ActionIngest},
		{"END", ActionFinalize},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			got, err := ParseAction(tt.reply)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "   ", "route", "sing"} {
		_, err := ParseAction(bad)
		assert.ErrorIs(t, err, ErrUnknownAction, fmt.Sprintf("reply %q", bad))
	}
}

func TestNext(t *testing.T) {
	outcomes := []Outcome{OutcomeDone, OutcomeMemoized, OutcomeEmpty, OutcomeSkipped, OutcomeFailed}

	for _, o := range outcomes {
		assert.Equal(t, ActionRetrieve, Next(ActionIngest, o))
		assert.Equal(t, ActionEnd, Next(ActionFinalize, o))
		assert.Equal(t, ActionRoute, Next(ActionExtractClaims, o))
		assert.Equal(t, ActionRoute, Next(ActionCompareDocuments, o))
	}
	assert.Equal(t, ActionSummarize, Next(ActionRetrieve, OutcomeDone))
	assert.Equal(t, ActionSummarize, Next(ActionRetrieve, OutcomeMemoized))
	assert.Equal(t, ActionRoute, Next(ActionRetrieve, OutcomeEmpty))
	assert.Equal(t, ActionRoute, Next(ActionRetrieve, OutcomeFailed))
	assert.Equal(t, ActionRoute, Next(ActionSummarize, OutcomeDone))
}
