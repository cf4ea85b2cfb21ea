package research

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jemygraw/researchgraph/log"
)

// Router decides the next action from the state. It never fails: generator
// errors and unrecognised replies are recorded in state.Error and resolved to
// ActionFinalize.
type Router struct {
	generator   TextGenerator
	maxSteps    int
	maxMessages int
	logger      log.Logger
}

// NewRouter creates a router using generator for the fallback decision.
func NewRouter(generator TextGenerator, settings Settings, logger log.Logger) *Router {
	settings = settings.withDefaults()
	return &Router{
		generator:   generator,
		maxSteps:    settings.MaxSteps,
		maxMessages: settings.MaxMessages,
		logger:      log.OrDefault(logger),
	}
}

// Route increments the step count, picks the next action and records it as
// the current action.
func (r *Router) Route(ctx context.Context, s *AgentState) Action {
	s.StepCount++
	next, rule := r.decide(ctx, s)
	r.logger.Debug("step %d: %s -> %s (%s)", s.StepCount, s.CurrentAction, next, rule)
	s.CurrentAction = next
	return next
}

func (r *Router) decide(ctx context.Context, s *AgentState) (Action, string) {
	switch {
	case s.StepCount > r.maxSteps:
		return ActionFinalize, "step budget exhausted"
	case len(s.Messages) > r.maxMessages:
		return ActionFinalize, "message ceiling reached"
	case len(s.Documents) == 0:
		return ActionIngest, "no documents"
	case s.CurrentAction == ActionIngest:
		// Unprocessed documents left by this ingest are not revisited here.
		return ActionRetrieve, "after ingest"
	case s.HasUnprocessed():
		return ActionIngest, "unprocessed documents"
	case s.Extracted.Has(KindRetrievedChunks) && !s.Extracted.Has(KindSummaries):
		return ActionSummarize, "retrieved but not summarized"
	case !s.Extracted.Has(KindRetrievedChunks):
		return ActionRetrieve, "nothing retrieved"
	case len(s.NextActions) > 0:
		head := s.NextActions[0]
		s.NextActions = s.NextActions[1:]
		if !head.Valid() {
			s.Error = fmt.Sprintf("Error routing: %v: planned action %q", ErrUnknownAction, head)
			return ActionFinalize, "invalid planned action"
		}
		return head, "planned"
	}
	return r.fallback(ctx, s), "generator"
}

func (r *Router) fallback(ctx context.Context, s *AgentState) Action {
	if r.generator == nil {
		return ActionFinalize
	}

	reply, err := r.generator.Generate(ctx, routerPrompt(s.Query.Text, contextSummary(s), s.Messages))
	if err != nil {
		s.Error = fmt.Sprintf("Error routing: %v", err)
		r.logger.Warn("router fallback failed, finalizing: %v", err)
		return ActionFinalize
	}

	action, err := ParseAction(reply)
	if err != nil {
		s.Error = fmt.Sprintf("Error routing: %v", err)
		r.logger.Warn("router fallback returned %q, finalizing", reply)
		return ActionFinalize
	}
	return action
}

type stateSummary struct {
	Documents            []string `json:"documents"`
	ExtractedInfo        []Kind   `json:"extracted_info"`
	CurrentAction        Action   `json:"current_action"`
	NextActionsRemaining int      `json:"next_actions_remaining"`
}

// contextSummary renders the part of the state the fallback router sees.
func contextSummary(s *AgentState) string {
	summary := stateSummary{
		Documents:            s.DocumentIDs(),
		ExtractedInfo:        s.Extracted.Kinds(),
		CurrentAction:        s.CurrentAction,
		NextActionsRemaining: len(s.NextActions),
	}
	if summary.ExtractedInfo == nil {
		summary.ExtractedInfo = []Kind{}
	}
	b, err := json.Marshal(summary)
	if err != nil {
		return fmt.Sprintf("%+v", summary)
	}
	return string(b)
}
