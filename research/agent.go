package research

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jemygraw/researchgraph/graph"
	"github.com/jemygraw/researchgraph/log"
	"github.com/jemygraw/researchgraph/store"
)

// Agent runs research queries through the router and the action handlers.
type Agent struct {
	tools       *Toolkit
	router      *Router
	logger      log.Logger
	tracer      *graph.Tracer
	listeners   []graph.NodeListener[AgentState]
	checkpoints store.CheckpointStore
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger used by the agent, router and handlers.
func WithLogger(logger log.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// WithSettings overrides the default tunables.
func WithSettings(settings Settings) Option {
	return func(a *Agent) { a.tools.Settings = settings }
}

// WithIngestor lets the ingest handler load inferred identifiers.
func WithIngestor(ingestor Ingestor) Option {
	return func(a *Agent) { a.tools.Ingestor = ingestor }
}

// WithTracer records graph, node and edge spans of every run.
func WithTracer(tracer *graph.Tracer) Option {
	return func(a *Agent) { a.tracer = tracer }
}

// WithListener registers a node listener for every run.
func WithListener(listener graph.NodeListener[AgentState]) Option {
	return func(a *Agent) { a.listeners = append(a.listeners, listener) }
}

// WithCheckpointStore snapshots the state after every node of every run.
func WithCheckpointStore(st store.CheckpointStore) Option {
	return func(a *Agent) { a.checkpoints = st }
}

// NewAgent creates an agent from its two required collaborators.
func NewAgent(generator TextGenerator, retriever Retriever, opts ...Option) (*Agent, error) {
	if generator == nil {
		return nil, ErrNoGenerator
	}
	if retriever == nil {
		return nil, ErrNoRetriever
	}

	a := &Agent{tools: &Toolkit{Generator: generator, Retriever: retriever}}
	for _, opt := range opts {
		opt(a)
	}

	a.logger = log.OrDefault(a.logger)
	a.tools.Logger = a.logger
	a.tools.Settings = a.tools.Settings.withDefaults()
	a.router = NewRouter(generator, a.tools.Settings, a.logger)
	return a, nil
}

// Settings returns the effective tunables.
func (a *Agent) Settings() Settings {
	return a.tools.Settings
}

// Graph builds the routed topology: every action returns to the router
// except the shortcuts of the transition table.
func (a *Agent) Graph() *graph.StateGraph[AgentState] {
	g := graph.NewStateGraph[AgentState]()

	g.AddNode(string(ActionRoute), "Choose the next action", func(ctx context.Context, s AgentState) (AgentState, error) {
		a.router.Route(ctx, &s)
		return s, nil
	})
	targets := make([]string, 0, len(Actions))
	for _, action := range Actions {
		targets = append(targets, string(action))
	}
	g.AddConditionalEdge(string(ActionRoute), func(_ context.Context, s AgentState) string {
		return string(s.CurrentAction)
	}, targets...)

	for _, action := range Actions {
		handler, _ := a.tools.Handler(action)
		g.AddNode(string(action), action.Description(), handlerNode(handler))

		action := action
		g.AddConditionalEdge(string(action), func(_ context.Context, s AgentState) string {
			return string(Next(action, s.LastOutcome))
		}, successors(action)...)
	}

	g.SetEntryPoint(string(ActionRoute))
	return g
}

func handlerNode(h Handler) func(context.Context, AgentState) (AgentState, error) {
	return func(ctx context.Context, s AgentState) (AgentState, error) {
		outcome, err := h(ctx, &s)
		s.LastOutcome = outcome
		return s, err
	}
}

func successors(action Action) []string {
	seen := make(map[Action]bool)
	var out []string
	for _, o := range []Outcome{OutcomeDone, OutcomeMemoized, OutcomeEmpty, OutcomeSkipped, OutcomeFailed} {
		next := Next(action, o)
		if !seen[next] {
			seen[next] = true
			out = append(out, string(next))
		}
	}
	return out
}

// Run answers query under a fresh run ID.
func (a *Agent) Run(ctx context.Context, query ResearchQuery) (AgentState, error) {
	return a.RunWithID(ctx, uuid.NewString(), query)
}

// RunWithID answers query; runID tags the checkpoints of the run. On a hard
// failure the state reached so far is returned with the error.
func (a *Agent) RunWithID(ctx context.Context, runID string, query ResearchQuery) (AgentState, error) {
	return a.RunState(ctx, runID, NewAgentState(query))
}

// RunState continues from a prepared state, for example one with planned
// NextActions.
func (a *Agent) RunState(ctx context.Context, runID string, state AgentState) (AgentState, error) {
	runnable, err := a.compile(a.Graph(), runID)
	if err != nil {
		return state, err
	}

	a.logger.Info("run %s: %q", runID, state.Query.Text)
	final, err := runnable.Invoke(ctx, state)
	if err != nil {
		a.logger.Error("run %s failed after %d steps: %v", runID, final.StepCount, err)
		return final, err
	}
	a.logger.Info("run %s finished after %d steps", runID, final.StepCount)
	return final, nil
}

// RunPipeline runs a fixed sequence of handlers without the router under a
// fresh run ID. The default sequence is ingest, retrieve, summarize,
// finalize. The pipeline stops after finalize.
func (a *Agent) RunPipeline(ctx context.Context, query ResearchQuery, actions ...Action) (AgentState, error) {
	return a.RunPipelineWithID(ctx, uuid.NewString(), query, actions...)
}

// RunPipelineWithID is RunPipeline with runID tagging the checkpoints.
func (a *Agent) RunPipelineWithID(ctx context.Context, runID string, query ResearchQuery, actions ...Action) (AgentState, error) {
	if len(actions) == 0 {
		actions = []Action{ActionIngest, ActionRetrieve, ActionSummarize, ActionFinalize}
	}

	g := graph.NewStateGraph[AgentState]()
	prev := ""
	for i, action := range actions {
		handler, ok := a.tools.Handler(action)
		if !ok {
			return NewAgentState(query), fmt.Errorf("%w: %q", ErrUnknownAction, action)
		}

		name := string(action)
		if _, exists := nodeIndex(g)[name]; exists {
			name = fmt.Sprintf("%s_%d", action, i+1)
		}
		g.AddNode(name, action.Description(), handlerNode(handler))
		if prev == "" {
			g.SetEntryPoint(name)
		} else {
			g.AddEdge(prev, name)
		}
		prev = name
		if action == ActionFinalize {
			break
		}
	}
	g.AddEdge(prev, graph.END)

	runnable, err := a.compile(g, runID)
	if err != nil {
		return NewAgentState(query), err
	}
	a.logger.Info("pipeline %s: %q", runID, query.Text)
	return runnable.Invoke(ctx, NewAgentState(query))
}

func nodeIndex(g *graph.StateGraph[AgentState]) map[string]struct{} {
	idx := make(map[string]struct{})
	for _, n := range g.Nodes() {
		idx[n.Name] = struct{}{}
	}
	return idx
}

func (a *Agent) compile(g *graph.StateGraph[AgentState], runID string) (*graph.StateRunnable[AgentState], error) {
	runnable, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile research graph: %w", err)
	}
	if a.tracer != nil {
		runnable.SetTracer(a.tracer)
	}
	for _, l := range a.listeners {
		runnable.AddListener(l)
	}
	if a.checkpoints != nil {
		runnable.AddListener(graph.NewCheckpointListener[AgentState](a.checkpoints, runID, a.logger))
	}
	return runnable, nil
}
