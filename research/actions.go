package research

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jemygraw/researchgraph/graph"
)

// Action names a research operation, plus the route and END pseudo actions.
type Action string

const (
	ActionRoute                    Action = "route"
	ActionIngest                   Action = "ingest"
	ActionRetrieve                 Action = "retrieve"
	ActionSummarize                Action = "summarize"
	ActionExtractMethodology       Action = "extract_methodology"
	ActionExtractClaims            Action = "extract_claims"
	ActionCompareDocuments         Action = "compare_documents"
	ActionGenerateCitation         Action = "generate_citation"
	ActionAnswerQuestion           Action = "answer_question"
	ActionGenerateLiteratureReview Action = "generate_literature_review"
	ActionFinalize                 Action = "finalize"
	ActionEnd                      Action = graph.END
)

// Actions is the dispatchable vocabulary, in the order it is offered to the
// fallback router.
var Actions = []Action{
	ActionIngest,
	ActionRetrieve,
	ActionSummarize,
	ActionExtractMethodology,
	ActionExtractClaims,
	ActionCompareDocuments,
	ActionGenerateCitation,
	ActionAnswerQuestion,
	ActionGenerateLiteratureReview,
	ActionFinalize,
}

var actionDescriptions = map[Action]string{
	ActionIngest:                   "Process new documents (if document IDs are not in the state)",
	ActionRetrieve:                 "Retrieve relevant information from documents",
	ActionSummarize:                "Generate a summary of documents",
	ActionExtractMethodology:       "Extract methodology information",
	ActionExtractClaims:            "Extract key claims",
	ActionCompareDocuments:         "Compare multiple documents",
	ActionGenerateCitation:         "Generate citations for documents",
	ActionAnswerQuestion:           "Answer a specific question about documents",
	ActionGenerateLiteratureReview: "Generate a literature review",
	ActionFinalize:                 "Provide a final answer to the user query",
}

// Names the generator may use instead of the canonical ones.
var actionAliases = map[string]Action{
	"process_documents":    ActionIngest,
	"retrieve_information": ActionRetrieve,
	"generate_summary":     ActionSummarize,
	"final_answer":         ActionFinalize,
	"provide_final_answer": ActionFinalize,
	"compare":              ActionCompareDocuments,
	"literature_review":    ActionGenerateLiteratureReview,
	"generate_citations":   ActionGenerateCitation,
	"answer":               ActionAnswerQuestion,
	"extract_key_claims":   ActionExtractClaims,
	"methodology":          ActionExtractMethodology,
	"summarise":            ActionSummarize,
	"end":                  ActionFinalize,
	"finish":               ActionFinalize,
}

// ErrUnknownAction is returned by ParseAction for names outside the vocabulary.
var ErrUnknownAction = errors.New("unknown action")

// Valid reports whether a is a dispatchable action.
func (a Action) Valid() bool {
	_, ok := actionDescriptions[a]
	return ok
}

// Description returns the one-line description offered to the fallback router.
func (a Action) Description() string {
	return actionDescriptions[a]
}

// ParseAction maps a free-form generator reply onto the vocabulary. Case,
// surrounding quotes, a leading "action:" label and trailing punctuation are
// tolerated; only the first non-empty line is considered.
func ParseAction(reply string) (Action, error) {
	name := normalizeActionName(reply)
	if name == "" {
		return "", fmt.Errorf("%w: empty reply", ErrUnknownAction)
	}
	if a := Action(name); a.Valid() {
		return a, nil
	}
	if a, ok := actionAliases[name]; ok {
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, strings.TrimSpace(reply))
}

func normalizeActionName(reply string) string {
	line := ""
	for _, l := range strings.Split(reply, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	line = strings.ToLower(line)
	line = strings.TrimPrefix(line, "next action:")
	line = strings.TrimPrefix(line, "action:")
	line = strings.Trim(line, " \t\"'`*.!:;,-")
	line = strings.NewReplacer(" ", "_", "-", "_").Replace(line)
	return line
}

// Outcome summarises what a handler did; together with the action it selects
// the successor node.
type Outcome string

const (
	// OutcomeDone means new results were written.
	OutcomeDone Outcome = "done"
	// OutcomeMemoized means the results already existed and were reused.
	OutcomeMemoized Outcome = "memoized"
	// OutcomeEmpty means the work ran but produced nothing.
	OutcomeEmpty Outcome = "empty"
	// OutcomeSkipped means a precondition did not hold.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means an external call failed and was recorded in state.
	OutcomeFailed Outcome = "failed"
)

// Next is the transition table: the node that follows action given its outcome.
func Next(action Action, outcome Outcome) Action {
	switch action {
	case ActionIngest:
		return ActionRetrieve
	case ActionRetrieve:
		if outcome == OutcomeDone || outcome == OutcomeMemoized {
			return ActionSummarize
		}
		return ActionRoute
	case ActionFinalize:
		return ActionEnd
	default:
		return ActionRoute
	}
}
