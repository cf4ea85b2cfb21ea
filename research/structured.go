package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	extractionFailed = "Extraction failed - could not parse response"
	comparisonFailed = "Comparison failed - could not parse response"
)

// Parsed is the result of turning generated text into a typed value. When
// Degraded is set, Value holds the sentinel for its kind and Reason explains
// why parsing failed.
type Parsed[T any] struct {
	Value    T
	Degraded bool
	Raw      string
	Reason   string
}

// structured runs the two-pass extraction: the analysis prompt produces free
// text, which a second call reformats according to schema. Generator errors
// are returned; parse failures produce a degraded result instead.
func structured[T any](ctx context.Context, gen TextGenerator, analysis []Message, schema string, decode func([]byte) (T, error), sentinel T) (Parsed[T], error) {
	text, err := gen.Generate(ctx, analysis)
	if err != nil {
		return Parsed[T]{}, err
	}
	raw, err := gen.Generate(ctx, []Message{SystemMessage(schema), HumanMessage(text)})
	if err != nil {
		return Parsed[T]{}, err
	}
	return parseStructured(raw, decode, sentinel), nil
}

// parseStructured decodes the first JSON candidate of raw that matches the
// schema; the sentinel is used only when none does.
func parseStructured[T any](raw string, decode func([]byte) (T, error), sentinel T) Parsed[T] {
	candidates := JSONCandidates(raw)
	if len(candidates) == 0 {
		return Parsed[T]{Value: sentinel, Degraded: true, Raw: raw, Reason: ErrNoJSON.Error()}
	}
	var firstErr error
	for _, js := range candidates {
		v, err := decode([]byte(js))
		if err == nil {
			return Parsed[T]{Value: v, Raw: raw}
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return Parsed[T]{Value: sentinel, Degraded: true, Raw: raw, Reason: firstErr.Error()}
}

// stringList accepts a JSON array of strings or a single string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one = strings.TrimSpace(one); one != "" {
			*l = []string{one}
		}
		return nil
	}
	var many []any
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or list: %w", err)
	}
	out := make([]string, 0, len(many))
	for _, v := range many {
		if v == nil {
			continue
		}
		out = append(out, fmt.Sprint(v))
	}
	*l = out
	return nil
}

// score accepts a JSON number or a numeric string.
type score float64

func (s *score) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*s = score(f)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("confidence is not a number: %s", data)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return fmt.Errorf("confidence is not a number: %q", str)
	}
	*s = score(f)
	return nil
}

var methodologySentinel = Methodology{
	Approach:          extractionFailed,
	Datasets:          []string{},
	Algorithms:        []string{},
	EvaluationMetrics: []string{},
	Limitations:       []string{},
}

func decodeMethodology(data []byte) (Methodology, error) {
	var p struct {
		Approach          string     `json:"approach"`
		Datasets          stringList `json:"datasets"`
		Algorithms        stringList `json:"algorithms"`
		EvaluationMetrics stringList `json:"evaluation_metrics"`
		Limitations       stringList `json:"limitations"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Methodology{}, err
	}
	if strings.TrimSpace(p.Approach) == "" {
		p.Approach = "Not specified"
	}
	return Methodology{
		Approach:          p.Approach,
		Datasets:          nonNil(p.Datasets),
		Algorithms:        nonNil(p.Algorithms),
		EvaluationMetrics: nonNil(p.EvaluationMetrics),
		Limitations:       nonNil(p.Limitations),
	}, nil
}

func claimsSentinel() []Claim {
	return []Claim{{Claim: extractionFailed, Evidence: "", Confidence: 0.0}}
}

type claimPayload struct {
	Claim      string `json:"claim"`
	Evidence   string `json:"evidence"`
	Confidence *score `json:"confidence"`
}

// decodeClaims accepts a JSON array of claims or an object wrapping one
// under "claims".
func decodeClaims(data []byte) ([]Claim, error) {
	var payload []claimPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		var wrapped struct {
			Claims []claimPayload `json:"claims"`
		}
		if werr := json.Unmarshal(data, &wrapped); werr != nil || wrapped.Claims == nil {
			return nil, err
		}
		payload = wrapped.Claims
	}

	claims := make([]Claim, 0, len(payload))
	for _, p := range payload {
		confidence := 0.5
		if p.Confidence != nil {
			confidence = float64(*p.Confidence)
		}
		claims = append(claims, Claim{Claim: p.Claim, Evidence: p.Evidence, Confidence: confidence})
	}
	return claims, nil
}

func comparisonSentinel() Comparison {
	return Comparison{
		Similarities: []string{comparisonFailed},
		Differences:  []string{comparisonFailed},
	}
}

func decodeComparison(data []byte) (Comparison, error) {
	var p struct {
		Similarities          stringList `json:"similarities"`
		Differences           stringList `json:"differences"`
		MethodologyComparison any        `json:"methodology_comparison"`
		ResultComparison      any        `json:"result_comparison"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Comparison{}, err
	}
	return Comparison{
		Similarities:          nonNil(p.Similarities),
		Differences:           nonNil(p.Differences),
		MethodologyComparison: flatten(p.MethodologyComparison),
		ResultComparison:      flatten(p.ResultComparison),
	}, nil
}

func nonNil(l stringList) []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}

// flatten renders a loosely typed JSON value as text.
func flatten(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, flatten(e))
		}
		return strings.Join(parts, "; ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
