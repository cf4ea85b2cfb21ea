package research

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when a reply contains no well-formed JSON value.
var ErrNoJSON = errors.New("no JSON object or array found in reply")

// ExtractJSON locates the first well-formed top-level JSON object or array in
// a generator reply. Markdown code fences and surrounding prose are ignored.
func ExtractJSON(content string) (string, error) {
	candidates := JSONCandidates(content)
	if len(candidates) == 0 {
		return "", ErrNoJSON
	}
	return candidates[0], nil
}

// JSONCandidates returns every well-formed top-level JSON object or array of
// a generator reply, in order of appearance. Prose markers such as "[1]" are
// valid JSON too, so callers decoding a schema should try each candidate.
func JSONCandidates(content string) []string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var out []string
	inString, escaped := false, false
	depth := 0
	start := -1

	for i := 0; i < len(content); i++ {
		c := content[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			// strings only matter inside a candidate
			if depth > 0 {
				inString = true
			}
		case '{', '[':
			if depth == 0 {
				start = i
			}
			depth++
		case '}', ']':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start != -1 {
				raw := strings.TrimSpace(content[start : i+1])
				if json.Valid([]byte(raw)) {
					out = append(out, raw)
				}
				start = -1
			}
		}
	}
	return out
}
