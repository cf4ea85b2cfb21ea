package research

import (
	"fmt"
	"sort"
	"strings"
)

// BuildDigest renders the extracted results as the bounded context of the
// final answer prompt. Summaries and the literature review are truncated and
// claims are capped per document, as configured in settings.
func BuildDigest(info ExtractedInfo, settings Settings) string {
	settings = settings.withDefaults()
	var lines []string

	if info.Has(KindSummaries) {
		lines = append(lines, "Document Summaries:")
		for _, id := range sortedKeys(info.Summaries) {
			lines = append(lines, fmt.Sprintf("Document %s Summary: %s", id, truncate(info.Summaries[id].Text, settings.SummaryChars)))
		}
		lines = append(lines, "")
	}

	if info.Has(KindMethodologies) {
		lines = append(lines, "Methodology Information:")
		for _, id := range sortedKeys(info.Methodologies) {
			m := info.Methodologies[id]
			lines = append(lines, fmt.Sprintf("Document %s Approach: %s", id, m.Approach))
			if len(m.Datasets) > 0 {
				lines = append(lines, "Datasets: "+strings.Join(m.Datasets, ", "))
			}
			if len(m.Algorithms) > 0 {
				lines = append(lines, "Algorithms: "+strings.Join(m.Algorithms, ", "))
			}
		}
		lines = append(lines, "")
	}

	if info.Has(KindClaims) {
		lines = append(lines, "Key Claims:")
		for _, id := range sortedKeys(info.Claims) {
			claims := info.Claims[id]
			if len(claims) > settings.ClaimsPerDoc {
				claims = claims[:settings.ClaimsPerDoc]
			}
			for i, c := range claims {
				lines = append(lines, fmt.Sprintf("Document %s Claim %d: %s", id, i+1, c.Claim))
			}
		}
		lines = append(lines, "")
	}

	if info.Has(KindComparison) {
		c := info.Comparison
		lines = append(lines, "Document Comparison:")
		if len(c.Similarities) > 0 {
			lines = append(lines, "Similarities: "+c.Similarities[0])
		}
		if len(c.Differences) > 0 {
			lines = append(lines, "Differences: "+c.Differences[0])
		}
		lines = append(lines, "")
	}

	if info.Has(KindLiteratureReview) {
		lines = append(lines, "Literature Review:", truncate(info.LiteratureReview, settings.ReviewChars), "")
	}

	if info.Has(KindAnswer) {
		lines = append(lines, "Answer to Query:", info.Answer, "")
	}

	if info.Has(KindCitations) {
		lines = append(lines, "Citations:")
		for _, id := range sortedKeys(info.Citations) {
			lines = append(lines, info.Citations[id].Text)
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// truncate keeps the first n runes of s and marks the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + "..."
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
