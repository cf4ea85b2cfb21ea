package research

// Settings holds the tunables of a run. Zero fields are replaced by the
// values of DefaultSettings.
type Settings struct {
	// MaxSteps is the router step budget.
	MaxSteps int `yaml:"max_steps"`
	// MaxMessages is the trace length above which the router finalizes.
	MaxMessages int `yaml:"max_messages"`

	RetrieveK   int `yaml:"retrieve_k"`
	SummaryK    int `yaml:"summary_k"`
	ExtractionK int `yaml:"extraction_k"`
	CitationK   int `yaml:"citation_k"`
	AnswerK     int `yaml:"answer_k"`

	// Digest bounds used by finalize.
	SummaryChars int `yaml:"digest_summary_chars"`
	ReviewChars  int `yaml:"digest_review_chars"`
	ClaimsPerDoc int `yaml:"digest_claims_per_doc"`

	// Defaults for the summary_type, length and style query options.
	SummaryType   string `yaml:"summary_type"`
	SummaryLength string `yaml:"summary_length"`
	CitationStyle string `yaml:"citation_style"`
}

// DefaultSettings returns the built-in tunables.
func DefaultSettings() Settings {
	return Settings{
		MaxSteps:      10,
		MaxMessages:   10,
		RetrieveK:     5,
		SummaryK:      10,
		ExtractionK:   8,
		CitationK:     2,
		AnswerK:       8,
		SummaryChars:  200,
		ReviewChars:   300,
		ClaimsPerDoc:  3,
		SummaryType:   "general",
		SummaryLength: "medium",
		CitationStyle: "APA",
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	pickInt := func(v, def int) int {
		if v > 0 {
			return v
		}
		return def
	}
	pickString := func(v, def string) string {
		if v != "" {
			return v
		}
		return def
	}
	return Settings{
		MaxSteps:      pickInt(s.MaxSteps, d.MaxSteps),
		MaxMessages:   pickInt(s.MaxMessages, d.MaxMessages),
		RetrieveK:     pickInt(s.RetrieveK, d.RetrieveK),
		SummaryK:      pickInt(s.SummaryK, d.SummaryK),
		ExtractionK:   pickInt(s.ExtractionK, d.ExtractionK),
		CitationK:     pickInt(s.CitationK, d.CitationK),
		AnswerK:       pickInt(s.AnswerK, d.AnswerK),
		SummaryChars:  pickInt(s.SummaryChars, d.SummaryChars),
		ReviewChars:   pickInt(s.ReviewChars, d.ReviewChars),
		ClaimsPerDoc:  pickInt(s.ClaimsPerDoc, d.ClaimsPerDoc),
		SummaryType:   pickString(s.SummaryType, d.SummaryType),
		SummaryLength: pickString(s.SummaryLength, d.SummaryLength),
		CitationStyle: pickString(s.CitationStyle, d.CitationStyle),
	}
}
