package research

// Kind names one memoized result in ExtractedInfo.
type Kind string

const (
	KindRetrievedChunks  Kind = "retrieved_chunks"
	KindSummaries        Kind = "summaries"
	KindMethodologies    Kind = "methodologies"
	KindClaims           Kind = "claims"
	KindComparison       Kind = "comparison"
	KindCitations        Kind = "citations"
	KindLiteratureReview Kind = "literature_review"
	KindAnswer           Kind = "answer"
)

var allKinds = []Kind{
	KindRetrievedChunks,
	KindSummaries,
	KindMethodologies,
	KindClaims,
	KindComparison,
	KindCitations,
	KindLiteratureReview,
	KindAnswer,
}

// Chunk is a fragment of a document returned by a Retriever.
type Chunk struct {
	Text       string `json:"text"`
	DocumentID string `json:"doc_id"`
	ChunkID    string `json:"chunk_id"`
}

// Summary of one document.
type Summary struct {
	Text   string `json:"text"`
	Type   string `json:"type"`
	Length string `json:"length"`
}

// Methodology describes how the research in one document was conducted.
type Methodology struct {
	Approach          string   `json:"approach"`
	Datasets          []string `json:"datasets"`
	Algorithms        []string `json:"algorithms"`
	EvaluationMetrics []string `json:"evaluation_metrics"`
	Limitations       []string `json:"limitations"`
}

// Claim is a key finding with its supporting evidence.
type Claim struct {
	Claim      string  `json:"claim"`
	Evidence   string  `json:"evidence"`
	Confidence float64 `json:"confidence"`
}

// Comparison of two or more documents.
type Comparison struct {
	Similarities          []string `json:"similarities"`
	Differences           []string `json:"differences"`
	MethodologyComparison string   `json:"methodology_comparison"`
	ResultComparison      string   `json:"result_comparison"`
}

// Citation of one document in a given style.
type Citation struct {
	Text  string `json:"text"`
	Style string `json:"style"`
}

// DegradedRecord notes that a structured extraction fell back to its sentinel value.
type DegradedRecord struct {
	Kind       Kind   `json:"kind"`
	DocumentID string `json:"document_id,omitempty"`
	Reason     string `json:"reason"`
}

// ExtractedInfo is the memo table of a run. A kind counts as present once its
// field holds a non-empty value.
type ExtractedInfo struct {
	RetrievedChunks  []Chunk                `json:"retrieved_chunks,omitempty"`
	Summaries        map[string]Summary     `json:"summaries,omitempty"`
	Methodologies    map[string]Methodology `json:"methodologies,omitempty"`
	Claims           map[string][]Claim     `json:"claims,omitempty"`
	Comparison       *Comparison            `json:"comparison,omitempty"`
	Citations        map[string]Citation    `json:"citations,omitempty"`
	LiteratureReview string                 `json:"literature_review,omitempty"`
	Answer           string                 `json:"answer,omitempty"`

	Degraded []DegradedRecord `json:"degraded,omitempty"`
}

// Has reports whether the result of the given kind has been computed.
func (e ExtractedInfo) Has(kind Kind) bool {
	switch kind {
	case KindRetrievedChunks:
		return len(e.RetrievedChunks) > 0
	case KindSummaries:
		return len(e.Summaries) > 0
	case KindMethodologies:
		return len(e.Methodologies) > 0
	case KindClaims:
		return len(e.Claims) > 0
	case KindComparison:
		return e.Comparison != nil
	case KindCitations:
		return len(e.Citations) > 0
	case KindLiteratureReview:
		return e.LiteratureReview != ""
	case KindAnswer:
		return e.Answer != ""
	default:
		return false
	}
}

// Kinds lists the computed kinds in a stable order.
func (e ExtractedInfo) Kinds() []Kind {
	var kinds []Kind
	for _, k := range allKinds {
		if e.Has(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// IsDegraded reports whether the extraction of kind for docID used its sentinel.
func (e ExtractedInfo) IsDegraded(kind Kind, docID string) bool {
	for _, d := range e.Degraded {
		if d.Kind == kind && d.DocumentID == docID {
			return true
		}
	}
	return false
}
