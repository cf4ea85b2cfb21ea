package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jemygraw/researchgraph/log"
	"github.com/jemygraw/researchgraph/rag"
)

// DefaultArxivBaseURL is the arXiv site used when none is configured.
const DefaultArxivBaseURL = "https://arxiv.org"

var (
	arxivNewID = regexp.MustCompile(`^\d{4}\.\d{4,5}(v\d+)?$`)
	arxivOldID = regexp.MustCompile(`^[a-z\-]+(\.[A-Z]{2})?/\d{7}(v\d+)?$`)
)

// ParseArxivID extracts an arXiv identifier from a bare ID, an "arxiv:"
// prefixed ID or an abs/pdf URL.
func ParseArxivID(source string) (string, bool) {
	s := strings.TrimSpace(source)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "arxiv:"):
		s = strings.TrimSpace(s[len("arxiv:"):])
	case strings.Contains(lower, "arxiv.org/"):
		i := strings.Index(lower, "arxiv.org/")
		s = s[i+len("arxiv.org/"):]
		s = strings.TrimPrefix(strings.TrimPrefix(s, "abs/"), "pdf/")
		s = strings.TrimSuffix(s, ".pdf")
	}
	s = strings.TrimSuffix(s, "/")
	if arxivNewID.MatchString(s) || arxivOldID.MatchString(s) {
		return s, true
	}
	return "", false
}

// ArxivPaper is the metadata scraped from an arXiv abstract page.
type ArxivPaper struct {
	ID       string
	Title    string
	Authors  []string
	Abstract string
}

// ArxivLoader loads a paper from arXiv: metadata from the abstract page and
// full text from the PDF. When the PDF cannot be read the abstract is used.
type ArxivLoader struct {
	id      string
	baseURL string
	client  *http.Client
	logger  log.Logger
}

// ArxivOption configures an ArxivLoader.
type ArxivOption func(*ArxivLoader)

// WithBaseURL points the loader at another arXiv mirror.
func WithBaseURL(baseURL string) ArxivOption {
	return func(l *ArxivLoader) { l.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) ArxivOption {
	return func(l *ArxivLoader) { l.client = client }
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) ArxivOption {
	return func(l *ArxivLoader) { l.logger = logger }
}

// NewArxivLoader creates a loader for the given arXiv ID.
func NewArxivLoader(id string, opts ...ArxivOption) *ArxivLoader {
	l := &ArxivLoader{
		id:      id,
		baseURL: DefaultArxivBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = log.OrDefault(l.logger)
	return l
}

// Load fetches the paper.
func (l *ArxivLoader) Load(ctx context.Context) ([]rag.Document, error) {
	paper, err := l.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	metadata := map[string]any{
		rag.MetaSource:  "arxiv:" + l.id,
		rag.MetaTitle:   paper.Title,
		rag.MetaAuthors: paper.Authors,
		"arxiv_id":      l.id,
	}

	pdf, err := l.fetch(ctx, l.baseURL+"/pdf/"+l.id)
	if err == nil {
		var docs []rag.Document
		docs, err = NewPDFLoaderFromBytes(pdf, metadata).Load(ctx)
		if err == nil {
			return docs, nil
		}
	}
	l.logger.Warn("arxiv %s: full text unavailable, using abstract: %v", l.id, err)

	if paper.Abstract == "" {
		return nil, fmt.Errorf("arxiv %s: %w", l.id, ErrEmptyDocument)
	}
	metadata[rag.MetaType] = "abstract"
	content := paper.Title + "\n\n" + paper.Abstract
	return []rag.Document{{ID: l.id, Content: content, Metadata: metadata}}, nil
}

// Metadata scrapes title, authors and abstract from the abstract page.
func (l *ArxivLoader) Metadata(ctx context.Context) (ArxivPaper, error) {
	body, err := l.fetch(ctx, l.baseURL+"/abs/"+l.id)
	if err != nil {
		return ArxivPaper{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ArxivPaper{}, fmt.Errorf("failed to parse arxiv page: %w", err)
	}

	paper := ArxivPaper{ID: l.id}
	paper.Title = cleanField(doc.Find("h1.title").First().Text(), "Title:")
	doc.Find("div.authors a").Each(func(_ int, s *goquery.Selection) {
		if name := strings.TrimSpace(s.Text()); name != "" {
			paper.Authors = append(paper.Authors, name)
		}
	})
	paper.Abstract = cleanField(doc.Find("blockquote.abstract").First().Text(), "Abstract:")
	if paper.Title == "" {
		paper.Title = "arXiv " + l.id
	}
	return paper, nil
}

func (l *ArxivLoader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func cleanField(text, label string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, label)
	return strings.Join(strings.Fields(text), " ")
}
