package langchain

import (
	"net/http"
	"os"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

type options struct {
	apiKey         string
	baseURL        string
	model          string
	embeddingModel string
	temperature    float64
	httpClient     *http.Client
}

// Option configures the OpenAI-compatible client.
type Option func(*options)

// WithAPIKey sets the API key. Defaults to OPENAI_API_KEY.
func WithAPIKey(apiKey string) Option {
	return func(o *options) { o.apiKey = apiKey }
}

// WithBaseURL sets the endpoint of an OpenAI-compatible API. Defaults to OPENAI_BASE_URL.
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = baseURL }
}

// WithModel sets the chat model. Defaults to OPENAI_MODEL.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithEmbeddingModel sets the embedding model.
func WithEmbeddingModel(model string) Option {
	return func(o *options) { o.embeddingModel = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *options) { o.temperature = t }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

func newOptions(opts []Option) *options {
	o := &options{
		apiKey:      os.Getenv("OPENAI_API_KEY"),
		baseURL:     os.Getenv("OPENAI_BASE_URL"),
		model:       getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		temperature: 0.2,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) clientOptions() []openai.Option {
	opts := []openai.Option{
		openai.WithToken(o.apiKey),
		openai.WithModel(o.model),
	}
	if o.baseURL != "" {
		opts = append(opts, openai.WithBaseURL(o.baseURL))
	}
	if o.embeddingModel != "" {
		opts = append(opts, openai.WithEmbeddingModel(o.embeddingModel))
	}
	if o.httpClient != nil {
		opts = append(opts, openai.WithHTTPClient(o.httpClient))
	}
	return opts
}

// NewOpenAI creates a Generator backed by langchaingo's OpenAI client.
func NewOpenAI(opts ...Option) (*Generator, error) {
	o := newOptions(opts)
	llm, err := openai.New(o.clientOptions()...)
	if err != nil {
		return nil, err
	}
	return New(llm, llms.WithTemperature(o.temperature)), nil
}

// NewEmbedder creates an embedder backed by langchaingo's OpenAI client.
func NewEmbedder(opts ...Option) (embeddings.Embedder, error) {
	o := newOptions(opts)
	llm, err := openai.New(o.clientOptions()...)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
