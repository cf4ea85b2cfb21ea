// Package openai implements research.TextGenerator on top of the
// go-openai client for OpenAI-compatible chat endpoints.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/jemygraw/researchgraph/research"
)

var (
	// ErrEmptyResponse is returned when the endpoint returns no choices.
	ErrEmptyResponse = errors.New("no response")
	// ErrNoAPIKey is returned by New when no API key is configured.
	ErrNoAPIKey = errors.New("no API key: pass WithAPIKey or set OPENAI_API_KEY")
)

type options struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float32
	maxTokens   int
	httpClient  *http.Client
}

// Option configures the Generator.
type Option func(*options)

// WithAPIKey sets the API key. Defaults to OPENAI_API_KEY.
func WithAPIKey(apiKey string) Option {
	return func(o *options) { o.apiKey = apiKey }
}

// WithBaseURL sets the API base URL, including the version path. Defaults to OPENAI_BASE_URL.
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = baseURL }
}

// WithModel sets the chat model. Defaults to OPENAI_MODEL.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(o *options) { o.temperature = t }
}

// WithMaxTokens limits the completion length.
func WithMaxTokens(n int) Option {
	return func(o *options) { o.maxTokens = n }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// Generator sends research prompts to a chat completion endpoint.
type Generator struct {
	client      *goopenai.Client
	model       string
	temperature float32
	maxTokens   int
}

var _ research.TextGenerator = (*Generator)(nil)

// New creates a Generator.
func New(opts ...Option) (*Generator, error) {
	o := &options{
		apiKey:      os.Getenv("OPENAI_API_KEY"),
		baseURL:     os.Getenv("OPENAI_BASE_URL"),
		model:       os.Getenv("OPENAI_MODEL"),
		temperature: 0.2,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if o.model == "" {
		o.model = goopenai.GPT4oMini
	}

	cfg := goopenai.DefaultConfig(o.apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}

	return &Generator{
		client:      goopenai.NewClientWithConfig(cfg),
		model:       o.model,
		temperature: o.temperature,
		maxTokens:   o.maxTokens,
	}, nil
}

// Generate returns the content of the first choice.
func (g *Generator) Generate(ctx context.Context, messages []research.Message) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    make([]goopenai.ChatCompletionMessage, 0, len(messages)),
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, goopenai.ChatCompletionMessage{
			Role:    chatRole(m.Role),
			Content: m.Content,
		})
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func chatRole(role research.Role) string {
	switch role {
	case research.RoleSystem:
		return goopenai.ChatMessageRoleSystem
	case research.RoleAI:
		return goopenai.ChatMessageRoleAssistant
	default:
		return goopenai.ChatMessageRoleUser
	}
}
