// Package langchain adapts langchaingo models to research.TextGenerator.
package langchain

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/jemygraw/researchgraph/research"
)

// ErrEmptyResponse is returned when the model returns no choices.
var ErrEmptyResponse = errors.New("no response")

// Generator implements research.TextGenerator over any langchaingo llms.Model.
type Generator struct {
	model       llms.Model
	callOptions []llms.CallOption
}

var _ research.TextGenerator = (*Generator)(nil)

// New wraps model. The call options are passed to every GenerateContent call.
func New(model llms.Model, callOptions ...llms.CallOption) *Generator {
	return &Generator{model: model, callOptions: callOptions}
}

// Generate sends messages to the model and returns the first choice.
func (g *Generator) Generate(ctx context.Context, messages []research.Message) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		content = append(content, llms.TextParts(chatMessageType(m.Role), m.Content))
	}

	resp, err := g.model.GenerateContent(ctx, content, g.callOptions...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}

func chatMessageType(role research.Role) schema.ChatMessageType {
	switch role {
	case research.RoleSystem:
		return schema.ChatMessageTypeSystem
	case research.RoleAI:
		return schema.ChatMessageTypeAI
	default:
		return schema.ChatMessageTypeHuman
	}
}
