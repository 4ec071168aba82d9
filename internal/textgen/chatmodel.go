package textgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModelGenerator adapts a chat model to the generation interface so
// deployments without a Hugging Face token can answer document questions
// with the same model that drives the agent.
type ChatModelGenerator struct {
	model model.BaseChatModel
}

// NewChatModelGenerator wraps m as a text generator.
func NewChatModelGenerator(m model.BaseChatModel) *ChatModelGenerator {
	return &ChatModelGenerator{model: m}
}

// Generate sends prompt as a single user message and returns the reply,
// capped at maxNewTokens.
func (g *ChatModelGenerator) Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error) {
	msgs := []*schema.Message{
		schema.UserMessage(prompt),
	}
	resp, err := g.model.Generate(ctx, msgs, model.WithMaxTokens(maxNewTokens))
	if err != nil {
		return "", fmt.Errorf("chat model generate: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}
