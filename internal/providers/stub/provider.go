package stub

import (
	"context"
	"fmt"
	"time"

	"github.com/manakavoo/manakavoo-backend/internal/providers"
)

// Provider answers every request locally without calling a model. It is
// selected with llm.provider = "stub" for offline development.
type Provider struct{}

// NewProvider creates a stub provider
func NewProvider() *Provider {
	return &Provider{}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "Stub"
}

// Complete echoes the last user message
func (p *Provider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var last string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == providers.RoleUser {
			last = req.Messages[i].Content
			break
		}
	}

	return &providers.CompletionResponse{
		ID:    fmt.Sprintf("stub-%d", time.Now().UnixNano()),
		Model: req.Model,
		Choices: []providers.Choice{
			{
				Index: 0,
				Message: providers.Message{
					Role:    providers.RoleAssistant,
					Content: fmt.Sprintf("This is a stub response to: %s", last),
				},
				FinishReason: "stop",
			},
		},
		Usage: providers.Usage{
			PromptTokens:     10,
			CompletionTokens: 10,
			TotalTokens:      20,
		},
	}, nil
}
