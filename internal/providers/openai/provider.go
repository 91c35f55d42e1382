package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/manakavoo/manakavoo-backend/internal/config"
	"github.com/manakavoo/manakavoo-backend/internal/providers"
)

// Provider implements the OpenAI chat completion provider. It also serves
// OpenAI-compatible servers (Ollama, LM Studio) when a base URL is set.
type Provider struct {
	name   string
	client *openai.Client
}

// NewProvider creates a new OpenAI provider
func NewProvider(cfg config.LLMConfig) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &Provider{
		name:   "OpenAI",
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// NewCompatibleProvider creates a provider for an OpenAI-compatible API
func NewCompatibleProvider(cfg config.LLMConfig) (*Provider, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required for OpenAI-compatible provider")
	}

	// Default for local providers
	apiKey := "dummy-key"
	if cfg.APIKey != "" {
		apiKey = cfg.APIKey
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL += "/v1"
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = baseURL

	return &Provider{
		name:   "OpenAI-compatible",
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return p.name
}

// Complete performs a non-streaming completion
func (p *Provider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error) {
	resp, err := p.client.CreateChatCompletion(ctx, convertRequest(req))
	if err != nil {
		return nil, err
	}

	return convertResponse(&resp), nil
}

// convertRequest converts internal request to OpenAI request
func convertRequest(req providers.CompletionRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	openAIReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	}

	if req.Temperature != nil {
		openAIReq.Temperature = *req.Temperature
	}

	if req.MaxTokens != nil {
		openAIReq.MaxTokens = *req.MaxTokens
	}

	return openAIReq
}

// convertResponse converts OpenAI response to internal response
func convertResponse(resp *openai.ChatCompletionResponse) *providers.CompletionResponse {
	choices := make([]providers.Choice, len(resp.Choices))
	for i, choice := range resp.Choices {
		choices[i] = providers.Choice{
			Index: choice.Index,
			Message: providers.Message{
				Role:    choice.Message.Role,
				Content: choice.Message.Content,
			},
			FinishReason: string(choice.FinishReason),
		}
	}

	return &providers.CompletionResponse{
		ID:      resp.ID,
		Model:   resp.Model,
		Choices: choices,
		Usage: providers.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
}
