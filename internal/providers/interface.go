package providers

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyCompletion is returned when a provider answers without any choice
var ErrEmptyCompletion = errors.New("completion returned no choices")

// Message roles understood by chat completion APIs
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Provider defines the completion capability used by the dialogue service
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete performs a non-streaming completion
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest represents a chat completion request
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model"`
	Temperature *float32  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse represents a non-streaming response
type CompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice represents a completion choice
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage represents token usage information
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Text returns the trimmed content of the first choice
func (r *CompletionResponse) Text() (string, error) {
	if r == nil || len(r.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(r.Choices[0].Message.Content), nil
}
