package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manakavoo/manakavoo-backend/internal/config"
	"github.com/manakavoo/manakavoo-backend/internal/providers"
)

func TestNewProvider_RequiresKey(t *testing.T) {
	_, err := NewProvider(config.LLMConfig{})
	assert.Error(t, err)

	_, err = NewCompatibleProvider(config.LLMConfig{})
	assert.Error(t, err)
}

func TestProvider_Complete(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float32 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer local-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hi!"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 2, "total_tokens": 14}
		}`))
	}))
	defer server.Close()

	provider, err := NewCompatibleProvider(config.LLMConfig{BaseURL: server.URL, APIKey: "local-key"})
	require.NoError(t, err)
	assert.Equal(t, "OpenAI-compatible", provider.Name())

	temperature := float32(0.7)
	maxTokens := 300
	resp, err := provider.Complete(context.Background(), providers.CompletionRequest{
		Model: "gpt-4o-mini",
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: "be brief"},
			{Role: providers.RoleUser, Content: "hello"},
		},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 300, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 0.0001)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[1].Content)

	assert.Equal(t, "chatcmpl-1", resp.ID)
	assert.Equal(t, 14, resp.Usage.TotalTokens)
	text, err := resp.Text()
	require.NoError(t, err)
	assert.Equal(t, "Hi!", text)
}

func TestProvider_CompleteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	provider, err := NewProvider(config.LLMConfig{APIKey: "sk-bad", BaseURL: server.URL + "/v1/"})
	require.NoError(t, err)

	_, err = provider.Complete(context.Background(), providers.CompletionRequest{Model: "gpt-4o-mini"})
	assert.Error(t, err)
}
