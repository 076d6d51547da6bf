package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"axonflow-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteSendsMessagesAndOptions(t *testing.T) {
	var captured chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(chatCompletionResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{
				{Message: chatMessage{Role: "assistant", Content: "generated answer"}},
			},
		})
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", "gpt-3.5-turbo")
	provider.BaseURL = server.URL

	answer, err := provider.Complete(context.Background(),
		[]llm.Message{
			{Role: "system", Content: "you are helpful"},
			{Role: "user", Content: "hello"},
		},
		llm.WithTemperature(0.7),
		llm.WithMaxTokens(1000),
	)

	require.NoError(t, err)
	assert.Equal(t, "generated answer", answer)
	assert.Equal(t, "gpt-3.5-turbo", captured.Model)
	assert.Equal(t, 0.7, captured.Temperature)
	assert.Equal(t, 1000, captured.MaxTokens)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "hello", captured.Messages[1].Content)
}

func TestCompleteWrapsUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", "")
	provider.BaseURL = server.URL

	_, err := provider.Complete(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})

	var genErr *llm.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Error(), "429")
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatCompletionResponse{})
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", "")
	provider.BaseURL = server.URL

	_, err := provider.Complete(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})

	var genErr *llm.GenerationError
	require.ErrorAs(t, err, &genErr)
}
