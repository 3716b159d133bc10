package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIComplete(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "region ILIKE '%Watson%'"}},
			},
		})
	}))
	defer srv.Close()

	client := newOpenAIClient(Config{
		Model:   "qwen3:8b",
		BaseURL: srv.URL + "/v1",
		APIKey:  "test-key",
	})
	got, err := client.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "convert questions to WHERE clauses"},
		{Role: RoleUser, Content: "Question: gangs in Watson?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "region ILIKE '%Watson%'", got)
	assert.Equal(t, "qwen3:8b", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, RoleSystem, captured.Messages[0].Role)
}

func TestOpenAICompleteBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "invalid api key", "type": "auth_error"},
		})
	}))
	defer srv.Close()

	client := newOpenAIClient(Config{Model: "m", BaseURL: srv.URL})
	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "q"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	client := newOpenAIClient(Config{Model: "m", BaseURL: srv.URL})
	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "q"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestOpenAICompleteConnectionRefused(t *testing.T) {
	client := newOpenAIClient(Config{Model: "m", BaseURL: "http://127.0.0.1:1/v1"})
	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "q"}})
	require.Error(t, err)
}

func TestNewCompleterDispatch(t *testing.T) {
	_, err := NewCompleter(context.Background(), Config{})
	assert.Error(t, err, "model is required")

	c, err := NewCompleter(context.Background(), Config{Backend: "ollama", Model: "qwen3:8b"})
	require.NoError(t, err)
	assert.NoError(t, c.Close())

	_, err = NewCompleter(context.Background(), Config{Backend: "mystery", Model: "m"})
	assert.Error(t, err)
}
