package ollama

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(LLMConfig{})

	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
}

func TestLLMService_Chat(t *testing.T) {
	var got struct {
		Model    string           `json:"model"`
		Stream   bool             `json:"stream"`
		Messages []map[string]any `json:"messages"`
		Options  map[string]any   `json:"options"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"Frappez "},"done":false}` + "\n"))
		_, _ = w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"avec de l'eau."},"done":true}` + "\n"))
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{BaseURL: server.URL})
	require.NoError(t, err)

	reply, err := svc.Chat(t.Context(), []driven.ChatMessage{
		{Role: "system", Content: "guide"},
		{Role: "user", Content: "q"},
	}, driven.ChatOptions{Temperature: 0.2, MaxTokens: 64})

	require.NoError(t, err)
	assert.Equal(t, "Frappez avec de l'eau.", reply)
	assert.Equal(t, "llama3.2", got.Model)
	assert.False(t, got.Stream)
	assert.Len(t, got.Messages, 2)
	assert.InDelta(t, 0.2, got.Options["temperature"], 1e-9)
	assert.EqualValues(t, 64, got.Options["num_predict"])
}

func TestLLMService_Chat_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Chat(t.Context(), []driven.ChatMessage{{Role: "user", Content: "q"}}, driven.ChatOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestLLMService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{BaseURL: server.URL})
	require.NoError(t, err)

	assert.NoError(t, svc.Ping(t.Context()))
}
