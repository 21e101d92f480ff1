package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
	"github.com/Choudharynipun/vakeel.ai/internal/core/ports/driven"
)

func TestGenerateSendsOptions(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(generateResponse{Response: "Generated answer.", Done: true})
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "llama2:7b"})

	answer, err := svc.Generate(context.Background(), "What is bail?", driven.GenerateOptions{
		MaxTokens:     500,
		Temperature:   0.1,
		TopP:          0.9,
		TopK:          40,
		RepeatPenalty: 1.1,
		StopWords:     []string{"Human:", "Assistant:"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Generated answer.", answer)

	assert.Equal(t, "llama2:7b", got.Model)
	assert.Equal(t, "What is bail?", got.Prompt)
	assert.False(t, got.Stream)
	require.NotNil(t, got.Options)
	assert.Equal(t, 500, got.Options.NumPredict)
	assert.InDelta(t, 0.1, got.Options.Temperature, 1e-9)
	assert.InDelta(t, 0.9, got.Options.TopP, 1e-9)
	assert.Equal(t, 40, got.Options.TopK)
	assert.InDelta(t, 1.1, got.Options.RepeatPenalty, 1e-9)
	assert.Equal(t, []string{"Human:", "Assistant:"}, got.Options.Stop)
}

func TestGenerateCapsTokenBudget(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(generateResponse{Response: "ok", Done: true})
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})

	_, err := svc.Generate(context.Background(), "q", driven.GenerateOptions{MaxTokens: 99999})
	require.NoError(t, err)
	assert.Equal(t, hardTokenCap, got.Options.NumPredict)

	_, err = svc.Generate(context.Background(), "q", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, hardTokenCap, got.Options.NumPredict)
}

func TestGenerateHTTPErrorIsRequestError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})

	_, err := svc.Generate(context.Background(), "q", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMRequest)
}

func TestGenerateTimeoutIsTimeoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL, Timeout: 50 * time.Millisecond})

	_, err := svc.Generate(context.Background(), "q", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMTimeout)
}

func TestGenerateConnectionRefusedIsUnavailable(t *testing.T) {
	svc := NewLLMService(LLMConfig{BaseURL: "http://127.0.0.1:1"})

	_, err := svc.Generate(context.Background(), "q", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestPingMapsFailureToUnavailable(t *testing.T) {
	svc := NewLLMService(LLMConfig{BaseURL: "http://127.0.0.1:1"})
	assert.ErrorIs(t, svc.Ping(context.Background()), domain.ErrLLMUnavailable)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ok := NewLLMService(LLMConfig{BaseURL: server.URL})
	assert.NoError(t, ok.Ping(context.Background()))
}

func TestDefaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.NoError(t, svc.Close())
}
