package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
)

func TestEmbedSendsModelAndPrompt(t *testing.T) {
	var got embedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Model: "all-minilm"})

	embedding, err := client.Embed(context.Background(), "section 420 cheating")
	require.NoError(t, err)

	assert.Equal(t, "all-minilm", got.Model)
	assert.Equal(t, "section 420 cheating", got.Prompt)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, embedding)
}

func TestEmbedServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	_, err := client.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestEmbedRespectsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Embed(ctx, "text")
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	assert.NoError(t, client.Ping(context.Background()))
}

func TestPingUnreachable(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})

	err := client.Ping(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbedUnreachableServiceError(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})

	_, err := client.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestDefaults(t *testing.T) {
	client := NewClient(Config{})
	assert.Equal(t, DefaultModel, client.ModelName())
	assert.Equal(t, DefaultDimensions, client.Dimensions())
	assert.NoError(t, client.Close())
}
