package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedTextsNormalizesAndPreservesOrder(t *testing.T) {
	client := &fakeEmbeddingClient{}
	embedder := NewEmbedder(client)

	texts := []string{"possession of property", "transfer of ownership", "breach of contract"}
	vectors, err := embedder.EmbedTexts(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	for i, v := range vectors {
		norm := 0.0
		for _, x := range v {
			norm += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, norm, 1e-5, "vector %d should be unit length", i)
	}

	// Same client calls, same order as input.
	assert.Equal(t, texts, client.calls)
}

func TestEmbedTextsFiltersBlankInputs(t *testing.T) {
	client := &fakeEmbeddingClient{}
	embedder := NewEmbedder(client)

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"", "  ", "valid text", "\t\n"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, []string{"valid text"}, client.calls)
}

func TestEmbedTextsAllBlankIsEmptyNotError(t *testing.T) {
	embedder := NewEmbedder(&fakeEmbeddingClient{})

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"", "   "})
	assert.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestEmbedTextsBatchingDoesNotChangeResults(t *testing.T) {
	texts := make([]string, 70)
	for i := range texts {
		texts[i] = fmt.Sprintf("section %d of the act provides for penalty clause %d", i, i*7)
	}

	batched := NewEmbedder(&fakeEmbeddingClient{}, WithBatchSize(32))
	single := NewEmbedder(&fakeEmbeddingClient{}, WithBatchSize(1))

	a, err := batched.EmbedTexts(context.Background(), texts)
	require.NoError(t, err)
	b, err := single.EmbedTexts(context.Background(), texts)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEmbedTextsZeroVectorIsError(t *testing.T) {
	client := &fakeEmbeddingClient{
		embedFn: func(string) ([]float32, error) { return []float32{0, 0, 0, 0}, nil },
	}
	embedder := NewEmbedder(client)

	_, err := embedder.EmbedTexts(context.Background(), []string{"anything"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero vector")
}

func TestEmbedTextsClientErrorAbortsCall(t *testing.T) {
	clientErr := errors.New("connection refused")
	client := &fakeEmbeddingClient{
		embedFn: func(text string) ([]float32, error) {
			if text == "bad" {
				return nil, clientErr
			}
			return hashVector(text), nil
		},
	}
	embedder := NewEmbedder(client)

	_, err := embedder.EmbedTexts(context.Background(), []string{"ok", "bad", "later"})
	require.Error(t, err)
	assert.ErrorIs(t, err, clientErr)
}

func TestSimilarityIdenticalTextsNearOne(t *testing.T) {
	embedder := NewEmbedder(&fakeEmbeddingClient{})

	sim := embedder.Similarity(context.Background(), "anticipatory bail", "anticipatory bail")
	assert.InDelta(t, 1.0, sim, 1e-5)
}

func TestSimilarityFailureIsZero(t *testing.T) {
	client := &fakeEmbeddingClient{
		embedFn: func(string) ([]float32, error) { return nil, errors.New("down") },
	}
	embedder := NewEmbedder(client)

	assert.Equal(t, 0.0, embedder.Similarity(context.Background(), "a", "b"))
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	require.True(t, normalize(v))
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)

	zero := []float32{0, 0, 0}
	assert.False(t, normalize(zero))
}

func TestDotMismatchedLengthsIsZero(t *testing.T) {
	assert.Equal(t, 0.0, dot([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Equal(t, 0.0, dot(nil, nil))
}

func TestDotUnitVectors(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{float32(math.Sqrt2 / 2), float32(math.Sqrt2 / 2)}
	assert.InDelta(t, math.Sqrt2/2, dot(a, b), 1e-6)
}
