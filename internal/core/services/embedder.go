package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
	"github.com/Choudharynipun/vakeel.ai/internal/core/ports/driven"
	"github.com/Choudharynipun/vakeel.ai/internal/logger"
)

// DefaultBatchSize bounds how many texts are encoded per batch.
const DefaultBatchSize = 32

// Embedder maps text to fixed-dimension L2-normalised vectors on top of
// a raw embedding client. Blank inputs are filtered before encoding and
// batching never changes output order or values.
type Embedder struct {
	client    driven.EmbeddingClient
	batchSize int
}

// EmbedderOption configures the embedder.
type EmbedderOption func(*Embedder)

// WithBatchSize sets the encoding batch size.
func WithBatchSize(n int) EmbedderOption {
	return func(e *Embedder) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// NewEmbedder creates an embedder over the given client.
func NewEmbedder(client driven.EmbeddingClient, opts ...EmbedderOption) *Embedder {
	e := &Embedder{
		client:    client,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BatchSize returns the configured encoding batch size.
func (e *Embedder) BatchSize() int { return e.batchSize }

// ModelName returns the underlying model name.
func (e *Embedder) ModelName() string {
	if e.client == nil {
		return ""
	}
	return e.client.ModelName()
}

// Dimensions returns the underlying embedding dimension.
func (e *Embedder) Dimensions() int {
	if e.client == nil {
		return 0
	}
	return e.client.Dimensions()
}

// Ping verifies the embedding client is reachable.
func (e *Embedder) Ping(ctx context.Context) error {
	if e.client == nil {
		return domain.ErrEmbeddingUnavailable
	}
	return e.client.Ping(ctx)
}

// EmbedTexts generates one unit-length vector per non-blank input text,
// in input order. If every input is blank the result is empty, not an
// error. A client failure or degenerate (zero) vector aborts the whole
// call: the write path must never index a silently-substituted vector.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if e.client == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	cleaned := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(cleaned))
	for start := 0; start < len(cleaned); start += e.batchSize {
		end := start + e.batchSize
		if end > len(cleaned) {
			end = len(cleaned)
		}
		for i, text := range cleaned[start:end] {
			vec, err := e.client.Embed(ctx, text)
			if err != nil {
				return nil, fmt.Errorf("embed text %d: %w", start+i, err)
			}
			if !normalize(vec) {
				return nil, fmt.Errorf("embed text %d: degenerate zero vector", start+i)
			}
			vectors = append(vectors, vec)
		}
		logger.Debug("Embedded batch %d-%d of %d texts", start, end, len(cleaned))
	}

	return vectors, nil
}

// EmbedOne generates a single unit-length vector.
func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embed: %w", domain.ErrInvalidInput)
	}
	return vectors[0], nil
}

// Similarity returns the cosine similarity of the two texts' embeddings.
// It returns 0.0, not an error, if either embedding is degenerate or the
// client fails.
func (e *Embedder) Similarity(ctx context.Context, a, b string) float64 {
	va, err := e.EmbedOne(ctx, a)
	if err != nil {
		logger.Warn("Similarity: %v", err)
		return 0.0
	}
	vb, err := e.EmbedOne(ctx, b)
	if err != nil {
		logger.Warn("Similarity: %v", err)
		return 0.0
	}
	return dot(va, vb)
}

// normalize scales v to unit length in place. It returns false when v is
// a zero vector and cannot be normalised.
func normalize(v []float32) bool {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return false
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return true
}

// dot computes the dot product of two equal-length vectors. On unit
// vectors this is the cosine similarity.
func dot(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
