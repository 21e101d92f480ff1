// Package bge provides a cross-encoder scoring adapter backed by a
// BGE-style reranker sidecar exposing an HTTP /rerank endpoint.
package bge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
	"github.com/Choudharynipun/vakeel.ai/internal/core/ports/driven"
)

// Ensure Scorer implements the interface.
var _ driven.RerankScorer = (*Scorer)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8580"
	DefaultModel   = "BAAI/bge-reranker-base"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the reranker scorer.
type Config struct {
	// BaseURL is the sidecar base URL (default: http://localhost:8580).
	BaseURL string

	// Model is the cross-encoder model name (default: BAAI/bge-reranker-base).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Scorer scores query-candidate pairs against the sidecar. Scores are
// raw relevance logits; squashing and sorting happen in the caller.
type Scorer struct {
	client  *http.Client
	baseURL string
	model   string
}

// rerankRequest is the sidecar /rerank request format.
type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

// rerankResponse is the sidecar /rerank response format.
type rerankResponse struct {
	Scores []float64 `json:"scores"`
}

// NewScorer creates a new reranker scorer.
func NewScorer(cfg Config) *Scorer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Scorer{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Score returns one relevance logit per candidate, in candidate order.
func (s *Scorer) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	reqBody := rerankRequest{
		Model:     s.model,
		Query:     query,
		Documents: candidates,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/rerank",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRerankerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("reranker error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("reranker error (status %d): %s", resp.StatusCode, string(body))
	}

	var rerankResp rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&rerankResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(rerankResp.Scores) != len(candidates) {
		return nil, fmt.Errorf("reranker returned %d scores for %d candidates",
			len(rerankResp.Scores), len(candidates))
	}
	return rerankResp.Scores, nil
}

// ModelName returns the name of the cross-encoder model being used.
func (s *Scorer) ModelName() string {
	return s.model
}

// Ping validates the sidecar is reachable via its health endpoint.
func (s *Scorer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("reranker: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRerankerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", domain.ErrRerankerUnavailable, resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *Scorer) Close() error {
	return nil
}
