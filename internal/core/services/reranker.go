package services

import (
	"context"
	"math"
	"sort"

	"github.com/Choudharynipun/vakeel.ai/internal/core/ports/driven"
	"github.com/Choudharynipun/vakeel.ai/internal/logger"
)

// Reranker re-orders retrieval candidates against the query using a
// pairwise cross-encoder scorer. It is an optional component: with no
// scorer, or when scoring fails, callers get the identity permutation
// and "no reranking" is a valid degraded mode, never an error.
type Reranker struct {
	scorer driven.RerankScorer
}

// NewReranker creates a reranker over the given scorer. A nil scorer is
// allowed and disables reranking.
func NewReranker(scorer driven.RerankScorer) *Reranker {
	return &Reranker{scorer: scorer}
}

// Available reports whether a scorer is configured.
func (r *Reranker) Available() bool {
	return r.scorer != nil
}

// ModelName returns the scorer model name, or "" when disabled.
func (r *Reranker) ModelName() string {
	if r.scorer == nil {
		return ""
	}
	return r.scorer.ModelName()
}

// Rerank returns a permutation of candidate indices ordered best to
// worst. Relevance logits are squashed to [0,1] with a sigmoid and
// sorted descending; ties keep the original candidate order. The
// reranker does not truncate; callers take the top subset themselves.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []string) []int {
	indices := identity(len(candidates))
	if r.scorer == nil || len(candidates) == 0 {
		return indices
	}

	logits, err := r.scorer.Score(ctx, query, candidates)
	if err != nil {
		logger.Warn("Reranking failed, keeping retrieval order: %v", err)
		return identity(len(candidates))
	}
	if len(logits) != len(candidates) {
		logger.Warn("Reranker returned %d scores for %d candidates, keeping retrieval order",
			len(logits), len(candidates))
		return identity(len(candidates))
	}

	scores := make([]float64, len(logits))
	for i, l := range logits {
		scores[i] = sigmoid(l)
	}

	sort.SliceStable(indices, func(i, j int) bool {
		return scores[indices[i]] > scores[indices[j]]
	})

	logger.Debug("Reranked %d candidates", len(candidates))
	return indices
}

func identity(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
