package driven

import "context"

// RerankScorer computes pairwise relevance logits for (query, candidate)
// pairs using a cross-encoder model. This is an optional service: when
// nil or failing, the core reranker falls back to identity ordering.
//
// The scorer returns raw logits; squashing to [0,1] and sorting belong to
// the core reranker service.
type RerankScorer interface {
	// Score returns one relevance logit per candidate, in input order.
	Score(ctx context.Context, query string, candidates []string) ([]float64, error)

	// ModelName returns the name of the reranking model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
