package driven

import (
	"context"

	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
)

// VectorStore persists indexed records and serves filtered similarity
// search. It is the single mutable shared resource of the pipeline and
// owns its own concurrency control: callers never take external locks.
//
// Backed by SQLite for embedded on-disk persistence; contents must
// survive process restarts with identical query results.
type VectorStore interface {
	// Upsert stores the given records. An id that already exists is
	// replaced (idempotent re-indexing); duplicate ids within a single
	// call are rejected with ErrInvalidInput.
	Upsert(ctx context.Context, records []domain.Record) error

	// Search returns up to k nearest records by cosine distance.
	// A non-nil filter restricts eligible records before the k-limit is
	// applied. An empty store or no matching records yields an empty
	// slice, not an error.
	Search(ctx context.Context, query []float32, k int, filter *domain.Filter) ([]Hit, error)

	// Delete removes all records matching the filter and returns the
	// count removed. A no-op returns 0, not an error.
	Delete(ctx context.Context, filter domain.Filter) (int, error)

	// Count returns the exact number of records, optionally filtered.
	Count(ctx context.Context, filter *domain.Filter) (int, error)

	// Close releases resources.
	Close() error
}

// Hit is a similarity search result.
type Hit struct {
	// ID is the matched record id.
	ID string

	// Text is the stored chunk content.
	Text string

	// Metadata is the stored chunk metadata.
	Metadata map[string]string

	// Distance is the cosine distance (1 - similarity) to the query.
	Distance float64
}
