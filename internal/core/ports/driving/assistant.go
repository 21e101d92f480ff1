// Package driving provides interfaces for primary/inbound ports consumed
// by the CLI and other front ends.
package driving

import (
	"context"

	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
)

// AssistantService answers natural-language questions over the indexed
// corpus.
type AssistantService interface {
	// Answer runs one question-answer transaction. documentID, when
	// non-empty, restricts retrieval to a single document. maxTokens is
	// the generation budget, clamped internally.
	//
	// The only possible error is domain.ErrInvalidInput for a blank
	// question; every other failure resolves to a best-effort
	// QueryResult with a fixed apology answer.
	Answer(ctx context.Context, question, documentID string, maxTokens int) (domain.QueryResult, error)

	// EnsureReady verifies the generation collaborator is reachable,
	// retrying with backoff. Called at startup, never mid-query.
	EnsureReady(ctx context.Context) error

	// Status reports corpus counts and model readiness.
	Status(ctx context.Context) (domain.Status, error)
}

// IndexingService writes documents into the vector store.
type IndexingService interface {
	// Index chunks, embeds and stores a document, returning its
	// generated document id. Empty text is rejected with
	// domain.ErrInvalidInput.
	Index(ctx context.Context, text, sourceLabel string, docType domain.DocumentType, extra map[string]string) (string, error)

	// IndexDocument is like Index but with a caller-supplied stable id,
	// used for the reference corpus so re-indexing overwrites in place.
	IndexDocument(ctx context.Context, id, text string, docType domain.DocumentType, extra map[string]string) error

	// Clear removes all records of the given document type and returns
	// the number of records removed.
	Clear(ctx context.Context, docType domain.DocumentType) (int, error)

	// DeleteDocument removes all records belonging to one document.
	DeleteDocument(ctx context.Context, documentID string) (int, error)
}
