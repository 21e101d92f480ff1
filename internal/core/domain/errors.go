package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input, such as an
	// empty question or empty document text. Rejected calls have no
	// side effects.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding client is not
	// configured or failed to load. This is fatal at startup: the
	// pipeline cannot index or answer without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRerankerUnavailable indicates the reranker is not configured.
	// Retrieval degrades to similarity ordering; never fatal.
	ErrRerankerUnavailable = errors.New("reranker unavailable")

	// ErrStoreUnavailable indicates the vector store cannot open its
	// persisted path. Fatal at startup.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// Generation Errors.
	//
	// The pipeline substitutes a fixed apology answer for each of these
	// but must distinguish them in its logs.

	// ErrLLMTimeout indicates the generation call exceeded its deadline.
	ErrLLMTimeout = errors.New("generation timed out")

	// ErrLLMRequest indicates the generation service returned an API
	// error (non-200 status or malformed payload).
	ErrLLMRequest = errors.New("generation request failed")

	// ErrLLMUnavailable indicates the generation service is not
	// reachable at all.
	ErrLLMUnavailable = errors.New("generation service unavailable")

	// ErrExtractionFailed indicates the text extraction service could
	// not produce text for a document.
	ErrExtractionFailed = errors.New("text extraction failed")
)
