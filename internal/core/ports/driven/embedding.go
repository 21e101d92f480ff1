package driven

import "context"

// EmbeddingClient generates raw vector embeddings from text. It is a pure
// transport concern: batching, empty-input filtering and L2 normalisation
// are applied by the core embedder service on top of this interface.
//
// Implementations may include:
//   - Ollama (all-minilm, nomic-embed-text)
//   - OpenAI-compatible inference servers
type EmbeddingClient interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768).
	// This is determined by the model and must match stored vectors.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Failure at startup is fatal: the pipeline cannot
	// serve queries without embeddings.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
