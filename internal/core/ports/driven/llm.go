package driven

import "context"

// LLMService is the generation collaborator: given a prompt and a token
// budget it returns a completion. It is treated as a black box with
// timeout and failure semantics; the pipeline never retries and maps
// failures to fixed fallback answers.
//
// Implementations must translate transport failures into the domain
// sentinels (ErrLLMTimeout, ErrLLMRequest, ErrLLMUnavailable) so the
// orchestrator can distinguish failure kinds in its logs.
type LLMService interface {
	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used by the readiness check and the status query,
	// never invoked mid-query.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// TopP is the nucleus sampling threshold.
	TopP float64

	// TopK limits sampling to the k most likely tokens.
	TopK int

	// RepeatPenalty discourages repeated tokens.
	RepeatPenalty float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
