package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from user-editable files or embed
// them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a
	// sensible default or an error, depending on whether the prompt is
	// required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next
	// access. Useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and
// providers. Template choice is deterministic on context presence alone.
const (
	// PromptAnswerWithContext answers strictly from retrieved context.
	// The template expects %s (context) and %s (question) placeholders.
	PromptAnswerWithContext = "answer_with_context"

	// PromptAnswerGeneral answers from general legal knowledge when no
	// context was retrieved. The template expects a %s (question)
	// placeholder.
	PromptAnswerGeneral = "answer_general"
)
