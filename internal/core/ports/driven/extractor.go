package driven

import "context"

// TextExtractor is the external text-extraction collaborator: given a
// document file, it returns its plain text or a failure. The pipeline
// treats the output as an opaque string; parsing internals are out of
// scope.
type TextExtractor interface {
	// Extract returns the plain text of the document at path.
	Extract(ctx context.Context, path string) (string, error)

	// SupportedExtensions lists the file extensions the extractor
	// accepts, lowercase with leading dot (e.g. ".pdf", ".txt").
	SupportedExtensions() []string

	// Close releases resources.
	Close() error
}
