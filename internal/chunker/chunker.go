// Package chunker provides a fixed-size overlapping word-window chunker.
package chunker

import (
	"strconv"
	"strings"

	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping words.
const DefaultChunkOverlap = 200

// Chunker splits document text into overlapping word windows.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in words.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in words.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave a positive stride
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// ChunkSize returns the configured window size in words.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap in words.
func (c *Chunker) Overlap() int { return c.overlap }

// Split splits text into overlapping windows of chunkSize words,
// advancing by chunkSize-overlap words per step. The last window may be
// shorter; no padding is applied. Text with fewer words than a window
// produces exactly one chunk, and empty text produces none.
//
// Each chunk inherits every key from meta plus its own chunk_index and
// word_count; DocumentID is taken from meta's document_id key.
func (c *Chunker) Split(text string, meta map[string]string) []domain.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	stride := c.chunkSize - c.overlap
	estimated := len(words)/stride + 1
	chunks := make([]domain.Chunk, 0, estimated)

	for start := 0; start < len(words); start += stride {
		end := start + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		window := words[start:end]

		chunk := domain.Chunk{
			Text:       strings.Join(window, " "),
			DocumentID: meta[domain.MetaDocumentID],
			Index:      len(chunks),
			WordStart:  start,
			WordEnd:    end,
			WordCount:  len(window),
			Metadata:   make(map[string]string, len(meta)+2),
		}
		for k, v := range meta {
			chunk.Metadata[k] = v
		}
		chunk.Metadata[domain.MetaChunkIndex] = strconv.Itoa(chunk.Index)
		chunk.Metadata[domain.MetaWordCount] = strconv.Itoa(chunk.WordCount)

		chunks = append(chunks, chunk)

		if end == len(words) {
			break
		}
	}

	return chunks
}
