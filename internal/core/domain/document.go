package domain

import "fmt"

// DocumentType partitions the collection into the static reference corpus
// and per-session user uploads.
type DocumentType string

const (
	// DocumentTypeLegalKnowledge marks chunks from the fixed legal
	// reference corpus loaded at startup.
	DocumentTypeLegalKnowledge DocumentType = "legal_knowledge"

	// DocumentTypeUserUploaded marks chunks from user-uploaded documents.
	// These are removable in bulk via the clear operation.
	DocumentTypeUserUploaded DocumentType = "user_uploaded"
)

// Valid reports whether the document type is one of the known values.
func (t DocumentType) Valid() bool {
	return t == DocumentTypeLegalKnowledge || t == DocumentTypeUserUploaded
}

// Well-known metadata keys carried on every indexed chunk.
const (
	MetaTitle        = "title"
	MetaFilename     = "filename"
	MetaCategory     = "category"
	MetaSource       = "source"
	MetaDocumentID   = "document_id"
	MetaDocumentType = "document_type"
	MetaIndexedAt    = "indexed_at"
	MetaChunkIndex   = "chunk_index"
	MetaWordCount    = "word_count"
)

// Chunk is a contiguous, possibly overlapping slice of a document's words.
// It is the unit of retrieval.
type Chunk struct {
	// Text is the chunk content.
	Text string

	// DocumentID identifies the owning document, stable across chunks.
	DocumentID string

	// Index is the 0-based position within the document. Indices for a
	// document are contiguous starting at 0.
	Index int

	// WordStart and WordEnd are half-open word offsets into the source
	// document. Overlapping windows share words but never share an
	// identical range.
	WordStart int
	WordEnd   int

	// WordCount is the number of words in this chunk.
	WordCount int

	// Metadata carries source attributes (title, filename, category,
	// source, document_type, indexed_at) inherited from the document.
	Metadata map[string]string
}

// RecordID returns the deterministic persisted id for this chunk.
// Re-indexing a document with the same id overwrites its prior records.
func (c Chunk) RecordID() string {
	return fmt.Sprintf("%s_chunk_%d", c.DocumentID, c.Index)
}

// Record is the persisted unit in the vector store: one chunk, its
// embedding and its metadata. The embedding is immutable once stored.
type Record struct {
	ID        string
	Embedding []float32
	Text      string
	Metadata  map[string]string
}

// Candidate is an ephemeral retrieval result produced per query.
// It exists only for the duration of one query call.
type Candidate struct {
	Text     string
	Metadata map[string]string

	// Score is the similarity (1 - cosine distance) of the chunk to the
	// query embedding.
	Score float64

	// Rank is the 1-based position after reranking.
	Rank int
}

// SourceRef attributes part of an answer to an indexed chunk.
type SourceRef struct {
	Title        string  `json:"title"`
	Filename     string  `json:"filename"`
	DocumentType string  `json:"document_type"`
	Score        float64 `json:"score"`
	Rank         int     `json:"rank"`
}

// QueryResult is the outcome of one question-answer transaction.
// Confidence is a retrieval-similarity proxy, not a calibrated
// probability: it is the top retrieval candidate's score.
type QueryResult struct {
	Answer         string      `json:"answer"`
	Sources        []SourceRef `json:"sources"`
	Confidence     float64     `json:"confidence"`
	ContextLength  int         `json:"context_length"`
	RetrievedCount int         `json:"retrieved_count"`
	ProcessingTime float64     `json:"processing_time"`
}

// Status describes pipeline readiness and corpus size.
type Status struct {
	DocumentCounts       map[string]int `json:"document_counts"`
	EmbeddingModel       string         `json:"embedding_model"`
	EmbeddingDimensions  int            `json:"embedding_dimensions"`
	RerankerAvailable    bool           `json:"reranker_available"`
	GenerationModel      string         `json:"generation_model"`
	GenerationModelReady bool           `json:"generation_model_ready"`
}
