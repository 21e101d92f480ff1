package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Choudharynipun/vakeel.ai/internal/chunker"
	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
	"github.com/Choudharynipun/vakeel.ai/internal/core/ports/driven"
	"github.com/Choudharynipun/vakeel.ai/internal/core/ports/driving"
	"github.com/Choudharynipun/vakeel.ai/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IndexingService = (*Indexer)(nil)

// Indexer chunks, embeds and persists documents. Record ids are
// deterministic ({document_id}_chunk_{index}), so re-indexing a document
// under the same id overwrites its prior records.
type Indexer struct {
	chunker  *chunker.Chunker
	embedder *Embedder
	store    driven.VectorStore
}

// NewIndexer creates an indexer with injected collaborators.
func NewIndexer(ch *chunker.Chunker, embedder *Embedder, store driven.VectorStore) *Indexer {
	return &Indexer{
		chunker:  ch,
		embedder: embedder,
		store:    store,
	}
}

// Index stores a document under a generated process-unique id combining
// a clock-derived component and a sanitised form of sourceLabel.
func (s *Indexer) Index(
	ctx context.Context, text, sourceLabel string, docType domain.DocumentType, extra map[string]string,
) (string, error) {
	label := sanitizeLabel(sourceLabel)
	if label == "" {
		label = uuid.NewString()[:8]
	}
	docID := fmt.Sprintf("doc_%d_%s", time.Now().UnixMilli(), label)

	meta := map[string]string{domain.MetaFilename: sourceLabel}
	for k, v := range extra {
		meta[k] = v
	}
	if sourceLabel == "" {
		meta[domain.MetaFilename] = "unknown"
	}

	if err := s.IndexDocument(ctx, docID, text, docType, meta); err != nil {
		return "", err
	}
	return docID, nil
}

// IndexDocument stores a document under a caller-supplied stable id.
// Empty text and unknown document types are rejected with
// domain.ErrInvalidInput before any side effects.
//
// Chunks are embedded and committed batch by batch; a failure aborts the
// remaining batches but leaves earlier commits in place, since record
// ids are independent and the next successful re-index overwrites them.
func (s *Indexer) IndexDocument(
	ctx context.Context, id, text string, docType domain.DocumentType, extra map[string]string,
) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("index %s: empty document text: %w", id, domain.ErrInvalidInput)
	}
	if !docType.Valid() {
		return fmt.Errorf("index %s: document type %q: %w", id, docType, domain.ErrInvalidInput)
	}
	if id == "" {
		return fmt.Errorf("index: empty document id: %w", domain.ErrInvalidInput)
	}

	meta := map[string]string{
		domain.MetaDocumentID:   id,
		domain.MetaDocumentType: string(docType),
		domain.MetaIndexedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range extra {
		if v != "" {
			meta[k] = v
		}
	}

	chunks := s.chunker.Split(text, meta)
	if len(chunks) == 0 {
		return fmt.Errorf("index %s: no chunks produced: %w", id, domain.ErrInvalidInput)
	}

	batch := s.embedder.BatchSize()
	for start := 0; start < len(chunks); start += batch {
		end := start + batch
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		vectors, err := s.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("index %s: %w", id, err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("index %s: embedded %d of %d chunks", id, len(vectors), len(texts))
		}

		records := make([]domain.Record, 0, end-start)
		for i, c := range chunks[start:end] {
			records = append(records, domain.Record{
				ID:        c.RecordID(),
				Embedding: vectors[i],
				Text:      c.Text,
				Metadata:  c.Metadata,
			})
		}

		if err := s.store.Upsert(ctx, records); err != nil {
			return fmt.Errorf("index %s: %w", id, err)
		}
	}

	logger.Info("Indexed document %s with %d chunks", id, len(chunks))
	return nil
}

// Clear removes every record of the given document type.
func (s *Indexer) Clear(ctx context.Context, docType domain.DocumentType) (int, error) {
	if !docType.Valid() {
		return 0, fmt.Errorf("clear: document type %q: %w", docType, domain.ErrInvalidInput)
	}
	removed, err := s.store.Delete(ctx, domain.Filter{DocumentType: docType})
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", docType, err)
	}
	logger.Info("Cleared %d %s records", removed, docType)
	return removed, nil
}

// DeleteDocument removes every record belonging to one document.
func (s *Indexer) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	if documentID == "" {
		return 0, fmt.Errorf("delete: empty document id: %w", domain.ErrInvalidInput)
	}
	removed, err := s.store.Delete(ctx, domain.Filter{DocumentID: documentID})
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", documentID, err)
	}
	return removed, nil
}

// sanitizeLabel lowercases the label and replaces anything outside
// [a-z0-9-] with underscores, trimming leading and trailing runs.
func sanitizeLabel(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
