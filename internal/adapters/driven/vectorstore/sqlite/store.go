// Package sqlite implements the vector store port on an embedded
// SQLite database. Embeddings are stored as little-endian float32
// blobs; similarity search narrows candidates with SQL filters, then
// scores the remainder with cosine similarity in memory.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Choudharynipun/vakeel.ai/internal/adapters/driven/vectorstore/sqlite/migrations"
	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
	"github.com/Choudharynipun/vakeel.ai/internal/core/ports/driven"
	"github.com/Choudharynipun/vakeel.ai/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed vector store. A RWMutex serialises writers
// against readers above the driver: searches take the read lock, upsert
// and delete take the write lock.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// NewStore creates a vector store at the specified data directory.
// If dataDir is empty, defaults to ~/.vakeel/data/vectors.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".vakeel", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	// WAL mode so status and search queries do not block indexing
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Upsert stores records, replacing any existing record with the same
// id. Duplicate ids within a single call are rejected before any write.
func (s *Store) Upsert(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("upsert: empty record id: %w", domain.ErrInvalidInput)
		}
		if seen[r.ID] {
			return fmt.Errorf("upsert: duplicate record id %q: %w", r.ID, domain.ErrInvalidInput)
		}
		if len(r.Embedding) == 0 {
			return fmt.Errorf("upsert %s: empty embedding: %w", r.ID, domain.ErrInvalidInput)
		}
		seen[r.ID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, document_id, document_type, category, content, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			document_type = excluded.document_type,
			category = excluded.category,
			content = excluded.content,
			embedding = excluded.embedding,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		metadataJSON, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling record metadata: %w", err)
		}

		embeddingBlob := float32SliceToBytes(r.Embedding)

		if _, err := stmt.ExecContext(ctx, r.ID,
			r.Metadata[domain.MetaDocumentID],
			r.Metadata[domain.MetaDocumentType],
			r.Metadata[domain.MetaCategory],
			r.Text, embeddingBlob, string(metadataJSON)); err != nil {
			return fmt.Errorf("saving record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	logger.Debug("Upserted %d records", len(records))
	return nil
}

// Search returns the k nearest records by cosine distance, optionally
// narrowed by a metadata filter. The filter is applied in SQL so only
// matching rows are scored.
func (s *Store) Search(ctx context.Context, query []float32, k int, filter *domain.Filter) ([]driven.Hit, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("search: empty query vector: %w", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sqlQuery := "SELECT id, content, embedding, metadata FROM records"
	where, args := filterClause(filter)
	sqlQuery += where

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var hits []driven.Hit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			id           string
			content      string
			blob         []byte
			metadataJSON string
		)
		if err := rows.Scan(&id, &content, &blob, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		embedding := bytesToFloat32Slice(blob)
		if len(embedding) != len(query) {
			// Dimension drift after an embedding model change.
			continue
		}

		var metadata map[string]string
		if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata for %s: %w", id, err)
		}

		hits = append(hits, driven.Hit{
			ID:       id,
			Text:     content,
			Metadata: metadata,
			Distance: 1.0 - cosine(query, embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Delete removes every record matching the filter and reports how many
// rows were removed. An empty filter is rejected rather than treated as
// "delete everything".
func (s *Store) Delete(ctx context.Context, filter domain.Filter) (int, error) {
	if filter.IsZero() {
		return 0, fmt.Errorf("delete: empty filter: %w", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	where, args := filterClause(&filter)
	result, err := s.db.ExecContext(ctx, "DELETE FROM records"+where, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting records: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted records: %w", err)
	}
	return int(affected), nil
}

// Count returns how many records match the filter; a nil filter counts
// everything.
func (s *Store) Count(ctx context.Context, filter *domain.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := filterClause(filter)
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records"+where, args...)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

// filterClause builds the WHERE clause and arguments for a filter.
// A nil or zero filter yields an empty clause.
func filterClause(filter *domain.Filter) (string, []any) {
	if filter == nil || filter.IsZero() {
		return "", nil
	}

	var (
		conds []string
		args  []any
	)
	if filter.DocumentID != "" {
		conds = append(conds, "document_id = ?")
		args = append(args, filter.DocumentID)
	}
	if filter.DocumentType != "" {
		conds = append(conds, "document_type = ?")
		args = append(args, string(filter.DocumentType))
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// cosine computes the cosine similarity of two equal-length vectors,
// normalising both sides so precision loss in stored blobs cannot push
// the result outside [-1, 1].
func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
