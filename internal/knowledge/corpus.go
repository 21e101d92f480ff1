// Package knowledge loads the built-in legal reference corpus and keeps
// the index in sync with the knowledge directory on disk.
package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
	"github.com/Choudharynipun/vakeel.ai/internal/core/ports/driving"
	"github.com/Choudharynipun/vakeel.ai/internal/logger"
)

// Reference describes one expected corpus file and the metadata its
// records carry.
type Reference struct {
	Filename string
	Title    string
	Category string
	Source   string
}

// References is the built-in Indian law corpus. Files are looked up by
// name under the knowledge directory; absence is a warning, not an
// error, since users may trim the corpus.
var References = []Reference{
	{
		Filename: "indian_constitution.txt",
		Title:    "Constitution of India",
		Category: "constitutional_law",
		Source:   "Government of India",
	},
	{
		Filename: "indian_penal_code.txt",
		Title:    "Indian Penal Code, 1860",
		Category: "criminal_law",
		Source:   "Legislative Department",
	},
	{
		Filename: "crpc_sections.txt",
		Title:    "Code of Criminal Procedure, 1973",
		Category: "procedural_law",
		Source:   "Legislative Department",
	},
	{
		Filename: "civil_procedure_code.txt",
		Title:    "Code of Civil Procedure, 1908",
		Category: "civil_law",
		Source:   "Legislative Department",
	},
	{
		Filename: "evidence_act.txt",
		Title:    "Indian Evidence Act, 1872",
		Category: "evidence_law",
		Source:   "Legislative Department",
	},
	{
		Filename: "contract_act.txt",
		Title:    "Indian Contract Act, 1872",
		Category: "contract_law",
		Source:   "Legislative Department",
	},
}

// DocumentID derives the stable corpus document id from a filename,
// "legal_" plus the basename without its extension. Stable ids make
// corpus reloads overwrite rather than accumulate.
func DocumentID(filename string) string {
	base := filepath.Base(filename)
	return "legal_" + strings.TrimSuffix(base, filepath.Ext(base))
}

// referenceFor returns the corpus entry matching the filename, or a
// generic entry for files dropped into the directory outside the
// built-in list.
func referenceFor(filename string) Reference {
	base := filepath.Base(filename)
	for _, ref := range References {
		if ref.Filename == base {
			return ref
		}
	}
	title := strings.TrimSuffix(base, filepath.Ext(base))
	return Reference{
		Filename: base,
		Title:    titleCase(strings.ReplaceAll(title, "_", " ")),
		Category: "general_law",
		Source:   "User provided",
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Loader indexes corpus files into the vector store through the
// indexing service.
type Loader struct {
	indexer driving.IndexingService
	dir     string
}

// NewLoader creates a corpus loader over the given knowledge directory.
func NewLoader(indexer driving.IndexingService, dir string) *Loader {
	return &Loader{indexer: indexer, dir: dir}
}

// Dir returns the knowledge directory path.
func (l *Loader) Dir() string { return l.dir }

// LoadAll indexes every built-in reference file present in the
// knowledge directory. Missing files are skipped with a warning. It
// returns how many documents were indexed.
func (l *Loader) LoadAll(ctx context.Context) (int, error) {
	logger.Section("Loading Legal Knowledge Base")

	loaded := 0
	for _, ref := range References {
		path := filepath.Join(l.dir, ref.Filename)
		if _, err := os.Stat(path); err != nil {
			logger.Warn("Knowledge file %s not found, skipping", ref.Filename)
			continue
		}
		if err := l.LoadFile(ctx, path); err != nil {
			return loaded, err
		}
		loaded++
	}

	logger.Info("Loaded %d of %d knowledge documents", loaded, len(References))
	return loaded, nil
}

// LoadFile indexes a single corpus file under its stable document id.
// Re-indexing the same file overwrites its previous records.
func (l *Loader) LoadFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read knowledge file %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		logger.Warn("Knowledge file %s is empty, skipping", filepath.Base(path))
		return nil
	}

	ref := referenceFor(path)
	meta := map[string]string{
		domain.MetaTitle:    ref.Title,
		domain.MetaFilename: ref.Filename,
		domain.MetaCategory: ref.Category,
		domain.MetaSource:   ref.Source,
	}

	id := DocumentID(path)
	if err := l.indexer.IndexDocument(ctx, id, string(data), domain.DocumentTypeLegalKnowledge, meta); err != nil {
		return fmt.Errorf("index knowledge file %s: %w", ref.Filename, err)
	}
	logger.Debug("Indexed knowledge document %s (%s)", id, ref.Title)
	return nil
}

// Remove deletes the records of the corpus document backing the given
// file path.
func (l *Loader) Remove(ctx context.Context, path string) (int, error) {
	return l.indexer.DeleteDocument(ctx, DocumentID(path))
}
