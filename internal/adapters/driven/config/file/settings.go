// Package file provides file-based configuration and prompt template
// adapters under the ~/.vakeel directory.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Settings is the on-disk configuration, stored as TOML. Zero values
// mean "use the built-in default"; resolution happens at wiring time so
// a hand-trimmed config file keeps working.
type Settings struct {
	Ollama    OllamaSettings    `toml:"ollama"`
	Embedding EmbeddingSettings `toml:"embedding"`
	Reranker  RerankerSettings  `toml:"reranker"`
	Extractor ExtractorSettings `toml:"extractor"`
	Retrieval RetrievalSettings `toml:"retrieval"`
	Knowledge KnowledgeSettings `toml:"knowledge"`
}

// OllamaSettings configures the generation backend.
type OllamaSettings struct {
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// EmbeddingSettings configures the embedding backend.
type EmbeddingSettings struct {
	BaseURL           string  `toml:"base_url"`
	Model             string  `toml:"model"`
	Dimensions        int     `toml:"dimensions"`
	BatchSize         int     `toml:"batch_size"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// RerankerSettings configures the optional cross-encoder sidecar.
type RerankerSettings struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// ExtractorSettings configures the text extraction sidecar.
type ExtractorSettings struct {
	BaseURL string `toml:"base_url"`
}

// RetrievalSettings tunes the query pipeline.
type RetrievalSettings struct {
	TopKRetrieval int `toml:"top_k_retrieval"`
	TopKRerank    int `toml:"top_k_rerank"`
	ChunkSize     int `toml:"chunk_size"`
	ChunkOverlap  int `toml:"chunk_overlap"`
}

// KnowledgeSettings configures the legal knowledge corpus.
type KnowledgeSettings struct {
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
}

// SettingsStore reads and writes Settings from a TOML file.
type SettingsStore struct {
	filePath string
}

// NewSettingsStore creates a settings store. If configDir is empty,
// defaults to ~/.vakeel.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".vakeel")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	return &SettingsStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Path returns the configuration file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// Load reads settings from disk. A missing file yields zero-value
// settings, not an error.
func (s *SettingsStore) Load() (Settings, error) {
	var settings Settings

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parse config: %w", err)
	}
	return settings, nil
}

// Save persists settings to disk with restricted permissions.
func (s *SettingsStore) Save(settings Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
