// Package httpapi provides a text extraction adapter. Plain-text files
// are read directly; binary formats are sent to an extraction sidecar
// that returns their text content.
package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
	"github.com/Choudharynipun/vakeel.ai/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:9998"
	DefaultTimeout = 60 * time.Second

	// maxFileSize bounds how much of a file is read for extraction.
	maxFileSize = 50 << 20 // 50 MiB
)

// plainTextExtensions are read without the sidecar.
var plainTextExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// sidecarExtensions require the extraction sidecar.
var sidecarExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
}

// Config holds configuration for the extraction client.
type Config struct {
	// BaseURL is the extraction sidecar base URL (default: http://localhost:9998).
	BaseURL string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Extractor extracts plain text from document files.
type Extractor struct {
	client  *http.Client
	baseURL string
}

// NewExtractor creates a new text extractor.
func NewExtractor(cfg Config) *Extractor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Extractor{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
	}
}

// SupportedExtensions lists the file extensions Extract accepts.
func (e *Extractor) SupportedExtensions() []string {
	exts := make([]string, 0, len(plainTextExtensions)+len(sidecarExtensions))
	for ext := range plainTextExtensions {
		exts = append(exts, ext)
	}
	for ext := range sidecarExtensions {
		exts = append(exts, ext)
	}
	return exts
}

// Extract returns the text content of the file at path. Unsupported
// extensions are rejected with domain.ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case plainTextExtensions[ext]:
		return e.extractPlain(path)
	case sidecarExtensions[ext]:
		return e.extractRemote(ctx, path)
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", domain.ErrExtractionFailed, ext)
	}
}

func (e *Extractor) extractPlain(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	if info.Size() > maxFileSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", domain.ErrExtractionFailed, maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	return string(data), nil
}

func (e *Extractor) extractRemote(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	if _, err := io.Copy(part, io.LimitReader(file, maxFileSize)); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/extract", &buf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrExtractionFailed, resp.StatusCode, string(body))
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	return string(text), nil
}

// Close releases resources.
func (e *Extractor) Close() error {
	return nil
}
