package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
	"github.com/Choudharynipun/vakeel.ai/internal/core/ports/driven"
)

// extractorService is injected separately from SetServices since only
// the index command needs it.
var extractorService driven.TextExtractor

// SetExtractor injects the text extraction implementation.
func SetExtractor(extractor driven.TextExtractor) {
	extractorService = extractor
}

var indexTitle string

var indexCmd = &cobra.Command{
	Use:   "index [file]",
	Short: "Index a document for retrieval",
	Long: `Extracts text from a document file, splits it into chunks, embeds
them and stores the result in the vector index. The document becomes
retrievable immediately.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexTitle, "title", "t", "", "document title (defaults to the file name)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexingService == nil {
		return errors.New("indexing service not configured")
	}
	if extractorService == nil {
		return errors.New("extractor not configured")
	}

	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	text, err := extractorService.Extract(ctx, path)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text extracted from %s", path)
	}

	filename := filepath.Base(path)
	title := indexTitle
	if title == "" {
		title = filename
	}

	docID, err := indexingService.Index(ctx, text, filename, domain.DocumentTypeUserUploaded,
		map[string]string{domain.MetaTitle: title})
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed %s as %s\n", filename, docID)
	return nil
}
