package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
)

var clearCmd = &cobra.Command{
	Use:       "clear [uploads|knowledge]",
	Short:     "Remove indexed records by document type",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"uploads", "knowledge"},
	RunE:      runClear,
}

var deleteDocumentCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Remove one document's records from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteDocument,
}

func init() {
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(deleteDocumentCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	if indexingService == nil {
		return errors.New("indexing service not configured")
	}

	var docType domain.DocumentType
	switch args[0] {
	case "uploads":
		docType = domain.DocumentTypeUserUploaded
	case "knowledge":
		docType = domain.DocumentTypeLegalKnowledge
	default:
		return fmt.Errorf("unknown type %q, expected uploads or knowledge", args[0])
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	removed, err := indexingService.Clear(ctx, docType)
	if err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	cmd.Printf("Removed %d records\n", removed)
	return nil
}

func runDeleteDocument(cmd *cobra.Command, args []string) error {
	if indexingService == nil {
		return errors.New("indexing service not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	removed, err := indexingService.DeleteDocument(ctx, args[0])
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	cmd.Printf("Removed %d records for document %s\n", removed, args[0])
	return nil
}
