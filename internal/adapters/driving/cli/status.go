package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index and model status",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if assistantService == nil {
		return errors.New("assistant service not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	status, err := assistantService.Status(ctx)
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	if statusJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("Index:")
	cmd.Printf("  Total records:   %d\n", status.DocumentCounts["total"])
	cmd.Printf("  Legal knowledge: %d\n", status.DocumentCounts[string(domain.DocumentTypeLegalKnowledge)])
	cmd.Printf("  User uploads:    %d\n", status.DocumentCounts[string(domain.DocumentTypeUserUploaded)])
	cmd.Println()
	cmd.Println("Models:")
	cmd.Printf("  Embedding:  %s (%d dimensions)\n", status.EmbeddingModel, status.EmbeddingDimensions)
	cmd.Printf("  Generation: %s (ready: %t)\n", status.GenerationModel, status.GenerationModelReady)
	cmd.Printf("  Reranker:   available: %t\n", status.RerankerAvailable)
	return nil
}
