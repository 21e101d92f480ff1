package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
	"github.com/Choudharynipun/vakeel.ai/internal/logger"
)

var (
	askDocumentID string
	askMaxTokens  int
	askJSON       bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a legal question",
	Long: `Answers a legal question using retrieval-augmented generation.
Relevant passages are retrieved from the indexed corpus, reranked, and
passed to the generation model as context. Without any indexed context
the model answers from general knowledge.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askDocumentID, "document", "d", "", "restrict retrieval to one document id")
	askCmd.Flags().IntVar(&askMaxTokens, "max-tokens", 0, "generation token budget (0 uses the default)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the full result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if assistantService == nil {
		return errors.New("assistant service not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := assistantService.EnsureReady(ctx); err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return fmt.Errorf("cannot answer: %w", err)
		}
		logger.Warn("Generation service not reachable: %v", err)
	}

	result, err := assistantService.Answer(ctx, args[0], askDocumentID, askMaxTokens)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return outputAnswer(cmd, result)
}

func outputAnswer(cmd *cobra.Command, result domain.QueryResult) error {
	cmd.Println(result.Answer)

	if len(result.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, s := range result.Sources {
			cmd.Printf("  [%d] %s (%.2f)\n", s.Rank, s.Title, s.Score)
		}
	}

	cmd.Println()
	cmd.Printf("Confidence: %.2f | Retrieved: %d | %.2fs\n",
		result.Confidence, result.RetrievedCount, result.ProcessingTime)
	return nil
}
