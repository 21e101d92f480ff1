// Package cli provides the command-line interface. Commands hold no
// business logic; they parse flags, call the driving ports and render
// results.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Choudharynipun/vakeel.ai/internal/core/ports/driving"
	"github.com/Choudharynipun/vakeel.ai/internal/knowledge"
	"github.com/Choudharynipun/vakeel.ai/internal/logger"
)

// Services injected by the composition root before Execute.
var (
	assistantService driving.AssistantService
	indexingService  driving.IndexingService
	knowledgeLoader  *knowledge.Loader
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "vakeel",
	Short: "Legal question answering over indexed documents",
	Long: `Vakeel answers legal questions by retrieving relevant passages from an
indexed corpus of Indian law and user documents, then generating a
grounded answer with a local LLM.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetServices injects the service implementations used by commands.
func SetServices(assistant driving.AssistantService, indexing driving.IndexingService, loader *knowledge.Loader) {
	assistantService = assistant
	indexingService = indexing
	knowledgeLoader = loader
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command under the given context, so
// long-running commands stop on interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
