package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/Choudharynipun/vakeel.ai/internal/knowledge"
)

// knowledgeWatchDefault mirrors the watch setting from the config file.
// When set, `knowledge load` keeps watching after the initial load even
// without the --watch flag.
var knowledgeWatchDefault bool

var knowledgeLoadWatch bool

// SetKnowledgeWatch sets whether `knowledge load` keeps watching the
// knowledge directory after loading, per the config file.
func SetKnowledgeWatch(enabled bool) {
	knowledgeWatchDefault = enabled
}

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the legal knowledge corpus",
}

var knowledgeLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Index the legal knowledge files",
	Long: `Indexes the built-in legal reference files found in the knowledge
directory. Files already indexed are overwritten in place; missing
files are skipped. With --watch (or watch enabled in the config file)
the command keeps watching the directory after the initial load.`,
	RunE: runKnowledgeLoad,
}

var knowledgeWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the knowledge directory and keep the index in sync",
	Long: `Watches the knowledge directory for changes. New or modified .txt
files are re-indexed automatically; deleted files have their records
removed. Runs until interrupted.`,
	RunE: runKnowledgeWatch,
}

func init() {
	knowledgeLoadCmd.Flags().BoolVar(&knowledgeLoadWatch, "watch", false, "keep watching the directory after loading")
	knowledgeCmd.AddCommand(knowledgeLoadCmd)
	knowledgeCmd.AddCommand(knowledgeWatchCmd)
	rootCmd.AddCommand(knowledgeCmd)
}

func runKnowledgeLoad(cmd *cobra.Command, _ []string) error {
	if knowledgeLoader == nil {
		return errors.New("knowledge loader not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	loaded, err := knowledgeLoader.LoadAll(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("Indexed %d knowledge documents\n", loaded)

	if knowledgeLoadWatch || knowledgeWatchDefault {
		return watchKnowledgeDir(cmd)
	}
	return nil
}

func runKnowledgeWatch(cmd *cobra.Command, _ []string) error {
	if knowledgeLoader == nil {
		return errors.New("knowledge loader not configured")
	}
	return watchKnowledgeDir(cmd)
}

// watchKnowledgeDir runs the directory watcher until the command's
// context is cancelled. Cancellation is a normal stop, not an error.
func watchKnowledgeDir(cmd *cobra.Command) error {
	watcher, err := knowledge.NewWatcher(knowledgeLoader)
	if err != nil {
		return err
	}
	defer watcher.Close()

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", knowledgeLoader.Dir())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
