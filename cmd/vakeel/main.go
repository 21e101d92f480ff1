// Command vakeel is a retrieval-augmented legal assistant CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Choudharynipun/vakeel.ai/internal/adapters/driven/config/file"
	embeddingollama "github.com/Choudharynipun/vakeel.ai/internal/adapters/driven/embedding/ollama"
	"github.com/Choudharynipun/vakeel.ai/internal/adapters/driven/extractor/httpapi"
	llmollama "github.com/Choudharynipun/vakeel.ai/internal/adapters/driven/llm/ollama"
	"github.com/Choudharynipun/vakeel.ai/internal/adapters/driven/reranker/bge"
	"github.com/Choudharynipun/vakeel.ai/internal/adapters/driven/vectorstore/sqlite"
	"github.com/Choudharynipun/vakeel.ai/internal/adapters/driving/cli"
	"github.com/Choudharynipun/vakeel.ai/internal/chunker"
	"github.com/Choudharynipun/vakeel.ai/internal/core/services"
	"github.com/Choudharynipun/vakeel.ai/internal/knowledge"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settingsStore, err := file.NewSettingsStore("")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("vector store: %w", err)
	}
	defer store.Close()

	embeddingClient := embeddingollama.NewClient(embeddingollama.Config{
		BaseURL:           settings.Embedding.BaseURL,
		Model:             settings.Embedding.Model,
		Dimensions:        settings.Embedding.Dimensions,
		RequestsPerSecond: settings.Embedding.RequestsPerSecond,
	})
	defer embeddingClient.Close()

	var embedderOpts []services.EmbedderOption
	if settings.Embedding.BatchSize > 0 {
		embedderOpts = append(embedderOpts, services.WithBatchSize(settings.Embedding.BatchSize))
	}
	embedder := services.NewEmbedder(embeddingClient, embedderOpts...)

	llm := llmollama.NewLLMService(llmollama.LLMConfig{
		BaseURL: settings.Ollama.BaseURL,
		Model:   settings.Ollama.Model,
		Timeout: time.Duration(settings.Ollama.TimeoutSeconds) * time.Second,
	})
	defer llm.Close()

	reranker := services.NewReranker(nil)
	if settings.Reranker.Enabled {
		scorer := bge.NewScorer(bge.Config{
			BaseURL: settings.Reranker.BaseURL,
			Model:   settings.Reranker.Model,
		})
		defer scorer.Close()
		reranker = services.NewReranker(scorer)
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("prompt store: %w", err)
	}

	var chunkerOpts []chunker.Option
	if settings.Retrieval.ChunkSize > 0 {
		chunkerOpts = append(chunkerOpts, chunker.WithChunkSize(settings.Retrieval.ChunkSize))
	}
	if settings.Retrieval.ChunkOverlap > 0 {
		chunkerOpts = append(chunkerOpts, chunker.WithOverlap(settings.Retrieval.ChunkOverlap))
	}
	textChunker := chunker.New(chunkerOpts...)

	var pipelineOpts []services.PipelineOption
	pipelineOpts = append(pipelineOpts, services.WithPromptStore(prompts))
	if settings.Retrieval.TopKRetrieval > 0 {
		pipelineOpts = append(pipelineOpts, services.WithTopKRetrieval(settings.Retrieval.TopKRetrieval))
	}
	if settings.Retrieval.TopKRerank > 0 {
		pipelineOpts = append(pipelineOpts, services.WithTopKRerank(settings.Retrieval.TopKRerank))
	}
	pipeline := services.NewPipeline(embedder, store, reranker, llm, pipelineOpts...)

	indexer := services.NewIndexer(textChunker, embedder, store)

	knowledgeDir := settings.Knowledge.Dir
	if knowledgeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("knowledge dir: %w", err)
		}
		knowledgeDir = filepath.Join(home, ".vakeel", "knowledge")
	}
	if err := os.MkdirAll(knowledgeDir, 0700); err != nil {
		return fmt.Errorf("knowledge dir: %w", err)
	}
	loader := knowledge.NewLoader(indexer, knowledgeDir)

	extractor := httpapi.NewExtractor(httpapi.Config{
		BaseURL: settings.Extractor.BaseURL,
	})
	defer extractor.Close()

	cli.SetServices(pipeline, indexer, loader)
	cli.SetExtractor(extractor)
	cli.SetKnowledgeWatch(settings.Knowledge.Watch)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.ExecuteContext(ctx)
}
