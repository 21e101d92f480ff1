package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
	"github.com/Choudharynipun/vakeel.ai/internal/core/ports/driven"
	"github.com/Choudharynipun/vakeel.ai/internal/core/ports/driving"
	"github.com/Choudharynipun/vakeel.ai/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.AssistantService = (*Pipeline)(nil)

// Retrieval and generation defaults.
const (
	// DefaultTopKRetrieval is how many candidates the store returns.
	DefaultTopKRetrieval = 10

	// DefaultTopKRerank is how many candidates survive reranking.
	DefaultTopKRerank = 5

	// MaxGenerationTokens is the hard ceiling on the token budget.
	MaxGenerationTokens = 2000

	// MaxAnswerChars is the hard ceiling on answer length.
	MaxAnswerChars = 2000
)

// Fixed fallback answers, one per generation failure kind. The user sees
// a generic message; the logs record which kind occurred.
const (
	answerTimeout = "The request is taking longer than expected. Please try with a simpler question."
	answerAPIErr  = "I apologize, but I'm experiencing technical difficulties. Please try again."
	answerFailed  = "I encountered an error while processing your request. Please try again."
	answerEmpty   = "I couldn't generate a response. Please rephrase your question."

	// answerInternal is returned when the pipeline itself fails
	// (e.g. the store is unavailable).
	answerInternal = "I apologize, but I encountered an error while processing your question. Please try again."
)

// Default prompt templates. Exactly one template per branch; the choice
// depends only on whether retrieval produced context.
const (
	defaultContextPrompt = `You are a knowledgeable legal assistant. Answer the question based on the provided context. Be accurate, concise, and cite relevant sections when possible.

Context:
%s

Question: %s

Answer: Provide a clear, accurate response based on the context above. If the context doesn't contain enough information, say so clearly.`

	defaultGeneralPrompt = `You are a knowledgeable legal assistant with expertise in Indian law. Provide accurate, helpful information about legal matters.

Question: %s

Answer: Provide a clear, accurate legal response. If you're not certain about specific details, mention that and suggest consulting with a qualified legal professional.`
)

// defaultGenerateOptions mirrors the generation parameters the service
// was tuned with.
var defaultGenerateOptions = driven.GenerateOptions{
	Temperature:   0.1,
	TopP:          0.9,
	TopK:          40,
	RepeatPenalty: 1.1,
	StopWords:     []string{"Human:", "Assistant:", "\n\n---"},
}

// Pipeline composes retrieval, reranking, confidence scoring, prompt
// assembly and the generation call into a single query-answer
// transaction. It is stateless across calls: all state lives in the
// vector store.
type Pipeline struct {
	embedder *Embedder
	store    driven.VectorStore
	reranker *Reranker
	llm      driven.LLMService
	prompts  driven.PromptStore

	topKRetrieval int
	topKRerank    int

	readyAttempts int
	readyBackoff  time.Duration
}

// PipelineOption configures the pipeline.
type PipelineOption func(*Pipeline)

// WithTopKRetrieval sets how many candidates retrieval returns.
func WithTopKRetrieval(k int) PipelineOption {
	return func(p *Pipeline) {
		if k > 0 {
			p.topKRetrieval = k
		}
	}
}

// WithTopKRerank sets how many candidates survive reranking.
func WithTopKRerank(k int) PipelineOption {
	return func(p *Pipeline) {
		if k > 0 {
			p.topKRerank = k
		}
	}
}

// WithPromptStore sets the store for customisable prompt templates.
func WithPromptStore(store driven.PromptStore) PipelineOption {
	return func(p *Pipeline) { p.prompts = store }
}

// WithReadiness tunes the EnsureReady retry policy.
func WithReadiness(attempts int, backoff time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if attempts > 0 {
			p.readyAttempts = attempts
		}
		if backoff > 0 {
			p.readyBackoff = backoff
		}
	}
}

// NewPipeline creates a query pipeline with injected collaborators.
// The reranker may wrap a nil scorer; the prompt store may be nil.
func NewPipeline(
	embedder *Embedder,
	store driven.VectorStore,
	reranker *Reranker,
	llm driven.LLMService,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		embedder:      embedder,
		store:         store,
		reranker:      reranker,
		llm:           llm,
		topKRetrieval: DefaultTopKRetrieval,
		topKRerank:    DefaultTopKRerank,
		readyAttempts: 5,
		readyBackoff:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.reranker == nil {
		p.reranker = NewReranker(nil)
	}
	return p
}

// Answer runs one question-answer transaction. A blank question and an
// unreachable embedding backend are the only failures that produce an
// error: without embeddings no retrieval is possible, so the outage
// must surface instead of degrading into an apology answer. All other
// failures resolve to a best-effort QueryResult.
func (p *Pipeline) Answer(
	ctx context.Context, question, documentID string, maxTokens int,
) (result domain.QueryResult, err error) {
	start := time.Now()

	if strings.TrimSpace(question) == "" {
		return domain.QueryResult{}, fmt.Errorf("answer: empty question: %w", domain.ErrInvalidInput)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Query pipeline panic: %v", r)
			result = internalFailureResult(start)
			err = nil
		}
	}()

	logger.Section("Query Execution")
	logger.Debug("Question: %q, document filter: %q, max tokens: %d", question, documentID, maxTokens)
	defer logger.Elapsed("query", start)

	candidates, retrieveErr := p.retrieve(ctx, question, documentID)
	if retrieveErr != nil {
		if errors.Is(retrieveErr, domain.ErrEmbeddingUnavailable) {
			return domain.QueryResult{}, fmt.Errorf("answer: %w", retrieveErr)
		}
		logger.Warn("Retrieval failed: %v", retrieveErr)
		return internalFailureResult(start), nil
	}

	contextText, sources := buildContext(candidates)
	logger.Debug("Context: %d chars from %d candidates", len(contextText), len(candidates))

	prompt := p.buildPrompt(question, contextText)
	answer := p.generate(ctx, prompt, maxTokens)

	return domain.QueryResult{
		Answer:         answer,
		Sources:        sources,
		Confidence:     confidence(candidates),
		ContextLength:  len(contextText),
		RetrievedCount: len(candidates),
		ProcessingTime: time.Since(start).Seconds(),
	}, nil
}

// retrieve embeds the question, searches the store and reranks the
// candidate set, keeping the top topKRerank in rank order.
func (p *Pipeline) retrieve(ctx context.Context, question, documentID string) ([]domain.Candidate, error) {
	queryVec, err := p.embedder.EmbedOne(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	var filter *domain.Filter
	if documentID != "" {
		filter = &domain.Filter{DocumentID: documentID}
	}

	hits, err := p.store.Search(ctx, queryVec, p.topKRetrieval, filter)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Debug("Retrieved %d candidates", len(hits))
	if len(hits) == 0 {
		return nil, nil
	}

	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
	}
	order := p.reranker.Rerank(ctx, question, texts)

	keep := p.topKRerank
	if keep > len(order) {
		keep = len(order)
	}

	candidates := make([]domain.Candidate, 0, keep)
	for _, idx := range order[:keep] {
		candidates = append(candidates, domain.Candidate{
			Text:     hits[idx].Text,
			Metadata: hits[idx].Metadata,
			Score:    1.0 - hits[idx].Distance,
			Rank:     len(candidates) + 1,
		})
	}
	return candidates, nil
}

// buildContext concatenates kept chunks as "[Source: {title}]\n{text}"
// joined by blank lines, in rank order, and collects source attribution.
func buildContext(candidates []domain.Candidate) (string, []domain.SourceRef) {
	if len(candidates) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(candidates))
	sources := make([]domain.SourceRef, 0, len(candidates))
	for _, c := range candidates {
		title := metaOr(c.Metadata, domain.MetaTitle, "Unknown")
		parts = append(parts, fmt.Sprintf("[Source: %s]\n%s", title, c.Text))
		sources = append(sources, domain.SourceRef{
			Title:        title,
			Filename:     metaOr(c.Metadata, domain.MetaFilename, "Unknown"),
			DocumentType: metaOr(c.Metadata, domain.MetaDocumentType, "unknown"),
			Score:        c.Score,
			Rank:         c.Rank,
		})
	}
	return strings.Join(parts, "\n\n"), sources
}

// buildPrompt picks one of exactly two templates, deterministically on
// context presence, and fills it in.
func (p *Pipeline) buildPrompt(question, contextText string) string {
	if strings.TrimSpace(contextText) != "" {
		return fmt.Sprintf(p.loadPrompt(driven.PromptAnswerWithContext, defaultContextPrompt), contextText, question)
	}
	return fmt.Sprintf(p.loadPrompt(driven.PromptAnswerGeneral, defaultGeneralPrompt), question)
}

// generate makes a single generation attempt and maps failures to the
// fixed fallback answers, logging the failure kind.
func (p *Pipeline) generate(ctx context.Context, prompt string, maxTokens int) string {
	if maxTokens <= 0 || maxTokens > MaxGenerationTokens {
		maxTokens = MaxGenerationTokens
	}

	opts := defaultGenerateOptions
	opts.MaxTokens = maxTokens

	raw, err := p.llm.Generate(ctx, prompt, opts)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLLMTimeout) || errors.Is(err, context.DeadlineExceeded):
			logger.Warn("Generation timed out: %v", err)
			return answerTimeout
		case errors.Is(err, domain.ErrLLMRequest):
			logger.Warn("Generation API error: %v", err)
			return answerAPIErr
		default:
			logger.Warn("Generation failed: %v", err)
			return answerFailed
		}
	}

	answer := postProcess(raw)
	if answer == "" {
		return answerEmpty
	}
	return answer
}

// postProcess strips echoed "Answer:"/"Response:" prefixes, collapses
// consecutive duplicate lines and hard-truncates with a marker.
func postProcess(text string) string {
	text = strings.TrimSpace(text)
	for _, prefix := range []string{"Answer:", "Response:"} {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(strings.TrimPrefix(text, prefix))
		}
	}

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	prev := ""
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && line != prev {
			cleaned = append(cleaned, line)
			prev = line
		}
	}
	text = strings.Join(cleaned, "\n\n")

	if len(text) > MaxAnswerChars {
		text = text[:MaxAnswerChars] + "..."
	}
	return strings.TrimSpace(text)
}

// confidence is the top-ranked candidate's similarity score clamped to
// [0,1] and rounded to two decimals. It is a retrieval-quality proxy,
// not a model-calibrated probability.
func confidence(candidates []domain.Candidate) float64 {
	if len(candidates) == 0 {
		return 0.0
	}
	score := candidates[0].Score
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return math.Round(score*100) / 100
}

func (p *Pipeline) loadPrompt(name, fallback string) string {
	if p.prompts == nil {
		return fallback
	}
	prompt, err := p.prompts.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}

func internalFailureResult(start time.Time) domain.QueryResult {
	return domain.QueryResult{
		Answer:         answerInternal,
		Sources:        nil,
		Confidence:     0.0,
		ProcessingTime: time.Since(start).Seconds(),
	}
}

func metaOr(meta map[string]string, key, fallback string) string {
	if v := meta[key]; v != "" {
		return v
	}
	return fallback
}

// EnsureReady verifies the pipeline's backends before the first query.
// The embedding client is checked first and its failure is fatal with
// no retry: the pipeline cannot index or answer without embeddings.
// The generation service is then pinged with doubling backoff, since
// it may still be loading its model.
func (p *Pipeline) EnsureReady(ctx context.Context) error {
	if p.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}
	if err := p.embedder.Ping(ctx); err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	if p.llm == nil {
		return domain.ErrLLMUnavailable
	}

	backoff := p.readyBackoff
	var lastErr error
	for attempt := 1; attempt <= p.readyAttempts; attempt++ {
		if err := p.llm.Ping(ctx); err == nil {
			logger.Info("Generation service ready (attempt %d)", attempt)
			return nil
		} else {
			lastErr = err
			logger.Debug("Generation service not ready (attempt %d): %v", attempt, err)
		}

		if attempt == p.readyAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("%w: %v", domain.ErrLLMUnavailable, lastErr)
}

// Status reports per-type record counts, embedding model information and
// generation readiness.
func (p *Pipeline) Status(ctx context.Context) (domain.Status, error) {
	total, err := p.store.Count(ctx, nil)
	if err != nil {
		return domain.Status{}, fmt.Errorf("status: %w", err)
	}
	legal, err := p.store.Count(ctx, &domain.Filter{DocumentType: domain.DocumentTypeLegalKnowledge})
	if err != nil {
		return domain.Status{}, fmt.Errorf("status: %w", err)
	}
	user, err := p.store.Count(ctx, &domain.Filter{DocumentType: domain.DocumentTypeUserUploaded})
	if err != nil {
		return domain.Status{}, fmt.Errorf("status: %w", err)
	}

	generationReady := false
	generationModel := ""
	if p.llm != nil {
		generationModel = p.llm.ModelName()
		generationReady = p.llm.Ping(ctx) == nil
	}

	return domain.Status{
		DocumentCounts: map[string]int{
			"total":                                 total,
			string(domain.DocumentTypeLegalKnowledge): legal,
			string(domain.DocumentTypeUserUploaded):   user,
		},
		EmbeddingModel:       p.embedder.ModelName(),
		EmbeddingDimensions:  p.embedder.Dimensions(),
		RerankerAvailable:    p.reranker.Available(),
		GenerationModel:      generationModel,
		GenerationModelReady: generationReady,
	}, nil
}
