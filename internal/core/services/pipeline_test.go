package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Choudharynipun/vakeel.ai/internal/chunker"
	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
)

func newTestPipeline(store *memoryStore, llm *fakeLLM, opts ...PipelineOption) *Pipeline {
	embedder := NewEmbedder(&fakeEmbeddingClient{})
	return NewPipeline(embedder, store, NewReranker(nil), llm, opts...)
}

// seedDocument chunks and indexes text so the store holds real records
// with real embeddings from the fake client.
func seedDocument(t *testing.T, store *memoryStore, id, text string, docType domain.DocumentType, title string) {
	t.Helper()
	ch := chunker.New(chunker.WithChunkSize(50), chunker.WithOverlap(10))
	idx := NewIndexer(ch, NewEmbedder(&fakeEmbeddingClient{}), store)
	err := idx.IndexDocument(context.Background(), id, text, docType,
		map[string]string{domain.MetaTitle: title, domain.MetaFilename: id + ".txt"})
	require.NoError(t, err)
}

func sectionsText(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("section%d", i)
	}
	return strings.Join(parts, " ")
}

func TestAnswerRejectsBlankQuestion(t *testing.T) {
	p := newTestPipeline(newMemoryStore(), &fakeLLM{})

	_, err := p.Answer(context.Background(), "   ", "", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnswerEndToEnd(t *testing.T) {
	store := newMemoryStore()
	seedDocument(t, store, "legal_evidence_act", sectionsText(200),
		domain.DocumentTypeLegalKnowledge, "Indian Evidence Act, 1872")

	llm := &fakeLLM{response: "Section 65B governs electronic records."}
	p := newTestPipeline(store, llm)

	result, err := p.Answer(context.Background(), "What governs electronic records?", "", 500)
	require.NoError(t, err)

	assert.Equal(t, "Section 65B governs electronic records.", result.Answer)
	assert.NotEmpty(t, result.Sources)
	assert.LessOrEqual(t, len(result.Sources), DefaultTopKRerank)
	assert.Greater(t, result.RetrievedCount, 0)
	assert.Greater(t, result.ContextLength, 0)
	assert.GreaterOrEqual(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 1.0)
	assert.GreaterOrEqual(t, result.ProcessingTime, 0.0)

	for i, s := range result.Sources {
		assert.Equal(t, i+1, s.Rank)
		assert.Equal(t, "Indian Evidence Act, 1872", s.Title)
	}

	// The context-bearing template was used.
	prompt := llm.lastPrompt()
	assert.Contains(t, prompt, "[Source: Indian Evidence Act, 1872]")
	assert.Contains(t, prompt, "Context:")
}

func TestAnswerEmptyStoreUsesGeneralTemplate(t *testing.T) {
	llm := &fakeLLM{response: "General legal guidance follows."}
	p := newTestPipeline(newMemoryStore(), llm)

	result, err := p.Answer(context.Background(), "What is anticipatory bail?", "", 0)
	require.NoError(t, err)

	assert.Equal(t, "General legal guidance follows.", result.Answer)
	assert.Empty(t, result.Sources)
	assert.Equal(t, 0, result.RetrievedCount)
	assert.Equal(t, 0, result.ContextLength)
	assert.Equal(t, 0.0, result.Confidence)

	prompt := llm.lastPrompt()
	assert.NotContains(t, prompt, "Context:")
	assert.Contains(t, prompt, "expertise in Indian law")
}

func TestAnswerDocumentFilterScopesRetrieval(t *testing.T) {
	store := newMemoryStore()
	seedDocument(t, store, "doc_alpha", sectionsText(60), domain.DocumentTypeUserUploaded, "Alpha Agreement")
	seedDocument(t, store, "doc_beta", sectionsText(60), domain.DocumentTypeUserUploaded, "Beta Agreement")

	p := newTestPipeline(store, &fakeLLM{})

	result, err := p.Answer(context.Background(), "termination clause", "doc_alpha", 0)
	require.NoError(t, err)

	require.NotEmpty(t, result.Sources)
	for _, s := range result.Sources {
		assert.Equal(t, "Alpha Agreement", s.Title)
	}
}

func TestAnswerTimeoutKeepsSourcesAndConfidence(t *testing.T) {
	store := newMemoryStore()
	seedDocument(t, store, "legal_crpc", sectionsText(80),
		domain.DocumentTypeLegalKnowledge, "Code of Criminal Procedure, 1973")

	llm := &fakeLLM{err: domain.ErrLLMTimeout}
	p := newTestPipeline(store, llm)

	result, err := p.Answer(context.Background(), "How is an FIR registered?", "", 0)
	require.NoError(t, err)

	assert.Equal(t, answerTimeout, result.Answer)
	assert.NotEmpty(t, result.Sources, "retrieval results survive a generation failure")
	assert.Greater(t, result.Confidence, 0.0)
}

func TestAnswerGenerationFailureKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", domain.ErrLLMTimeout, answerTimeout},
		{"deadline", context.DeadlineExceeded, answerTimeout},
		{"api", domain.ErrLLMRequest, answerAPIErr},
		{"other", fmt.Errorf("weird failure"), answerFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(newMemoryStore(), &fakeLLM{err: tt.err})

			result, err := p.Answer(context.Background(), "any question", "", 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Answer)
		})
	}
}

func TestAnswerEmptyGenerationGetsApology(t *testing.T) {
	p := newTestPipeline(newMemoryStore(), &fakeLLM{response: "  \n  "})

	result, err := p.Answer(context.Background(), "any question", "", 0)
	require.NoError(t, err)
	assert.Equal(t, answerEmpty, result.Answer)
}

func TestAnswerStoreFailureIsInternalFallback(t *testing.T) {
	store := newMemoryStore()
	store.searchErr = fmt.Errorf("database is locked")

	p := newTestPipeline(store, &fakeLLM{})

	result, err := p.Answer(context.Background(), "any question", "", 0)
	require.NoError(t, err)
	assert.Equal(t, answerInternal, result.Answer)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestAnswerClampsTokenBudget(t *testing.T) {
	llm := &fakeLLM{}
	p := newTestPipeline(newMemoryStore(), llm)
	ctx := context.Background()

	_, err := p.Answer(ctx, "q", "", 5000)
	require.NoError(t, err)
	assert.Equal(t, MaxGenerationTokens, llm.lastOpts.MaxTokens)

	_, err = p.Answer(ctx, "q", "", 0)
	require.NoError(t, err)
	assert.Equal(t, MaxGenerationTokens, llm.lastOpts.MaxTokens)

	_, err = p.Answer(ctx, "q", "", 300)
	require.NoError(t, err)
	assert.Equal(t, 300, llm.lastOpts.MaxTokens)
}

func TestAnswerUsesTunedGenerationDefaults(t *testing.T) {
	llm := &fakeLLM{}
	p := newTestPipeline(newMemoryStore(), llm)

	_, err := p.Answer(context.Background(), "q", "", 0)
	require.NoError(t, err)

	assert.InDelta(t, 0.1, llm.lastOpts.Temperature, 1e-9)
	assert.InDelta(t, 0.9, llm.lastOpts.TopP, 1e-9)
	assert.Equal(t, 40, llm.lastOpts.TopK)
	assert.InDelta(t, 1.1, llm.lastOpts.RepeatPenalty, 1e-9)
	assert.Contains(t, llm.lastOpts.StopWords, "Human:")
}

func TestRerankerOrdersPipelineCandidates(t *testing.T) {
	store := newMemoryStore()
	seedDocument(t, store, "doc_one", sectionsText(200), domain.DocumentTypeUserUploaded, "Doc One")

	embedder := NewEmbedder(&fakeEmbeddingClient{})
	p := NewPipeline(embedder, store, NewReranker(&fakeScorer{}), &fakeLLM{},
		WithTopKRerank(3))

	result, err := p.Answer(context.Background(), "section", "", 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Sources), 3)
}

func TestPostProcessStripsPrefixes(t *testing.T) {
	assert.Equal(t, "The plea is maintainable.", postProcess("Answer: The plea is maintainable."))
	assert.Equal(t, "The plea is maintainable.", postProcess("Response: The plea is maintainable."))
	assert.Equal(t, "No prefix here.", postProcess("No prefix here."))
}

func TestPostProcessCollapsesDuplicateLines(t *testing.T) {
	in := "Same line.\nSame line.\nDifferent line.\nSame line."
	got := postProcess(in)
	assert.Equal(t, "Same line.\n\nDifferent line.\n\nSame line.", got)
}

func TestPostProcessTruncatesLongAnswers(t *testing.T) {
	long := strings.Repeat("a", MaxAnswerChars+500)
	got := postProcess(long)
	assert.Len(t, got, MaxAnswerChars+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestConfidenceClampAndRound(t *testing.T) {
	mk := func(score float64) []domain.Candidate {
		return []domain.Candidate{{Score: score, Rank: 1}}
	}
	assert.Equal(t, 0.0, confidence(nil))
	assert.Equal(t, 0.0, confidence(mk(-0.4)))
	assert.Equal(t, 1.0, confidence(mk(1.7)))
	assert.Equal(t, 0.87, confidence(mk(0.8712)))
	assert.Equal(t, 0.88, confidence(mk(0.875)))
}

func TestEnsureReadyRetriesWithBackoff(t *testing.T) {
	llm := &fakeLLM{pingBefore: 2}
	p := newTestPipeline(newMemoryStore(), llm,
		WithReadiness(5, time.Millisecond))

	err := p.EnsureReady(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, llm.pings)
}

func TestEnsureReadyGivesUpAfterAttempts(t *testing.T) {
	llm := &fakeLLM{pingBefore: 100}
	p := newTestPipeline(newMemoryStore(), llm,
		WithReadiness(3, time.Millisecond))

	err := p.EnsureReady(context.Background())
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Equal(t, 3, llm.pings)
}

func TestEnsureReadyHonoursContext(t *testing.T) {
	llm := &fakeLLM{pingBefore: 100}
	p := newTestPipeline(newMemoryStore(), llm,
		WithReadiness(10, 50*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := p.EnsureReady(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEnsureReadyEmbeddingFailureIsImmediate(t *testing.T) {
	client := &fakeEmbeddingClient{pingErr: fmt.Errorf("dial tcp 127.0.0.1:11434: connection refused")}
	llm := &fakeLLM{}
	p := NewPipeline(NewEmbedder(client), newMemoryStore(), NewReranker(nil), llm,
		WithReadiness(5, time.Millisecond))

	err := p.EnsureReady(context.Background())

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	// No generation ping happens once the embedding check fails.
	assert.Equal(t, 0, llm.pings)
}

func TestAnswerDeadEmbeddingBackendIsAnError(t *testing.T) {
	client := &fakeEmbeddingClient{embedFn: func(string) ([]float32, error) {
		return nil, fmt.Errorf("%w: dial tcp 127.0.0.1:11434: connection refused", domain.ErrEmbeddingUnavailable)
	}}
	p := NewPipeline(NewEmbedder(client), newMemoryStore(), NewReranker(nil), &fakeLLM{})

	result, err := p.Answer(context.Background(), "What is anticipatory bail?", "", 0)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Empty(t, result.Answer)
}

func TestStatusReportsCountsAndModels(t *testing.T) {
	store := newMemoryStore()
	seedDocument(t, store, "legal_ipc", sectionsText(60),
		domain.DocumentTypeLegalKnowledge, "Indian Penal Code, 1860")
	seedDocument(t, store, "doc_upload", sectionsText(60),
		domain.DocumentTypeUserUploaded, "Rental Agreement")

	p := newTestPipeline(store, &fakeLLM{})

	status, err := p.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, status.DocumentCounts["total"],
		status.DocumentCounts[string(domain.DocumentTypeLegalKnowledge)]+
			status.DocumentCounts[string(domain.DocumentTypeUserUploaded)])
	assert.Greater(t, status.DocumentCounts[string(domain.DocumentTypeLegalKnowledge)], 0)
	assert.Greater(t, status.DocumentCounts[string(domain.DocumentTypeUserUploaded)], 0)
	assert.Equal(t, "fake-embed", status.EmbeddingModel)
	assert.Equal(t, 4, status.EmbeddingDimensions)
	assert.False(t, status.RerankerAvailable)
	assert.Equal(t, "fake-llm", status.GenerationModel)
	assert.True(t, status.GenerationModelReady)
}
