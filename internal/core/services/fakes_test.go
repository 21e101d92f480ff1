package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Choudharynipun/vakeel.ai/internal/core/domain"
	"github.com/Choudharynipun/vakeel.ai/internal/core/ports/driven"
)

// fakeEmbeddingClient produces deterministic vectors derived from the
// text, so similar texts map to similar vectors without a real model.
type fakeEmbeddingClient struct {
	mu      sync.Mutex
	calls   []string
	embedFn func(text string) ([]float32, error)
	pingErr error
}

func (f *fakeEmbeddingClient) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	if f.embedFn != nil {
		return f.embedFn(text)
	}
	return hashVector(text), nil
}

func (f *fakeEmbeddingClient) Dimensions() int              { return 4 }
func (f *fakeEmbeddingClient) ModelName() string            { return "fake-embed" }
func (f *fakeEmbeddingClient) Ping(_ context.Context) error { return f.pingErr }
func (f *fakeEmbeddingClient) Close() error                 { return nil }

// hashVector maps text to a small non-zero vector. Equal texts get
// equal vectors.
func hashVector(text string) []float32 {
	v := make([]float32, 4)
	for i, r := range text {
		v[i%4] += float32(r%31) + 1
	}
	for i := range v {
		v[i]++
	}
	return v
}

// memoryStore is an in-memory VectorStore for pipeline tests.
type memoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.Record

	upsertErr error
	searchErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]domain.Record)}
}

func (m *memoryStore) Upsert(_ context.Context, records []domain.Record) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.records[r.ID] = r
	}
	return nil
}

func (m *memoryStore) Search(
	_ context.Context, query []float32, k int, filter *domain.Filter,
) ([]driven.Hit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []driven.Hit
	for _, r := range m.records {
		if filter != nil && !filter.Matches(r.Metadata) {
			continue
		}
		hits = append(hits, driven.Hit{
			ID:       r.ID,
			Text:     r.Text,
			Metadata: r.Metadata,
			Distance: 1.0 - dot(query, r.Embedding),
		})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *memoryStore) Delete(_ context.Context, filter domain.Filter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, r := range m.records {
		if filter.Matches(r.Metadata) {
			delete(m.records, id)
			removed++
		}
	}
	return removed, nil
}

func (m *memoryStore) Count(_ context.Context, filter *domain.Filter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if filter == nil {
		return len(m.records), nil
	}
	n := 0
	for _, r := range m.records {
		if filter.Matches(r.Metadata) {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) Close() error { return nil }

// fakeLLM returns a canned completion or error.
type fakeLLM struct {
	mu         sync.Mutex
	prompts    []string
	lastOpts   driven.GenerateOptions
	response   string
	err        error
	pingErr    error
	pingBefore int // Ping fails this many times before succeeding
	pings      int
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.lastOpts = opts
	if f.err != nil {
		return "", f.err
	}
	if f.response == "" {
		return "The retrieved provisions support this conclusion.", nil
	}
	return f.response, nil
}

func (f *fakeLLM) ModelName() string { return "fake-llm" }

func (f *fakeLLM) Ping(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	if f.pings <= f.pingBefore {
		return domain.ErrLLMUnavailable
	}
	return f.pingErr
}

func (f *fakeLLM) Close() error { return nil }

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// fakeScorer scores candidates by a fixed logit map keyed on substring.
type fakeScorer struct {
	logits []float64
	err    error
}

func (f *fakeScorer) Score(_ context.Context, _ string, candidates []string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.logits != nil {
		return f.logits, nil
	}
	out := make([]float64, len(candidates))
	for i, c := range candidates {
		out[i] = float64(len(strings.Fields(c)))
	}
	return out, nil
}

func (f *fakeScorer) ModelName() string            { return "fake-reranker" }
func (f *fakeScorer) Ping(_ context.Context) error { return nil }
func (f *fakeScorer) Close() error                 { return nil }
