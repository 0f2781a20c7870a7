package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts found in vectors get that vector; everything else gets fallback.
type mockEmbeddingService struct {
	vectors  map[string][]float32
	fallback []float32
	err      error

	mu      sync.Mutex
	calls   int
	batches [][]string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches = append(m.batches, texts)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vectorFor(t)
	}
	return out, nil
}

func (m *mockEmbeddingService) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	if m.fallback != nil {
		return m.fallback
	}
	return []float32{1, 0, 0}
}

func (m *mockEmbeddingService) Dimensions() int {
	return len(m.vectorFor(""))
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return m.err
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// spyChunkStore implements driven.ChunkStore and records every request.
type spyChunkStore struct {
	hits      []domain.ScoredChunk
	searchErr error
	upsertErr error
	deleteErr error
	count     int

	requests []domain.SearchRequest
	upserted []domain.Chunk
	deleted  []string
}

func (s *spyChunkStore) Search(_ context.Context, req domain.SearchRequest) ([]domain.ScoredChunk, error) {
	s.requests = append(s.requests, req)
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.hits, nil
}

func (s *spyChunkStore) Upsert(_ context.Context, _ domain.Partition, chunks []domain.Chunk) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, chunks...)
	return nil
}

func (s *spyChunkStore) DeleteByOrigin(_ context.Context, _ domain.Partition, origin string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, origin)
	return nil
}

func (s *spyChunkStore) Count(_ context.Context, _ domain.Partition) (int, error) {
	return s.count, s.searchErr
}

func (s *spyChunkStore) Close() error {
	return nil
}

// spyResolver implements driving.SubjectResolver and counts calls.
type spyResolver struct {
	resolution domain.Resolution
	err        error
	calls      int
}

func (s *spyResolver) Resolve(_ context.Context, _ domain.Partition, subject string) (domain.Resolution, error) {
	s.calls++
	res := s.resolution
	res.Subject = subject
	return res, s.err
}

// mockCatalog implements driven.TitleCatalog (read-only).
type mockCatalog struct {
	titles map[domain.Partition][]string
	err    error
}

func (m *mockCatalog) ListTitles(_ context.Context, p domain.Partition) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.titles[p], nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response string
	err      error
	messages []driven.ChatMessage
	calls    int
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.calls++
	m.messages = messages
	return m.response, m.err
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return m.err
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockSplitter implements driven.SectionSplitter. It emits one section
// per non-empty line of the input.
type mockSplitter struct {
	title string
	err   error
}

func (m *mockSplitter) Split(_ context.Context, doc domain.SourceDocument) (*domain.SplitDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	split := &domain.SplitDocument{Title: m.title, Stem: stemOf(doc.Path)}
	for _, line := range splitLines(string(doc.Content)) {
		split.Sections = append(split.Sections, domain.Section{
			Heading:  line,
			Filename: line,
			Content:  "### " + line,
		})
	}
	return split, nil
}

func (m *mockSplitter) Extensions() []string {
	return []string{".html"}
}

// recordingMetrics implements driven.RetrievalMetrics.
type recordingMetrics struct {
	outcomes    []string
	filtered    []bool
	resolutions []bool
	scores      []int
	ingested    int
}

func (r *recordingMetrics) ObserveRetrieval(_ string, outcome string, filtered bool, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
	r.filtered = append(r.filtered, filtered)
}

func (r *recordingMetrics) ObserveResolution(_ domain.Partition, matched bool, score int) {
	r.resolutions = append(r.resolutions, matched)
	r.scores = append(r.scores, score)
}

func (r *recordingMetrics) ObserveIngest(_ domain.Partition, chunks int) {
	r.ingested += chunks
}

var errBackend = errors.New("backend unreachable")

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}
