package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
)

const anericeQuery = "Comment battre anerice?"

// setupDungeonStore indexes two dungeons with three chunks each.
func setupDungeonStore(t *testing.T) *memory.ChunkStore {
	t.Helper()
	store := memory.NewChunkStore()
	chunks := []domain.Chunk{
		{ID: "bouftou-0", Title: "Donjon du Bouftou Royal", Text: "Le Bouftou Royal", Embedding: []float32{1, 0, 0}},
		{ID: "bouftou-1", Title: "Donjon du Bouftou Royal", Text: "Salle 1", Embedding: []float32{0.9, 0.1, 0}},
		{ID: "bouftou-2", Title: "Donjon du Bouftou Royal", Text: "Salle 2", Embedding: []float32{0.8, 0.2, 0}},
		{ID: "katrapat-0", Title: "Manoir de Katrapat", Text: "Anerice la Shushess", Embedding: []float32{0.7, 0.3, 0}},
		{ID: "katrapat-1", Title: "Manoir de Katrapat", Text: "Salle des chats", Embedding: []float32{0.1, 0.9, 0}},
		{ID: "katrapat-2", Title: "Manoir de Katrapat", Text: "Entrée", Embedding: []float32{0, 0, 1}},
	}
	require.NoError(t, store.Upsert(context.Background(), domain.PartitionDungeon, chunks))
	return store
}

func newTestRetrieval(t *testing.T, titles ...string) (*RetrievalService, *mockEmbeddingService) {
	t.Helper()
	embedder := &mockEmbeddingService{vectors: map[string][]float32{anericeQuery: {1, 0, 0}}}
	catalog := memory.NewTitleCatalog(map[domain.Partition][]string{domain.PartitionDungeon: titles})
	resolver := NewSubjectResolver(catalog, domain.DefaultThreshold)
	return NewRetrievalService(embedder, setupDungeonStore(t), resolver, domain.DefaultK), embedder
}

func TestNewRetrievalService_DefaultK(t *testing.T) {
	svc := NewRetrievalService(&mockEmbeddingService{}, &spyChunkStore{}, &spyResolver{}, 0)
	assert.Equal(t, domain.DefaultK, svc.K())
}

func TestRetrievalService_Retrieve_MisspelledSubject(t *testing.T) {
	svc, _ := newTestRetrieval(t, "Donjon du Bouftou Royal", "Manoir de Katrapat")

	result, err := svc.Retrieve(context.Background(), "dungeon", anericeQuery, "manoire de katrepa")

	require.NoError(t, err)
	require.False(t, result.IsErr())
	chunks := result.Chunks()
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Equal(t, "Manoir de Katrapat", c.Chunk.Title)
	}
	assert.Equal(t, "katrapat-0", chunks[0].Chunk.ID)
	for i := 1; i < len(chunks); i++ {
		assert.GreaterOrEqual(t, chunks[i-1].Score, chunks[i].Score)
	}
}

func TestRetrievalService_Retrieve_FilterCorrectness(t *testing.T) {
	svc, _ := newTestRetrieval(t, "Donjon du Bouftou Royal")

	result, err := svc.Retrieve(context.Background(), "dungeon", "salle", "Donjon du Boufto Royal")

	require.NoError(t, err)
	require.False(t, result.IsErr())
	require.NotEmpty(t, result.Chunks())
	for _, c := range result.Chunks() {
		assert.Equal(t, "Donjon du Bouftou Royal", c.Chunk.Title)
	}
}

func TestRetrievalService_Retrieve_EmptySubjectSkipsResolution(t *testing.T) {
	for _, subject := range []string{"", "   "} {
		resolver := &spyResolver{}
		store := &spyChunkStore{hits: []domain.ScoredChunk{{Chunk: domain.Chunk{ID: "a"}}}}
		svc := NewRetrievalService(&mockEmbeddingService{}, store, resolver, 4)

		result, err := svc.Retrieve(context.Background(), "quest", "ocre", subject)

		require.NoError(t, err)
		assert.False(t, result.IsErr())
		assert.Equal(t, 0, resolver.calls)
		require.Len(t, store.requests, 1)
		assert.False(t, store.requests[0].IsFiltered())
		assert.Equal(t, domain.PartitionQuest, store.requests[0].Partition)
	}
}

func TestRetrievalService_Retrieve_InvalidPartitionShortCircuits(t *testing.T) {
	embedder := &mockEmbeddingService{}
	store := &spyChunkStore{}
	resolver := &spyResolver{}
	svc := NewRetrievalService(embedder, store, resolver, 4)

	result, err := svc.Retrieve(context.Background(), "raid", "anything", "Bouftou")

	require.NoError(t, err)
	require.True(t, result.IsErr())
	assert.Equal(t, domain.FailureInvalidPartition, result.Failure().Kind)
	assert.Contains(t, result.Message(), `"raid"`)
	assert.Equal(t, 0, embedder.calls)
	assert.Empty(t, store.requests)
	assert.Equal(t, 0, resolver.calls)
}

func TestRetrievalService_Retrieve_PartitionIsCaseInsensitive(t *testing.T) {
	store := &spyChunkStore{}
	svc := NewRetrievalService(&mockEmbeddingService{}, store, &spyResolver{}, 4)

	result, err := svc.Retrieve(context.Background(), " Dungeon ", "q", "")

	require.NoError(t, err)
	assert.False(t, result.IsErr())
	require.Len(t, store.requests, 1)
	assert.Equal(t, domain.PartitionDungeon, store.requests[0].Partition)
}

func TestRetrievalService_Retrieve_UnresolvedSubject(t *testing.T) {
	embedder := &mockEmbeddingService{}
	store := &spyChunkStore{}
	resolver := &spyResolver{resolution: domain.Resolution{Score: 40}}
	svc := NewRetrievalService(embedder, store, resolver, 4)

	result, err := svc.Retrieve(context.Background(), "quest", "where", "unknown thing")

	require.NoError(t, err)
	require.True(t, result.IsErr())
	assert.Equal(t, domain.FailureSubjectUnresolved, result.Failure().Kind)
	assert.Contains(t, result.Message(), "quest")
	assert.Contains(t, result.Message(), "unknown thing")
	assert.Equal(t, 0, embedder.calls)
	assert.Empty(t, store.requests)
}

func TestRetrievalService_Retrieve_KBound(t *testing.T) {
	store := memory.NewChunkStore()
	chunks := make([]domain.Chunk, 10)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:        fmt.Sprintf("c%d", i),
			Title:     "Donjon des Larves",
			Embedding: []float32{1, float32(i) / 10, 0},
		}
	}
	require.NoError(t, store.Upsert(context.Background(), domain.PartitionDungeon, chunks))
	catalog := memory.NewTitleCatalog(map[domain.Partition][]string{
		domain.PartitionDungeon: {"Donjon des Larves"},
	})
	svc := NewRetrievalService(&mockEmbeddingService{}, store, NewSubjectResolver(catalog, 70), 3)

	result, err := svc.Retrieve(context.Background(), "dungeon", "larve", "donjon des larves")

	require.NoError(t, err)
	got := result.Chunks()
	require.Len(t, got, 3)
	assert.Equal(t, "c0", got[0].Chunk.ID)
	assert.Equal(t, "c1", got[1].Chunk.ID)
	assert.Equal(t, "c2", got[2].Chunk.ID)
}

func TestRetrievalService_Retrieve_TruncatesOversizedStoreResults(t *testing.T) {
	hits := make([]domain.ScoredChunk, 6)
	store := &spyChunkStore{hits: hits}
	svc := NewRetrievalService(&mockEmbeddingService{}, store, &spyResolver{}, 2)

	result, err := svc.Retrieve(context.Background(), "dungeon", "q", "")

	require.NoError(t, err)
	assert.Len(t, result.Chunks(), 2)
	assert.Equal(t, 2, store.requests[0].K)
}

func TestRetrievalService_Retrieve_ResolvedTitleWithoutChunks(t *testing.T) {
	svc, _ := newTestRetrieval(t, "Donjon des Larves")

	result, err := svc.Retrieve(context.Background(), "dungeon", anericeQuery, "donjon des larves")

	require.NoError(t, err)
	assert.False(t, result.IsErr())
	assert.Empty(t, result.Chunks())
	assert.NotNil(t, result.Chunks())
}

func TestRetrievalService_Retrieve_InfrastructureErrors(t *testing.T) {
	t.Run("embedding", func(t *testing.T) {
		svc := NewRetrievalService(&mockEmbeddingService{err: errBackend}, &spyChunkStore{}, &spyResolver{}, 4)
		_, err := svc.Retrieve(context.Background(), "dungeon", "q", "")
		assert.ErrorIs(t, err, errBackend)
	})

	t.Run("store", func(t *testing.T) {
		svc := NewRetrievalService(&mockEmbeddingService{}, &spyChunkStore{searchErr: errBackend}, &spyResolver{}, 4)
		_, err := svc.Retrieve(context.Background(), "dungeon", "q", "")
		assert.ErrorIs(t, err, errBackend)
	})

	t.Run("catalog", func(t *testing.T) {
		svc := NewRetrievalService(&mockEmbeddingService{}, &spyChunkStore{}, &spyResolver{err: errBackend}, 4)
		_, err := svc.Retrieve(context.Background(), "dungeon", "q", "bouftou")
		assert.ErrorIs(t, err, errBackend)
	})
}

func TestRetrievalService_Retrieve_RecordsOutcomes(t *testing.T) {
	svc, _ := newTestRetrieval(t, "Manoir de Katrapat", "Donjon des Larves")
	m := &recordingMetrics{}
	svc.SetMetrics(m)
	ctx := context.Background()

	_, _ = svc.Retrieve(ctx, "raid", "q", "")
	_, _ = svc.Retrieve(ctx, "dungeon", anericeQuery, "zzzzzz")
	_, _ = svc.Retrieve(ctx, "dungeon", anericeQuery, "donjon des larves")
	_, _ = svc.Retrieve(ctx, "dungeon", anericeQuery, "")

	assert.Equal(t, []string{
		driven.OutcomeInvalidPartition,
		driven.OutcomeSubjectUnresolved,
		driven.OutcomeEmpty,
		driven.OutcomeOK,
	}, m.outcomes)
	assert.Equal(t, []bool{false, true, true, false}, m.filtered)
}

func TestRetrievalService_Retrieve_Documents(t *testing.T) {
	svc, _ := newTestRetrieval(t, "Manoir de Katrapat")

	result, err := svc.Retrieve(context.Background(), "dungeon", anericeQuery, "Manoir de Katrapat")
	require.NoError(t, err)

	docs := result.Documents()
	require.Len(t, docs, 3)
	assert.Equal(t, "Anerice la Shushess", docs[0].PageContent)
	assert.Equal(t, "Manoir de Katrapat", docs[0].Metadata[domain.MetaTitle])
	assert.Equal(t, "katrapat-0", docs[0].Metadata["id"])
}
