package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testChunks() []domain.Chunk {
	return []domain.Chunk{
		{
			ID: "k0", Title: "Manoir de Katrapat", Text: "Anerice", Origin: "katrapat.html", Position: 0,
			Embedding: []float32{1, 0, 0},
			Metadata:  map[string]any{domain.MetaURL: "https://www.dofuspourlesnoobs.com/katrapat.html"},
		},
		{ID: "k1", Title: "Manoir de Katrapat", Text: "Salle", Position: 1, Embedding: []float32{0.5, 0.5, 0}},
		{ID: "b0", Title: "Donjon du Bouftou Royal", Text: "Bouftou", Embedding: []float32{0.9, 0.1, 0}},
	}
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "dpln.db"), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_MigrationsRecordVersion(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err, "reopening must not re-run applied migrations")
	require.NoError(t, reopened.Close())
}

// ==================== Chunk Store Tests ====================

func TestChunkStore_UpsertAndSearch(t *testing.T) {
	store := setupTestStore(t)
	chunks := store.ChunkStore()
	ctx := context.Background()

	require.NoError(t, chunks.Upsert(ctx, domain.PartitionDungeon, testChunks()))

	hits, err := chunks.Search(ctx, domain.SearchRequest{
		Partition: domain.PartitionDungeon,
		Vector:    []float32{1, 0, 0},
		K:         2,
	})

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "k0", hits[0].Chunk.ID)
	assert.Equal(t, "b0", hits[1].Chunk.ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, domain.PartitionDungeon, hits[0].Chunk.Partition)
	assert.Equal(t, "katrapat.html", hits[0].Chunk.Origin)
	assert.Equal(t, "https://www.dofuspourlesnoobs.com/katrapat.html", hits[0].Chunk.MetadataString(domain.MetaURL))
}

func TestChunkStore_Search_TitleFilter(t *testing.T) {
	store := setupTestStore(t)
	chunks := store.ChunkStore()
	ctx := context.Background()
	require.NoError(t, chunks.Upsert(ctx, domain.PartitionDungeon, testChunks()))

	hits, err := chunks.Search(ctx, domain.SearchRequest{
		Partition:   domain.PartitionDungeon,
		Vector:      []float32{0.9, 0.1, 0},
		K:           4,
		TitleFilter: "Manoir de Katrapat",
	})

	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.Equal(t, "Manoir de Katrapat", h.Chunk.Title)
	}

	hits, err = chunks.Search(ctx, domain.SearchRequest{
		Partition:   domain.PartitionDungeon,
		Vector:      []float32{1, 0, 0},
		K:           4,
		TitleFilter: "Manoir de katrapat",
	})
	require.NoError(t, err)
	assert.Empty(t, hits, "title filter is exact")
}

func TestChunkStore_Search_PartitionIsolation(t *testing.T) {
	store := setupTestStore(t)
	chunks := store.ChunkStore()
	ctx := context.Background()
	require.NoError(t, chunks.Upsert(ctx, domain.PartitionDungeon, testChunks()))

	hits, err := chunks.Search(ctx, domain.SearchRequest{
		Partition: domain.PartitionQuest,
		Vector:    []float32{1, 0, 0},
		K:         4,
	})

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestChunkStore_Upsert_Replaces(t *testing.T) {
	store := setupTestStore(t)
	chunks := store.ChunkStore()
	ctx := context.Background()
	require.NoError(t, chunks.Upsert(ctx, domain.PartitionDungeon, testChunks()))

	updated := testChunks()[:1]
	updated[0].Text = "Anerice la Shushess"
	require.NoError(t, chunks.Upsert(ctx, domain.PartitionDungeon, updated))

	n, err := chunks.Count(ctx, domain.PartitionDungeon)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	hits, err := chunks.Search(ctx, domain.SearchRequest{
		Partition: domain.PartitionDungeon, Vector: []float32{1, 0, 0}, K: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Anerice la Shushess", hits[0].Chunk.Text)
}

func TestChunkStore_DeleteByOrigin(t *testing.T) {
	store := setupTestStore(t)
	chunks := store.ChunkStore()
	ctx := context.Background()
	require.NoError(t, chunks.Upsert(ctx, domain.PartitionDungeon, testChunks()))
	require.NoError(t, chunks.Upsert(ctx, domain.PartitionQuest, testChunks()[:1]))

	require.NoError(t, chunks.DeleteByOrigin(ctx, domain.PartitionDungeon, "katrapat.html"))

	n, err := chunks.Count(ctx, domain.PartitionDungeon)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = chunks.Count(ctx, domain.PartitionQuest)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "other partitions keep their chunks")

	err = chunks.DeleteByOrigin(ctx, domain.Partition("item"), "katrapat.html")
	assert.ErrorIs(t, err, domain.ErrUnknownPartition)
}

func TestChunkStore_UnknownPartition(t *testing.T) {
	chunks := setupTestStore(t).ChunkStore()

	_, err := chunks.Search(context.Background(), domain.SearchRequest{Partition: "raid"})
	assert.ErrorIs(t, err, domain.ErrUnknownPartition)

	err = chunks.Upsert(context.Background(), "raid", testChunks())
	assert.ErrorIs(t, err, domain.ErrUnknownPartition)
}

// ==================== Title Catalog Tests ====================

func TestTitleCatalog_AddAndList(t *testing.T) {
	catalog := setupTestStore(t).TitleCatalog()
	ctx := context.Background()

	require.NoError(t, catalog.AddTitles(ctx, domain.PartitionDungeon, "Manoir de Katrapat", "Donjon des Larves"))
	require.NoError(t, catalog.AddTitles(ctx, domain.PartitionDungeon, "Donjon des Larves", "", "Donjon du Bouftou Royal"))

	titles, err := catalog.ListTitles(ctx, domain.PartitionDungeon)
	require.NoError(t, err)
	assert.Equal(t, []string{"Manoir de Katrapat", "Donjon des Larves", "Donjon du Bouftou Royal"}, titles)

	titles, err = catalog.ListTitles(ctx, domain.PartitionQuest)
	require.NoError(t, err)
	assert.Empty(t, titles)
}

func TestTitleCatalog_UnknownPartition(t *testing.T) {
	catalog := setupTestStore(t).TitleCatalog()

	err := catalog.AddTitles(context.Background(), "raid", "x")
	assert.ErrorIs(t, err, domain.ErrUnknownPartition)
}

// ==================== Helper Function Tests ====================

func TestFloat32BlobRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
