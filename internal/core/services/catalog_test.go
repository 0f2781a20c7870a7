package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

func TestCatalogService_List(t *testing.T) {
	catalog := memory.NewTitleCatalog(map[domain.Partition][]string{
		domain.PartitionQuest: {"La quête du Dofus Ocre", "Le Bwork Mage"},
	})
	svc := NewCatalogService(catalog, nil)

	titles, err := svc.List(context.Background(), domain.PartitionQuest)
	require.NoError(t, err)
	assert.Equal(t, []string{"La quête du Dofus Ocre", "Le Bwork Mage"}, titles)

	_, err = svc.List(context.Background(), "raid")
	assert.ErrorIs(t, err, domain.ErrUnknownPartition)
}

func TestCatalogService_Import(t *testing.T) {
	catalog := memory.NewTitleCatalog(nil)
	svc := NewCatalogService(catalog, nil)

	n, err := svc.Import(context.Background(), map[domain.Partition][]string{
		domain.PartitionDungeon: {"Manoir de Katrapat", "Donjon des Larves"},
		domain.PartitionQuest:   {"Le Bwork Mage"},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	titles, _ := catalog.ListTitles(context.Background(), domain.PartitionDungeon)
	assert.Equal(t, []string{"Manoir de Katrapat", "Donjon des Larves"}, titles)
}

func TestCatalogService_Import_Rejections(t *testing.T) {
	_, err := NewCatalogService(&mockCatalog{}, nil).Import(context.Background(),
		map[domain.Partition][]string{domain.PartitionDungeon: {"x"}})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = NewCatalogService(memory.NewTitleCatalog(nil), nil).Import(context.Background(),
		map[domain.Partition][]string{"raid": {"x"}})
	assert.ErrorIs(t, err, domain.ErrUnknownPartition)
}

func TestCatalogService_Status(t *testing.T) {
	catalog := memory.NewTitleCatalog(map[domain.Partition][]string{
		domain.PartitionDungeon: {"Manoir de Katrapat"},
	})
	store := memory.NewChunkStore()
	require.NoError(t, store.Upsert(context.Background(), domain.PartitionDungeon, []domain.Chunk{
		{ID: "1", Title: "Manoir de Katrapat", Embedding: []float32{1}},
		{ID: "2", Title: "Manoir de Katrapat", Embedding: []float32{1}},
	}))
	svc := NewCatalogService(catalog, store)

	statuses, err := svc.Status(context.Background())

	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, domain.PartitionStatus{Partition: domain.PartitionDungeon, Chunks: 2, Titles: 1}, statuses[0])
	assert.Equal(t, domain.PartitionStatus{Partition: domain.PartitionQuest}, statuses[1])
}

func TestCatalogService_Status_StoreError(t *testing.T) {
	svc := NewCatalogService(&mockCatalog{}, &spyChunkStore{searchErr: errBackend})

	_, err := svc.Status(context.Background())

	assert.ErrorIs(t, err, errBackend)
}
