package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driving"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService lists and imports canonical titles.
type CatalogService struct {
	catalog driven.TitleCatalog
	store   driven.ChunkStore
}

// NewCatalogService creates a new catalog service. store is optional and
// only used by Status.
func NewCatalogService(catalog driven.TitleCatalog, store driven.ChunkStore) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		store:   store,
	}
}

// List returns the titles of a partition in catalog order.
func (s *CatalogService) List(ctx context.Context, partition domain.Partition) ([]string, error) {
	if !partition.IsValid() {
		return nil, fmt.Errorf("catalog: %q: %w", partition, domain.ErrUnknownPartition)
	}
	titles, err := s.catalog.ListTitles(ctx, partition)
	if err != nil {
		return nil, fmt.Errorf("catalog: list %s: %w", partition, err)
	}
	return titles, nil
}

// Import adds titles to a writable catalog. Partitions are processed in
// sorted order so that repeated imports produce the same catalog order.
func (s *CatalogService) Import(ctx context.Context, titles map[domain.Partition][]string) (int, error) {
	writer, ok := s.catalog.(driven.CatalogWriter)
	if !ok {
		return 0, fmt.Errorf("catalog: backend is read-only: %w", domain.ErrUnsupportedType)
	}

	for p := range titles {
		if !p.IsValid() {
			return 0, fmt.Errorf("catalog: %q: %w", p, domain.ErrUnknownPartition)
		}
	}

	total := 0
	for _, p := range domain.AllPartitions() {
		list := titles[p]
		if len(list) == 0 {
			continue
		}
		if err := writer.AddTitles(ctx, p, list...); err != nil {
			return total, fmt.Errorf("catalog: import %s: %w", p, err)
		}
		total += len(list)
	}
	return total, nil
}

// Status reports chunk and title counts for every partition.
func (s *CatalogService) Status(ctx context.Context) ([]domain.PartitionStatus, error) {
	all := domain.AllPartitions()
	statuses := make([]domain.PartitionStatus, 0, len(all))
	for _, p := range all {
		st := domain.PartitionStatus{Partition: p}

		titles, err := s.catalog.ListTitles(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("catalog: status %s: %w", p, err)
		}
		st.Titles = len(titles)

		if s.store != nil {
			n, err := s.store.Count(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("catalog: status %s: %w", p, err)
			}
			st.Chunks = n
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}
