package driving

import (
	"context"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

// CatalogService manages canonical titles and reports partition status.
type CatalogService interface {
	// List returns the titles of a partition in catalog order.
	List(ctx context.Context, partition domain.Partition) ([]string, error)

	// Import adds titles per partition, skipping ones already present.
	// It returns the number of titles submitted.
	Import(ctx context.Context, titles map[domain.Partition][]string) (int, error)

	// Status reports chunk and title counts for every partition.
	Status(ctx context.Context) ([]domain.PartitionStatus, error)
}
