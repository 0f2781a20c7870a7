package driven

import (
	"context"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

// TitleCatalog lists the canonical subject titles of a partition.
type TitleCatalog interface {
	// ListTitles returns every title known for the partition.
	// Implementations return titles in insertion order so that callers
	// iterating the list get a stable order across calls.
	ListTitles(ctx context.Context, partition domain.Partition) ([]string, error)
}

// CatalogWriter adds titles to a catalog. Used by ingestion and import,
// never by retrieval.
type CatalogWriter interface {
	TitleCatalog

	// AddTitles appends titles not already present. Existing titles keep
	// their position.
	AddTitles(ctx context.Context, partition domain.Partition, titles ...string) error
}
