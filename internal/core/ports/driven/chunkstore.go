package driven

import (
	"context"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

// ChunkStore is a vector index partitioned by content type.
// Retrieval only calls Search. Upsert, DeleteByOrigin, Count and Close
// exist for ingestion and status reporting.
//
// Implementations must be safe for concurrent readers.
type ChunkStore interface {
	// Search returns up to req.K chunks from req.Partition ranked by
	// descending cosine similarity to req.Vector.
	//
	// When req.TitleFilter is set, only chunks whose title equals it exactly
	// are candidates, and K is satisfied from within that subset. An empty
	// subset yields an empty slice, not an error.
	Search(ctx context.Context, req domain.SearchRequest) ([]domain.ScoredChunk, error)

	// Upsert inserts or replaces chunks by ID within the partition.
	Upsert(ctx context.Context, partition domain.Partition, chunks []domain.Chunk) error

	// DeleteByOrigin removes every chunk of the partition that was split
	// from origin. Re-ingestion calls it so that sections dropped from a
	// page do not outlive it. Deleting from an empty partition is not an error.
	DeleteByOrigin(ctx context.Context, partition domain.Partition, origin string) error

	// Count returns the number of chunks stored in the partition.
	Count(ctx context.Context, partition domain.Partition) (int, error)

	// Close releases resources.
	Close() error
}
