package driving

import (
	"context"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

// IngestOptions controls an ingestion run.
type IngestOptions struct {
	// SkipErrors continues past files that fail to parse or embed.
	SkipErrors bool
}

// IngestService loads source pages into a partition.
type IngestService interface {
	// IngestFile splits, embeds and stores one page. It returns the number
	// of chunks written.
	IngestFile(ctx context.Context, partition domain.Partition, path string) (int, error)

	// IngestPaths ingests every supported file under the given files or directories.
	IngestPaths(ctx context.Context, partition domain.Partition, paths []string, opts IngestOptions) (*domain.IngestStats, error)

	// Supports reports whether a file has an extension the splitter reads.
	Supports(path string) bool
}
