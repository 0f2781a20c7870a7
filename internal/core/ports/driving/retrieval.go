package driving

import (
	"context"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

// RetrievalService answers retrieve_document calls.
type RetrievalService interface {
	// Retrieve returns ranked chunks for query within the named partition,
	// optionally scoped to the catalog title that subject resolves to.
	//
	// Semantic failures (unknown partition, unresolved subject) are returned
	// in the Result. The error is reserved for infrastructure failures.
	Retrieve(ctx context.Context, partition, query, subject string) (domain.Result, error)
}

// SubjectResolver maps a free-text subject name to a canonical catalog title.
type SubjectResolver interface {
	// Resolve scores subject against every title of the partition.
	// A Resolution with Matched=false is a normal outcome, not an error.
	Resolve(ctx context.Context, partition domain.Partition, subject string) (domain.Resolution, error)
}
