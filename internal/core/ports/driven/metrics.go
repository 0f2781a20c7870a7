package driven

import (
	"time"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

// Retrieval outcome labels.
const (
	OutcomeOK                = "ok"
	OutcomeEmpty             = "empty"
	OutcomeInvalidPartition  = "invalid_partition"
	OutcomeSubjectUnresolved = "subject_unresolved"
	OutcomeError             = "error"
)

// RetrievalMetrics records retrieval outcomes for observability.
type RetrievalMetrics interface {
	// ObserveRetrieval records one retrieve call.
	ObserveRetrieval(partition, outcome string, filtered bool, elapsed time.Duration)

	// ObserveResolution records one subject resolution and its best score.
	ObserveResolution(partition domain.Partition, matched bool, score int)

	// ObserveIngest records chunks written to a partition.
	ObserveIngest(partition domain.Partition, chunks int)
}
