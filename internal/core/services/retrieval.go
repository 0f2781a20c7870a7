package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driving"
	"github.com/custodia-labs/dpln-rag/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService resolves subjects and runs partitioned similarity search.
type RetrievalService struct {
	embedder driven.EmbeddingService
	store    driven.ChunkStore
	resolver driving.SubjectResolver
	metrics  driven.RetrievalMetrics
	k        int
}

// NewRetrievalService creates a new retrieval service.
// A non-positive k falls back to domain.DefaultK.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	store driven.ChunkStore,
	resolver driving.SubjectResolver,
	k int,
) *RetrievalService {
	if k <= 0 {
		k = domain.DefaultK
	}
	return &RetrievalService{
		embedder: embedder,
		store:    store,
		resolver: resolver,
		k:        k,
	}
}

// SetMetrics sets the recorder for retrieval outcomes.
func (s *RetrievalService) SetMetrics(m driven.RetrievalMetrics) {
	s.metrics = m
}

// K returns the result cap in use.
func (s *RetrievalService) K() int {
	return s.k
}

// Retrieve validates the partition, resolves the subject when one is given,
// embeds the query and searches the partition.
func (s *RetrievalService) Retrieve(
	ctx context.Context, partitionName, query, subject string,
) (domain.Result, error) {
	start := time.Now()
	logger.Section("Retrieve")
	logger.Debug("Type: %q, Query: %q, Subject: %q", partitionName, query, subject)

	partition, ok := domain.ParsePartition(partitionName)
	if !ok {
		logger.Info("Rejected unknown content type %q", partitionName)
		s.observe(partitionName, driven.OutcomeInvalidPartition, false, start)
		return domain.InvalidPartition(partitionName), nil
	}

	req := domain.SearchRequest{
		Partition: partition,
		K:         s.k,
	}

	subject = strings.TrimSpace(subject)
	if subject != "" {
		res, err := s.resolver.Resolve(ctx, partition, subject)
		if err != nil {
			s.observe(partition.String(), driven.OutcomeError, true, start)
			return domain.Result{}, fmt.Errorf("retrieve: %w", err)
		}
		if !res.Matched {
			s.observe(partition.String(), driven.OutcomeSubjectUnresolved, true, start)
			return domain.SubjectUnresolved(partition, subject), nil
		}
		req.TitleFilter = res.Title
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.observe(partition.String(), driven.OutcomeError, req.IsFiltered(), start)
		return domain.Result{}, fmt.Errorf("retrieve: embed query: %w", err)
	}
	req.Vector = vector
	logger.Debug("Query embedded: %d dimensions", len(vector))

	chunks, err := s.store.Search(ctx, req)
	if err != nil {
		s.observe(partition.String(), driven.OutcomeError, req.IsFiltered(), start)
		return domain.Result{}, fmt.Errorf("retrieve: search %s: %w", partition.Collection(), err)
	}
	if len(chunks) > s.k {
		chunks = chunks[:s.k]
	}

	outcome := driven.OutcomeOK
	if len(chunks) == 0 {
		outcome = driven.OutcomeEmpty
		if req.IsFiltered() {
			logger.Warn("Title %q is in catalog %s but has no indexed chunks",
				req.TitleFilter, partition.Catalog())
		}
	}

	logger.Info("Retrieved %d chunks from %s in %v", len(chunks), partition.Collection(), time.Since(start))
	s.observe(partition.String(), outcome, req.IsFiltered(), start)
	return domain.OK(chunks), nil
}

func (s *RetrievalService) observe(partition, outcome string, filtered bool, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveRetrieval(partition, outcome, filtered, time.Since(start))
	}
}
