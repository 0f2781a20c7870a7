package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driving"
	"github.com/custodia-labs/dpln-rag/internal/logger"
)

// Ensure SubjectResolver implements the interface.
var _ driving.SubjectResolver = (*SubjectResolver)(nil)

// SubjectResolver fuzzy-matches subject names against a title catalog.
type SubjectResolver struct {
	catalog   driven.TitleCatalog
	threshold int
	metrics   driven.RetrievalMetrics
}

// NewSubjectResolver creates a resolver. A threshold outside 1-100
// falls back to domain.DefaultThreshold.
func NewSubjectResolver(catalog driven.TitleCatalog, threshold int) *SubjectResolver {
	if threshold <= 0 || threshold > 100 {
		threshold = domain.DefaultThreshold
	}
	return &SubjectResolver{
		catalog:   catalog,
		threshold: threshold,
	}
}

// SetMetrics sets the recorder for resolution outcomes.
func (r *SubjectResolver) SetMetrics(m driven.RetrievalMetrics) {
	r.metrics = m
}

// Threshold returns the confidence floor in use.
func (r *SubjectResolver) Threshold() int {
	return r.threshold
}

// Resolve returns the best-scoring catalog title for subject.
// The first title seen wins ties. Scores below the threshold are NoMatch.
func (r *SubjectResolver) Resolve(
	ctx context.Context, partition domain.Partition, subject string,
) (domain.Resolution, error) {
	res := domain.Resolution{Subject: subject}

	if strings.TrimSpace(subject) == "" {
		return res, fmt.Errorf("resolve: empty subject: %w", domain.ErrInvalidInput)
	}

	titles, err := r.catalog.ListTitles(ctx, partition)
	if err != nil {
		return res, fmt.Errorf("resolve: list %s titles: %w", partition, err)
	}
	logger.Debug("Catalog %s: %d titles", partition.Catalog(), len(titles))

	var (
		best      string
		bestScore int
		found     bool
	)
	for _, title := range titles {
		score := SimilarityRatio(subject, title)
		if !found || score > bestScore {
			best, bestScore, found = title, score, true
		}
	}
	res.Score = bestScore

	if !found || bestScore < r.threshold {
		logger.Info("No %s matches %q (best %q at %d, floor %d)",
			partition.EntityKind(), subject, best, bestScore, r.threshold)
		r.observe(partition, false, bestScore)
		return res, nil
	}

	res.Title = best
	res.Matched = true
	logger.Info("Resolved %q to %q (score %d)", subject, best, bestScore)
	r.observe(partition, true, bestScore)
	return res, nil
}

func (r *SubjectResolver) observe(p domain.Partition, matched bool, score int) {
	if r.metrics != nil {
		r.metrics.ObserveResolution(p, matched, score)
	}
}
