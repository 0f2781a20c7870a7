// Package ranking scores stored chunks against a query vector.
// It is shared by the stores that rank in-process (memory, SQLite).
package ranking

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b.
// Zero vectors score 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%d vs %d: %w", len(a), len(b), domain.ErrDimensionMismatch)
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// TopK ranks chunks by descending cosine similarity to query and keeps
// the first k. Equal scores keep their input order.
func TopK(query []float32, chunks []domain.Chunk, k int) ([]domain.ScoredChunk, error) {
	scored := make([]domain.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		score, err := Cosine(query, c.Embedding)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", c.ID, err)
		}
		scored = append(scored, domain.ScoredChunk{Chunk: c, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// MatchesTitle reports whether a chunk passes the request's title filter.
func MatchesTitle(req domain.SearchRequest, c domain.Chunk) bool {
	return !req.IsFiltered() || c.Title == req.TitleFilter
}
