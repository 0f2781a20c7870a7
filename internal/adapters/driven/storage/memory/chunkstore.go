package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/storage/ranking"
	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory partitioned vector index with brute-force ranking.
type ChunkStore struct {
	mu         sync.RWMutex
	partitions map[domain.Partition][]domain.Chunk
	positions  map[domain.Partition]map[string]int
}

// NewChunkStore creates a new empty in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		partitions: make(map[domain.Partition][]domain.Chunk),
		positions:  make(map[domain.Partition]map[string]int),
	}
}

// Search filters the partition by title, then ranks what remains.
func (s *ChunkStore) Search(_ context.Context, req domain.SearchRequest) ([]domain.ScoredChunk, error) {
	if !req.Partition.IsValid() {
		return nil, fmt.Errorf("memory: %q: %w", req.Partition, domain.ErrUnknownPartition)
	}

	s.mu.RLock()
	candidates := make([]domain.Chunk, 0, len(s.partitions[req.Partition]))
	for _, c := range s.partitions[req.Partition] {
		if ranking.MatchesTitle(req, c) {
			candidates = append(candidates, c)
		}
	}
	s.mu.RUnlock()

	hits, err := ranking.TopK(req.Vector, candidates, req.K)
	if err != nil {
		return nil, fmt.Errorf("memory: %w", err)
	}
	return hits, nil
}

// Upsert inserts or replaces chunks by ID.
func (s *ChunkStore) Upsert(_ context.Context, partition domain.Partition, chunks []domain.Chunk) error {
	if !partition.IsValid() {
		return fmt.Errorf("memory: %q: %w", partition, domain.ErrUnknownPartition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.positions[partition]
	if !ok {
		pos = make(map[string]int)
		s.positions[partition] = pos
	}

	for _, c := range chunks {
		c.Partition = partition
		c.Embedding = append([]float32(nil), c.Embedding...)
		if i, exists := pos[c.ID]; exists {
			s.partitions[partition][i] = c
			continue
		}
		pos[c.ID] = len(s.partitions[partition])
		s.partitions[partition] = append(s.partitions[partition], c)
	}
	return nil
}

// DeleteByOrigin drops the partition's chunks from origin and reindexes
// the survivors.
func (s *ChunkStore) DeleteByOrigin(_ context.Context, partition domain.Partition, origin string) error {
	if !partition.IsValid() {
		return fmt.Errorf("memory: %q: %w", partition, domain.ErrUnknownPartition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.partitions[partition][:0]
	pos := make(map[string]int, len(s.partitions[partition]))
	for _, c := range s.partitions[partition] {
		if c.Origin == origin {
			continue
		}
		pos[c.ID] = len(kept)
		kept = append(kept, c)
	}
	s.partitions[partition] = kept
	s.positions[partition] = pos
	return nil
}

// Count returns the number of chunks in the partition.
func (s *ChunkStore) Count(_ context.Context, partition domain.Partition) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.partitions[partition]), nil
}

// Close is a no-op.
func (s *ChunkStore) Close() error {
	return nil
}
