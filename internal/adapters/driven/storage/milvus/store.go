// Package milvus provides a ChunkStore backed by a Milvus server.
//
// Each partition maps to its own collection with an HNSW cosine index on the
// embedding field. The title filter becomes a boolean expression evaluated
// by Milvus before ranking.
package milvus

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
	"github.com/custodia-labs/dpln-rag/internal/logger"
)

// Field names.
const (
	fieldID        = "id"
	fieldTitle     = "title"
	fieldText      = "text"
	fieldOrigin    = "origin"
	fieldPosition  = "position"
	fieldMetadata  = "metadata"
	fieldEmbedding = "embedding"
)

// HNSW parameters.
const (
	hnswM              = 8
	hnswEfConstruction = 64
	hnswEfSearch       = 64
)

var outputFields = []string{fieldID, fieldTitle, fieldText, fieldOrigin, fieldPosition, fieldMetadata}

// Ensure Store implements the interface.
var _ driven.ChunkStore = (*Store)(nil)

// Store is a Milvus-backed chunk store.
type Store struct {
	client client.Client

	mu     sync.Mutex
	loaded map[string]bool
}

// New connects to the Milvus server at addr.
func New(ctx context.Context, addr string) (*Store, error) {
	c, err := client.NewClient(ctx, client.Config{Address: addr})
	if err != nil {
		return nil, fmt.Errorf("milvus: connect %s: %w", addr, err)
	}
	return &Store{client: c, loaded: make(map[string]bool)}, nil
}

// Search runs a filtered ANN search in the partition's collection.
// A collection that does not exist yet yields no results.
func (s *Store) Search(ctx context.Context, req domain.SearchRequest) ([]domain.ScoredChunk, error) {
	if !req.Partition.IsValid() {
		return nil, fmt.Errorf("milvus: search %q: %w", req.Partition, domain.ErrUnknownPartition)
	}
	name := req.Partition.Collection()

	exists, err := s.ensureLoaded(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	if !exists || req.K <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	sp, err := entity.NewIndexHNSWSearchParam(hnswEfSearch)
	if err != nil {
		return nil, fmt.Errorf("milvus: search params: %w", err)
	}

	results, err := s.client.Search(ctx, name, []string{}, titleExpr(req.TitleFilter), outputFields,
		[]entity.Vector{entity.FloatVector(req.Vector)}, fieldEmbedding, entity.COSINE, req.K, sp)
	if err != nil {
		return nil, fmt.Errorf("milvus: search %s: %w", name, err)
	}
	if len(results) == 0 {
		return []domain.ScoredChunk{}, nil
	}
	if results[0].Err != nil {
		return nil, fmt.Errorf("milvus: search %s: %w", name, results[0].Err)
	}

	return decodeResult(req.Partition, results[0].ResultCount, results[0].Fields, results[0].Scores), nil
}

// Upsert writes chunks column-wise, creating the collection on first use.
func (s *Store) Upsert(ctx context.Context, partition domain.Partition, chunks []domain.Chunk) error {
	if !partition.IsValid() {
		return fmt.Errorf("milvus: upsert %q: %w", partition, domain.ErrUnknownPartition)
	}
	if len(chunks) == 0 {
		return nil
	}
	name := partition.Collection()
	dims := len(chunks[0].Embedding)

	if _, err := s.ensureLoaded(ctx, name, dims); err != nil {
		return err
	}

	columns, err := toColumns(chunks, dims)
	if err != nil {
		return err
	}
	if _, err := s.client.Upsert(ctx, name, "", columns...); err != nil {
		return fmt.Errorf("milvus: upsert %s: %w", name, err)
	}
	if err := s.client.Flush(ctx, name, false); err != nil {
		logger.Warn("Milvus flush of %s failed: %v", name, err)
	}
	return nil
}

// DeleteByOrigin deletes the rows split from origin. A missing collection
// has nothing to delete.
func (s *Store) DeleteByOrigin(ctx context.Context, partition domain.Partition, origin string) error {
	if !partition.IsValid() {
		return fmt.Errorf("milvus: delete %q: %w", partition, domain.ErrUnknownPartition)
	}
	name := partition.Collection()

	exists, err := s.ensureLoaded(ctx, name, 0)
	if err != nil || !exists {
		return err
	}
	if err := s.client.Delete(ctx, name, "", originExpr(origin)); err != nil {
		return fmt.Errorf("milvus: delete %s from %s: %w", origin, name, err)
	}
	return nil
}

// Count returns the collection's row count.
func (s *Store) Count(ctx context.Context, partition domain.Partition) (int, error) {
	name := partition.Collection()
	has, err := s.client.HasCollection(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("milvus: count %s: %w", name, err)
	}
	if !has {
		return 0, nil
	}

	stats, err := s.client.GetCollectionStatistics(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("milvus: count %s: %w", name, err)
	}
	n, err := strconv.Atoi(stats["row_count"])
	if err != nil {
		return 0, fmt.Errorf("milvus: count %s: row_count %q: %w", name, stats["row_count"], err)
	}
	return n, nil
}

// Close closes the client connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// ensureLoaded makes sure the collection exists and is loaded. When dims is
// zero a missing collection is reported rather than created.
func (s *Store) ensureLoaded(ctx context.Context, name string, dims int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded[name] {
		return true, nil
	}

	has, err := s.client.HasCollection(ctx, name)
	if err != nil {
		return false, fmt.Errorf("milvus: check %s: %w", name, err)
	}
	if !has {
		if dims == 0 {
			return false, nil
		}
		if err := s.createCollection(ctx, name, dims); err != nil {
			return false, err
		}
	}

	if err := s.client.LoadCollection(ctx, name, false); err != nil {
		return false, fmt.Errorf("milvus: load %s: %w", name, err)
	}
	s.loaded[name] = true
	return true, nil
}

func (s *Store) createCollection(ctx context.Context, name string, dims int) error {
	logger.Info("Creating Milvus collection %s (%d dimensions)", name, dims)

	if err := s.client.CreateCollection(ctx, collectionSchema(name, dims), entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("milvus: create %s: %w", name, err)
	}

	index, err := entity.NewIndexHNSW(entity.COSINE, hnswM, hnswEfConstruction)
	if err != nil {
		return fmt.Errorf("milvus: index params: %w", err)
	}
	if err := s.client.CreateIndex(ctx, name, fieldEmbedding, index, false); err != nil {
		return fmt.Errorf("milvus: index %s: %w", name, err)
	}
	return nil
}

func collectionSchema(name string, dims int) *entity.Schema {
	varchar := func(field string, maxLen int, pk bool) *entity.Field {
		return &entity.Field{
			Name:       field,
			DataType:   entity.FieldTypeVarChar,
			PrimaryKey: pk,
			TypeParams: map[string]string{"max_length": strconv.Itoa(maxLen)},
		}
	}

	return &entity.Schema{
		CollectionName: name,
		Description:    "dpln chunks",
		Fields: []*entity.Field{
			varchar(fieldID, 64, true),
			varchar(fieldTitle, 512, false),
			varchar(fieldText, 65535, false),
			varchar(fieldOrigin, 1024, false),
			{Name: fieldPosition, DataType: entity.FieldTypeInt64},
			varchar(fieldMetadata, 8192, false),
			{
				Name:       fieldEmbedding,
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": strconv.Itoa(dims)},
			},
		},
	}
}

// titleExpr returns the boolean expression selecting one title, or "".
func titleExpr(title string) string {
	if title == "" {
		return ""
	}
	return fieldTitle + " == " + strconv.Quote(title)
}

// originExpr returns the boolean expression selecting one source file.
func originExpr(origin string) string {
	return fieldOrigin + " == " + strconv.Quote(origin)
}

func toColumns(chunks []domain.Chunk, dims int) ([]entity.Column, error) {
	n := len(chunks)
	ids := make([]string, n)
	titles := make([]string, n)
	texts := make([]string, n)
	origins := make([]string, n)
	positions := make([]int64, n)
	metas := make([]string, n)
	vectors := make([][]float32, n)

	for i := range chunks {
		c := &chunks[i]
		if len(c.Embedding) != dims {
			return nil, fmt.Errorf("milvus: chunk %s has %d dimensions, want %d: %w",
				c.ID, len(c.Embedding), dims, domain.ErrDimensionMismatch)
		}
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return nil, fmt.Errorf("milvus: marshal metadata for %s: %w", c.ID, err)
		}
		ids[i], titles[i], texts[i], origins[i] = c.ID, c.Title, c.Text, c.Origin
		positions[i] = int64(c.Position)
		metas[i] = string(meta)
		vectors[i] = c.Embedding
	}

	return []entity.Column{
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnVarChar(fieldTitle, titles),
		entity.NewColumnVarChar(fieldText, texts),
		entity.NewColumnVarChar(fieldOrigin, origins),
		entity.NewColumnInt64(fieldPosition, positions),
		entity.NewColumnVarChar(fieldMetadata, metas),
		entity.NewColumnFloatVector(fieldEmbedding, dims, vectors),
	}, nil
}

func decodeResult(p domain.Partition, count int, fields []entity.Column, scores []float32) []domain.ScoredChunk {
	var ids, titles, texts, origins, metas []string
	var positions []int64
	for _, col := range fields {
		switch c := col.(type) {
		case *entity.ColumnVarChar:
			switch c.Name() {
			case fieldID:
				ids = c.Data()
			case fieldTitle:
				titles = c.Data()
			case fieldText:
				texts = c.Data()
			case fieldOrigin:
				origins = c.Data()
			case fieldMetadata:
				metas = c.Data()
			}
		case *entity.ColumnInt64:
			if c.Name() == fieldPosition {
				positions = c.Data()
			}
		}
	}

	at := func(values []string, i int) string {
		if i < len(values) {
			return values[i]
		}
		return ""
	}

	hits := make([]domain.ScoredChunk, 0, count)
	for i := 0; i < count; i++ {
		chunk := domain.Chunk{
			ID:        at(ids, i),
			Partition: p,
			Title:     at(titles, i),
			Text:      at(texts, i),
			Origin:    at(origins, i),
		}
		if i < len(positions) {
			chunk.Position = int(positions[i])
		}
		if raw := at(metas, i); raw != "" && raw != "null" {
			if err := json.Unmarshal([]byte(raw), &chunk.Metadata); err != nil {
				logger.Warn("Milvus chunk %s has unreadable metadata: %v", chunk.ID, err)
			}
		}

		var score float64
		if i < len(scores) {
			score = float64(scores[i])
		}
		hits = append(hits, domain.ScoredChunk{Chunk: chunk, Score: score})
	}
	return hits
}
