// Package qdrant provides a ChunkStore backed by a Qdrant server over gRPC.
//
// Each partition maps to its own collection (Vec_Dungeons, Vec_Quests).
// Chunk fields are stored in the point payload and the title filter is
// expressed as a keyword match on the "title" payload key, so Qdrant
// applies it before ranking.
package qdrant

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
	"github.com/custodia-labs/dpln-rag/internal/logger"
)

// Payload keys.
const (
	fieldText     = "text"
	fieldOrigin   = "origin"
	fieldPosition = "position"
	fieldChunkID  = "chunk_id"
)

// Ensure Store implements the interface.
var _ driven.ChunkStore = (*Store)(nil)

// Store is a Qdrant-backed chunk store.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	apiKey      string

	mu      sync.Mutex
	ensured map[string]bool
}

// New dials addr (host:port of the gRPC endpoint). apiKey may be empty.
func New(addr, apiKey string) (*Store, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant: dial %s: %w", addr, err)
	}
	return NewWithConn(conn, apiKey), nil
}

// NewWithConn wraps an existing connection.
func NewWithConn(conn *grpc.ClientConn, apiKey string) *Store {
	return &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		apiKey:      apiKey,
		ensured:     make(map[string]bool),
	}
}

func (s *Store) withAuth(ctx context.Context) context.Context {
	if s.apiKey == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "api-key", s.apiKey)
}

// Search runs a filtered similarity search in the partition's collection.
func (s *Store) Search(ctx context.Context, req domain.SearchRequest) ([]domain.ScoredChunk, error) {
	if !req.Partition.IsValid() {
		return nil, fmt.Errorf("qdrant: search %q: %w", req.Partition, domain.ErrUnknownPartition)
	}
	ctx = s.withAuth(ctx)

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: req.Partition.Collection(),
		Vector:         req.Vector,
		Filter:         titleFilter(req.TitleFilter),
		Limit:          uint64(max(req.K, 0)),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if status.Code(err) == codes.NotFound {
		// Nothing has been ingested into this partition yet.
		return []domain.ScoredChunk{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("qdrant: search %s: %w", req.Partition.Collection(), err)
	}

	hits := make([]domain.ScoredChunk, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		hits = append(hits, domain.ScoredChunk{
			Chunk: chunkFromPayload(req.Partition, point.GetId(), point.GetPayload()),
			Score: float64(point.GetScore()),
		})
	}
	return hits, nil
}

// Upsert writes chunks as points, creating the collection on first use.
func (s *Store) Upsert(ctx context.Context, partition domain.Partition, chunks []domain.Chunk) error {
	if !partition.IsValid() {
		return fmt.Errorf("qdrant: upsert %q: %w", partition, domain.ErrUnknownPartition)
	}
	if len(chunks) == 0 {
		return nil
	}
	ctx = s.withAuth(ctx)

	if err := s.ensureCollection(ctx, partition.Collection(), len(chunks[0].Embedding)); err != nil {
		return err
	}

	points := make([]*pb.PointStruct, 0, len(chunks))
	for i := range chunks {
		points = append(points, toPoint(&chunks[i]))
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: partition.Collection(),
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert %s: %w", partition.Collection(), err)
	}
	return nil
}

// DeleteByOrigin deletes the points whose origin payload equals origin.
// A collection that does not exist yet has nothing to delete.
func (s *Store) DeleteByOrigin(ctx context.Context, partition domain.Partition, origin string) error {
	if !partition.IsValid() {
		return fmt.Errorf("qdrant: delete %q: %w", partition, domain.ErrUnknownPartition)
	}

	wait := true
	_, err := s.points.Delete(s.withAuth(ctx), &pb.DeletePoints{
		CollectionName: partition.Collection(),
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{Filter: keywordFilter(fieldOrigin, origin)},
		},
	})
	if status.Code(err) == codes.NotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("qdrant: delete %s from %s: %w", origin, partition.Collection(), err)
	}
	return nil
}

// Count returns the exact number of points in the partition's collection.
func (s *Store) Count(ctx context.Context, partition domain.Partition) (int, error) {
	exact := true
	resp, err := s.points.Count(s.withAuth(ctx), &pb.CountPoints{
		CollectionName: partition.Collection(),
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant: count %s: %w", partition.Collection(), err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) ensureCollection(ctx context.Context, name string, dims int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured[name] {
		return nil
	}

	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("qdrant: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == name {
			s.ensured[name] = true
			return nil
		}
	}

	logger.Info("Creating Qdrant collection %s (%d dimensions)", name, dims)
	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: name,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %s: %w", name, err)
	}

	fieldType := pb.FieldType_FieldTypeKeyword
	wait := true
	_, err = s.points.CreateFieldIndex(ctx, &pb.CreateFieldIndexCollection{
		CollectionName: name,
		FieldName:      domain.MetaTitle,
		FieldType:      &fieldType,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("qdrant: index title on %s: %w", name, err)
	}

	s.ensured[name] = true
	return nil
}

// titleFilter builds an exact keyword match on the title payload field.
func titleFilter(title string) *pb.Filter {
	if title == "" {
		return nil
	}
	return keywordFilter(domain.MetaTitle, title)
}

// keywordFilter matches points whose payload key equals value exactly.
func keywordFilter(key, value string) *pb.Filter {
	return &pb.Filter{
		Must: []*pb.Condition{{
			ConditionOneOf: &pb.Condition_Field{
				Field: &pb.FieldCondition{
					Key: key,
					Match: &pb.Match{
						MatchValue: &pb.Match_Keyword{Keyword: value},
					},
				},
			},
		}},
	}
}

func toPoint(c *domain.Chunk) *pb.PointStruct {
	payload := map[string]*pb.Value{
		fieldChunkID:     stringValue(c.ID),
		domain.MetaTitle: stringValue(c.Title),
		fieldText:        stringValue(c.Text),
		fieldOrigin:      stringValue(c.Origin),
		fieldPosition:    {Kind: &pb.Value_IntegerValue{IntegerValue: int64(c.Position)}},
	}
	for k, v := range c.Metadata {
		if _, reserved := payload[k]; reserved {
			continue
		}
		payload[k] = stringValue(fmt.Sprint(v))
	}

	return &pb.PointStruct{
		Id: &pb.PointId{
			PointIdOptions: &pb.PointId_Uuid{Uuid: c.ID},
		},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: c.Embedding},
			},
		},
		Payload: payload,
	}
}

func chunkFromPayload(p domain.Partition, id *pb.PointId, payload map[string]*pb.Value) domain.Chunk {
	c := domain.Chunk{
		ID:        payload[fieldChunkID].GetStringValue(),
		Partition: p,
		Title:     payload[domain.MetaTitle].GetStringValue(),
		Text:      payload[fieldText].GetStringValue(),
		Origin:    payload[fieldOrigin].GetStringValue(),
		Position:  int(payload[fieldPosition].GetIntegerValue()),
		Metadata:  make(map[string]any),
	}
	if c.ID == "" {
		c.ID = pointIDString(id)
	}
	for k, v := range payload {
		switch k {
		case fieldChunkID, fieldText, fieldOrigin, fieldPosition:
			continue
		}
		c.Metadata[k] = v.GetStringValue()
	}
	return c
}

func pointIDString(id *pb.PointId) string {
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}
