package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
)

// numCandidatesFactor widens the HNSW candidate pool relative to k.
const numCandidatesFactor = 10

// Ensure Store implements the interface.
var _ driven.ChunkStore = (*Store)(nil)

// chunkDocument is the stored shape of a chunk.
type chunkDocument struct {
	ID        string    `bson:"_id"`
	Text      string    `bson:"text"`
	Embedding []float32 `bson:"embedding"`
	Title     string    `bson:"title"`
	Source    string    `bson:"source"`
	Filename  string    `bson:"filename,omitempty"`
	URL       string    `bson:"url,omitempty"`
	Position  int       `bson:"position"`
	Score     float64   `bson:"score,omitempty"`
}

// Store is a MongoDB Atlas chunk store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	index  string
	owned  bool
}

// Connect opens a client for uri and returns a store on database.
func Connect(ctx context.Context, uri, database, index string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	s := NewStore(client.Database(database), index)
	s.client = client
	s.owned = true
	return s, nil
}

// NewStore wraps an existing database handle. index is the Atlas vector
// search index name.
func NewStore(db *mongo.Database, index string) *Store {
	return &Store{
		client: db.Client(),
		db:     db,
		index:  index,
	}
}

// Database returns the underlying database, shared with the catalog.
func (s *Store) Database() *mongo.Database {
	return s.db
}

// Search runs a $vectorSearch aggregation on the partition's collection.
func (s *Store) Search(ctx context.Context, req domain.SearchRequest) ([]domain.ScoredChunk, error) {
	if !req.Partition.IsValid() {
		return nil, fmt.Errorf("mongodb: search %q: %w", req.Partition, domain.ErrUnknownPartition)
	}
	if req.K <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	coll := s.db.Collection(req.Partition.Collection())
	cursor, err := coll.Aggregate(ctx, searchPipeline(s.index, req))
	if err != nil {
		return nil, fmt.Errorf("mongodb: search %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var docs []chunkDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decode %s: %w", coll.Name(), err)
	}

	hits := make([]domain.ScoredChunk, 0, len(docs))
	for i := range docs {
		hits = append(hits, domain.ScoredChunk{
			Chunk: fromDocument(req.Partition, &docs[i]),
			Score: cosineFromVectorScore(docs[i].Score),
		})
	}
	return hits, nil
}

// Upsert replaces chunks by ID in one unordered bulk write.
func (s *Store) Upsert(ctx context.Context, partition domain.Partition, chunks []domain.Chunk) error {
	if !partition.IsValid() {
		return fmt.Errorf("mongodb: upsert %q: %w", partition, domain.ErrUnknownPartition)
	}
	if len(chunks) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(chunks))
	for i := range chunks {
		doc := toDocument(&chunks[i])
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: doc.ID}}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	coll := s.db.Collection(partition.Collection())
	if _, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("mongodb: upsert %s: %w", coll.Name(), err)
	}
	return nil
}

// DeleteByOrigin removes the documents split from origin.
func (s *Store) DeleteByOrigin(ctx context.Context, partition domain.Partition, origin string) error {
	if !partition.IsValid() {
		return fmt.Errorf("mongodb: delete %q: %w", partition, domain.ErrUnknownPartition)
	}
	coll := s.db.Collection(partition.Collection())
	if _, err := coll.DeleteMany(ctx, bson.D{{Key: domain.MetaSource, Value: origin}}); err != nil {
		return fmt.Errorf("mongodb: delete %s from %s: %w", origin, coll.Name(), err)
	}
	return nil
}

// Count returns the number of documents in the partition's collection.
func (s *Store) Count(ctx context.Context, partition domain.Partition) (int, error) {
	n, err := s.db.Collection(partition.Collection()).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("mongodb: count %s: %w", partition.Collection(), err)
	}
	return int(n), nil
}

// Close disconnects the client when the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// searchPipeline builds the $vectorSearch aggregation. The title filter is
// applied inside the stage so that limit counts filtered documents only.
// cosineFromVectorScore undoes Atlas normalisation. For cosine indexes
// vectorSearchScore is (1 + cos) / 2.
func cosineFromVectorScore(s float64) float64 {
	return 2*s - 1
}

func searchPipeline(index string, req domain.SearchRequest) mongo.Pipeline {
	stage := bson.D{
		{Key: "index", Value: index},
		{Key: "path", Value: "embedding"},
		{Key: "queryVector", Value: req.Vector},
		{Key: "numCandidates", Value: req.K * numCandidatesFactor},
		{Key: "limit", Value: req.K},
	}
	if req.IsFiltered() {
		stage = append(stage, bson.E{
			Key:   "filter",
			Value: bson.D{{Key: domain.MetaTitle, Value: bson.D{{Key: "$eq", Value: req.TitleFilter}}}},
		})
	}

	return mongo.Pipeline{
		{{Key: "$vectorSearch", Value: stage}},
		{{Key: "$set", Value: bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}}}}},
		{{Key: "$project", Value: bson.D{{Key: "embedding", Value: 0}}}},
	}
}

func toDocument(c *domain.Chunk) chunkDocument {
	return chunkDocument{
		ID:        c.ID,
		Text:      c.Text,
		Embedding: c.Embedding,
		Title:     c.Title,
		Source:    c.Origin,
		Filename:  c.MetadataString(domain.MetaFilename),
		URL:       c.MetadataString(domain.MetaURL),
		Position:  c.Position,
	}
}

func fromDocument(p domain.Partition, d *chunkDocument) domain.Chunk {
	meta := map[string]any{
		domain.MetaTitle:  d.Title,
		domain.MetaSource: d.Source,
	}
	if d.Filename != "" {
		meta[domain.MetaFilename] = d.Filename
	}
	if d.URL != "" {
		meta[domain.MetaURL] = d.URL
	}
	return domain.Chunk{
		ID:        d.ID,
		Partition: p,
		Title:     d.Title,
		Text:      d.Text,
		Origin:    d.Source,
		Position:  d.Position,
		Embedding: d.Embedding,
		Metadata:  meta,
	}
}
