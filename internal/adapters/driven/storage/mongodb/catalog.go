package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
)

// Ensure Catalog implements the interface.
var _ driven.CatalogWriter = (*Catalog)(nil)

type titleDocument struct {
	Title string `bson:"title"`
	Seq   int64  `bson:"seq"`
}

// Catalog stores titles in the partition's catalog collection.
type Catalog struct {
	db *mongo.Database
}

// NewCatalog creates a catalog on db.
func NewCatalog(db *mongo.Database) *Catalog {
	return &Catalog{db: db}
}

// ListTitles returns titles ordered by insertion sequence.
func (c *Catalog) ListTitles(ctx context.Context, partition domain.Partition) ([]string, error) {
	if !partition.IsValid() {
		return nil, fmt.Errorf("mongodb: list titles %q: %w", partition, domain.ErrUnknownPartition)
	}

	coll := c.db.Collection(partition.Catalog())
	opts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.D{{Key: "title", Value: 1}})
	cursor, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: list %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var docs []titleDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decode %s: %w", coll.Name(), err)
	}

	titles := make([]string, 0, len(docs))
	for _, d := range docs {
		titles = append(titles, d.Title)
	}
	return titles, nil
}

// AddTitles inserts titles that are not already present. A title's
// sequence is only set on insert, so existing titles keep their position.
func (c *Catalog) AddTitles(ctx context.Context, partition domain.Partition, titles ...string) error {
	if !partition.IsValid() {
		return fmt.Errorf("mongodb: add titles %q: %w", partition, domain.ErrUnknownPartition)
	}

	coll := c.db.Collection(partition.Catalog())
	base, err := coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return fmt.Errorf("mongodb: count %s: %w", coll.Name(), err)
	}

	models := make([]mongo.WriteModel, 0, len(titles))
	for i, title := range titles {
		if title == "" {
			continue
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "title", Value: title}}).
			SetUpdate(bson.D{{Key: "$setOnInsert", Value: titleDocument{Title: title, Seq: base + int64(i)}}}).
			SetUpsert(true))
	}
	if len(models) == 0 {
		return nil
	}

	if _, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("mongodb: add titles to %s: %w", coll.Name(), err)
	}
	return nil
}
