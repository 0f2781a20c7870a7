package milvus

import (
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

func TestTitleExpr(t *testing.T) {
	assert.Equal(t, "", titleExpr(""))
	assert.Equal(t, `title == "Manoir de Katrapat"`, titleExpr("Manoir de Katrapat"))
	assert.Equal(t, `title == "L'\"Ile\" de Moon"`, titleExpr(`L'"Ile" de Moon`))
}

func TestOriginExpr(t *testing.T) {
	assert.Equal(t, `origin == "pages/katrapat.html"`, originExpr("pages/katrapat.html"))
	assert.Equal(t, `origin == "C:\\dofus\\a.html"`, originExpr(`C:\dofus\a.html`))
}

func TestCollectionSchema(t *testing.T) {
	schema := collectionSchema("Vec_Dungeons", 1024)

	assert.Equal(t, "Vec_Dungeons", schema.CollectionName)
	require.Len(t, schema.Fields, 7)
	assert.True(t, schema.Fields[0].PrimaryKey)
	last := schema.Fields[len(schema.Fields)-1]
	assert.Equal(t, entity.FieldTypeFloatVector, last.DataType)
	assert.Equal(t, "1024", last.TypeParams["dim"])
}

func TestColumnsRoundTrip(t *testing.T) {
	chunks := []domain.Chunk{
		{ID: "a", Title: "Manoir de Katrapat", Text: "Anerice", Origin: "k.html", Position: 1,
			Embedding: []float32{1, 0}, Metadata: map[string]any{domain.MetaURL: "u"}},
		{ID: "b", Title: "Manoir de Katrapat", Text: "Salle", Embedding: []float32{0, 1}},
	}

	columns, err := toColumns(chunks, 2)
	require.NoError(t, err)
	require.Len(t, columns, 7)

	hits := decodeResult(domain.PartitionDungeon, 2, columns, []float32{0.9, 0.4})
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].Chunk.ID)
	assert.Equal(t, "Anerice", hits[0].Chunk.Text)
	assert.Equal(t, 1, hits[0].Chunk.Position)
	assert.Equal(t, "u", hits[0].Chunk.MetadataString(domain.MetaURL))
	assert.InDelta(t, 0.9, hits[0].Score, 1e-6)
	assert.Nil(t, hits[1].Chunk.Metadata)
	assert.Equal(t, domain.PartitionDungeon, hits[1].Chunk.Partition)
}

func TestToColumns_DimensionMismatch(t *testing.T) {
	_, err := toColumns([]domain.Chunk{{ID: "a", Embedding: []float32{1}}}, 2)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}
