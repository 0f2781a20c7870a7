package domain

// Metadata keys written by ingestion and read back by every store.
const (
	MetaTitle    = "title"
	MetaSource   = "source"
	MetaFilename = "filename"
	MetaURL      = "url"
	MetaError    = "error"
)

// Chunk is one indexed section of a source page.
// Chunks are created by ingestion and only ever read by retrieval.
type Chunk struct {
	// ID is stable and unique within the partition.
	ID string

	// Partition is the content type the chunk belongs to.
	Partition Partition

	// Title is the canonical subject title, used as the exact filter key.
	// Several chunks may share a title.
	Title string

	// Text is the section content.
	Text string

	// Origin references the source document (file path or URL).
	Origin string

	// Position is the section index within the source document.
	Position int

	// Embedding is the vector representation of Text.
	Embedding []float32

	// Metadata holds additional fields such as the source URL.
	Metadata map[string]any
}

// MetadataString returns a string metadata value, or "" when absent.
func (c Chunk) MetadataString(key string) string {
	if c.Metadata == nil {
		return ""
	}
	s, _ := c.Metadata[key].(string)
	return s
}

// ScoredChunk pairs a chunk with its similarity to the query vector.
type ScoredChunk struct {
	Chunk Chunk

	// Score is the cosine similarity, higher is closer.
	Score float64
}

// SearchRequest is the resolved query handed to a chunk store.
type SearchRequest struct {
	// Partition selects the collection.
	Partition Partition

	// Vector is the embedded query.
	Vector []float32

	// K caps the number of returned chunks.
	K int

	// TitleFilter restricts the search to chunks with exactly this title.
	// Empty means unfiltered.
	TitleFilter string
}

// IsFiltered returns true if the request carries a title filter.
func (r SearchRequest) IsFiltered() bool {
	return r.TitleFilter != ""
}
