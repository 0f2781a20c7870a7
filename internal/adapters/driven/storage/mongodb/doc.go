// Package mongodb provides a ChunkStore and title catalog backed by MongoDB Atlas.
//
// Chunks live in one collection per partition (Vec_Dungeons, Vec_Quests) using
// the flat layout of the original indexer: "text", "embedding" and the
// metadata keys (title, source, filename, url) at the top level. Search runs
// an Atlas $vectorSearch stage whose index must declare "title" as a filter
// field.
//
// Titles live in one collection per partition (Dungeons, Quests), one document
// per title with a sequence number that keeps insertion order.
package mongodb
