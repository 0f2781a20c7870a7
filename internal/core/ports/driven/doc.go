// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for retrieval to function:
//
//   - EmbeddingService: Converts text to vectors (Ollama, OpenAI, Mistral)
//   - ChunkStore: Partitioned vector index (SQLite, Qdrant, MongoDB Atlas, Milvus, memory)
//   - TitleCatalog: Canonical subject titles per partition (SQLite, Redis, MongoDB, YAML file, memory)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer synthesis. Without it, `ask` is disabled.
//   - RetrievalMetrics: Outcome counters. Without it, nothing is recorded.
//   - SectionSplitter, CatalogWriter: Only needed by ingestion.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
