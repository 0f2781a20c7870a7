package domain

const unknownDescription = "Unknown"

// Retrieval defaults.
const (
	// DefaultK is the number of chunks returned per retrieval.
	DefaultK = 4

	// DefaultThreshold is the minimum similarity ratio for a subject match.
	DefaultThreshold = 70
)

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderMistral is the Mistral cloud API (OpenAI-compatible).
	AIProviderMistral AIProvider = "mistral"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderMistral:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderMistral
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// APIKeyEnv returns the environment variable consulted when no key is configured.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderMistral:
		return "MISTRAL_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderMistral:
		return "Mistral (cloud)"
	default:
		return unknownDescription
	}
}

// StoreBackend identifies the chunk store implementation.
type StoreBackend string

// Available chunk store backends.
const (
	StoreBackendMemory  StoreBackend = "memory"
	StoreBackendSQLite  StoreBackend = "sqlite"
	StoreBackendQdrant  StoreBackend = "qdrant"
	StoreBackendMongoDB StoreBackend = "mongodb"
	StoreBackendMilvus  StoreBackend = "milvus"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendMemory, StoreBackendSQLite, StoreBackendQdrant, StoreBackendMongoDB, StoreBackendMilvus:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// CatalogBackend identifies the title catalog implementation.
type CatalogBackend string

// Available title catalog backends.
const (
	CatalogBackendMemory  CatalogBackend = "memory"
	CatalogBackendSQLite  CatalogBackend = "sqlite"
	CatalogBackendRedis   CatalogBackend = "redis"
	CatalogBackendMongoDB CatalogBackend = "mongodb"
	CatalogBackendFile    CatalogBackend = "file"
)

// IsValid returns true if the backend is recognised.
func (b CatalogBackend) IsValid() bool {
	switch b {
	case CatalogBackendMemory, CatalogBackendSQLite, CatalogBackendRedis, CatalogBackendMongoDB, CatalogBackendFile:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b CatalogBackend) String() string {
	return string(b)
}

// RetrievalSettings holds retrieval tuning.
type RetrievalSettings struct {
	// K is the maximum number of chunks returned.
	K int

	// Threshold is the confidence floor for subject resolution (0-100).
	Threshold int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI/Mistral).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI/Mistral).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// StoreSettings holds chunk store configuration.
type StoreSettings struct {
	Backend StoreBackend

	// DataDir is where the SQLite database lives.
	DataDir string

	// QdrantAddr is the host:port of the Qdrant gRPC endpoint.
	QdrantAddr   string
	QdrantAPIKey string

	// MongoURI is the MongoDB (Atlas) connection string.
	MongoURI      string
	MongoDatabase string

	// MongoIndex is the Atlas vector search index name.
	MongoIndex string

	// MilvusAddr is the host:port of the Milvus endpoint.
	MilvusAddr string
}

// CatalogSettings holds title catalog configuration.
type CatalogSettings struct {
	Backend CatalogBackend

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// RedisPrefix namespaces the per-partition list keys.
	RedisPrefix string

	// FilePath is the YAML catalog file for the file backend.
	FilePath string
}

// IngestSettings holds ingestion pipeline configuration.
type IngestSettings struct {
	// BatchSize is the number of sections embedded per request.
	BatchSize int

	// RateLimit caps embedding requests per second. Zero disables limiting.
	RateLimit float64

	// SiteURL is the base URL used to build each page's public link.
	SiteURL string
}

// MCPSettings holds MCP server configuration.
type MCPSettings struct {
	// Port is the HTTP port for `mcp serve --port`. Zero means stdio.
	Port int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Retrieval RetrievalSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Store     StoreSettings
	Catalog   CatalogSettings
	Ingest    IngestSettings
	MCP       MCPSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The defaults run fully locally: Ollama embeddings and an SQLite store.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Retrieval: RetrievalSettings{
			K:         DefaultK,
			Threshold: DefaultThreshold,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
			BaseURL:  "http://localhost:11434",
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModels()[AIProviderOllama],
			BaseURL:  "http://localhost:11434",
		},
		Store: StoreSettings{
			Backend:       StoreBackendSQLite,
			QdrantAddr:    "localhost:6334",
			MongoDatabase: "DPLN_RAG",
			MongoIndex:    "vector_index",
			MilvusAddr:    "localhost:19530",
		},
		Catalog: CatalogSettings{
			Backend:     CatalogBackendSQLite,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "dpln:catalog",
		},
		Ingest: IngestSettings{
			BatchSize: 32,
			SiteURL:   "https://www.dofuspourlesnoobs.com",
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderMistral,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:  "nomic-embed-text",
		AIProviderOpenAI:  "text-embedding-3-small",
		AIProviderMistral: "mistral-embed",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:  "llama3.2",
		AIProviderOpenAI:  "gpt-4o-mini",
		AIProviderMistral: "mistral-small-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Mistral models
		"mistral-embed": 1024,
	}
}
