package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider(t *testing.T) {
	tests := []struct {
		provider AIProvider
		valid    bool
		apiKey   bool
		local    bool
		env      string
	}{
		{AIProviderOllama, true, false, true, ""},
		{AIProviderOpenAI, true, true, false, "OPENAI_API_KEY"},
		{AIProviderMistral, true, true, false, "MISTRAL_API_KEY"},
		{AIProvider("anthropic"), false, false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.provider.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.provider.IsValid())
			assert.Equal(t, tt.apiKey, tt.provider.RequiresAPIKey())
			assert.Equal(t, tt.local, tt.provider.IsLocal())
			assert.Equal(t, tt.env, tt.provider.APIKeyEnv())
		})
	}
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, "Mistral (cloud)", AIProviderMistral.Description())
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

func TestBackends_IsValid(t *testing.T) {
	for _, b := range []StoreBackend{StoreBackendMemory, StoreBackendSQLite, StoreBackendQdrant, StoreBackendMongoDB, StoreBackendMilvus} {
		assert.True(t, b.IsValid(), b.String())
	}
	assert.False(t, StoreBackend("pgvector").IsValid())

	for _, b := range []CatalogBackend{CatalogBackendMemory, CatalogBackendSQLite, CatalogBackendRedis, CatalogBackendMongoDB, CatalogBackendFile} {
		assert.True(t, b.IsValid(), b.String())
	}
	assert.False(t, CatalogBackend("etcd").IsValid())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 4, s.Retrieval.K)
	assert.Equal(t, 70, s.Retrieval.Threshold)
	assert.Equal(t, AIProviderOllama, s.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", s.Embedding.Model)
	assert.True(t, s.Embedding.IsConfigured())
	assert.Equal(t, StoreBackendSQLite, s.Store.Backend)
	assert.Equal(t, CatalogBackendSQLite, s.Catalog.Backend)
	assert.Equal(t, 32, s.Ingest.BatchSize)
	assert.Equal(t, "https://www.dofuspourlesnoobs.com", s.Ingest.SiteURL)
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.False(t, EmbeddingSettings{}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderMistral}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderMistral, APIKey: "k"}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderOpenAI}.IsConfigured())
}

func TestEmbeddingDimensions_KnowsDefaults(t *testing.T) {
	dims := EmbeddingDimensions()
	for provider, model := range DefaultEmbeddingModels() {
		_, ok := dims[model]
		assert.True(t, ok, "no dimensions for %s default model %s", provider, model)
	}
}
