package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	embeddingErr error
	llmErr       error
	lastEmbed    *domain.EmbeddingSettings
}

func (m *mockAIValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	m.lastEmbed = config
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateLLM(_ *domain.LLMSettings) error {
	return m.llmErr
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Retrieval, settings.Retrieval)
	assert.Equal(t, defaults.Embedding, settings.Embedding)
	assert.Equal(t, defaults.Store.Backend, settings.Store.Backend)
	assert.Equal(t, defaults.Catalog, settings.Catalog)
	assert.Equal(t, defaults.Ingest, settings.Ingest)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("retrieval.k", 6)
	_ = store.Set("retrieval.threshold", 80)
	_ = store.Set("embedding.provider", "mistral")
	_ = store.Set("embedding.api_key", "sk-stored")
	_ = store.Set("store.backend", "qdrant")
	_ = store.Set("ingest.rate_limit", 2.5)

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, 6, settings.Retrieval.K)
	assert.Equal(t, 80, settings.Retrieval.Threshold)
	assert.Equal(t, domain.AIProviderMistral, settings.Embedding.Provider)
	assert.Equal(t, "mistral-embed", settings.Embedding.Model)
	assert.Empty(t, settings.Embedding.BaseURL)
	assert.Equal(t, "sk-stored", settings.Embedding.APIKey)
	assert.Equal(t, domain.StoreBackendQdrant, settings.Store.Backend)
	assert.InDelta(t, 2.5, settings.Ingest.RateLimit, 1e-9)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "anthropic")
	_ = store.Set("store.backend", "postgres")
	_ = store.Set("catalog.backend", "etcd")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Store.Backend, settings.Store.Backend)
	assert.Equal(t, defaults.Catalog.Backend, settings.Catalog.Backend)
}

func TestSettingsService_Get_APIKeyFromEnvironment(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "env-key")
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "mistral")
	_ = store.Set("llm.provider", "mistral")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, "env-key", settings.Embedding.APIKey)
	assert.Equal(t, "env-key", settings.LLM.APIKey)
	assert.True(t, settings.Embedding.IsConfigured())
}

func TestSettingsService_Save_RoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.Retrieval.K = 8
	settings.Catalog.Backend = domain.CatalogBackendRedis
	settings.Catalog.RedisPassword = "hunter2"

	require.NoError(t, service.Save(&settings))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 8, got.Retrieval.K)
	assert.Equal(t, domain.CatalogBackendRedis, got.Catalog.Backend)
	assert.Equal(t, "hunter2", got.Catalog.RedisPassword)

	_, exists := store.Get("embedding.api_key")
	assert.False(t, exists, "empty secrets are not written")
}

func TestSettingsService_SetValue(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetValue("retrieval.threshold", " 75 "))
	require.NoError(t, service.SetValue("ingest.rate_limit", "0.5"))
	require.NoError(t, service.SetValue("store.backend", "milvus"))

	assert.Equal(t, 75, store.GetInt("retrieval.threshold"))
	assert.InDelta(t, 0.5, store.GetFloat("ingest.rate_limit"), 1e-9)
	assert.Equal(t, "milvus", store.GetString("store.backend"))
}

func TestSettingsService_SetValue_Rejections(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	tests := []struct {
		key, value string
	}{
		{"search.mode", "hybrid"},
		{"retrieval.threshold", "0"},
		{"retrieval.threshold", "101"},
		{"retrieval.k", "0"},
		{"retrieval.k", "four"},
		{"ingest.rate_limit", "-1"},
		{"embedding.provider", "anthropic"},
		{"catalog.backend", "etcd"},
		{"mcp.port", "-80"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := service.SetValue(tt.key, tt.value)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Value(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("retrieval.k", 5)
	service := NewSettingsService(store, nil)

	v, err := service.Value("retrieval.k")
	require.NoError(t, err)
	assert.Equal(t, "5", v)

	_, err = service.Value("retrieval.threshold")
	assert.ErrorIs(t, err, domain.ErrConfigNotFound)

	_, err = service.Value("nope")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Keys(t *testing.T) {
	keys := NewSettingsService(memory.NewConfigStore(), nil).Keys()

	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "retrieval.threshold")
	assert.Contains(t, keys, "store.mongodb.uri")
	assert.True(t, IsSecretKey("store.mongodb.uri"))
	assert.False(t, IsSecretKey("retrieval.k"))
}

func TestSettingsService_Validate(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, NewSettingsService(memory.NewConfigStore(), nil).Validate())
	})

	t.Run("cloud embedding without key", func(t *testing.T) {
		store := memory.NewConfigStore()
		_ = store.Set("embedding.provider", "openai")
		err := NewSettingsService(store, nil).Validate()
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("mongodb store without uri", func(t *testing.T) {
		store := memory.NewConfigStore()
		_ = store.Set("store.backend", "mongodb")
		err := NewSettingsService(store, nil).Validate()
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("file catalog without path", func(t *testing.T) {
		store := memory.NewConfigStore()
		_ = store.Set("catalog.backend", "file")
		err := NewSettingsService(store, nil).Validate()
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSettingsService_ValidateAIConfig(t *testing.T) {
	assert.NoError(t, NewSettingsService(memory.NewConfigStore(), nil).ValidateEmbeddingConfig())

	validator := &mockAIValidator{llmErr: domain.ErrLLMUnavailable}
	service := NewSettingsService(memory.NewConfigStore(), validator)

	require.NoError(t, service.ValidateEmbeddingConfig())
	require.NotNil(t, validator.lastEmbed)
	assert.Equal(t, domain.AIProviderOllama, validator.lastEmbed.Provider)
	assert.ErrorIs(t, service.ValidateLLMConfig(), domain.ErrLLMUnavailable)
}
