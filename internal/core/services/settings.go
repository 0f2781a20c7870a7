package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyRetrievalK         = "retrieval.k"
	keyRetrievalThreshold = "retrieval.threshold"
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyLLMProvider        = "llm.provider"
	keyLLMModel           = "llm.model"
	keyLLMBaseURL         = "llm.base_url"
	keyLLMAPIKey          = "llm.api_key"
	keyStoreBackend       = "store.backend"
	keyStoreDataDir       = "store.data_dir"
	keyQdrantAddr         = "store.qdrant.addr"
	keyQdrantAPIKey       = "store.qdrant.api_key"
	keyMongoURI           = "store.mongodb.uri"
	keyMongoDatabase      = "store.mongodb.database"
	keyMongoIndex         = "store.mongodb.index"
	keyMilvusAddr         = "store.milvus.addr"
	keyCatalogBackend     = "catalog.backend"
	keyRedisAddr          = "catalog.redis.addr"
	keyRedisPassword      = "catalog.redis.password"
	keyRedisDB            = "catalog.redis.db"
	keyRedisPrefix        = "catalog.redis.prefix"
	keyCatalogFile        = "catalog.file.path"
	keyIngestBatchSize    = "ingest.batch_size"
	keyIngestRateLimit    = "ingest.rate_limit"
	keyIngestSiteURL      = "ingest.site_url"
	keyMCPPort            = "mcp.port"
)

type settingKind int

const (
	kindString settingKind = iota
	kindSecret
	kindInt
	kindFloat
)

// settingKeys lists every supported key and how its value is parsed.
var settingKeys = map[string]settingKind{
	keyRetrievalK:         kindInt,
	keyRetrievalThreshold: kindInt,
	keyEmbedProvider:      kindString,
	keyEmbedModel:         kindString,
	keyEmbedBaseURL:       kindString,
	keyEmbedAPIKey:        kindSecret,
	keyLLMProvider:        kindString,
	keyLLMModel:           kindString,
	keyLLMBaseURL:         kindString,
	keyLLMAPIKey:          kindSecret,
	keyStoreBackend:       kindString,
	keyStoreDataDir:       kindString,
	keyQdrantAddr:         kindString,
	keyQdrantAPIKey:       kindSecret,
	keyMongoURI:           kindSecret,
	keyMongoDatabase:      kindString,
	keyMongoIndex:         kindString,
	keyMilvusAddr:         kindString,
	keyCatalogBackend:     kindString,
	keyRedisAddr:          kindString,
	keyRedisPassword:      kindSecret,
	keyRedisDB:            kindInt,
	keyRedisPrefix:        kindString,
	keyCatalogFile:        kindString,
	keyIngestBatchSize:    kindInt,
	keyIngestRateLimit:    kindFloat,
	keyIngestSiteURL:      kindString,
	keyMCPPort:            kindInt,
}

// IsSecretKey reports whether a key holds a credential that should not be echoed.
func IsSecretKey(key string) bool {
	return settingKeys[key] == kindSecret
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
// API keys fall back to the provider's environment variable when unset.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, d.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, d.LLM.Provider)

	settings := &domain.AppSettings{
		Retrieval: domain.RetrievalSettings{
			K:         s.getInt(keyRetrievalK, d.Retrieval.K),
			Threshold: s.getInt(keyRetrievalThreshold, d.Retrieval.Threshold),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
			BaseURL:  s.getString(keyEmbedBaseURL, defaultBaseURL(embedProvider)),
			APIKey:   s.getAPIKey(keyEmbedAPIKey, embedProvider),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    s.getString(keyLLMModel, domain.DefaultLLMModels()[llmProvider]),
			BaseURL:  s.getString(keyLLMBaseURL, defaultBaseURL(llmProvider)),
			APIKey:   s.getAPIKey(keyLLMAPIKey, llmProvider),
		},
		Store: domain.StoreSettings{
			Backend:       s.getStoreBackend(d.Store.Backend),
			DataDir:       s.getString(keyStoreDataDir, d.Store.DataDir),
			QdrantAddr:    s.getString(keyQdrantAddr, d.Store.QdrantAddr),
			QdrantAPIKey:  s.configStore.GetString(keyQdrantAPIKey),
			MongoURI:      s.configStore.GetString(keyMongoURI),
			MongoDatabase: s.getString(keyMongoDatabase, d.Store.MongoDatabase),
			MongoIndex:    s.getString(keyMongoIndex, d.Store.MongoIndex),
			MilvusAddr:    s.getString(keyMilvusAddr, d.Store.MilvusAddr),
		},
		Catalog: domain.CatalogSettings{
			Backend:       s.getCatalogBackend(d.Catalog.Backend),
			RedisAddr:     s.getString(keyRedisAddr, d.Catalog.RedisAddr),
			RedisPassword: s.configStore.GetString(keyRedisPassword),
			RedisDB:       s.getInt(keyRedisDB, d.Catalog.RedisDB),
			RedisPrefix:   s.getString(keyRedisPrefix, d.Catalog.RedisPrefix),
			FilePath:      s.configStore.GetString(keyCatalogFile),
		},
		Ingest: domain.IngestSettings{
			BatchSize: s.getInt(keyIngestBatchSize, d.Ingest.BatchSize),
			RateLimit: s.getFloat(keyIngestRateLimit, d.Ingest.RateLimit),
			SiteURL:   s.getString(keyIngestSiteURL, d.Ingest.SiteURL),
		},
		MCP: domain.MCPSettings{
			Port: s.getInt(keyMCPPort, d.MCP.Port),
		},
	}

	return settings, nil
}

// Save persists application settings. Empty credentials are not written
// so that environment fallbacks keep working.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyRetrievalK, settings.Retrieval.K},
		{keyRetrievalThreshold, settings.Retrieval.Threshold},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyStoreBackend, settings.Store.Backend.String()},
		{keyStoreDataDir, settings.Store.DataDir},
		{keyQdrantAddr, settings.Store.QdrantAddr},
		{keyMongoDatabase, settings.Store.MongoDatabase},
		{keyMongoIndex, settings.Store.MongoIndex},
		{keyMilvusAddr, settings.Store.MilvusAddr},
		{keyCatalogBackend, settings.Catalog.Backend.String()},
		{keyRedisAddr, settings.Catalog.RedisAddr},
		{keyRedisDB, settings.Catalog.RedisDB},
		{keyRedisPrefix, settings.Catalog.RedisPrefix},
		{keyCatalogFile, settings.Catalog.FilePath},
		{keyIngestBatchSize, settings.Ingest.BatchSize},
		{keyIngestRateLimit, settings.Ingest.RateLimit},
		{keyIngestSiteURL, settings.Ingest.SiteURL},
		{keyMCPPort, settings.MCP.Port},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := []struct {
		key   string
		value string
	}{
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyLLMAPIKey, settings.LLM.APIKey},
		{keyQdrantAPIKey, settings.Store.QdrantAPIKey},
		{keyMongoURI, settings.Store.MongoURI},
		{keyRedisPassword, settings.Catalog.RedisPassword},
	}
	for _, v := range secrets {
		if v.value == "" {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// SetValue parses, validates and stores a single key.
func (s *SettingsService) SetValue(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}
	value = strings.TrimSpace(value)

	if err := validateValue(key, value); err != nil {
		return err
	}

	var typed any = value
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, domain.ErrInvalidInput)
		}
		if err := validateInt(key, n); err != nil {
			return err
		}
		typed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%s must be a non-negative number: %w", key, domain.ErrInvalidInput)
		}
		typed = f
	case kindString, kindSecret:
	}

	return s.configStore.Set(key, typed)
}

// Value returns the stored value of a key as a string.
func (s *SettingsService) Value(key string) (string, error) {
	if _, ok := settingKeys[key]; !ok {
		return "", fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}
	v, ok := s.configStore.Get(key)
	if !ok {
		return "", fmt.Errorf("%s: %w", key, domain.ErrConfigNotFound)
	}
	return fmt.Sprint(v), nil
}

// Keys returns every supported setting key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks that the configured backends have what they need.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not configured: %w",
			settings.Embedding.Provider, domain.ErrEmbeddingUnavailable)
	}

	switch settings.Store.Backend {
	case domain.StoreBackendMongoDB:
		if settings.Store.MongoURI == "" {
			return fmt.Errorf("%s is required for the mongodb store: %w", keyMongoURI, domain.ErrInvalidInput)
		}
	case domain.StoreBackendQdrant:
		if settings.Store.QdrantAddr == "" {
			return fmt.Errorf("%s is required for the qdrant store: %w", keyQdrantAddr, domain.ErrInvalidInput)
		}
	case domain.StoreBackendMilvus:
		if settings.Store.MilvusAddr == "" {
			return fmt.Errorf("%s is required for the milvus store: %w", keyMilvusAddr, domain.ErrInvalidInput)
		}
	case domain.StoreBackendMemory, domain.StoreBackendSQLite:
	}

	switch settings.Catalog.Backend {
	case domain.CatalogBackendFile:
		if settings.Catalog.FilePath == "" {
			return fmt.Errorf("%s is required for the file catalog: %w", keyCatalogFile, domain.ErrInvalidInput)
		}
	case domain.CatalogBackendMongoDB:
		if settings.Store.MongoURI == "" {
			return fmt.Errorf("%s is required for the mongodb catalog: %w", keyMongoURI, domain.ErrInvalidInput)
		}
	case domain.CatalogBackendMemory, domain.CatalogBackendSQLite, domain.CatalogBackendRedis:
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func validateValue(key, value string) error {
	switch key {
	case keyEmbedProvider, keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("invalid provider %q: %w", value, domain.ErrInvalidInput)
		}
	case keyStoreBackend:
		if !domain.StoreBackend(value).IsValid() {
			return fmt.Errorf("invalid store backend %q: %w", value, domain.ErrInvalidInput)
		}
	case keyCatalogBackend:
		if !domain.CatalogBackend(value).IsValid() {
			return fmt.Errorf("invalid catalog backend %q: %w", value, domain.ErrInvalidInput)
		}
	}
	return nil
}

func validateInt(key string, n int) error {
	switch key {
	case keyRetrievalThreshold:
		if n < 1 || n > 100 {
			return fmt.Errorf("%s must be between 1 and 100: %w", key, domain.ErrInvalidInput)
		}
	case keyRetrievalK, keyIngestBatchSize:
		if n < 1 {
			return fmt.Errorf("%s must be positive: %w", key, domain.ErrInvalidInput)
		}
	case keyRedisDB, keyMCPPort:
		if n < 0 {
			return fmt.Errorf("%s must not be negative: %w", key, domain.ErrInvalidInput)
		}
	}
	return nil
}

func defaultBaseURL(p domain.AIProvider) string {
	if p.IsLocal() {
		return "http://localhost:11434"
	}
	return ""
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getAPIKey(key string, provider domain.AIProvider) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	if env := provider.APIKeyEnv(); env != "" {
		return os.Getenv(env)
	}
	return ""
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getStoreBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	b := domain.StoreBackend(s.configStore.GetString(keyStoreBackend))
	if !b.IsValid() {
		return defaultVal
	}
	return b
}

func (s *SettingsService) getCatalogBackend(defaultVal domain.CatalogBackend) domain.CatalogBackend {
	b := domain.CatalogBackend(s.configStore.GetString(keyCatalogBackend))
	if !b.IsValid() {
		return defaultVal
	}
	return b
}
