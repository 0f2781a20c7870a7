package driving

import "github.com/custodia-labs/dpln-rag/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, filling defaults for unset keys.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetValue validates and stores a single dot key.
	SetValue(key, value string) error

	// Value returns the raw stored value of a key.
	Value(key string) (string, error)

	// Keys returns every supported setting key, sorted.
	Keys() []string

	// Validate checks that the settings can build the configured backends.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
