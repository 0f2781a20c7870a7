package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownPartition indicates a content type outside the partition table.
	ErrUnknownPartition = errors.New("unknown partition")

	// ErrUnsupportedType indicates an unknown backend or provider name.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrDimensionMismatch indicates a vector whose length differs from the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrConfigNotFound indicates a configuration key has no value.
	ErrConfigNotFound = errors.New("config key not found")

	// Infrastructure availability errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answer synthesis is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or could not be reached.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreUnavailable indicates the chunk store could not be reached.
	ErrStoreUnavailable = errors.New("chunk store unavailable")

	// ErrCatalogUnavailable indicates the title catalog could not be reached.
	ErrCatalogUnavailable = errors.New("title catalog unavailable")
)
