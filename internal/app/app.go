// Package app assembles the services behind the CLI, MCP server and TUI
// from the persisted settings.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/config/file"
	prommetrics "github.com/custodia-labs/dpln-rag/internal/adapters/driven/metrics/prometheus"
	htmlsplitter "github.com/custodia-labs/dpln-rag/internal/adapters/driven/splitter/html"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/storage/milvus"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/storage/mongodb"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/storage/qdrant"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/storage/yamlfile"
	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
	"github.com/custodia-labs/dpln-rag/internal/core/services"
	"github.com/custodia-labs/dpln-rag/internal/logger"
)

// Options tunes container construction.
type Options struct {
	// PromptDir overrides ~/.dpln/prompts.
	PromptDir string

	// Validate pings the AI providers before returning.
	Validate bool

	// Embedder replaces the configured embedding provider. Used by tests.
	Embedder driven.EmbeddingService
}

// Container holds every wired service. Close releases the backends.
type Container struct {
	Settings domain.AppSettings

	Retrieval *services.RetrievalService
	Resolver  *services.SubjectResolver
	Ingest    *services.IngestService
	Catalog   *services.CatalogService
	Answer    *services.AnswerService
	Metrics   *prommetrics.Metrics

	Embedder driven.EmbeddingService
	LLM      driven.LLMService
	Store    driven.ChunkStore

	// Warnings are non-fatal issues found while wiring.
	Warnings []string

	closers []func() error
}

// New builds a container from settings. On failure, anything already
// opened is closed.
func New(ctx context.Context, settings domain.AppSettings, opts Options) (*Container, error) {
	c := &Container{Settings: settings}
	if err := c.wire(ctx, opts); err != nil {
		_ = c.Close()
		return nil, err
	}
	for _, w := range c.Warnings {
		logger.Warn("%s", w)
	}
	return c, nil
}

func (c *Container) wire(ctx context.Context, opts Options) error {
	settings := c.Settings

	embedder := opts.Embedder
	if embedder == nil {
		aiResult, err := ai.Initialise(&settings, opts.Validate)
		if err != nil {
			return err
		}
		embedder = aiResult.EmbeddingService
		c.LLM = aiResult.LLMService
		c.Warnings = append(c.Warnings, aiResult.Warnings...)
		c.closers = append(c.closers, func() error { aiResult.Close(); return nil })
	}
	c.Embedder = embedder

	shared := &sharedBackends{}
	store, err := c.buildStore(ctx, settings.Store, shared)
	if err != nil {
		return err
	}
	c.Store = store

	catalog, err := c.buildCatalog(ctx, settings, shared)
	if err != nil {
		return err
	}

	c.Metrics = prommetrics.New()

	resolver := services.NewSubjectResolver(catalog, settings.Retrieval.Threshold)
	resolver.SetMetrics(c.Metrics)
	c.Resolver = resolver

	retrieval := services.NewRetrievalService(embedder, store, resolver, settings.Retrieval.K)
	retrieval.SetMetrics(c.Metrics)
	c.Retrieval = retrieval

	writer, _ := catalog.(driven.CatalogWriter)
	ingest := services.NewIngestService(htmlsplitter.New(), embedder, store, writer, settings.Ingest)
	ingest.SetMetrics(c.Metrics)
	c.Ingest = ingest

	c.Catalog = services.NewCatalogService(catalog, store)

	c.Answer = services.NewAnswerService(retrieval, c.LLM)
	prompts, err := file.NewPromptStore(opts.PromptDir)
	if err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("prompt store unavailable, using built-in prompts: %v", err))
	} else {
		c.Answer.SetPromptStore(prompts)
	}
	return nil
}

// Close releases backends in reverse order of acquisition.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// sharedBackends lets the catalog reuse a connection opened for the store.
type sharedBackends struct {
	sqlite *sqlite.Store
	mongo  *mongodb.Store
}

func (c *Container) buildStore(ctx context.Context, cfg domain.StoreSettings, shared *sharedBackends) (driven.ChunkStore, error) {
	logger.Debug("Chunk store backend: %s", cfg.Backend)

	switch cfg.Backend {
	case domain.StoreBackendMemory:
		return memory.NewChunkStore(), nil

	case domain.StoreBackendSQLite:
		db, err := c.sqliteStore(cfg.DataDir, shared)
		if err != nil {
			return nil, err
		}
		return db.ChunkStore(), nil

	case domain.StoreBackendQdrant:
		store, err := qdrant.New(cfg.QdrantAddr, cfg.QdrantAPIKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		c.closers = append(c.closers, store.Close)
		return store, nil

	case domain.StoreBackendMongoDB:
		store, err := c.mongoStore(ctx, cfg, shared)
		if err != nil {
			return nil, err
		}
		return store, nil

	case domain.StoreBackendMilvus:
		store, err := milvus.New(ctx, cfg.MilvusAddr)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		c.closers = append(c.closers, store.Close)
		return store, nil

	default:
		return nil, fmt.Errorf("app: store backend %q: %w", cfg.Backend, domain.ErrUnsupportedType)
	}
}

func (c *Container) buildCatalog(ctx context.Context, settings domain.AppSettings, shared *sharedBackends) (driven.TitleCatalog, error) {
	cfg := settings.Catalog
	logger.Debug("Title catalog backend: %s", cfg.Backend)

	switch cfg.Backend {
	case domain.CatalogBackendMemory:
		return memory.NewTitleCatalog(nil), nil

	case domain.CatalogBackendSQLite:
		db, err := c.sqliteStore(settings.Store.DataDir, shared)
		if err != nil {
			return nil, err
		}
		return db.TitleCatalog(), nil

	case domain.CatalogBackendRedis:
		catalog, err := redis.Connect(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
		}
		c.closers = append(c.closers, catalog.Close)
		return catalog, nil

	case domain.CatalogBackendMongoDB:
		store, err := c.mongoStore(ctx, settings.Store, shared)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
		}
		return mongodb.NewCatalog(store.Database()), nil

	case domain.CatalogBackendFile:
		path := cfg.FilePath
		if path == "" {
			path = filepath.Join(configDir(settings), "catalog.yaml")
		}
		catalog, err := yamlfile.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
		}
		return catalog, nil

	default:
		return nil, fmt.Errorf("app: catalog backend %q: %w", cfg.Backend, domain.ErrUnsupportedType)
	}
}

func (c *Container) sqliteStore(dataDir string, shared *sharedBackends) (*sqlite.Store, error) {
	if shared.sqlite != nil {
		return shared.sqlite, nil
	}
	db, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	c.closers = append(c.closers, db.Close)
	shared.sqlite = db
	return db, nil
}

func (c *Container) mongoStore(ctx context.Context, cfg domain.StoreSettings, shared *sharedBackends) (*mongodb.Store, error) {
	if shared.mongo != nil {
		return shared.mongo, nil
	}
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("%w: store.mongodb.uri is not set", domain.ErrStoreUnavailable)
	}
	store, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	c.closers = append(c.closers, store.Close)
	shared.mongo = store
	return store, nil
}

// configDir is the directory holding the default catalog file: the parent
// of the data directory when one is set, else ~/.dpln.
func configDir(settings domain.AppSettings) string {
	if settings.Store.DataDir != "" {
		return filepath.Dir(settings.Store.DataDir)
	}
	return DefaultDir()
}
