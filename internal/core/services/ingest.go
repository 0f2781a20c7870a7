package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driving"
	"github.com/custodia-labs/dpln-rag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// chunkNamespace scopes name-based chunk IDs.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("dpln-rag/chunk"))

// IngestService splits source pages, embeds their sections and stores them.
type IngestService struct {
	splitter  driven.SectionSplitter
	embedder  driven.EmbeddingService
	store     driven.ChunkStore
	catalog   driven.CatalogWriter
	metrics   driven.RetrievalMetrics
	limiter   *rate.Limiter
	batchSize int
	siteURL   string
}

// NewIngestService creates a new ingest service.
// catalog is optional; when nil, page titles are not recorded.
func NewIngestService(
	splitter driven.SectionSplitter,
	embedder driven.EmbeddingService,
	store driven.ChunkStore,
	catalog driven.CatalogWriter,
	settings domain.IngestSettings,
) *IngestService {
	batchSize := settings.BatchSize
	if batchSize <= 0 {
		batchSize = domain.DefaultAppSettings().Ingest.BatchSize
	}

	limit := rate.Inf
	if settings.RateLimit > 0 {
		limit = rate.Limit(settings.RateLimit)
	}

	return &IngestService{
		splitter:  splitter,
		embedder:  embedder,
		store:     store,
		catalog:   catalog,
		limiter:   rate.NewLimiter(limit, 1),
		batchSize: batchSize,
		siteURL:   strings.TrimRight(settings.SiteURL, "/"),
	}
}

// SetMetrics sets the recorder for ingested chunk counts.
func (s *IngestService) SetMetrics(m driven.RetrievalMetrics) {
	s.metrics = m
}

// IngestFile runs the split, embed, store and catalog steps for one page.
func (s *IngestService) IngestFile(ctx context.Context, partition domain.Partition, path string) (int, error) {
	if !partition.IsValid() {
		return 0, fmt.Errorf("ingest: %q: %w", partition, domain.ErrUnknownPartition)
	}

	// 1. READ
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("ingest: read %s: %w", path, err)
	}

	// 2. SPLIT
	split, err := s.splitter.Split(ctx, domain.SourceDocument{Path: path, Content: content})
	if err != nil {
		return 0, fmt.Errorf("ingest: split %s: %w", path, err)
	}
	chunks := s.buildChunks(partition, path, split)
	logger.Debug("%s: title %q, %d sections", path, split.Title, len(chunks))

	// 3. EMBED
	if err := s.embedChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("ingest: embed %s: %w", path, err)
	}

	// 4. STORE
	// Sections removed from the page since the last run go with the old rows.
	if err := s.store.DeleteByOrigin(ctx, partition, path); err != nil {
		return 0, fmt.Errorf("ingest: replace %s: %w", path, err)
	}
	if err := s.store.Upsert(ctx, partition, chunks); err != nil {
		return 0, fmt.Errorf("ingest: store %s: %w", path, err)
	}

	// 5. CATALOG
	if s.catalog != nil {
		if err := s.catalog.AddTitles(ctx, partition, split.Title); err != nil {
			return 0, fmt.Errorf("ingest: catalog %s: %w", path, err)
		}
	}

	if s.metrics != nil {
		s.metrics.ObserveIngest(partition, len(chunks))
	}
	return len(chunks), nil
}

// IngestPaths ingests every supported file found under paths.
// Directories are walked recursively; files are processed in sorted order.
func (s *IngestService) IngestPaths(
	ctx context.Context, partition domain.Partition, paths []string, opts driving.IngestOptions,
) (*domain.IngestStats, error) {
	logger.Section("Ingest")
	stats := &domain.IngestStats{
		FailedFilesList: []string{},
		StartedAt:       time.Now().UTC(),
	}

	files, err := s.collectFiles(paths)
	if err != nil {
		return stats, err
	}
	stats.TotalFiles = len(files)
	logger.Info("Ingesting %d files into %s", len(files), partition.Collection())

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		n, err := s.IngestFile(ctx, partition, file)
		if err != nil {
			stats.FailedFiles++
			stats.FailedFilesList = append(stats.FailedFilesList, file)
			if !opts.SkipErrors {
				stats.FinishedAt = time.Now().UTC()
				return stats, err
			}
			logger.Warn("Skipping %s: %v", file, err)
			continue
		}
		stats.ProcessedFiles++
		stats.TotalChunks += n
	}

	stats.FinishedAt = time.Now().UTC()
	return stats, nil
}

// Supports reports whether the splitter handles the file's extension.
func (s *IngestService) Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range s.splitter.Extensions() {
		if e == ext {
			return true
		}
	}
	return false
}

func (s *IngestService) collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("ingest: %w", err)
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && s.Supports(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("ingest: walk %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// buildChunks turns sections into chunks. Every chunk carries the page title
// and is prefixed with a "Source:" line naming it.
func (s *IngestService) buildChunks(partition domain.Partition, path string, split *domain.SplitDocument) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(split.Sections))
	for i, sec := range split.Sections {
		meta := map[string]any{
			domain.MetaTitle:    split.Title,
			domain.MetaSource:   path,
			domain.MetaFilename: sec.Filename + ".md",
		}
		if s.siteURL != "" {
			meta[domain.MetaURL] = s.siteURL + "/" + split.Stem + ".html"
		}

		chunks = append(chunks, domain.Chunk{
			ID:        ChunkID(partition, split.Stem, i),
			Partition: partition,
			Title:     split.Title,
			Text:      "Source: " + split.Title + "\n\n" + sec.Content,
			Origin:    path,
			Position:  i,
			Metadata:  meta,
		})
	}
	return chunks
}

func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))

		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return err
		}
		if len(vectors) != len(texts) {
			return errors.New("embedding count does not match batch size")
		}
		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
	}
	return nil
}

// ChunkID derives a stable chunk ID from its partition, page stem and position.
func ChunkID(partition domain.Partition, stem string, position int) string {
	name := fmt.Sprintf("%s/%s/%d", partition, stem, position)
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}
