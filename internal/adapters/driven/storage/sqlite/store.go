package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/storage/ranking"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
)

// Store is a SQLite database holding chunks and the title catalog.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.dpln/data/dpln.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".dpln", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "dpln.db")

	// WAL lets the MCP server read while an ingest writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// TitleCatalog returns a CatalogWriter interface backed by this store.
func (s *Store) TitleCatalog() driven.CatalogWriter {
	return &titleCatalog{store: s}
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// Search loads the partition's candidates and ranks them in-process.
func (c *chunkStore) Search(ctx context.Context, req domain.SearchRequest) ([]domain.ScoredChunk, error) {
	if !req.Partition.IsValid() {
		return nil, fmt.Errorf("sqlite: search %q: %w", req.Partition, domain.ErrUnknownPartition)
	}

	query := `SELECT id, title, text, origin, position, embedding, metadata
		FROM chunks WHERE partition = ?`
	args := []any{string(req.Partition)}
	if req.IsFiltered() {
		query += " AND title = ?"
		args = append(args, req.TitleFilter)
	}
	query += " ORDER BY rowid"

	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: search: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunk.Partition = req.Partition
		candidates = append(candidates, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: search: %w", err)
	}

	hits, err := ranking.TopK(req.Vector, candidates, req.K)
	if err != nil {
		return nil, fmt.Errorf("sqlite: search: %w", err)
	}
	return hits, nil
}

// Upsert inserts or replaces chunks in a single transaction.
func (c *chunkStore) Upsert(ctx context.Context, partition domain.Partition, chunks []domain.Chunk) error {
	if !partition.IsValid() {
		return fmt.Errorf("sqlite: upsert %q: %w", partition, domain.ErrUnknownPartition)
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (partition, id, title, text, origin, position, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(partition, id) DO UPDATE SET
			title = excluded.title,
			text = excluded.text,
			origin = excluded.origin,
			position = excluded.position,
			embedding = excluded.embedding,
			metadata = excluded.metadata,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("sqlite: preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		chunk := &chunks[i]
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("sqlite: marshalling metadata for %s: %w", chunk.ID, err)
		}
		if chunk.Metadata == nil {
			metadataJSON = []byte("{}")
		}

		if _, err := stmt.ExecContext(ctx, string(partition), chunk.ID, chunk.Title, chunk.Text,
			chunk.Origin, chunk.Position, float32SliceToBytes(chunk.Embedding), string(metadataJSON)); err != nil {
			return fmt.Errorf("sqlite: saving chunk %s: %w", chunk.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteByOrigin removes the partition's chunks split from origin.
func (c *chunkStore) DeleteByOrigin(ctx context.Context, partition domain.Partition, origin string) error {
	if !partition.IsValid() {
		return fmt.Errorf("sqlite: delete %q: %w", partition, domain.ErrUnknownPartition)
	}
	_, err := c.store.db.ExecContext(ctx,
		"DELETE FROM chunks WHERE partition = ? AND origin = ?", string(partition), origin)
	if err != nil {
		return fmt.Errorf("sqlite: delete origin %s: %w", origin, err)
	}
	return nil
}

// Count returns the number of chunks in the partition.
func (c *chunkStore) Count(ctx context.Context, partition domain.Partition) (int, error) {
	var n int
	row := c.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE partition = ?", string(partition))
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count: %w", err)
	}
	return n, nil
}

// Close is a no-op; the owning Store closes the database.
func (c *chunkStore) Close() error {
	return nil
}

// ==================== Title Catalog ====================

// titleCatalog implements driven.CatalogWriter.
type titleCatalog struct {
	store *Store
}

var _ driven.CatalogWriter = (*titleCatalog)(nil)

// ListTitles returns the partition's titles in insertion order.
func (t *titleCatalog) ListTitles(ctx context.Context, partition domain.Partition) ([]string, error) {
	rows, err := t.store.db.QueryContext(ctx,
		"SELECT title FROM titles WHERE partition = ? ORDER BY seq", string(partition))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list titles: %w", err)
	}
	defer rows.Close()

	titles := []string{}
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("sqlite: scanning title: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// AddTitles appends titles not already present.
func (t *titleCatalog) AddTitles(ctx context.Context, partition domain.Partition, titles ...string) error {
	if !partition.IsValid() {
		return fmt.Errorf("sqlite: add titles %q: %w", partition, domain.ErrUnknownPartition)
	}

	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, title := range titles {
		if title == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO titles (partition, title) VALUES (?, ?)",
			string(partition), title); err != nil {
			return fmt.Errorf("sqlite: adding title %q: %w", title, err)
		}
	}

	return tx.Commit()
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	var metadataJSON string

	if err := rows.Scan(&chunk.ID, &chunk.Title, &chunk.Text, &chunk.Origin,
		&chunk.Position, &embeddingBlob, &metadataJSON); err != nil {
		return nil, fmt.Errorf("sqlite: scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshaling chunk metadata: %w", err)
		}
	}

	return &chunk, nil
}
