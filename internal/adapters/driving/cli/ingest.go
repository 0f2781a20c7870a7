package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driving"
	"github.com/custodia-labs/dpln-rag/internal/logger"
)

var (
	ingestSkipErrors bool
	ingestStatsPath  string
	ingestWatch      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [type] [path...]",
	Short: "Index guide pages into a content type",
	Long: `Splits HTML guide pages into sections, embeds them and stores them
under the content type (dungeon or quest). Directories are walked
recursively. Each page title is added to the title catalog.

Re-ingesting a page replaces its sections.

With --watch, files that are created or written under the given paths
are ingested again until interrupted.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestSkipErrors, "skip-errors", true, "continue past files that fail")
	ingestCmd.Flags().StringVar(&ingestStatsPath, "stats", "", "write run statistics as JSON to this file")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest files when they change")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	partition, ok := domain.ParsePartition(args[0])
	if !ok {
		return fmt.Errorf("%w: %q (valid: %v)", domain.ErrUnknownPartition, args[0], domain.PartitionNames())
	}
	paths := args[1:]

	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	stats, err := ingestService.IngestPaths(cmd.Context(), partition, paths, driving.IngestOptions{
		SkipErrors: ingestSkipErrors,
	})
	if stats != nil {
		printIngestStats(cmd, stats)
		if ingestStatsPath != "" {
			if werr := writeStats(ingestStatsPath, stats); werr != nil {
				return werr
			}
		}
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if !ingestWatch {
		return nil
	}

	cmd.Println("Watching for changes (Ctrl+C to stop)...")
	return watchPaths(cmd.Context(), paths, ingestService.Supports, func(path string) {
		n, err := ingestService.IngestFile(cmd.Context(), partition, path)
		if err != nil {
			logger.Warn("Re-ingest %s: %v", path, err)
			return
		}
		cmd.Printf("Re-ingested %s (%d sections)\n", path, n)
	})
}

func printIngestStats(cmd *cobra.Command, stats *domain.IngestStats) {
	cmd.Printf("Files:  %d processed, %d failed, %d total\n", stats.ProcessedFiles, stats.FailedFiles, stats.TotalFiles)
	cmd.Printf("Chunks: %d\n", stats.TotalChunks)
	for _, f := range stats.FailedFilesList {
		cmd.Printf("  failed: %s\n", f)
	}
}

func writeStats(path string, stats *domain.IngestStats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write stats: %w", err)
	}
	return nil
}

// watchPaths calls onChange for every supported file created or written
// under paths. It blocks until ctx is cancelled.
func watchPaths(ctx context.Context, paths []string, supports func(string) bool, onChange func(string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	scope, err := newWatchScope(paths)
	if err != nil {
		return err
	}
	for _, root := range paths {
		if err := addWatchDirs(watcher, root); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !scope.contains(event.Name) {
				continue
			}
			if isNewDir(event) {
				if err := addWatchDirs(watcher, event.Name); err != nil {
					logger.Warn("Watch %s: %v", event.Name, err)
				}
				continue
			}
			if shouldReingest(event, supports) {
				onChange(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// watchScope is the set of paths named on the command line. A file root
// is watched through its parent directory, so sibling events must be
// dropped.
type watchScope struct {
	dirs  []string
	files map[string]bool
}

func newWatchScope(paths []string) (*watchScope, error) {
	scope := &watchScope{files: make(map[string]bool)}
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", root, err)
		}
		if info.IsDir() {
			scope.dirs = append(scope.dirs, filepath.Clean(root))
		} else {
			scope.files[filepath.Clean(root)] = true
		}
	}
	return scope, nil
}

// contains reports whether name is a named file or lies under a named directory.
func (w *watchScope) contains(name string) bool {
	name = filepath.Clean(name)
	if w.files[name] {
		return true
	}
	for _, dir := range w.dirs {
		rel, err := filepath.Rel(dir, name)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// addWatchDirs watches root, or its directory when root is a file, and
// every directory beneath it.
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if isHidden(path) && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

func isNewDir(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) {
		return false
	}
	info, err := os.Stat(event.Name)
	return err == nil && info.IsDir()
}

// shouldReingest accepts create and write events on visible, supported files.
func shouldReingest(event fsnotify.Event, supports func(string) bool) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	if isHidden(event.Name) || !supports(event.Name) {
		return false
	}
	info, err := os.Stat(event.Name)
	return err == nil && info.Mode().IsRegular()
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
