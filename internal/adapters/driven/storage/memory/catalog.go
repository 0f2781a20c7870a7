package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
)

// Ensure TitleCatalog implements the interface.
var _ driven.CatalogWriter = (*TitleCatalog)(nil)

// TitleCatalog is an in-memory title catalog that keeps insertion order.
type TitleCatalog struct {
	mu     sync.RWMutex
	titles map[domain.Partition][]string
}

// NewTitleCatalog creates a catalog, optionally seeded with titles.
func NewTitleCatalog(seed map[domain.Partition][]string) *TitleCatalog {
	c := &TitleCatalog{titles: make(map[domain.Partition][]string)}
	for p, titles := range seed {
		c.titles[p] = append([]string(nil), titles...)
	}
	return c
}

// ListTitles returns a copy of the partition's titles.
func (c *TitleCatalog) ListTitles(_ context.Context, partition domain.Partition) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.titles[partition]...), nil
}

// AddTitles appends titles that are not already present.
func (c *TitleCatalog) AddTitles(_ context.Context, partition domain.Partition, titles ...string) error {
	if !partition.IsValid() {
		return fmt.Errorf("memory: %q: %w", partition, domain.ErrUnknownPartition)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	existing := make(map[string]bool, len(c.titles[partition]))
	for _, t := range c.titles[partition] {
		existing[t] = true
	}
	for _, t := range titles {
		if t == "" || existing[t] {
			continue
		}
		existing[t] = true
		c.titles[partition] = append(c.titles[partition], t)
	}
	return nil
}
