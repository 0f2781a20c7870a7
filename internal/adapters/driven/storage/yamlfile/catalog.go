// Package yamlfile provides a read-only title catalog loaded from a YAML file.
//
// The file maps content types to title lists:
//
//	dungeon:
//	  - Manoir de Katrapat
//	  - Donjon du Bouftou Royal
//	quest:
//	  - La quête du Dofus Ocre
//
// The same format is accepted by `dpln catalog import`.
package yamlfile

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
)

// Ensure Catalog implements the interface.
var _ driven.TitleCatalog = (*Catalog)(nil)

// Catalog serves titles read once from a YAML file.
type Catalog struct {
	path   string
	titles map[domain.Partition][]string
}

// Open reads and validates the catalog file.
func Open(path string) (*Catalog, error) {
	titles, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Catalog{path: path, titles: titles}, nil
}

// Load parses a catalog file into per-partition title lists.
// Unknown content types are rejected; duplicate titles keep their first position.
func Load(path string) (map[domain.Partition][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("yamlfile: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes catalog YAML.
func Parse(data []byte) (map[domain.Partition][]string, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("yamlfile: parse: %w", err)
	}

	out := make(map[domain.Partition][]string, len(raw))
	for name, list := range raw {
		p, ok := domain.ParsePartition(name)
		if !ok {
			return nil, fmt.Errorf("yamlfile: content type %q: %w", name, domain.ErrUnknownPartition)
		}
		seen := make(map[string]bool, len(list))
		for _, title := range list {
			if title == "" || seen[title] {
				continue
			}
			seen[title] = true
			out[p] = append(out[p], title)
		}
	}
	return out, nil
}

// ListTitles returns a copy of the partition's titles in file order.
func (c *Catalog) ListTitles(_ context.Context, partition domain.Partition) ([]string, error) {
	if !partition.IsValid() {
		return nil, fmt.Errorf("yamlfile: list titles %q: %w", partition, domain.ErrUnknownPartition)
	}
	return append([]string{}, c.titles[partition]...), nil
}

// Path returns the catalog file path.
func (c *Catalog) Path() string {
	return c.path
}
