package yamlfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

const sample = `
dungeon:
  - Manoir de Katrapat
  - Donjon du Bouftou Royal
  - Manoir de Katrapat
quest:
  - La quête du Dofus Ocre
`

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	catalog, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, catalog.Path())

	titles, err := catalog.ListTitles(context.Background(), domain.PartitionDungeon)
	require.NoError(t, err)
	assert.Equal(t, []string{"Manoir de Katrapat", "Donjon du Bouftou Royal"}, titles)

	titles[0] = "mutated"
	again, _ := catalog.ListTitles(context.Background(), domain.PartitionDungeon)
	assert.Equal(t, "Manoir de Katrapat", again[0])
}

func TestParse_UnknownContentType(t *testing.T) {
	_, err := Parse([]byte("raid:\n  - Nidas\n"))
	assert.ErrorIs(t, err, domain.ErrUnknownPartition)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("dungeon: [unterminated"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestListTitles_EmptyPartition(t *testing.T) {
	catalog := &Catalog{titles: map[domain.Partition][]string{}}

	titles, err := catalog.ListTitles(context.Background(), domain.PartitionQuest)
	require.NoError(t, err)
	assert.NotNil(t, titles)
	assert.Empty(t, titles)
}
