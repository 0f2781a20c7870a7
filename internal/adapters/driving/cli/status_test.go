package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

func TestStatusCmd(t *testing.T) {
	statuses := []domain.PartitionStatus{
		{Partition: domain.PartitionDungeon, Chunks: 120, Titles: 14},
		{Partition: domain.PartitionQuest, Chunks: 8, Titles: 2},
	}

	t.Run("index only", func(t *testing.T) {
		setupTestServices(t, &Services{Catalog: &mockCatalogService{statuses: statuses}})

		out, err := execute(t, "status")
		require.NoError(t, err)
		assert.Contains(t, out, "[Index]")
		assert.Contains(t, out, "120 chunks")
		assert.Contains(t, out, "Vec_Dungeons")
		assert.Contains(t, out, "Vec_Quests")
		assert.NotContains(t, out, "[Backends]")
	})

	t.Run("with settings", func(t *testing.T) {
		setupTestServices(t, &Services{Catalog: &mockCatalogService{statuses: statuses}})
		settings := newMockSettingsService()
		settings.embedErr = errors.New("connection refused")
		SetSettingsService(settings)

		out, err := execute(t, "status")
		require.NoError(t, err)
		assert.Contains(t, out, "[Backends]")
		assert.Contains(t, out, "Ollama (local)")
		assert.Contains(t, out, "unreachable: connection refused")
	})
}
