package prometheus

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
)

func TestMetrics_ObserveRetrieval(t *testing.T) {
	m := New()

	m.ObserveRetrieval("dungeon", driven.OutcomeOK, true, 20*time.Millisecond)
	m.ObserveRetrieval("dungeon", driven.OutcomeOK, true, 30*time.Millisecond)
	m.ObserveRetrieval("raid", driven.OutcomeInvalidPartition, false, time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.retrievals.WithLabelValues("dungeon", "ok", "true")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.retrievals.WithLabelValues("raid", "invalid_partition", "false")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.retrievalDuration))
}

func TestMetrics_ObserveResolution(t *testing.T) {
	m := New()

	m.ObserveResolution(domain.PartitionDungeon, true, 89)
	m.ObserveResolution(domain.PartitionDungeon, false, 12)

	assert.InDelta(t, 1, testutil.ToFloat64(m.resolutions.WithLabelValues("dungeon", "true")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.resolutions.WithLabelValues("dungeon", "false")), 0)
}

func TestMetrics_ObserveIngest(t *testing.T) {
	m := New()

	m.ObserveIngest(domain.PartitionQuest, 3)
	m.ObserveIngest(domain.PartitionQuest, 2)

	assert.InDelta(t, 5, testutil.ToFloat64(m.ingestedChunks.WithLabelValues("quest")), 0)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveIngest(domain.PartitionDungeon, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `dpln_ingested_chunks_total{partition="dungeon"} 1`)
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveIngest(domain.PartitionDungeon, 1)

	assert.NotSame(t, a.Registry(), b.Registry())
	assert.Equal(t, 0, testutil.CollectAndCount(b.ingestedChunks))
}
