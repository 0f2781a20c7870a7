// Package prometheus exposes retrieval, resolution and ingest metrics in the
// Prometheus text format.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.RetrievalMetrics = (*Metrics)(nil)

const namespace = "dpln"

// Metrics records observations into its own registry.
type Metrics struct {
	registry *prometheus.Registry

	retrievals        *prometheus.CounterVec
	retrievalDuration *prometheus.HistogramVec
	resolutions       *prometheus.CounterVec
	resolutionScore   *prometheus.HistogramVec
	ingestedChunks    *prometheus.CounterVec
}

// New creates a metrics collector backed by a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		retrievals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrievals_total",
			Help:      "Retrieve calls by partition, outcome and whether a title filter applied.",
		}, []string{"partition", "outcome", "filtered"}),
		retrievalDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "End-to-end retrieve latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"partition"}),
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subject_resolutions_total",
			Help:      "Subject resolutions by partition and whether the confidence floor was met.",
		}, []string{"partition", "matched"}),
		resolutionScore: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "subject_resolution_score",
			Help:      "Best similarity ratio seen per resolution.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}, []string{"partition"}),
		ingestedChunks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_chunks_total",
			Help:      "Chunks written by ingestion.",
		}, []string{"partition"}),
	}
}

// ObserveRetrieval records one retrieve call.
func (m *Metrics) ObserveRetrieval(partition, outcome string, filtered bool, elapsed time.Duration) {
	m.retrievals.WithLabelValues(partition, outcome, strconv.FormatBool(filtered)).Inc()
	m.retrievalDuration.WithLabelValues(partition).Observe(elapsed.Seconds())
}

// ObserveResolution records one subject resolution.
func (m *Metrics) ObserveResolution(partition domain.Partition, matched bool, score int) {
	m.resolutions.WithLabelValues(partition.String(), strconv.FormatBool(matched)).Inc()
	m.resolutionScore.WithLabelValues(partition.String()).Observe(float64(score))
}

// ObserveIngest records chunks written to a partition.
func (m *Metrics) ObserveIngest(partition domain.Partition, chunks int) {
	m.ingestedChunks.WithLabelValues(partition.String()).Add(float64(chunks))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry at a /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
