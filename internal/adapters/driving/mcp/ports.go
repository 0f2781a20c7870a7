package mcp

import (
	"net/http"

	"github.com/custodia-labs/dpln-rag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval backs the retrieve_document tool.
	Retrieval driving.RetrievalService

	// Catalog backs list_titles and the catalog resources.
	Catalog driving.CatalogService

	// Answer backs the ask tool. Registered only when set.
	Answer driving.AnswerService

	// Metrics is mounted at /metrics when serving over HTTP.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
