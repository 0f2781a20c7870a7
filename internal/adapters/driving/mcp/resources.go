package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for dpln resources.
	uriScheme = "dpln://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Catalog == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "partitions",
		Name:        "partitions",
		Description: "Content types with their chunk and title counts",
		MIMEType:    "application/json",
	}, s.handlePartitionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "catalog/{partition}",
		Name:        "catalog",
		Description: "Canonical titles of a content type",
		MIMEType:    "application/json",
	}, s.handleCatalogResource)
}

// handlePartitionsResource returns the status of every partition.
func (s *Server) handlePartitionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	statuses, err := s.ports.Catalog.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}

	type partitionInfo struct {
		Name       string `json:"name"`
		Collection string `json:"collection"`
		Chunks     int    `json:"chunks"`
		Titles     int    `json:"titles"`
	}

	infos := make([]partitionInfo, len(statuses))
	for i, st := range statuses {
		infos[i] = partitionInfo{
			Name:       st.Partition.String(),
			Collection: st.Partition.Collection(),
			Chunks:     st.Chunks,
			Titles:     st.Titles,
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// handleCatalogResource returns the titles of one partition.
func (s *Server) handleCatalogResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	partition, ok := domain.ParsePartition(extractPartition(req.Params.URI))
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	titles, err := s.ports.Catalog.List(ctx, partition)
	if err != nil {
		return nil, fmt.Errorf("listing titles: %w", err)
	}
	if titles == nil {
		titles = []string{}
	}

	return jsonResource(req.Params.URI, titles)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractPartition extracts the partition from a URI like dpln://catalog/{partition}.
func extractPartition(uri string) string {
	const prefix = uriScheme + "catalog/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
