package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve_document tool.
type RetrieveInput struct {
	Query       string `json:"query" jsonschema:"the question to search the guides for"`
	Type        string `json:"type" jsonschema:"content type to search: dungeon or quest"`
	SubjectName string `json:"subject_name,omitempty" jsonschema:"name of the dungeon or quest the question is about, if known"`
}

// RetrieveOutput is the output schema for the retrieve_document tool.
// A semantic failure is a single document whose metadata has error=true.
type RetrieveOutput struct {
	Documents []domain.ToolDocument `json:"documents"`
	Count     int                   `json:"count"`
}

// ListTitlesInput is the input schema for the list_titles tool.
type ListTitlesInput struct {
	Type string `json:"type" jsonschema:"content type: dungeon or quest"`
}

// ListTitlesOutput is the output schema for the list_titles tool.
type ListTitlesOutput struct {
	Type   string   `json:"type"`
	Titles []string `json:"titles"`
	Count  int      `json:"count"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question    string `json:"question" jsonschema:"the question to answer"`
	Type        string `json:"type" jsonschema:"content type: dungeon or quest"`
	SubjectName string `json:"subject_name,omitempty" jsonschema:"name of the dungeon or quest, if known"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer string `json:"answer"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "retrieve_document",
		Description: "Retrieve guide sections about Dofus dungeons or quests. " +
			"Set subject_name when the question names a specific dungeon or quest; " +
			"misspelled names are matched to the closest known title.",
	}, s.handleRetrieve)

	if s.ports.Catalog != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_titles",
			Description: "List the known dungeon or quest titles",
		}, s.handleListTitles)
	}

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question about a dungeon or quest from the indexed guides",
		}, s.handleAsk)
	}
}

// handleRetrieve handles the retrieve_document tool invocation.
// Infrastructure errors are returned as tool errors.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	result, err := s.ports.Retrieval.Retrieve(ctx, input.Type, input.Query, input.SubjectName)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	docs := result.Documents()
	return nil, RetrieveOutput{Documents: docs, Count: len(docs)}, nil
}

// handleListTitles handles the list_titles tool invocation.
func (s *Server) handleListTitles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListTitlesInput,
) (*mcp.CallToolResult, ListTitlesOutput, error) {
	partition, ok := domain.ParsePartition(input.Type)
	if !ok {
		return nil, ListTitlesOutput{}, fmt.Errorf("%w: %q", domain.ErrUnknownPartition, input.Type)
	}

	titles, err := s.ports.Catalog.List(ctx, partition)
	if err != nil {
		return nil, ListTitlesOutput{}, err
	}
	if titles == nil {
		titles = []string{}
	}

	return nil, ListTitlesOutput{
		Type:   partition.String(),
		Titles: titles,
		Count:  len(titles),
	}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.Answer(ctx, input.Type, input.Question, input.SubjectName)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Answer: answer}, nil
}
