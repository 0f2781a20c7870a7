// Package mcp exposes dungeon and quest retrieval as MCP tools, so an
// assistant can call retrieve_document during a conversation.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
