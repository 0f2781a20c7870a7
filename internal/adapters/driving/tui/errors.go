// Package tui provides an interactive terminal user interface for dpln.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("tui: retrieval service is required")
