// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

// RetrievalCompleted carries a retrieval outcome back to the model.
// Err is set only for infrastructure failures; semantic failures are in Result.
type RetrievalCompleted struct {
	Partition domain.Partition
	Result    domain.Result
	Err       error
}

// PartitionChanged is sent when the content type selection changes.
type PartitionChanged struct {
	Partition domain.Partition
}

// StatusLoaded carries per-partition counts for the header.
type StatusLoaded struct {
	Statuses []domain.PartitionStatus
	Err      error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the retrieval input and results view.
	ViewSearch ViewType = iota
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
