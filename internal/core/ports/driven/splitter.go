package driven

import (
	"context"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

// SectionSplitter turns a raw source page into an ordered list of titled sections.
type SectionSplitter interface {
	// Split parses the document. The returned sections are in document order
	// and there is always at least one.
	Split(ctx context.Context, doc domain.SourceDocument) (*domain.SplitDocument, error)

	// Extensions returns the file extensions this splitter understands (e.g. ".html").
	Extensions() []string
}
