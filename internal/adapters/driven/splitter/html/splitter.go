package html

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
)

// Ensure Splitter implements the interface.
var _ driven.SectionSplitter = (*Splitter)(nil)

// TitleSelector locates the page title on dofuspourlesnoobs.com pages.
const TitleSelector = "h2.wsite-content-title"

// Pre-compiled patterns for section splitting.
var (
	headingLine   = regexp.MustCompile(`^###\s+(.+)$`)
	unsafeChars   = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Splitter cuts HTML pages into level-3 heading sections.
type Splitter struct {
	titleSelector string
}

// New creates a splitter using TitleSelector.
func New() *Splitter {
	return &Splitter{titleSelector: TitleSelector}
}

// NewWithSelector creates a splitter reading the page title from selector.
func NewWithSelector(selector string) *Splitter {
	if selector == "" {
		selector = TitleSelector
	}
	return &Splitter{titleSelector: selector}
}

// Extensions returns the file extensions this splitter handles.
func (s *Splitter) Extensions() []string {
	return []string{".html", ".htm"}
}

// Split converts the page to markdown and splits it at "###" headings.
// A heading named after the file stem is prepended, so any text before the
// first real heading forms its own section and the result is never empty.
func (s *Splitter) Split(_ context.Context, doc domain.SourceDocument) (*domain.SplitDocument, error) {
	if doc.Path == "" {
		return nil, fmt.Errorf("html: split: %w: empty path", domain.ErrInvalidInput)
	}

	stem := Stem(doc.Path)

	markdown, err := htmltomarkdown.ConvertString(string(doc.Content))
	if err != nil {
		return nil, fmt.Errorf("html: convert %s: %w", doc.Path, err)
	}

	return &domain.SplitDocument{
		Title:    s.extractTitle(doc.Content, stem),
		Stem:     stem,
		Sections: SplitSections(stem, markdown),
	}, nil
}

// extractTitle returns the trimmed text of the title element, or stem.
func (s *Splitter) extractTitle(content []byte, stem string) string {
	page, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return stem
	}
	title := strings.TrimSpace(page.Find(s.titleSelector).First().Text())
	if title == "" {
		return stem
	}
	return title
}

// SplitSections cuts markdown into sections at lines matching "### heading".
// Each section's content starts with its heading line.
func SplitSections(stem, markdown string) []domain.Section {
	lines := append([]string{"### " + stem}, strings.Split(markdown, "\n")...)

	var (
		sections []domain.Section
		heading  string
		current  []string
	)
	flush := func() {
		if current == nil {
			return
		}
		sections = append(sections, domain.Section{
			Heading:  heading,
			Filename: SafeFilename(heading),
			Content:  strings.Join(current, "\n"),
		})
	}

	for _, line := range lines {
		if m := headingLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			heading = strings.TrimSpace(m[1])
			current = []string{line}
			continue
		}
		current = append(current, line)
	}
	flush()

	return sections
}

// SafeFilename strips everything but letters, digits, underscores, spaces
// and hyphens, then joins words with underscores.
func SafeFilename(heading string) string {
	clean := strings.TrimSpace(unsafeChars.ReplaceAllString(heading, ""))
	return whitespaceRun.ReplaceAllString(clean, "_")
}

// Stem returns the file name without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
