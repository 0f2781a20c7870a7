// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/dpln-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

// ResultList displays ranked chunks in a navigable list.
type ResultList struct {
	chunks   []domain.ScoredChunk
	selected int
	expanded bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyUp:
			r.MoveUp()
		case tea.KeyDown:
			r.MoveDown()
		default:
		}
		switch msg.String() {
		case "k":
			r.MoveUp()
		case "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the result list, or the selected chunk in full when expanded.
func (r *ResultList) View() string {
	if len(r.chunks) == 0 {
		return r.styles.Muted.Render("No results")
	}

	if r.expanded {
		return r.renderExpanded()
	}

	lines := make([]string, 0, len(r.chunks)+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.chunks))), "")

	// Each result takes two lines.
	visibleCount := (r.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.chunks))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderChunk(i, &r.chunks[i]))
	}

	return strings.Join(lines, "\n")
}

func (r *ResultList) renderChunk(index int, sc *domain.ScoredChunk) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	maxTitleLen := max(r.width-20, 10)
	title := truncate(sc.Chunk.Title, maxTitleLen)
	score := fmt.Sprintf("%.2f", sc.Score)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxTitleLen, title, score))
	} else {
		titleLine = r.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxTitleLen, title)) +
			r.styles.Muted.Render(score)
	}

	preview := truncate(Heading(sc.Chunk.Text), max(r.width-6, 20))
	return titleLine + "\n" + r.styles.Muted.Render("    "+preview)
}

func (r *ResultList) renderExpanded() string {
	sc := r.chunks[r.selected]
	header := r.styles.Subtitle.Render(fmt.Sprintf("%s (%d/%d)", sc.Chunk.Title, r.selected+1, len(r.chunks)))

	lines := strings.Split(sc.Chunk.Text, "\n")
	if limit := r.height - 3; limit > 0 && len(lines) > limit {
		lines = append(lines[:limit], "...")
	}
	body := r.styles.Normal.Render(strings.Join(lines, "\n"))

	if url := sc.Chunk.MetadataString(domain.MetaURL); url != "" {
		return header + "\n" + r.styles.Muted.Render(url) + "\n\n" + body
	}
	return header + "\n\n" + body
}

// Heading returns the first markdown heading of a chunk, or its first
// non-empty line after the "Source:" prefix.
func Heading(text string) string {
	var first string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Source: ") {
			continue
		}
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
		if first == "" {
			first = line
		}
	}
	return first
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetChunks replaces the list and collapses the view.
func (r *ResultList) SetChunks(chunks []domain.ScoredChunk) {
	r.chunks = chunks
	r.selected = 0
	r.expanded = false
}

// Chunks returns the current chunks.
func (r *ResultList) Chunks() []domain.ScoredChunk {
	return r.chunks
}

// Selected returns the index of the selected chunk.
func (r *ResultList) Selected() int {
	return r.selected
}

// SelectedChunk returns the currently selected chunk, or nil if none.
func (r *ResultList) SelectedChunk() *domain.ScoredChunk {
	if len(r.chunks) == 0 || r.selected < 0 || r.selected >= len(r.chunks) {
		return nil
	}
	return &r.chunks[r.selected]
}

// ToggleExpanded switches between the list and the selected chunk's full text.
func (r *ResultList) ToggleExpanded() {
	if len(r.chunks) == 0 {
		return
	}
	r.expanded = !r.expanded
}

// Expanded reports whether the selected chunk is shown in full.
func (r *ResultList) Expanded() bool {
	return r.expanded
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.chunks)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of chunks.
func (r *ResultList) Count() int {
	return len(r.chunks)
}
