// Package search provides the retrieval view for the TUI: a content type
// selector, subject and query inputs, and the ranked sections.
package search

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/dpln-rag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driving"
)

// View is the retrieval view.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	subject   *input.Field
	query     *input.Field
	list      *list.ResultList
	statusbar *status.Bar

	retrieval driving.RetrievalService
	ctx       context.Context

	partitions []domain.Partition
	partIdx    int
	titles     map[domain.Partition]int

	width      int
	height     int
	ready      bool
	err        error
	notice     string
	focusInput bool // true = typing, false = navigating results
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, retrieval driving.RetrievalService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		subject:    input.NewField(s, "Subject", "dungeon or quest name (optional)"),
		query:      input.NewField(s, "Query", "what do you want to know?"),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s, km),
		retrieval:  retrieval,
		ctx:        context.Background(),
		partitions: domain.AllPartitions(),
		titles:     map[domain.Partition]int{},
		width:      80,
		height:     24,
		focusInput: true,
	}
	v.query.Focus()
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.query.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RetrievalCompleted:
		v.handleRetrievalCompleted(msg)
		return v, nil

	case messages.StatusLoaded:
		if msg.Err == nil {
			for _, st := range msg.Statuses {
				v.titles[st.Partition] = st.Titles
			}
			v.updateReadyMessage()
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		if v.subject.Focused() {
			v.subject, cmd = v.subject.Update(msg)
		} else {
			v.query, cmd = v.query.Update(msg)
		}
	}
	return v, cmd
}

//nolint:gocyclo // key dispatch
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyTab {
		v.partIdx = (v.partIdx + 1) % len(v.partitions)
		v.updateReadyMessage()
		p := v.Partition()
		return v, func() tea.Msg { return messages.PartitionChanged{Partition: p} }
	}

	if v.focusInput {
		return v.handleInputKey(msg)
	}

	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		if v.list.Expanded() {
			v.list.ToggleExpanded()
			return v, nil
		}
		v.focusInputs()
		return v, nil
	case tea.KeyEnter:
		v.list.ToggleExpanded()
		return v, nil
	case tea.KeyUp:
		v.list.MoveUp()
		return v, nil
	case tea.KeyDown:
		v.list.MoveDown()
		return v, nil
	}

	switch msg.String() {
	case "k":
		v.list.MoveUp()
	case "j":
		v.list.MoveDown()
	case "n":
		v.focusInputs()
		v.query.SetValue("")
	case "?":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }
	case "q":
		return v, func() tea.Msg { return messages.Quit{} }
	}
	return v, nil
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyShiftTab:
		if v.subject.Focused() {
			v.subject.Blur()
			return v, v.query.Focus()
		}
		v.query.Blur()
		return v, v.subject.Focus()

	case tea.KeyEsc:
		if v.list.Count() > 0 {
			v.focusInput = false
			v.subject.Blur()
			v.query.Blur()
		}
		return v, nil

	case tea.KeyEnter:
		query := strings.TrimSpace(v.query.Value())
		if query == "" {
			return v, nil
		}
		v.statusbar.SetState(status.StateRetrieving)
		v.statusbar.SetMessage("")
		return v, v.performRetrieval(v.Partition(), query, v.subject.Value())
	}

	var cmd tea.Cmd
	if v.subject.Focused() {
		v.subject, cmd = v.subject.Update(msg)
	} else {
		v.query, cmd = v.query.Update(msg)
	}
	return v, cmd
}

func (v *View) focusInputs() {
	v.focusInput = true
	v.subject.Blur()
	v.query.Focus()
}

// performRetrieval runs the retrieval off the update loop.
func (v *View) performRetrieval(p domain.Partition, query, subject string) tea.Cmd {
	return func() tea.Msg {
		if v.retrieval == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		result, err := v.retrieval.Retrieve(v.ctx, p.String(), query, subject)
		return messages.RetrievalCompleted{Partition: p, Result: result, Err: err}
	}
}

func (v *View) handleRetrievalCompleted(msg messages.RetrievalCompleted) {
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}

	v.err = nil
	if msg.Result.IsErr() {
		v.notice = msg.Result.Message()
		v.list.SetChunks(nil)
		v.statusbar.SetState(status.StateUnresolved)
		v.statusbar.SetResultCount(0)
		return
	}

	v.notice = ""
	chunks := msg.Result.Chunks()
	v.list.SetChunks(chunks)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(chunks))
	v.statusbar.SetMessage("")
	if strings.TrimSpace(v.subject.Value()) != "" && len(chunks) > 0 {
		v.statusbar.SetMessage(chunks[0].Chunk.Title)
	}

	if len(chunks) > 0 {
		v.focusInput = false
		v.subject.Blur()
		v.query.Blur()
	}
}

func (v *View) updateReadyMessage() {
	if v.statusbar.State() != status.StateReady {
		return
	}
	p := v.Partition()
	if n, ok := v.titles[p]; ok {
		v.statusbar.SetMessage(fmt.Sprintf("%s: %d titles", p, n))
	} else {
		v.statusbar.SetMessage("")
	}
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("dpln"), "", v.renderTabs(), "")
	sections = append(sections, v.subject.View(), v.query.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.notice != "" {
		sections = append(sections, v.styles.Notice.Render(v.notice))
	} else {
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderTabs() string {
	tabs := make([]string, 0, len(v.partitions))
	for i, p := range v.partitions {
		label := p.EntityKind()
		if i == v.partIdx {
			tabs = append(tabs, v.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, v.styles.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.subject.SetWidth(width)
	v.query.SetWidth(width)
	v.list.SetDimensions(width, height-14) // header, tabs, inputs, status
	v.statusbar.SetWidth(width)
}

// Partition returns the selected content type.
func (v *View) Partition() domain.Partition {
	return v.partitions[v.partIdx]
}

// Query returns the current query text.
func (v *View) Query() string {
	return v.query.Value()
}

// Subject returns the current subject text.
func (v *View) Subject() string {
	return v.subject.Value()
}

// SetQuery sets the query text.
func (v *View) SetQuery(query string) {
	v.query.SetValue(query)
}

// SetSubject sets the subject text.
func (v *View) SetSubject(subject string) {
	v.subject.SetValue(subject)
}

// Chunks returns the displayed chunks.
func (v *View) Chunks() []domain.ScoredChunk {
	return v.list.Chunks()
}

// Notice returns the retrieval failure message being shown, if any.
func (v *View) Notice() string {
	return v.notice
}

// SelectedIndex returns the index of the selected chunk.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the inputs have focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// SubjectFocused returns whether the subject input has focus.
func (v *View) SubjectFocused() bool {
	return v.subject.Focused()
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Reset clears inputs and results and returns to input mode.
func (v *View) Reset() {
	v.subject.SetValue("")
	v.query.SetValue("")
	v.list.SetChunks(nil)
	v.err = nil
	v.notice = ""
	v.statusbar.Clear()
	v.focusInputs()
	v.updateReadyMessage()
}
