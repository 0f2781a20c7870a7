package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/dpln-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles

	// searchView is the retrieval view.
	searchView *search.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		searchView:  search.NewView(s, nil, ports.Retrieval),
		currentView: messages.ViewSearch,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("dpln"),
		a.searchView.Init(),
	}
	if a.ports.Catalog != nil {
		cmds = append(cmds, a.loadStatus())
	}
	return tea.Batch(cmds...)
}

func (a *App) loadStatus() tea.Cmd {
	catalog := a.ports.Catalog
	ctx := a.ctx
	return func() tea.Msg {
		statuses, err := catalog.Status(ctx)
		return messages.StatusLoaded{Statuses: statuses, Err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc || msg.String() == "?" {
				a.currentView = messages.ViewSearch
			}
			if msg.String() == "q" {
				return a, tea.Quit
			}
			return a, nil
		}
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.RetrievalCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	if a.currentView == messages.ViewSearch {
		a.searchView, cmd = a.searchView.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	if a.currentView == messages.ViewHelp {
		return a.viewHelp()
	}
	return a.searchView.View()
}

func (a *App) viewHelp() string {
	return `Help

Search:
  tab         Switch between dungeons and quests
  shift+tab   Switch between subject and query
  enter       Retrieve sections
  esc         Back to results

Results:
  j/k, ↑/↓    Navigate sections
  enter       Expand or collapse a section
  n           New search
  esc         Back to search
  q           Quit

[esc] back`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Query returns the current query.
func (a *App) Query() string {
	return a.searchView.Query()
}

// Chunks returns the sections currently displayed.
func (a *App) Chunks() []domain.ScoredChunk {
	return a.searchView.Chunks()
}

// Partition returns the selected content type.
func (a *App) Partition() domain.Partition {
	return a.searchView.Partition()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.searchView.SetDimensions(width, height)
}
