// Package shelf implements the interactive book library: a bubbletea model
// that owns the library store, renders the collection and turns keystrokes
// into store intents.
package shelf

import (
	"context"

	"booklib/cmd/booklib/ui"
	"booklib/internal/books"
	"booklib/internal/library"
	"booklib/internal/logging"
	"booklib/internal/ux"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Header texts
const (
	AppTitle          = "Book Library"
	AppSubtitle       = "Manage your collection"
	SearchPlaceholder = "Search by title or author..."
)

// Options configures a Model.
type Options struct {
	Store  *library.Store
	Styles ui.Styles
	View   library.ViewMode

	// Prefs, when set, receives the final view mode and usage counters.
	Prefs *ux.PreferencesManager

	// Context is handed to every remote call. Calls are never cancelled by
	// the UI; closing an overlay only hides it.
	Context context.Context
	Logger  *zap.Logger
}

// Model is the bubbletea model for the library screen. It is the single
// owner of the store: remote calls run as commands and their results are
// applied in Update.
type Model struct {
	ctx    context.Context
	store  *library.Store
	cache  *library.FilterCache
	prefs  *ux.PreferencesManager
	logger *zap.Logger

	// UI Components
	styles   ui.Styles
	keys     keyMap
	formKeys formKeyMap
	dlgKeys  confirmKeyMap
	help     help.Model
	search   textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	// State
	view      library.ViewMode
	cursor    int
	searching bool
	form      *bookForm
	confirm   *confirmDialog
	showHelp  bool
	helpText  string
	layout    ui.LayoutConfig
	ready     bool
}

// Messages for tea updates
type (
	refreshDoneMsg  struct{ result library.RefreshResult }
	mutationDoneMsg struct{ outcome library.Outcome }
)

// StylesMsg swaps the palette while the program runs, e.g. after the
// config file changed.
type StylesMsg struct {
	Styles ui.Styles
}

// New builds the model and marks the store as loading; Init issues the
// first fetch.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Get(logging.CategoryUI)
	}

	ti := textinput.New()
	ti.Placeholder = SearchPlaceholder
	ti.Prompt = "⌕ "
	ti.CharLimit = 256
	ti.Width = ui.SearchWidth

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	layout := ui.NewLayoutConfig(ui.TwoColumnWidth, ui.MinimumTerminalHeight*2)

	opts.Store.BeginRefresh()

	m := Model{
		ctx:      ctx,
		store:    opts.Store,
		cache:    &library.FilterCache{},
		prefs:    opts.Prefs,
		logger:   logger,
		keys:     defaultKeyMap(),
		formKeys: defaultFormKeyMap(),
		dlgKeys:  defaultConfirmKeyMap(),
		help:     help.New(),
		search:   ti,
		spinner:  sp,
		viewport: viewport.New(layout.ContentWidth(), layout.ContentHeight()),
		view:     opts.View,
		layout:   layout,
	}
	m.applyStyles(opts.Styles)
	return m
}

// applyStyles pushes the palette into the embedded components.
func (m *Model) applyStyles(s ui.Styles) {
	m.styles = s
	m.search.PromptStyle = s.Muted
	m.search.TextStyle = s.Body
	m.search.PlaceholderStyle = s.Muted
	m.spinner.Style = s.Spinner
	m.help.Styles.ShortKey = s.Bold
	m.help.Styles.ShortDesc = s.Muted
	m.help.Styles.ShortSeparator = s.Muted
	m.help.Styles.FullKey = s.Bold
	m.help.Styles.FullDesc = s.Muted
	if m.ready {
		m.helpText = renderHelp(s.Theme.IsDark, m.layout.ModalWidthFor(ui.ModalWidth+20))
	}
}

// Init starts the initial load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.spinner.Tick)
}

// fetch runs the list call off the owner goroutine.
func (m Model) fetch() tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		return refreshDoneMsg{result: store.Fetch(ctx)}
	}
}

// run performs a prepared mutation off the owner goroutine.
func (m Model) run(p library.Pending) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return mutationDoneMsg{outcome: p.Run(ctx)}
	}
}

// visible returns the filtered collection in display order.
func (m Model) visible() []books.Book {
	return m.cache.Get(m.store, m.search.Value())
}

// selected returns the book under the cursor.
func (m Model) selected() (books.Book, bool) {
	list := m.visible()
	if m.cursor < 0 || m.cursor >= len(list) {
		return books.Book{}, false
	}
	return list[m.cursor], true
}

func (m Model) busy() bool {
	return m.store.Loading() || m.store.Mutating()
}

// ViewMode returns the current layout.
func (m Model) ViewMode() library.ViewMode { return m.view }

// persist stores the view mode in the preferences file.
func (m Model) persist() {
	if m.prefs == nil {
		return
	}
	if err := m.prefs.SetView(m.view.String()); err != nil {
		m.logger.Warn("failed to remember view", zap.Error(err))
		return
	}
	if err := m.prefs.Save(); err != nil {
		m.logger.Warn("failed to save preferences", zap.Error(err))
	}
}

func (m Model) countMetric(kind library.Kind) {
	if m.prefs == nil {
		return
	}
	name := map[library.Kind]string{
		library.KindCreate: "books_added",
		library.KindUpdate: "books_updated",
		library.KindDelete: "books_deleted",
	}[kind]
	if err := m.prefs.IncrementMetric(name); err != nil {
		m.logger.Debug("metric not recorded", zap.Error(err))
	}
}
