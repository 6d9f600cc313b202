package shelf

import (
	"errors"

	"booklib/cmd/booklib/ui"
	"booklib/internal/books"
	"booklib/internal/library"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		m, cmd = m.handleKeyMsg(msg)

	case spinner.TickMsg:
		// Keep ticking only while something is in flight.
		if m.busy() {
			m.spinner, cmd = m.spinner.Update(msg)
		}

	case refreshDoneMsg:
		if err := m.store.ApplyRefresh(msg.result); err != nil {
			m.logger.Warn("refresh failed", zap.Error(err))
		}
		m.clampCursor()

	case mutationDoneMsg:
		m = m.applyOutcome(msg.outcome)

	case StylesMsg:
		m.applyStyles(msg.Styles)
		if m.form != nil {
			m.form.restyle(msg.Styles)
		}
	}

	m.syncContent()
	return m, cmd
}

func (m Model) resize(width, height int) Model {
	m.layout = ui.NewLayoutConfig(width, height)
	m.viewport.Width = m.layout.ContentWidth()
	m.viewport.Height = m.layout.ContentHeight()
	m.help.Width = width
	m.ready = true
	m.helpText = renderHelp(m.styles.Theme.IsDark, m.layout.ModalWidthFor(ui.ModalWidth+20))
	return m
}

// handleKeyMsg routes a key to the topmost layer: help, form, dialog,
// search box, then the collection.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.persist()
		return m, tea.Quit
	}

	switch {
	case m.showHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Clear, m.keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	case m.form != nil:
		return m.handleFormKey(msg)
	case m.confirm != nil:
		return m.handleConfirmKey(msg)
	case m.searching:
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.persist()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Clear):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.Toggle):
		m.view = m.view.Toggle()
		m.logger.Debug("view toggled", zap.Stringer("view", m.view))

	case key.Matches(msg, m.keys.Refresh):
		return m.startRefresh()

	case key.Matches(msg, m.keys.Add):
		m.form = newBookForm(m.styles, books.NewDraft(), false, 0)

	case key.Matches(msg, m.keys.Edit):
		if b, ok := m.selected(); ok {
			m.form = newBookForm(m.styles, books.DraftFromBook(b), true, b.ID)
		}

	case key.Matches(msg, m.keys.Delete):
		if b, ok := m.selected(); ok {
			m.confirm = &confirmDialog{book: b}
		}

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-m.rowStride())
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(m.rowStride())
	case key.Matches(msg, m.keys.Left):
		if m.view == library.ViewGrid {
			m.moveCursor(-1)
		}
	case key.Matches(msg, m.keys.Right):
		if m.view == library.ViewGrid {
			m.moveCursor(1)
		}
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter, tea.KeyTab:
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.cursor = 0
	}
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	f := m.form
	switch {
	case key.Matches(msg, m.formKeys.Cancel):
		// Hiding the form never aborts a pending save.
		m.form = nil
		return m, nil

	case key.Matches(msg, m.formKeys.Submit),
		msg.Type == tea.KeyEnter && f.lastField():
		return m.submitForm()

	case key.Matches(msg, m.formKeys.Next):
		return m, f.move(1)

	case key.Matches(msg, m.formKeys.Prev):
		return m, f.move(-1)
	}
	return m, f.update(msg)
}

func (m Model) submitForm() (Model, tea.Cmd) {
	f := m.form
	if m.store.Mutating() {
		return m, nil
	}

	in, err := books.Validate(f.draft())
	if ve, ok := books.AsValidationError(err); ok {
		f.errs = ve.Fields
		return m, nil
	}
	f.errs = books.FieldErrors{}

	mut := library.Create(in)
	if f.editing {
		mut = library.Update(f.id, in)
	}
	return m.startMutation(mut, func() { f.submitted = true })
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.dlgKeys.Cancel):
		m.confirm = nil
		return m, nil
	case key.Matches(msg, m.dlgKeys.Confirm):
		if m.store.Mutating() {
			return m, nil
		}
		c := m.confirm
		return m.startMutation(library.Delete(c.book.ID), func() { c.submitted = true })
	}
	return m, nil
}

func (m Model) startMutation(mut library.Mutation, onStart func()) (Model, tea.Cmd) {
	p, err := m.store.Prepare(mut)
	if err != nil {
		if ve, ok := books.AsValidationError(err); ok && m.form != nil {
			m.form.errs = ve.Fields
		} else if !errors.Is(err, library.ErrBusy) {
			m.logger.Warn("mutation rejected", zap.Error(err))
		}
		return m, nil
	}
	onStart()
	m.logger.Debug("mutation started", zap.Stringer("kind", mut.Kind), zap.Int64("id", mut.ID))
	return m, tea.Batch(m.run(p), m.spinner.Tick)
}

func (m Model) startRefresh() (Model, tea.Cmd) {
	if m.store.Loading() {
		return m, nil
	}
	m.store.BeginRefresh()
	return m, tea.Batch(m.fetch(), m.spinner.Tick)
}

// applyOutcome reconciles a finished mutation. The overlay that started it
// closes on success and stays open on failure; an overlay hidden in the
// meantime is left alone.
func (m Model) applyOutcome(o library.Outcome) Model {
	err := m.store.Apply(o)
	saved := m.store.Last() == library.ResultSucceeded

	if m.form != nil && m.form.submitted {
		m.form.submitted = false
		if saved {
			m.form = nil
		}
	}
	if m.confirm != nil && m.confirm.submitted {
		m.confirm.submitted = false
		if saved {
			m.confirm = nil
		}
	}

	if err != nil {
		m.logger.Warn("mutation failed", zap.Stringer("kind", o.Mutation.Kind), zap.Error(err))
		return m
	}

	m.countMetric(o.Mutation.Kind)
	if o.Mutation.Kind == library.KindCreate {
		m.cursor = 0
	}
	m.clampCursor()
	return m
}

// rowStride is how far up/down moves the cursor.
func (m Model) rowStride() int {
	if m.view == library.ViewGrid {
		return m.layout.GridColumns()
	}
	return 1
}

func (m *Model) moveCursor(delta int) {
	n := len(m.visible())
	if n == 0 {
		m.cursor = 0
		return
	}
	next := m.cursor + delta
	if next < 0 || next >= n {
		return
	}
	m.cursor = next
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	switch {
	case n == 0:
		m.cursor = 0
	case m.cursor >= n:
		m.cursor = n - 1
	case m.cursor < 0:
		m.cursor = 0
	}
}

// syncContent re-renders the collection into the viewport and scrolls the
// selection into view.
func (m *Model) syncContent() {
	height := m.layout.ContentHeight()
	if m.store.Err() != "" {
		height -= ui.ErrorBannerRows
	}
	m.viewport.Width = m.layout.ContentWidth()
	m.viewport.Height = max(height, 1)
	m.viewport.SetContent(m.renderCollection())

	if m.store.Loading() || len(m.visible()) == 0 {
		m.viewport.GotoTop()
		return
	}

	itemHeight := ui.RowHeight
	row := m.cursor
	if m.view == library.ViewGrid {
		itemHeight = ui.CardHeight
		row = m.cursor / m.layout.GridColumns()
	}
	top := row * itemHeight
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case top+itemHeight > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(top + itemHeight - m.viewport.Height)
	}
}
