package shelf

import (
	"strconv"
	"strings"

	"booklib/cmd/booklib/ui"
	"booklib/internal/library"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	width := m.layout.TerminalWidth
	parts := []string{m.renderHeader()}
	if msg := m.store.Err(); msg != "" {
		parts = append(parts, m.styles.Content.PaddingTop(0).PaddingBottom(0).
			Render(m.styles.RenderErrorBanner(msg, m.layout.ContentWidth())))
	}

	bodyHeight := m.viewport.Height
	switch {
	case m.showHelp:
		parts = append(parts, m.overlay(m.helpText, bodyHeight))
	case m.form != nil:
		w := m.layout.ModalWidthFor(ui.ModalWidth)
		parts = append(parts, m.overlay(
			m.form.view(m.styles, w, m.store.Mutating(), m.help.ShortHelpView(m.formKeys.ShortHelp())),
			bodyHeight))
	case m.confirm != nil:
		w := m.layout.ModalWidthFor(ui.DialogWidth)
		parts = append(parts, m.overlay(
			m.confirm.view(m.styles, w, m.store.Mutating(), m.help.ShortHelpView(m.dlgKeys.ShortHelp())),
			bodyHeight))
	default:
		parts = append(parts, lipgloss.NewStyle().PaddingLeft(ui.ContentPaddingH/2).Render(m.viewport.View()))
	}

	parts = append(parts, m.renderFooter())
	return lipgloss.NewStyle().MaxWidth(width).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// overlay centers a modal in the body area.
func (m Model) overlay(content string, height int) string {
	return lipgloss.Place(m.layout.TerminalWidth, max(height, lipgloss.Height(content)),
		lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render(AppTitle)
	subtitle := m.styles.Subtitle.Render(AppSubtitle)

	var status string
	switch {
	case m.store.Mutating():
		status = m.spinner.View() + m.styles.Muted.Render(" saving")
	case m.store.Loading():
		status = m.spinner.View() + m.styles.Muted.Render(" loading")
	}

	toggle := "List"
	if m.view == library.ViewList {
		toggle = "Grid"
	}

	searchBox := m.styles.Input
	if m.searching {
		searchBox = m.styles.InputFocused
	}

	controls := lipgloss.JoinHorizontal(lipgloss.Center,
		searchBox.Render(m.search.View()),
		"  ",
		m.styles.Button.Render(m.styles.Bold.Render("v")+" "+toggle),
		" ",
		m.styles.ButtonPrimary.Render("a Add New Book"),
	)

	left := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", status),
		subtitle,
	)

	var top string
	if m.layout.TerminalWidth >= lipgloss.Width(left)+lipgloss.Width(controls)+ui.ContentPaddingH {
		gap := m.layout.TerminalWidth - lipgloss.Width(left) - lipgloss.Width(controls) - ui.ContentPaddingH
		top = lipgloss.JoinHorizontal(lipgloss.Center, left, strings.Repeat(" ", gap), controls)
	} else {
		// Narrow terminals stack the search under the title.
		top = lipgloss.JoinVertical(lipgloss.Left, left, controls)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render(top),
		m.styles.RenderDivider(m.layout.TerminalWidth),
	)
}

func (m Model) renderFooter() string {
	count := len(m.visible())
	total := len(m.store.Books())
	summary := m.styles.Muted.Render(pluralBooks(count, total))
	return m.styles.Footer.Render(summary + "  " + m.help.ShortHelpView(m.keys.ShortHelp()))
}

func pluralBooks(shown, total int) string {
	noun := "books"
	if total == 1 {
		noun = "book"
	}
	if shown == total {
		return strconv.Itoa(total) + " " + noun
	}
	return strconv.Itoa(shown) + " of " + strconv.Itoa(total) + " " + noun
}

// renderCollection draws skeletons, the empty notice, or the visible books.
func (m Model) renderCollection() string {
	width := m.layout.ContentWidth()

	if m.store.Loading() {
		n := m.view.SkeletonCount()
		if m.view == library.ViewList {
			rows := make([]string, n)
			for i := range rows {
				rows[i] = m.styles.SkeletonRow(width)
			}
			return lipgloss.JoinVertical(lipgloss.Left, rows...)
		}
		cards := make([]string, n)
		for i := range cards {
			cards[i] = m.styles.SkeletonCard(m.layout.CardWidth())
		}
		return m.grid(cards)
	}

	list := m.visible()
	if len(list) == 0 {
		return m.styles.EmptyState(library.EmptyTitle, library.EmptySubtitle, width)
	}

	if m.view == library.ViewList {
		rows := make([]string, len(list))
		for i, b := range list {
			rows[i] = m.styles.BookRow(b, width, i == m.cursor)
		}
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	cards := make([]string, len(list))
	for i, b := range list {
		cards[i] = m.styles.BookCard(b, m.layout.CardWidth(), i == m.cursor)
	}
	return m.grid(cards)
}

// grid lays cards out in rows of GridColumns.
func (m Model) grid(cards []string) string {
	cols := m.layout.GridColumns()
	gap := strings.Repeat(" ", ui.GridGap)

	var rows []string
	for start := 0; start < len(cards); start += cols {
		end := min(start+cols, len(cards))
		var cells []string
		for i, c := range cards[start:end] {
			if i > 0 {
				cells = append(cells, gap)
			}
			cells = append(cells, c)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
