package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SimpleTable renders static rows for non-interactive output such as
// `booklib list`.
type SimpleTable struct {
	Title   string
	Headers []string
	Rows    [][]string

	// MaxWidths caps individual columns; 0 means unbounded.
	MaxWidths []int
}

// NewSimpleTable creates a new SimpleTable with the given title and headers.
func NewSimpleTable(title string, headers []string) *SimpleTable {
	return &SimpleTable{
		Title:     title,
		Headers:   headers,
		Rows:      make([][]string, 0),
		MaxWidths: make([]int, len(headers)),
	}
}

// AddRow adds a row to the table.
func (t *SimpleTable) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

// Cap limits column col to width cells.
func (t *SimpleTable) Cap(col, width int) {
	if col >= 0 && col < len(t.MaxWidths) {
		t.MaxWidths[col] = width
	}
}

// View renders the table using the provided styles. An empty table renders
// as "".
func (t *SimpleTable) View(styles Styles) string {
	if len(t.Rows) == 0 {
		return ""
	}

	var sb strings.Builder

	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	widths := t.columnWidths()

	headerStyle := styles.Bold.Padding(0, 1)
	rowStyle := styles.Body.Padding(0, 1)
	sep := styles.Muted.Render("│")

	cells := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		cells[i] = headerStyle.Width(widths[i] + 2).Render(h)
	}
	sb.WriteString(strings.Join(cells, sep))
	sb.WriteString("\n")

	total := len(widths) - 1
	for _, w := range widths {
		total += w + 2
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("─", total)))
	sb.WriteString("\n")

	for _, row := range t.Rows {
		for i := range cells {
			cell := ""
			if i < len(row) {
				cell = Truncate(row[i], widths[i])
			}
			cells[i] = rowStyle.Width(widths[i] + 2).Render(cell)
		}
		sb.WriteString(strings.Join(cells, sep))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (t *SimpleTable) columnWidths() []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	for i, limit := range t.MaxWidths {
		if limit > 0 && widths[i] > limit {
			widths[i] = max(limit, lipgloss.Width(t.Headers[i]))
		}
	}
	return widths
}
