// Package ui layout constants for consistent spacing and dimensions
package ui

// Layout constants for viewport and panel sizing
const (
	// Content padding (Styles.Content)
	ContentPaddingH = 4
	ContentPaddingV = 2

	// Fixed chrome
	HeaderHeight    = 4
	FooterHeight    = 1
	ErrorBannerRows = 3

	// Collection
	GridGap       = 1
	CardHeight    = 7
	RowHeight     = 4
	MinCardWidth  = 28
	ModalWidth    = 60
	DialogWidth   = 52
	SearchWidth   = 34
	TitleMaxWidth = 48

	// Responsive breakpoints for the grid
	TwoColumnWidth   = 80
	ThreeColumnWidth = 120

	// Minimum terminal size before layout degrades
	MinimumTerminalWidth  = 40
	MinimumTerminalHeight = 12
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int) LayoutConfig {
	if width < MinimumTerminalWidth {
		width = MinimumTerminalWidth
	}
	if height < MinimumTerminalHeight {
		height = MinimumTerminalHeight
	}
	return LayoutConfig{TerminalWidth: width, TerminalHeight: height}
}

// ContentWidth returns the usable width inside the content padding
func (l LayoutConfig) ContentWidth() int {
	return l.TerminalWidth - ContentPaddingH
}

// ContentHeight returns the height left for the collection viewport
func (l LayoutConfig) ContentHeight() int {
	h := l.TerminalHeight - HeaderHeight - FooterHeight - ContentPaddingV
	if h < 1 {
		return 1
	}
	return h
}

// GridColumns returns how many cards fit side by side: 1, 2 or 3.
func (l LayoutConfig) GridColumns() int {
	switch {
	case l.TerminalWidth >= ThreeColumnWidth:
		return 3
	case l.TerminalWidth >= TwoColumnWidth:
		return 2
	default:
		return 1
	}
}

// CardWidth returns the outer width of one grid card
func (l LayoutConfig) CardWidth() int {
	return cardWidth(l.ContentWidth(), l.GridColumns())
}

// cardWidth splits content into cols cards, never narrower than MinCardWidth.
func cardWidth(content, cols int) int {
	w := (content - GridGap*(cols-1)) / cols
	if w < MinCardWidth {
		return MinCardWidth
	}
	return w
}

// ModalWidthFor clamps a modal to the terminal width
func (l LayoutConfig) ModalWidthFor(want int) int {
	if limit := l.TerminalWidth - ContentPaddingH; want > limit {
		return limit
	}
	return want
}
