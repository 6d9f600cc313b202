// Package ui provides the visual styling and render primitives for the booklib
// terminal interface. Uses a slate palette with light/dark mode support.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#f8fafc") // slate-50
	LightForeground = lipgloss.Color("#0f172a") // slate-900
	LightPrimary    = lipgloss.Color("#0f172a")
	LightAccent     = lipgloss.Color("#334155") // slate-700
	LightSecondary  = lipgloss.Color("#f1f5f9") // slate-100
	LightMuted      = lipgloss.Color("#64748b") // slate-500
	LightBorder     = lipgloss.Color("#cbd5e1") // slate-300
	LightCard       = lipgloss.Color("#ffffff")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#0f172a")
	DarkForeground = lipgloss.Color("#f1f5f9")
	DarkPrimary    = lipgloss.Color("#e2e8f0") // slate-200
	DarkAccent     = lipgloss.Color("#94a3b8") // slate-400
	DarkSecondary  = lipgloss.Color("#1e293b") // slate-800
	DarkMuted      = lipgloss.Color("#94a3b8")
	DarkBorder     = lipgloss.Color("#334155")
	DarkCard       = lipgloss.Color("#1e293b")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#dc2626") // red-600
	Success     = lipgloss.Color("#16a34a") // green-600
	Warning     = lipgloss.Color("#f59e0b") // amber-500, also the star color
	Info        = lipgloss.Color("#2563eb") // blue-600
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// ThemeFor returns the theme named in config ("light" or "dark"). Any other
// name falls back to detection.
func ThemeFor(name string) Theme {
	switch name {
	case "dark":
		return DarkTheme()
	case "light":
		if os.Getenv("BOOKLIB_DARK_MODE") == "1" {
			return DarkTheme()
		}
		return LightTheme()
	default:
		return DetectTheme()
	}
}

// DetectTheme auto-detects based on terminal or returns light mode
func DetectTheme() Theme {
	// COLORFGBG is "foreground;background"; ANSI 0-6 and 8 are dark backgrounds.
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
			}
		}
	}

	if os.Getenv("BOOKLIB_DARK_MODE") == "1" {
		return DarkTheme()
	}

	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Status
	Error       lipgloss.Style
	ErrorBanner lipgloss.Style
	FieldError  lipgloss.Style

	// Collection
	Card         lipgloss.Style
	CardSelected lipgloss.Style
	Row          lipgloss.Style
	RowSelected  lipgloss.Style
	Skeleton     lipgloss.Style
	Category     lipgloss.Style
	Star         lipgloss.Style
	StarOff      lipgloss.Style

	// Overlays
	Modal         lipgloss.Style
	Input         lipgloss.Style
	InputInvalid  lipgloss.Style
	InputFocused  lipgloss.Style
	Button        lipgloss.Style
	ButtonPrimary lipgloss.Style
	ButtonDanger  lipgloss.Style

	// Components
	Spinner lipgloss.Style
	Divider lipgloss.Style
	Badge   lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)
	row := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)
	input := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)
	button := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 2)

	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Padding(0, 2),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		ErrorBanner: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Destructive).
			Foreground(Destructive).
			Padding(0, 1),

		FieldError: lipgloss.NewStyle().
			Foreground(Destructive),

		Card:         card,
		CardSelected: card.BorderForeground(theme.Accent).BorderStyle(lipgloss.ThickBorder()),
		Row:          row,
		RowSelected:  row.BorderForeground(theme.Accent).BorderStyle(lipgloss.ThickBorder()),

		Skeleton: lipgloss.NewStyle().
			Foreground(theme.Secondary),

		Category: lipgloss.NewStyle().
			Background(theme.Secondary).
			Foreground(theme.Accent).
			Padding(0, 1),

		Star: lipgloss.NewStyle().
			Foreground(Warning),

		StarOff: lipgloss.NewStyle().
			Foreground(theme.Border),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent).
			Padding(1, 2),

		Input:        input,
		InputInvalid: input.BorderForeground(Destructive),
		InputFocused: input.BorderForeground(theme.Accent),

		Button:        button,
		ButtonPrimary: button.BorderForeground(theme.Primary).Bold(true),
		ButtonDanger:  button.BorderForeground(Destructive).Foreground(Destructive).Bold(true),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Badge: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(theme.Background).
			Padding(0, 1).
			Bold(true),
	}
}

// DefaultStyles returns styles with the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
