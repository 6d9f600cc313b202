package ui

import (
	"fmt"
	"math"
	"strings"

	"booklib/internal/books"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	starOn  = "★"
	starOff = "☆"
)

// Truncate shortens s to width cells, ending in an ellipsis when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

// starCount is the rounded rating clamped to 0..5.
func starCount(rating float64) int {
	n := int(math.Round(rating))
	return min(max(n, 0), 5)
}

// PlainStars renders a rating without color, e.g. "★★★★☆ 4.0".
func PlainStars(rating float64) string {
	n := starCount(rating)
	return strings.Repeat(starOn, n) + strings.Repeat(starOff, 5-n) + fmt.Sprintf(" %.1f", rating)
}

// RatingStars renders the rounded rating as filled stars out of five,
// followed by the value to one decimal.
func (s Styles) RatingStars(rating float64) string {
	n := starCount(rating)
	return s.Star.Render(strings.Repeat(starOn, n)) +
		s.StarOff.Render(strings.Repeat(starOff, 5-n)) +
		s.Muted.Render(fmt.Sprintf(" %.1f", rating))
}

// BookCard renders one book as a bordered card of the given outer width.
func (s Styles) BookCard(b books.Book, width int, selected bool) string {
	box := s.Card
	if selected {
		box = s.CardSelected
	}
	inner := width - box.GetHorizontalFrameSize()

	category := s.Category.Render(Truncate(b.Category, max(inner/3, 4)))
	titleWidth := inner - lipgloss.Width(category) - 1
	title := s.Bold.Width(max(titleWidth, 1)).Render(Truncate(b.Title, titleWidth))

	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, title, " ", category),
		s.Muted.Render(Truncate(b.Author, inner)),
		"",
		s.RatingStars(b.Rating),
		s.actions(selected),
	}
	return box.Width(width - box.GetHorizontalBorderSize()).Render(strings.Join(lines, "\n"))
}

// BookRow renders one book as a full-width row.
func (s Styles) BookRow(b books.Book, width int, selected bool) string {
	box := s.Row
	if selected {
		box = s.RowSelected
	}
	inner := width - box.GetHorizontalFrameSize()

	right := lipgloss.JoinHorizontal(lipgloss.Top, s.Category.Render(Truncate(b.Category, 16)), "  ", s.actions(selected))
	leftWidth := max(inner-lipgloss.Width(right)-2, 10)

	left := lipgloss.JoinVertical(lipgloss.Left,
		s.Bold.Render(Truncate(b.Title, leftWidth))+"  "+s.Muted.Render(Truncate(b.Author, max(leftWidth-lipgloss.Width(b.Title)-2, 0))),
		s.RatingStars(b.Rating),
	)
	left = lipgloss.NewStyle().Width(leftWidth).Render(left)

	return box.Width(width - box.GetHorizontalBorderSize()).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, left, "  ", right),
	)
}

func (s Styles) actions(selected bool) string {
	if !selected {
		return s.Muted.Render(" ")
	}
	return s.Muted.Render("e") + " Edit  " + s.Error.Render("d") + " Delete"
}

// SkeletonCard is the loading placeholder for a grid card.
func (s Styles) SkeletonCard(width int) string {
	inner := width - s.Card.GetHorizontalFrameSize()
	bar := func(frac float64) string {
		return s.Skeleton.Render(strings.Repeat("░", max(int(float64(inner)*frac), 1)))
	}
	lines := []string{bar(0.7), bar(0.45), "", bar(0.35), " "}
	return s.Card.Width(width - s.Card.GetHorizontalBorderSize()).Render(strings.Join(lines, "\n"))
}

// SkeletonRow is the loading placeholder for a list row.
func (s Styles) SkeletonRow(width int) string {
	inner := width - s.Row.GetHorizontalFrameSize()
	lines := []string{
		s.Skeleton.Render(strings.Repeat("░", max(inner/2, 1))),
		s.Skeleton.Render(strings.Repeat("░", max(inner/4, 1))),
	}
	return s.Row.Width(width - s.Row.GetHorizontalBorderSize()).Render(strings.Join(lines, "\n"))
}

// EmptyState renders a centered notice.
func (s Styles) EmptyState(title, subtitle string, width int) string {
	block := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render(title),
		s.Subtitle.Render(subtitle),
	)
	return lipgloss.NewStyle().
		Width(max(width, lipgloss.Width(block))).
		Align(lipgloss.Center).
		Padding(2, 0).
		Render(block)
}

// RenderErrorBanner renders the global error with its retry hint.
func (s Styles) RenderErrorBanner(msg string, width int) string {
	hint := s.Bold.Render("r") + s.Muted.Render(" Retry")
	return s.ErrorBanner.Width(max(width-s.ErrorBanner.GetHorizontalBorderSize(), 1)).
		Render(msg + "   " + hint)
}
