package ui

import (
	"strings"
	"testing"

	"booklib/internal/books"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

var dune = books.Book{ID: 1, Title: "Dune", Author: "Frank Herbert", Rating: 4.5, Category: "Sci-Fi", CoverURL: "https://x/d.jpg"}

func TestPlainStars(t *testing.T) {
	tests := []struct {
		rating float64
		want   string
	}{
		{0, "☆☆☆☆☆ 0.0"},
		{2.4, "★★☆☆☆ 2.4"},
		{4, "★★★★☆ 4.0"},
		{4.5, "★★★★★ 4.5"},
		{5, "★★★★★ 5.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PlainStars(tt.rating))
	}
}

func TestRatingStarsCountsRounded(t *testing.T) {
	s := NewStyles(LightTheme())
	out := s.RatingStars(3.6)
	assert.Equal(t, 4, strings.Count(out, "★"))
	assert.Equal(t, 1, strings.Count(out, "☆"))
	assert.Contains(t, out, "3.6")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Dune", Truncate("Dune", 10))
	assert.Equal(t, "", Truncate("Dune", 0))
	got := Truncate("The Left Hand of Darkness", 8)
	assert.LessOrEqual(t, lipgloss.Width(got), 8)
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestBookCard(t *testing.T) {
	s := NewStyles(LightTheme())

	plain := s.BookCard(dune, 40, false)
	assert.Contains(t, plain, "Dune")
	assert.Contains(t, plain, "Frank Herbert")
	assert.Contains(t, plain, "Sci-Fi")
	assert.Contains(t, plain, "4.5")
	assert.NotContains(t, plain, "Delete")
	assert.Equal(t, 40, lipgloss.Width(plain))

	selected := s.BookCard(dune, 40, true)
	assert.Contains(t, selected, "Edit")
	assert.Contains(t, selected, "Delete")
}

func TestBookRow(t *testing.T) {
	s := NewStyles(LightTheme())
	row := s.BookRow(dune, 100, true)
	assert.Contains(t, row, "Dune")
	assert.Contains(t, row, "Frank Herbert")
	assert.Contains(t, row, "Delete")
}

func TestSkeletonsHaveNoText(t *testing.T) {
	s := NewStyles(LightTheme())
	for _, out := range []string{s.SkeletonCard(40), s.SkeletonRow(80)} {
		assert.Contains(t, out, "░")
		assert.NotContains(t, out, "Dune")
	}
}

func TestEmptyStateAndBanner(t *testing.T) {
	s := NewStyles(LightTheme())

	empty := s.EmptyState("No books found", "Try a different search, or add a new book.", 80)
	assert.Contains(t, empty, "No books found")
	assert.Contains(t, empty, "Try a different search")

	banner := s.RenderErrorBanner("Request failed: 500", 80)
	assert.Contains(t, banner, "Request failed: 500")
	assert.Contains(t, banner, "Retry")
}
