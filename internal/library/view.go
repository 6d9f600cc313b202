package library

import (
	"strings"

	"booklib/internal/books"

	"golang.org/x/text/cases"
)

// Notice shown when a search matches nothing.
const (
	EmptyTitle    = "No books found"
	EmptySubtitle = "Try a different search, or add a new book."
)

// ViewMode selects the layout of the collection. It never affects which
// books are shown.
type ViewMode int

const (
	ViewGrid ViewMode = iota
	ViewList
)

// ParseViewMode maps "grid"/"list" to a ViewMode. Unknown names map to grid.
func ParseViewMode(s string) ViewMode {
	if strings.EqualFold(strings.TrimSpace(s), "list") {
		return ViewList
	}
	return ViewGrid
}

func (v ViewMode) String() string {
	if v == ViewList {
		return "list"
	}
	return "grid"
}

// Toggle returns the other view mode.
func (v ViewMode) Toggle() ViewMode {
	if v == ViewGrid {
		return ViewList
	}
	return ViewGrid
}

// SkeletonCount is the number of placeholders drawn while loading.
func (v ViewMode) SkeletonCount() int {
	if v == ViewList {
		return 7
	}
	return 6
}

// Filter returns the books whose title or author contains query, compared
// case-folded. A blank query returns list itself.
func Filter(list []books.Book, query string) []books.Book {
	q := strings.TrimSpace(query)
	if q == "" {
		return list
	}

	fold := cases.Fold()
	q = fold.String(q)

	out := make([]books.Book, 0, len(list))
	for _, b := range list {
		if strings.Contains(fold.String(b.Title), q) || strings.Contains(fold.String(b.Author), q) {
			out = append(out, b)
		}
	}
	return out
}

// FilterCache memoizes Filter for one store. It recomputes only when the
// store revision or the query changes.
type FilterCache struct {
	valid    bool
	revision uint64
	query    string
	result   []books.Book
}

// Get returns the filtered view of s for query.
func (c *FilterCache) Get(s *Store, query string) []books.Book {
	if c.valid && c.revision == s.Revision() && c.query == query {
		return c.result
	}
	c.result = Filter(s.Books(), query)
	c.revision = s.Revision()
	c.query = query
	c.valid = true
	return c.result
}
