// Package books defines the book record, its editable input shape, and the
// validation rules a candidate record must pass before it is sent to the
// remote library service.
package books

import "strconv"

// Book is a single library entry. ID is assigned by the server and never
// changes after creation.
type Book struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Rating   float64 `json:"rating"`
	Category string  `json:"category"`
	CoverURL string  `json:"coverUrl"`
}

// Input is a book without its identifier. It is the payload for create and
// update calls.
type Input struct {
	Title    string  `json:"title" validate:"min=2"`
	Author   string  `json:"author" validate:"min=2"`
	Rating   float64 `json:"rating" validate:"gte=0,lte=5"`
	Category string  `json:"category" validate:"min=2"`
	CoverURL string  `json:"coverUrl" validate:"url"`
}

// Input returns the editable fields of b.
func (b Book) Input() Input {
	return Input{
		Title:    b.Title,
		Author:   b.Author,
		Rating:   b.Rating,
		Category: b.Category,
		CoverURL: b.CoverURL,
	}
}

// WithID attaches a server identifier to in.
func (in Input) WithID(id int64) Book {
	return Book{
		ID:       id,
		Title:    in.Title,
		Author:   in.Author,
		Rating:   in.Rating,
		Category: in.Category,
		CoverURL: in.CoverURL,
	}
}

// Field names one editable field of a book.
type Field int

const (
	FieldTitle Field = iota
	FieldAuthor
	FieldCategory
	FieldRating
	FieldCoverURL
)

// Fields lists the editable fields in form order.
var Fields = []Field{FieldTitle, FieldAuthor, FieldCategory, FieldRating, FieldCoverURL}

// Label returns the human-readable field label used by forms.
func (f Field) Label() string {
	switch f {
	case FieldTitle:
		return "Title"
	case FieldAuthor:
		return "Author"
	case FieldCategory:
		return "Category"
	case FieldRating:
		return "Rating (0 - 5)"
	case FieldCoverURL:
		return "Cover URL"
	default:
		return ""
	}
}

// Key returns the JSON name of the field.
func (f Field) Key() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldAuthor:
		return "author"
	case FieldCategory:
		return "category"
	case FieldRating:
		return "rating"
	case FieldCoverURL:
		return "coverUrl"
	default:
		return ""
	}
}

// Draft holds the raw text of a book form. Rating stays a string until
// validation so that non-numeric input can be reported instead of lost.
type Draft struct {
	Title    string
	Author   string
	Category string
	Rating   string
	CoverURL string
}

// NewDraft returns the defaults for a new book form.
func NewDraft() Draft {
	return Draft{Rating: "4"}
}

// DraftFromBook returns a form pre-filled with b's fields.
func DraftFromBook(b Book) Draft {
	return Draft{
		Title:    b.Title,
		Author:   b.Author,
		Category: b.Category,
		Rating:   strconv.FormatFloat(b.Rating, 'f', -1, 64),
		CoverURL: b.CoverURL,
	}
}

// Get returns the raw text of field f.
func (d Draft) Get(f Field) string {
	switch f {
	case FieldTitle:
		return d.Title
	case FieldAuthor:
		return d.Author
	case FieldCategory:
		return d.Category
	case FieldRating:
		return d.Rating
	case FieldCoverURL:
		return d.CoverURL
	default:
		return ""
	}
}

// Set replaces the raw text of field f.
func (d *Draft) Set(f Field, v string) {
	switch f {
	case FieldTitle:
		d.Title = v
	case FieldAuthor:
		d.Author = v
	case FieldCategory:
		d.Category = v
	case FieldRating:
		d.Rating = v
	case FieldCoverURL:
		d.CoverURL = v
	}
}
