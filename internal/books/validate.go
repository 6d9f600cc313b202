package books

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation messages, one per rule.
const (
	MsgTitleRequired    = "Title is required"
	MsgAuthorRequired   = "Author is required"
	MsgCategoryRequired = "Category is required"
	MsgCoverURLInvalid  = "Cover URL must be a valid URL"
	MsgRatingNotNumber  = "Rating must be a number"
	MsgRatingMin        = "Min rating is 0"
	MsgRatingMax        = "Max rating is 5"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldErrors carries at most one message per field. An empty string means
// the field is valid.
type FieldErrors struct {
	Title    string
	Author   string
	Category string
	Rating   string
	CoverURL string
}

// Empty reports whether no field has an error.
func (fe FieldErrors) Empty() bool {
	return fe == FieldErrors{}
}

// Get returns the message for field f.
func (fe FieldErrors) Get(f Field) string {
	switch f {
	case FieldTitle:
		return fe.Title
	case FieldAuthor:
		return fe.Author
	case FieldCategory:
		return fe.Category
	case FieldRating:
		return fe.Rating
	case FieldCoverURL:
		return fe.CoverURL
	default:
		return ""
	}
}

// add records msg for f unless f already has a message.
func (fe *FieldErrors) add(f Field, msg string) {
	if fe.Get(f) != "" {
		return
	}
	switch f {
	case FieldTitle:
		fe.Title = msg
	case FieldAuthor:
		fe.Author = msg
	case FieldCategory:
		fe.Category = msg
	case FieldRating:
		fe.Rating = msg
	case FieldCoverURL:
		fe.CoverURL = msg
	}
}

// ValidationError is returned when a candidate book fails one or more rules.
// It never leaves the form: callers show Fields next to the inputs.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	var parts []string
	for _, f := range Fields {
		if msg := e.Fields.Get(f); msg != "" {
			parts = append(parts, f.Key()+": "+msg)
		}
	}
	return "invalid book: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Validate parses and normalizes a form draft. Strings are trimmed and the
// rating text is parsed as a finite number. On failure the returned error is
// a *ValidationError.
func Validate(d Draft) (Input, error) {
	var fe FieldErrors

	in := Input{
		Title:    strings.TrimSpace(d.Title),
		Author:   strings.TrimSpace(d.Author),
		Category: strings.TrimSpace(d.Category),
		CoverURL: strings.TrimSpace(d.CoverURL),
	}

	rating, err := strconv.ParseFloat(strings.TrimSpace(d.Rating), 64)
	if err != nil || math.IsNaN(rating) || math.IsInf(rating, 0) {
		fe.add(FieldRating, MsgRatingNotNumber)
	} else {
		in.Rating = rating
	}

	check(in, &fe)
	if !fe.Empty() {
		return Input{}, &ValidationError{Fields: fe}
	}
	return in, nil
}

// Validate normalizes in and checks every rule. It is the entry point for
// callers that already hold a numeric rating.
func (in Input) Validate() (Input, error) {
	var fe FieldErrors

	out := Input{
		Title:    strings.TrimSpace(in.Title),
		Author:   strings.TrimSpace(in.Author),
		Rating:   in.Rating,
		Category: strings.TrimSpace(in.Category),
		CoverURL: strings.TrimSpace(in.CoverURL),
	}
	if math.IsNaN(out.Rating) || math.IsInf(out.Rating, 0) {
		fe.add(FieldRating, MsgRatingNotNumber)
		out.Rating = 0
	}

	check(out, &fe)
	if !fe.Empty() {
		return Input{}, &ValidationError{Fields: fe}
	}
	return out, nil
}

// check runs the struct tag rules on an already trimmed input.
func check(in Input, fe *FieldErrors) {
	err := validate.Struct(in)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError only happens on programmer error.
		panic(err)
	}
	for _, ve := range verrs {
		switch ve.StructField() {
		case "Title":
			fe.add(FieldTitle, MsgTitleRequired)
		case "Author":
			fe.add(FieldAuthor, MsgAuthorRequired)
		case "Category":
			fe.add(FieldCategory, MsgCategoryRequired)
		case "CoverURL":
			fe.add(FieldCoverURL, MsgCoverURLInvalid)
		case "Rating":
			if ve.Tag() == "gte" {
				fe.add(FieldRating, MsgRatingMin)
			} else {
				fe.add(FieldRating, MsgRatingMax)
			}
		}
	}
}
