package shelf

import (
	"strings"

	"booklib/cmd/booklib/ui"
	"booklib/internal/books"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var placeholders = map[books.Field]string{
	books.FieldTitle:    "Eg: The Pragmatic Programmer",
	books.FieldAuthor:   "Eg: Andrew Hunt",
	books.FieldCategory: "Eg: Fiction",
	books.FieldRating:   "4.5",
	books.FieldCoverURL: "https://...",
}

// bookForm is the create/edit modal. It edits a books.Draft; the text only
// becomes a books.Input once it validates.
type bookForm struct {
	inputs  []textinput.Model
	focus   int
	editing bool
	id      int64
	errs    books.FieldErrors

	// submitted is set once the form has handed a mutation to the store and
	// cleared when the result arrives.
	submitted bool
}

func newBookForm(styles ui.Styles, draft books.Draft, editing bool, id int64) *bookForm {
	f := &bookForm{editing: editing, id: id}
	for _, field := range books.Fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[field]
		ti.CharLimit = 512
		ti.Width = ui.ModalWidth - 10
		ti.TextStyle = styles.Body
		ti.PlaceholderStyle = styles.Muted
		ti.SetValue(draft.Get(field))
		f.inputs = append(f.inputs, ti)
	}
	f.inputs[0].Focus()
	return f
}

func (f *bookForm) restyle(styles ui.Styles) {
	for i := range f.inputs {
		f.inputs[i].TextStyle = styles.Body
		f.inputs[i].PlaceholderStyle = styles.Muted
	}
}

func (f *bookForm) title() string {
	if f.editing {
		return "Edit Book"
	}
	return "Add New Book"
}

func (f *bookForm) submitLabel(saving bool) string {
	switch {
	case saving:
		return "Saving..."
	case f.editing:
		return "Save Changes"
	default:
		return "Add Book"
	}
}

func (f *bookForm) draft() books.Draft {
	var d books.Draft
	for i, field := range books.Fields {
		d.Set(field, f.inputs[i].Value())
	}
	return d
}

func (f *bookForm) lastField() bool {
	return f.focus == len(f.inputs)-1
}

// move shifts focus by delta, wrapping around.
func (f *bookForm) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

func (f *bookForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *bookForm) view(styles ui.Styles, width int, saving bool, helpView string) string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(f.title()))
	sb.WriteString("\n\n")

	inner := width - styles.Modal.GetHorizontalFrameSize()
	for i, field := range books.Fields {
		box := styles.Input
		switch {
		case f.errs.Get(field) != "":
			box = styles.InputInvalid
		case i == f.focus:
			box = styles.InputFocused
		}

		sb.WriteString(styles.Bold.Render(field.Label()))
		sb.WriteString("\n")
		sb.WriteString(box.Width(max(inner-box.GetHorizontalBorderSize(), 10)).Render(f.inputs[i].View()))
		sb.WriteString("\n")
		if msg := f.errs.Get(field); msg != "" {
			sb.WriteString(styles.FieldError.Render(msg))
			sb.WriteString("\n")
		}
	}

	primary := styles.ButtonPrimary
	if saving {
		primary = styles.Button.Foreground(styles.Theme.Muted)
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Button.Render("Cancel"),
		" ",
		primary.Render(f.submitLabel(saving)),
	)
	sb.WriteString("\n")
	sb.WriteString(lipgloss.PlaceHorizontal(inner, lipgloss.Right, buttons))
	sb.WriteString("\n")
	sb.WriteString(helpView)

	return styles.Modal.Width(width - styles.Modal.GetHorizontalBorderSize()).Render(sb.String())
}

// confirmDialog asks before a delete.
type confirmDialog struct {
	book      books.Book
	submitted bool
}

func (c *confirmDialog) message() string {
	return `This will permanently remove "` + c.book.Title + `" from your library.`
}

func (c *confirmDialog) view(styles ui.Styles, width int, deleting bool, helpView string) string {
	inner := width - styles.Modal.GetHorizontalFrameSize()

	label := "Delete"
	danger := styles.ButtonDanger
	if deleting {
		label = "Deleting..."
		danger = styles.Button.Foreground(styles.Theme.Muted)
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Button.Render("Cancel"),
		" ",
		danger.Render(label),
	)

	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render("Delete book?"),
		"",
		styles.Subtitle.Width(inner).Render(c.message()),
		"",
		lipgloss.PlaceHorizontal(inner, lipgloss.Right, buttons),
		helpView,
	)
	return styles.Modal.Width(width - styles.Modal.GetHorizontalBorderSize()).Render(body)
}
