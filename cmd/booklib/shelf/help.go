package shelf

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# Book Library

Browse, search and edit the books stored by the library service.

## Collection

| Key | Action |
|-----|--------|
| ↑ ↓ ← → / h j k l | move the selection |
| / | search by title or author |
| esc | clear the search |
| v | switch between grid and list |
| r | reload the collection |

## Books

| Key | Action |
|-----|--------|
| a | add a new book |
| e / enter | edit the selected book |
| d | delete the selected book |

## Forms

| Key | Action |
|-----|--------|
| tab / shift+tab | next / previous field |
| ctrl+s | save (enter on the last field also saves) |
| esc | close the form |

Changes are applied only after the service confirms them.
`

// renderHelp renders the help overlay. Rendering failures fall back to the
// raw markdown.
func renderHelp(dark bool, width int) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = helpMarkdown
		}
	}()

	style := "light"
	if dark {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(max(width, 40)),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := renderer.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
