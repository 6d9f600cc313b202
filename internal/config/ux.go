package config

// View mode names accepted in ui.default_view.
const (
	ViewGrid = "grid"
	ViewList = "list"
)

// Theme names accepted in ui.theme.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// UIConfig holds user interface configuration.
type UIConfig struct {
	// DefaultView is the layout used when no preference has been saved yet.
	DefaultView string `yaml:"default_view"`

	// Theme selects the color palette ("light" or "dark").
	Theme string `yaml:"theme"`
}
