package ui

import "testing"

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("BOOKLIB_DARK_MODE", "1")
	dark := DetectTheme()
	if !dark.IsDark {
		t.Fatalf("expected dark theme when BOOKLIB_DARK_MODE=1")
	}

	t.Setenv("BOOKLIB_DARK_MODE", "")
	light := DetectTheme()
	if light.IsDark {
		t.Fatalf("expected light theme when BOOKLIB_DARK_MODE is unset")
	}
}

func TestDetectTheme_ColorFGBG(t *testing.T) {
	t.Setenv("BOOKLIB_DARK_MODE", "")

	t.Setenv("COLORFGBG", "15;0")
	if !DetectTheme().IsDark {
		t.Fatalf("expected dark theme for black background")
	}

	t.Setenv("COLORFGBG", "0;15")
	if DetectTheme().IsDark {
		t.Fatalf("expected light theme for white background")
	}
}

func TestThemeFor(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("BOOKLIB_DARK_MODE", "")

	if !ThemeFor("dark").IsDark {
		t.Fatalf("expected dark theme for \"dark\"")
	}
	if ThemeFor("light").IsDark {
		t.Fatalf("expected light theme for \"light\"")
	}
}

func TestRenderDivider(t *testing.T) {
	s := NewStyles(LightTheme())
	if got := s.RenderDivider(0); got != "" {
		t.Fatalf("expected empty divider for zero width, got %q", got)
	}
	if s.RenderDivider(10) == "" {
		t.Fatalf("expected a divider")
	}
}
