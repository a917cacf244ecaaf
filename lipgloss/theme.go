// Package lipgloss provides terminal color themes for rendering note diffs.
package lipgloss

import (
	"fmt"

	nucleus "github.com/HariCharanK/Nucleus"
	lipglosslib "github.com/charmbracelet/lipgloss"
)

// Compile-time interface verification.
var _ nucleus.Theme = (*Theme)(nil)

// Theme names accepted by ThemeByName.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
	ThemeAuto  = "auto"
)

// Theme implements nucleus.Theme with Lipgloss-compatible hex colors.
type Theme struct {
	styles  nucleus.Styles
	palette nucleus.Palette
}

// Styles returns the color styles for this theme.
func (t *Theme) Styles() nucleus.Styles {
	return t.styles
}

// Palette returns the semantic color palette for this theme.
func (t *Theme) Palette() nucleus.Palette {
	return t.palette
}

// DefaultTheme returns the dark theme.
func DefaultTheme() *Theme {
	return DarkTheme()
}

// ThemeByName returns the named theme. "auto" picks dark or light from the
// terminal background as reported by lipgloss.
func ThemeByName(name string) (*Theme, error) {
	switch name {
	case ThemeDark, "":
		return DarkTheme(), nil
	case ThemeLight:
		return LightTheme(), nil
	case ThemeAuto:
		if lipglosslib.HasDarkBackground() {
			return DarkTheme(), nil
		}
		return LightTheme(), nil
	default:
		return nil, fmt.Errorf("unknown theme %q", name)
	}
}

// DarkTheme returns a theme for dark terminal backgrounds (Catppuccin Mocha).
// Line backgrounds stay dark so syntax colors remain readable on top.
func DarkTheme() *Theme {
	p := nucleus.Palette{
		Background: "#1e1e2e",
		Foreground: "#cdd6f4",

		Added:    "#a6e3a1",
		Removed:  "#f38ba8",
		Modified: "#f9e2af",
		Context:  "#6c7086",

		Keyword:     "#cba6f7",
		String:      "#a6e3a1",
		Number:      "#fab387",
		Comment:     "#6c7086",
		Operator:    "#89dceb",
		Function:    "#89b4fa",
		Type:        "#f9e2af",
		Constant:    "#fab387",
		Punctuation: "#9399b2",
		Heading:     "#f5c2e7",
		Link:        "#74c7ec",
	}
	return &Theme{
		palette: p,
		styles: nucleus.Styles{
			Added:            nucleus.ColorPair{Foreground: string(p.Added), Background: "#004000"},
			Removed:          nucleus.ColorPair{Foreground: string(p.Removed), Background: "#3f0001"},
			Context:          nucleus.ColorPair{Foreground: "#a6adc8"},
			NoNewline:        nucleus.ColorPair{Foreground: string(p.Context)},
			HunkHeader:       nucleus.ColorPair{Foreground: "#89b4fa"},
			FileHeader:       nucleus.ColorPair{Foreground: string(p.Modified), Background: "#313244"},
			LineNumber:       nucleus.ColorPair{Foreground: string(p.Context)},
			AddedGutter:      nucleus.ColorPair{Foreground: string(p.Added), Background: "#002800"},
			RemovedGutter:    nucleus.ColorPair{Foreground: string(p.Removed), Background: "#2a0001"},
			AddedHighlight:   nucleus.ColorPair{Foreground: string(p.Background), Background: string(p.Added)},
			RemovedHighlight: nucleus.ColorPair{Foreground: string(p.Background), Background: string(p.Removed)},
			StatusBar:        nucleus.ColorPair{Foreground: "#a6adc8", Background: "#313244"},
		},
	}
}

// LightTheme returns a theme for light terminal backgrounds (Catppuccin Latte).
func LightTheme() *Theme {
	p := nucleus.Palette{
		Background: "#eff1f5",
		Foreground: "#4c4f69",

		Added:    "#40a02b",
		Removed:  "#d20f39",
		Modified: "#df8e1d",
		Context:  "#9ca0b0",

		Keyword:     "#8839ef",
		String:      "#40a02b",
		Number:      "#fe640b",
		Comment:     "#9ca0b0",
		Operator:    "#04a5e5",
		Function:    "#1e66f5",
		Type:        "#df8e1d",
		Constant:    "#fe640b",
		Punctuation: "#6c6f85",
		Heading:     "#ea76cb",
		Link:        "#209fb5",
	}
	return &Theme{
		palette: p,
		styles: nucleus.Styles{
			Added:            nucleus.ColorPair{Foreground: string(p.Added), Background: "#d4f4d4"},
			Removed:          nucleus.ColorPair{Foreground: string(p.Removed), Background: "#f4d4d4"},
			Context:          nucleus.ColorPair{Foreground: "#5c5f77"},
			NoNewline:        nucleus.ColorPair{Foreground: string(p.Context)},
			HunkHeader:       nucleus.ColorPair{Foreground: "#1e66f5"},
			FileHeader:       nucleus.ColorPair{Foreground: string(p.Modified), Background: "#e6e9ef"},
			LineNumber:       nucleus.ColorPair{Foreground: string(p.Context)},
			AddedGutter:      nucleus.ColorPair{Foreground: string(p.Added), Background: "#e4f8e4"},
			RemovedGutter:    nucleus.ColorPair{Foreground: string(p.Removed), Background: "#f8e4e4"},
			AddedHighlight:   nucleus.ColorPair{Foreground: "#ffffff", Background: string(p.Added)},
			RemovedHighlight: nucleus.ColorPair{Foreground: "#ffffff", Background: string(p.Removed)},
			StatusBar:        nucleus.ColorPair{Foreground: "#6c6f85", Background: "#e6e9ef"},
		},
	}
}
