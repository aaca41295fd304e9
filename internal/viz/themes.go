package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/chargefield/internal/export"
)

type Theme struct {
	Name     string
	Line     lipgloss.Color
	Positive lipgloss.Color
	Negative lipgloss.Color
	Cursor   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	// HeatMap toggles potential shading behind the canvas.
	HeatMap bool
}

var (
	ThemeField = Theme{
		Name:     "field",
		Line:     lipgloss.Color("#00ff88"),
		Positive: lipgloss.Color("#ff4444"),
		Negative: lipgloss.Color("#4488ff"),
		Cursor:   lipgloss.Color("#ffff00"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#666688"),
		HeatMap:  true,
	}

	ThemeRetroGreen = Theme{
		Name:     "retro",
		Line:     lipgloss.Color("#00ff00"),
		Positive: lipgloss.Color("#88ff88"),
		Negative: lipgloss.Color("#00aa00"),
		Cursor:   lipgloss.Color("#ffff00"),
		Text:     lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
	}

	ThemeMinimal = Theme{
		Name:     "minimal",
		Line:     lipgloss.Color("#ffffff"),
		Positive: lipgloss.Color("#ffffff"),
		Negative: lipgloss.Color("#888888"),
		Cursor:   lipgloss.Color("#0088ff"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#888888"),
	}

	Themes = []Theme{ThemeField, ThemeRetroGreen, ThemeMinimal}
)

// GetTheme returns the named theme, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme cycles to the theme after t.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// HeatColor is the terminal background for potential v. It is darkened so
// braille dots stay readable on top.
func HeatColor(v, saturation float64) lipgloss.Color {
	c := export.PotentialColor(v, saturation)
	black := colorful.Color{}
	return lipgloss.Color(c.BlendLab(black, 0.7).Clamped().Hex())
}
