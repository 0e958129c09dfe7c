package render

import "strings"

// Theme names accepted by Lookup.
const (
	ThemeDefault = "default"
	ThemeDark    = "dark"
)

// Theme is the palette of one card.
type Theme struct {
	Name string

	Background    string
	TextPrimary   string
	TextSecondary string
	Accent        string
	Success       string
	Warning       string
	Danger        string
	Border        string

	// Chart colors, shared by both themes.
	Blue, Purple, Pink, Orange, Green, Yellow, Red, Indigo string
}

var themes = map[string]Theme{
	ThemeDefault: withChartColors(Theme{
		Name:          ThemeDefault,
		Background:    "#ffffff",
		TextPrimary:   "#24292e",
		TextSecondary: "#586069",
		Accent:        "#0366d6",
		Success:       "#28a745",
		Warning:       "#ffd33d",
		Danger:        "#d73a49",
		Border:        "#e1e4e8",
	}),
	ThemeDark: withChartColors(Theme{
		Name:          ThemeDark,
		Background:    "#0d1117",
		TextPrimary:   "#f0f6fc",
		TextSecondary: "#8b949e",
		Accent:        "#58a6ff",
		Success:       "#3fb950",
		Warning:       "#d29922",
		Danger:        "#f85149",
		Border:        "#30363d",
	}),
}

func withChartColors(t Theme) Theme {
	t.Blue = "#58a6ff"
	t.Purple = "#a855f7"
	t.Pink = "#fb7185"
	t.Orange = "#f97316"
	t.Green = "#22c55e"
	t.Yellow = "#eab308"
	t.Red = "#ef4444"
	t.Indigo = "#6366f1"
	return t
}

// Lookup returns the named theme, or the default theme for unknown names.
// Names are case-insensitive.
func Lookup(name string) Theme {
	if t, ok := themes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t
	}
	return themes[ThemeDefault]
}

// NormalizeTheme maps name to a known theme name. Request handlers use it
// before building cache keys so "Dark" and "dark" share one entry and junk
// names share the default entry.
func NormalizeTheme(name string) string {
	return Lookup(name).Name
}

// languageColors are the GitHub linguist colors of the common languages.
var languageColors = map[string]string{
	"Python":     "#3776ab",
	"JavaScript": "#f1e05a",
	"TypeScript": "#2b7489",
	"Java":       "#b07219",
	"C++":        "#f34b7d",
	"HTML":       "#e34c26",
	"C":          "#555555",
	"Go":         "#00add8",
	"Rust":       "#dea584",
	"PHP":        "#4f5d95",
	"Ruby":       "#701516",
	"Swift":      "#ffac45",
	"Kotlin":     "#f18e33",
}

func languageColor(lang string, t Theme) string {
	if c, ok := languageColors[lang]; ok {
		return c
	}
	return t.Accent
}
