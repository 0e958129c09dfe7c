package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	errs "github.com/matzehuels/repostats/pkg/errors"
)

// Animated text defaults and limits.
const (
	DefaultText      = "Hello World"
	DefaultFontSize  = 24
	DefaultTextSpeed = 0.5

	MinFontSize  = 8
	MaxFontSize  = 96
	MinTextSpeed = 0.05
	MaxTextSpeed = 5.0
	MaxTextRunes = 100

	defaultTextColor      = "#ffffff"
	defaultTextBackground = "#000000"
)

// Text timing, in seconds. Untyping runs at untypeFactor times the speed.
const (
	textPause    = 1.0
	untypeFactor = 0.7
)

const (
	textPadding = 40
	textMinW    = 400
	monoFamily  = "'Courier New', monospace"
)

// Themes of the animated text card besides the default, which uses the
// requested colors.
const (
	TextThemeLight  = "light"
	TextThemeMatrix = "matrix"
	TextThemeNeon   = "neon"
)

type textPalette struct{ color, background string }

var textThemes = map[string]textPalette{
	ThemeDark:       {color: "#f0f6fc", background: "#0d1117"},
	TextThemeLight:  {color: "#24292f", background: "#ffffff"},
	TextThemeMatrix: {color: "#00ff00", background: "#000000"},
	TextThemeNeon:   {color: "#e94560", background: "#1a1a2e"},
}

// TextThemes returns the theme names accepted by the animated text card.
func TextThemes() []string {
	return []string{ThemeDefault, ThemeDark, TextThemeLight, TextThemeMatrix, TextThemeNeon}
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// TextOptions configures the animated text card.
type TextOptions struct {
	Text       string  `json:"text"`
	FontSize   int     `json:"font_size"`
	Color      string  `json:"color"`
	Background string  `json:"bg_color"`
	Speed      float64 `json:"speed"` // seconds per typed character
	Theme      string  `json:"theme"`
}

// Normalize fills in defaults, applies the theme palette and validates o.
// Unknown themes fall back to the default theme. A named theme overrides
// Color and Background. Normalize is idempotent.
func (o TextOptions) Normalize() (TextOptions, error) {
	o.Text = strings.TrimSpace(o.Text)
	if o.Text == "" {
		o.Text = DefaultText
	}
	if n := utf8.RuneCountInString(o.Text); n > MaxTextRunes {
		return o, errs.New(errs.ErrCodeInvalidInput, "text must be at most %d characters, got %d", MaxTextRunes, n)
	}
	for _, r := range o.Text {
		if !unicode.IsPrint(r) {
			return o, errs.New(errs.ErrCodeInvalidInput, "text contains a non-printable character %q", r)
		}
	}

	if o.FontSize == 0 {
		o.FontSize = DefaultFontSize
	}
	if o.FontSize < MinFontSize || o.FontSize > MaxFontSize {
		return o, errs.New(errs.ErrCodeInvalidInput, "font_size must be between %d and %d, got %d", MinFontSize, MaxFontSize, o.FontSize)
	}
	if o.Speed == 0 {
		o.Speed = DefaultTextSpeed
	}
	if o.Speed < MinTextSpeed || o.Speed > MaxTextSpeed {
		return o, errs.New(errs.ErrCodeInvalidInput, "speed must be between %g and %g, got %g", MinTextSpeed, MaxTextSpeed, o.Speed)
	}

	o.Theme = strings.ToLower(strings.TrimSpace(o.Theme))
	if p, ok := textThemes[o.Theme]; ok {
		o.Color, o.Background = p.color, p.background
	} else {
		o.Theme = ThemeDefault
	}
	if o.Color == "" {
		o.Color = defaultTextColor
	}
	if o.Background == "" {
		o.Background = defaultTextBackground
	}
	if !hexColor.MatchString(o.Color) {
		return o, errs.New(errs.ErrCodeInvalidInput, "color must be a hex color like #ff0000, got %q", o.Color)
	}
	if !hexColor.MatchString(o.Background) {
		return o, errs.New(errs.ErrCodeInvalidInput, "bg_color must be a hex color like #000000, got %q", o.Background)
	}
	o.Color, o.Background = strings.ToLower(o.Color), strings.ToLower(o.Background)
	return o, nil
}

// AnimatedText renders a looping typewriter animation of o.Text: characters
// appear one by one, the full text holds for a second, then the characters
// disappear from the end at a faster pace. A cursor blinks after the text.
func AnimatedText(o TextOptions) ([]byte, error) {
	o, err := o.Normalize()
	if err != nil {
		return nil, err
	}

	chars := []rune(o.Text)
	n := float64(len(chars))
	charW := float64(o.FontSize) * 0.6
	width := max(textMinW, int(n*charW+textPadding*2))
	height := o.FontSize + textPadding*2
	baseline := textPadding + float64(o.FontSize)*0.7

	typing := n * o.Speed
	total := typing + textPause + typing*untypeFactor
	pauseEnd := (typing + textPause) / total

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <rect width="%d" height="%d" fill="%s"/>`+"\n", width, height, o.Background)
	textBackground(&buf, width, height, o.Theme)

	for i, r := range chars {
		if unicode.IsSpace(r) {
			continue
		}
		appear := float64(i) * o.Speed / total
		disappear := pauseEnd + (n-float64(i)-1)*o.Speed*untypeFactor/total
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-family="%s" font-size="%d" font-weight="bold" fill="%s" opacity="0">%s`,
			textPadding+float64(i)*charW, baseline, monoFamily, o.FontSize, o.Color, escapeXML(string(r)))
		fmt.Fprintf(&buf, `<animate attributeName="opacity" values="0;1;1;0;0" dur="%.2fs" keyTimes="0;%.3f;%.3f;%.3f;1" repeatCount="indefinite"/></text>`+"\n",
			total, appear, pauseEnd, disappear)
	}

	fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-family="%s" font-size="%d" font-weight="bold" fill="%s">|`,
		textPadding+n*charW+5, baseline, monoFamily, o.FontSize, o.Color)
	buf.WriteString(`<animate attributeName="opacity" values="1;0;1" dur="1s" repeatCount="indefinite"/></text>` + "\n")

	fmt.Fprintf(&buf, `  <text x="%d" y="%d" font-family="%s" font-size="8" fill="%s" opacity="0.3"%s>Animated by RepoStats API</text>`+"\n",
		width-10, height-10, fontFamily, o.Color, end)
	closeSVG(&buf)
	return buf.Bytes(), nil
}

// textBackground draws the decorative layer of the matrix and neon themes.
func textBackground(buf *bytes.Buffer, width, height int, theme string) {
	switch theme {
	case TextThemeMatrix:
		buf.WriteString(`  <defs><pattern id="matrix" x="0" y="0" width="20" height="20" patternUnits="userSpaceOnUse">` +
			`<rect width="20" height="20" fill="#000000"/>` +
			`<text x="10" y="15" font-family="monospace" font-size="10" fill="#003300" text-anchor="middle" opacity="0.3">0</text>` +
			`</pattern></defs>` + "\n")
		fmt.Fprintf(buf, `  <rect width="%d" height="%d" fill="url(#matrix)"/>`+"\n", width, height)
	case TextThemeNeon:
		buf.WriteString(`  <defs><radialGradient id="neonGlow" cx="50%" cy="50%" r="50%">` +
			`<stop offset="0%" stop-color="#16213e" stop-opacity="0.8"/>` +
			`<stop offset="100%" stop-color="#1a1a2e" stop-opacity="1"/>` +
			`</radialGradient></defs>` + "\n")
		fmt.Fprintf(buf, `  <rect width="%d" height="%d" fill="url(#neonGlow)"/>`+"\n", width, height)
	}
}
