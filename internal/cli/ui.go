package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(14)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Output
// =============================================================================

// printer writes styled status lines to one writer.
type printer struct{ w io.Writer }

func (p printer) success(format string, args ...any) {
	fmt.Fprintln(p.w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func (p printer) error(format string, args ...any) {
	fmt.Fprintln(p.w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func (p printer) warning(format string, args ...any) {
	fmt.Fprintln(p.w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	fmt.Fprintln(p.w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

func (p printer) detail(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func (p printer) file(path string) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func (p printer) title(s string) {
	fmt.Fprintln(p.w, StyleTitle.Render(s))
}

func (p printer) keyValue(key, value string) {
	fmt.Fprintln(p.w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

func (p printer) number(key string, n int) {
	fmt.Fprintln(p.w, styleKey.Render(key)+" "+StyleNumber.Render(fmt.Sprintf("%d", n)))
}

// cacheStatus prints whether a result came from the cache.
func (p printer) cacheStatus(hit bool) {
	if hit {
		fmt.Fprintln(p.w, "  "+styleCached.Render(iconCached))
		return
	}
	fmt.Fprintln(p.w, "  "+styleComputed.Render(iconFresh))
}
