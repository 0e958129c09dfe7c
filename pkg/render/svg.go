package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"
)

const fontFamily = "Arial, sans-serif"

// Extra text attributes.
const (
	bold   = ` font-weight="bold"`
	middle = ` text-anchor="middle"`
	end    = ` text-anchor="end"`
)

func openSVG(buf *bytes.Buffer, width, height int, background string) {
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(buf, `  <rect width="%d" height="%d" fill="%s" rx="6"/>`+"\n", width, height, background)
}

func closeSVG(buf *bytes.Buffer) {
	buf.WriteString("</svg>\n")
}

// text writes an escaped text element. attrs is appended verbatim.
func text(buf *bytes.Buffer, x, y float64, size int, fill, attrs, body string) {
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-family="%s" font-size="%d" fill="%s"%s>%s</text>`+"\n",
		x, y, fontFamily, size, fill, attrs, escapeXML(body))
}

func footer(buf *bytes.Buffer, height int, t Theme, at time.Time) {
	text(buf, 20, float64(height-10), 10, t.TextSecondary, "", "Generated at "+at.UTC().Format("2006-01-02 15:04")+" UTC")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// formatNumber shortens large counts: 1500 → "1.5K", 2000000 → "2.0M".
func formatNumber(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}

// truncate cuts s to limit runes and appends "..." when it was longer.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

// emptyChart is drawn in place of a chart that has no data.
func emptyChart(buf *bytes.Buffer, message string, t Theme) {
	const width, height = 400, 200
	openSVG(buf, width, height, t.Background)
	text(buf, width/2, height/2, 14, t.TextSecondary, middle, message)
	closeSVG(buf)
}

// polylinePoints scales values into the box at (x, y) of size w×h. The
// first and last points touch the left and right edges, the largest value
// touches the top edge and an all-zero series lies on the bottom. A single
// point sits on the left edge.
func polylinePoints(values []int, x, y, w, h float64) string {
	maxV := maxInt(values)
	step := 0.0
	if len(values) > 1 {
		step = w / float64(len(values)-1)
	}
	var buf bytes.Buffer
	for i, v := range values {
		px := x + float64(i)*step
		py := y + h
		if maxV > 0 {
			py -= float64(v) / float64(maxV) * h
		}
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%.1f,%.1f", px, py)
	}
	return buf.String()
}

func maxInt(values []int) int {
	m := 0
	for _, v := range values {
		m = max(m, v)
	}
	return m
}
