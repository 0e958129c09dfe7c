package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/matzehuels/repostats/pkg/stats"
)

// recentWeeks is how many trailing weeks the dashboard bar charts show.
const recentWeeks = 12

func renderRepobeats(buf *bytes.Buffer, s *stats.Stats, t Theme) {
	const width, height = 900, 400
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(buf, `  <rect width="%d" height="%d" fill="%s" stroke="%s" stroke-width="1" rx="6"/>`+"\n",
		width, height, t.Background, t.Border)

	totals := weekTotals(s.CommitActivity)
	st := s.Statistics

	// Header: commit total and one dot per week, brighter for busier weeks.
	text(buf, 15, 30, 14, t.Accent, bold, fmt.Sprintf("%s Commits in %s", formatNumber(st.TotalCommits), s.Repository.FullName))
	maxV := maxInt(totals)
	for i, v := range totals {
		dx := 15 + 520 + float64(i*8)
		if dx > width-25 {
			break
		}
		intensity := 0.0
		if maxV > 0 {
			intensity = float64(v) / float64(maxV)
		}
		color := t.Border
		if intensity > 0.5 {
			color = t.Success
		}
		fmt.Fprintf(buf, `  <rect x="%.1f" y="20" width="6" height="6" fill="%s" rx="1" opacity="%.2f"/>`+"\n",
			dx, color, 0.3+intensity*0.7)
	}

	// Metrics row.
	const col = (width - 30) / 3
	ratio := float64(st.OpenIssues) / float64(max(st.ClosedIssues, 1))
	metric(buf, 15, 70, fmt.Sprintf("%.2f Open/Closed Issue Ratio", ratio),
		fmt.Sprintf("%d open, %d closed", st.OpenIssues, st.ClosedIssues), t)
	metric(buf, 15+col, 70, fmt.Sprintf("%s Open Pull Requests", formatNumber(st.OpenPRs)),
		fmt.Sprintf("%d merged or closed", st.ClosedPRs), t)
	metric(buf, 15+2*col, 70, fmt.Sprintf("%s Commits", formatNumber(st.TotalCommits)),
		fmt.Sprintf("across %d weeks", len(totals)), t)

	// Charts row.
	const chartW, chartH = col - 20, 110
	barChart(buf, 15, 190, chartW, chartH, "Issues",
		[]bar{{"Open", st.OpenIssues, t.Blue}, {"Closed", st.ClosedIssues, t.Indigo}}, t)
	barChart(buf, 15+col, 190, chartW, chartH, "Pull Requests",
		[]bar{{"Open", st.OpenPRs, t.Purple}, {"Closed", st.ClosedPRs, t.Pink}}, t)
	weekly := totals
	if len(weekly) > recentWeeks {
		weekly = weekly[len(weekly)-recentWeeks:]
	}
	bars := make([]bar, len(weekly))
	for i, v := range weekly {
		bars[i] = bar{Value: v, Color: t.Orange}
	}
	barChart(buf, 15+2*col, 190, chartW, chartH, "Weekly Commits", bars, t)

	// Contributors row.
	text(buf, 15, 345, 14, t.TextPrimary, bold, "Top Contributors")
	if len(s.Contributors) == 0 {
		text(buf, 160, 345, 12, t.TextSecondary, "", "No contributors data")
	}
	const slot = (width - 30) / stats.MaxContributors
	for i, c := range s.Contributors {
		if i == stats.MaxContributors {
			break
		}
		cx := 15 + float64(i*slot)
		text(buf, cx, 370, 12, t.TextPrimary, bold, truncate(c.Login, 18))
		text(buf, cx, 386, 10, t.TextSecondary, "", fmt.Sprintf("%s commits", formatNumber(c.Contributions)))
	}

	closeSVG(buf)
}

func metric(buf *bytes.Buffer, x, y float64, headline, detail string, t Theme) {
	buf.WriteString("  <g>\n")
	text(buf, x, y+15, 16, t.TextPrimary, bold, headline)
	text(buf, x, y+35, 12, t.TextSecondary, "", detail)
	buf.WriteString("  </g>\n")
}

type bar struct {
	Label string
	Value int
	Color string
}

// barChart draws bars left to right scaled to the largest value. Labeled
// bars get a legend under the chart.
func barChart(buf *bytes.Buffer, x, y, width, height float64, title string, bars []bar, t Theme) {
	text(buf, x, y-10, 12, t.TextPrimary, bold, title)
	fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`+"\n",
		x, y+height, x+width, y+height, t.Border)
	if len(bars) == 0 {
		text(buf, x+width/2, y+height/2, 11, t.TextSecondary, middle, "No data")
		return
	}

	maxV := 0
	for _, b := range bars {
		maxV = max(maxV, b.Value)
	}
	slot := width / float64(len(bars))
	for i, b := range bars {
		h := 0.0
		if maxV > 0 {
			h = float64(b.Value) / float64(maxV) * height * 0.9
		}
		fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="1" opacity="0.8"/>`+"\n",
			x+float64(i)*slot+1, y+height-h, max(slot-2, 1), h, b.Color)
	}

	legendX := x
	for _, b := range bars {
		if b.Label == "" {
			continue
		}
		fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="8" height="8" fill="%s" rx="1"/>`+"\n", legendX, y+height+8, b.Color)
		text(buf, legendX+12, y+height+16, 10, t.TextSecondary, "", fmt.Sprintf("%s %d", b.Label, b.Value))
		legendX += 80
	}
}

// modernPalette is the fixed palette of the modern dashboard.
var modernPalette = struct {
	Background, Card, Border, TextPrimary, TextSecondary string
	Purple, Green, Orange                                string
}{
	Background:    "#1a1a1a",
	Card:          "#2d2d2d",
	Border:        "#404040",
	TextPrimary:   "#ffffff",
	TextSecondary: "#a0a0a0",
	Purple:        "#8b5cf6",
	Green:         "#10b981",
	Orange:        "#f59e0b",
}

func renderModern(buf *bytes.Buffer, s *stats.Stats, _ Theme) {
	const width, height = 500, 300
	p := modernPalette

	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(buf, `  <rect width="%d" height="%d" fill="%s" rx="12"/>`+"\n", width, height, p.Background)
	fmt.Fprintf(buf, `  <rect x="20" y="20" width="%d" height="%d" fill="%s" stroke="%s" stroke-width="1" rx="8"/>`+"\n",
		width-40, height-40, p.Card, p.Border)
	text(buf, 35, 45, 14, p.TextSecondary, "", truncate(s.Repository.FullName, 48))

	// Weekly commits line chart.
	const cx, cy, cw, ch = 35, 60, 280, 160
	fmt.Fprintf(buf, `  <rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="%s" stroke-width="1" rx="4"/>`+"\n",
		cx, cy, cw, ch, p.Border)
	if totals := weekTotals(s.CommitActivity); len(totals) > 0 {
		fmt.Fprintf(buf, `  <polyline points="%s" fill="none" stroke="%s" stroke-width="2" opacity="0.8"/>`+"\n",
			polylinePoints(totals, cx, cy+10, cw, ch-20), p.Green)
	} else {
		text(buf, cx+cw/2, cy+ch/2, 12, p.TextSecondary, middle, "No commit activity")
	}
	text(buf, cx, cy+ch+20, 11, p.Green, "", "Weekly commits")

	// Donut: open vs closed pull requests.
	const dx, dy, r = 400, 140, 35
	const circumference = 2 * math.Pi * r
	st := s.Statistics
	openShare := 0.0
	if st.TotalPRs > 0 {
		openShare = float64(st.OpenPRs) / float64(st.TotalPRs)
	}
	fmt.Fprintf(buf, `  <circle cx="%d" cy="%d" r="%d" fill="none" stroke="%s" stroke-width="8"/>`+"\n", dx, dy, r, p.Border)
	fmt.Fprintf(buf, `  <circle cx="%d" cy="%d" r="%d" fill="none" stroke="%s" stroke-width="8" stroke-dasharray="%.1f %.1f" transform="rotate(-90 %d %d)"/>`+"\n",
		dx, dy, r, p.Orange, openShare*circumference, circumference, dx, dy)
	fmt.Fprintf(buf, `  <circle cx="%d" cy="%d" r="%d" fill="none" stroke="%s" stroke-width="8" stroke-dasharray="%.1f %.1f" stroke-dashoffset="-%.1f" transform="rotate(-90 %d %d)"/>`+"\n",
		dx, dy, r, p.Green, (1-openShare)*circumference, circumference, openShare*circumference, dx, dy)
	fmt.Fprintf(buf, `  <circle cx="%d" cy="%d" r="%d" fill="%s"/>`+"\n", dx, dy, r-15, p.Purple)
	text(buf, dx, dy-5, 14, p.TextPrimary, bold+middle, formatNumber(st.OpenPRs))
	text(buf, dx, dy+10, 14, p.TextPrimary, bold+middle, formatNumber(st.ClosedPRs))
	text(buf, dx, dy+r+25, 11, p.Orange, middle, "open")
	text(buf, dx, dy+r+40, 11, p.Green, middle, "closed")

	text(buf, 35, height-30, 11, p.TextSecondary, "",
		fmt.Sprintf("%s stars, %s forks, %s commits",
			formatNumber(s.Repository.Stars), formatNumber(s.Repository.Forks), formatNumber(st.TotalCommits)))

	closeSVG(buf)
}
