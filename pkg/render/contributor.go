package render

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/repostats/pkg/stats"
)

// heatmapWeeks is how many of the most recent weeks the heatmap shows.
const heatmapWeeks = 52

func renderContributor(buf *bytes.Buffer, cs *stats.ContributorStats, t Theme) {
	const width, height = 600, 300
	openSVG(buf, width, height, t.Background)

	text(buf, 20, 30, 18, t.TextPrimary, bold, cs.Username)
	text(buf, 20, 50, 12, t.TextSecondary, "", "Contributor Stats for "+cs.Repository)
	fmt.Fprintf(buf, `  <text x="20" y="80" font-family="%s" font-size="14" fill="%s">Total Commits: <tspan font-weight="bold" fill="%s">%d</tspan></text>`+"\n",
		fontFamily, t.TextPrimary, t.Accent, cs.TotalCommits)

	activityHeatmap(buf, 20, 100, 560, cs, t)

	footer(buf, height, t, cs.GeneratedAt)
	closeSVG(buf)
}

func activityHeatmap(buf *bytes.Buffer, x, y float64, width int, cs *stats.ContributorStats, t Theme) {
	if len(cs.Activity) == 0 {
		text(buf, x, y+20, 12, t.TextSecondary, "", "No activity data available")
		return
	}
	text(buf, x, y, 14, t.TextPrimary, bold, "Activity Heatmap")

	const cell, gap = 12, 2
	perRow := width / (cell + gap)

	weeks := cs.Weeks()
	if len(weeks) > heatmapWeeks {
		weeks = weeks[len(weeks)-heatmapWeeks:]
	}
	maxCommits := 0
	for _, w := range weeks {
		maxCommits = max(maxCommits, cs.Activity[w])
	}

	for i, w := range weeks {
		n := cs.Activity[w]
		cx := x + float64((i%perRow)*(cell+gap))
		cy := y + 25 + float64((i/perRow)*(cell+gap))
		opacity := 0.0
		if maxCommits > 0 {
			opacity = min(float64(n)/float64(maxCommits), 1)
		}
		fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%d" height="%d" fill="%s" opacity="%.2f" rx="2"><title>%s: %d commits</title></rect>`+"\n",
			cx, cy, cell, cell, t.Accent, opacity, escapeXML(w), n)
	}
}
