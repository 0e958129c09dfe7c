package render

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/repostats/pkg/stats"
)

const maxLanguages = 5

func renderRepoStats(buf *bytes.Buffer, s *stats.Stats, t Theme) {
	const width, height = 800, 400
	openSVG(buf, width, height, t.Background)

	name := s.Repository.Name
	if name == "" {
		name = "Repository"
	}
	text(buf, 20, 30, 18, t.TextPrimary, bold, name)
	text(buf, 20, 50, 12, t.TextSecondary, "", truncate(s.Repository.Description, 80))

	statBox(buf, 80, 80, "Stars", s.Repository.Stars, t.Accent, t)
	statBox(buf, 200, 80, "Forks", s.Repository.Forks, t.Success, t)
	statBox(buf, 320, 80, "Issues", s.Statistics.OpenIssues, t.Warning, t)
	statBox(buf, 440, 80, "Commits", s.Statistics.TotalCommits, t.Accent, t)

	languageChart(buf, 20, 160, 350, s.Languages, t)
	contributorList(buf, 400, 160, s.Contributors, t)

	footer(buf, height, t, s.GeneratedAt)
	closeSVG(buf)
}

func statBox(buf *bytes.Buffer, x, y float64, label string, value int, color string, t Theme) {
	buf.WriteString("  <g>\n")
	fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="100" height="60" fill="%s" stroke="%s" rx="4"/>`+"\n",
		x, y, t.Background, t.Border)
	text(buf, x+50, y+20, 12, t.TextSecondary, middle, label)
	text(buf, x+50, y+40, 16, color, bold+middle, formatNumber(value))
	buf.WriteString("  </g>\n")
}

func languageChart(buf *bytes.Buffer, x, y, width float64, langs map[string]float64, t Theme) {
	if len(langs) == 0 {
		text(buf, x, y+20, 12, t.TextSecondary, "", "No language data available")
		return
	}
	text(buf, x, y, 14, t.TextPrimary, bold, "Languages")

	const barHeight, barSpacing = 20, 25
	for i, l := range topLanguages(langs, maxLanguages) {
		barY := y + 25 + float64(i*barSpacing)
		barWidth := l.Percent / 100 * (width - 100)
		fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%d" fill="%s" rx="2"/>`+"\n",
			x, barY, barWidth, barHeight, languageColor(l.Name, t))
		text(buf, x+barWidth+10, barY+15, 11, t.TextPrimary, "", fmt.Sprintf("%s (%.1f%%)", l.Name, l.Percent))
	}
}

func contributorList(buf *bytes.Buffer, x, y float64, contributors []stats.Contributor, t Theme) {
	if len(contributors) == 0 {
		text(buf, x, y+20, 12, t.TextSecondary, "", "No contributors data")
		return
	}
	text(buf, x, y, 14, t.TextPrimary, bold, "Top Contributors")

	const avatar = 20
	for i, c := range contributors {
		if i == stats.MaxContributors {
			break
		}
		cy := y + 25 + float64(i*30)
		fmt.Fprintf(buf, `  <circle cx="%.1f" cy="%.1f" r="%d" fill="%s" opacity="0.3"/>`+"\n",
			x+avatar/2, cy+avatar/2, avatar/2, t.Accent)
		login := c.Login
		if login == "" {
			login = "Unknown"
		}
		text(buf, x+avatar+10, cy+8, 11, t.TextPrimary, "", login)
		text(buf, x+avatar+10, cy+20, 10, t.TextSecondary, "", fmt.Sprintf("%d contributions", c.Contributions))
	}
}

func renderCommitActivity(buf *bytes.Buffer, s *stats.Stats, t Theme) {
	if len(s.CommitActivity) == 0 {
		emptyChart(buf, "No commit activity data", t)
		return
	}

	const width, height = 800, 300
	const chartX, chartY = 60, 60
	const chartW, chartH = width - 100, height - 120

	openSVG(buf, width, height, t.Background)
	text(buf, 20, 30, 18, t.TextPrimary, bold, "Commit Activity")
	text(buf, 20, 50, 12, t.TextSecondary, "", "Weekly commits over the past year")
	fmt.Fprintf(buf, `  <rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="%s"/>`+"\n",
		chartX, chartY, chartW, chartH, t.Border)

	totals := weekTotals(s.CommitActivity)
	fmt.Fprintf(buf, `  <polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
		polylinePoints(totals, chartX, chartY, chartW, chartH), t.Accent)

	maxV := maxInt(totals)
	for i := 0; i <= 4; i++ {
		y := float64(chartY+chartH) - float64(i)/4*chartH
		text(buf, chartX-10, y+5, 10, t.TextSecondary, end, fmt.Sprintf("%d", maxV*i/4))
	}

	footer(buf, height, t, s.GeneratedAt)
	closeSVG(buf)
}
