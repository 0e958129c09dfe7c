package stats

import (
	"fmt"
	"sort"
	"time"

	gh "github.com/google/go-github/v84/github"

	"github.com/matzehuels/repostats/pkg/integrations/github"
)

// ContributorStats summarizes one contributor's recent commits.
type ContributorStats struct {
	Username     string         `json:"username"`
	TotalCommits int            `json:"total_commits"`
	Activity     map[string]int `json:"activity"`
	Repository   string         `json:"repository"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

// WeekKey formats t as an ISO year-week, e.g. "2024-W10".
func WeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// MergeContributor buckets commits by the ISO week of their author date.
// Commits without an author date count toward the total only.
func MergeContributor(commits []*gh.RepositoryCommit, spec github.FetchSpec, now time.Time) *ContributorStats {
	cs := &ContributorStats{
		Username:     spec.Username,
		TotalCommits: len(commits),
		Activity:     map[string]int{},
		Repository:   spec.FullName(),
		GeneratedAt:  now,
	}
	for _, c := range commits {
		author := c.GetCommit().GetAuthor()
		if author == nil || author.Date == nil {
			continue
		}
		cs.Activity[WeekKey(author.GetDate().Time)]++
	}
	return cs
}

// Weeks returns the activity keys in chronological order.
func (cs *ContributorStats) Weeks() []string {
	keys := make([]string, 0, len(cs.Activity))
	for k := range cs.Activity {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
