// Package stats merges fetched sub-resources into one statistics record.
//
// [Merge] is pure: it never performs I/O and never fails. Failed or empty
// sub-resources degrade to zero values, so every numeric field of [Stats] is
// 0 by default and every collection is non-nil and empty. Renderers can read
// any field without checking for absence.
package stats

import (
	"fmt"
	"time"

	"github.com/matzehuels/repostats/pkg/integrations/github"
)

// MaxContributors is how many contributors the aggregate keeps.
const MaxContributors = 5

// Stats is the aggregated statistics record of one repository.
type Stats struct {
	Repository     Repository         `json:"repository"`
	Statistics     Statistics         `json:"statistics"`
	Contributors   []Contributor      `json:"contributors"`
	CommitActivity []Week             `json:"commit_activity"`
	Languages      map[string]float64 `json:"languages"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

// Repository describes the repository itself.
type Repository struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	Watchers    int    `json:"watchers"`
	Size        int    `json:"size"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Statistics holds the derived counters.
type Statistics struct {
	TotalCommits      int `json:"total_commits"`
	TotalContributors int `json:"total_contributors"`
	OpenIssues        int `json:"open_issues"`
	ClosedIssues      int `json:"closed_issues"`
	TotalIssues       int `json:"total_issues"`
	OpenPRs           int `json:"open_prs"`
	ClosedPRs         int `json:"closed_prs"`
	TotalPRs          int `json:"total_prs"`
}

// Contributor is one entry of the top contributors list.
type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	AvatarURL     string `json:"avatar_url"`
}

// Week is one bucket of the commit activity series.
type Week struct {
	Week  string `json:"week"`
	Total int    `json:"total"`
}

// Merge builds the aggregate for spec from r. now is recorded as the
// generation time.
func Merge(r github.Results, spec github.FetchSpec, now time.Time) *Stats {
	s := &Stats{
		Repository: Repository{
			Name:     spec.Repo,
			FullName: spec.FullName(),
		},
		Contributors:   []Contributor{},
		CommitActivity: []Week{},
		Languages:      map[string]float64{},
		GeneratedAt:    now,
	}

	if repo := r.Repository.Value; r.Repository.OK() && repo != nil {
		if name := repo.GetName(); name != "" {
			s.Repository.Name = name
		}
		if full := repo.GetFullName(); full != "" {
			s.Repository.FullName = full
		}
		s.Repository.Description = repo.GetDescription()
		s.Repository.Stars = repo.GetStargazersCount()
		s.Repository.Forks = repo.GetForksCount()
		s.Repository.Watchers = repo.GetWatchersCount()
		s.Repository.Size = repo.GetSize()
		if repo.CreatedAt != nil {
			s.Repository.CreatedAt = repo.GetCreatedAt().UTC().Format(time.RFC3339)
		}
		if repo.UpdatedAt != nil {
			s.Repository.UpdatedAt = repo.GetUpdatedAt().UTC().Format(time.RFC3339)
		}
	}

	if r.Contributors.OK() {
		for _, c := range r.Contributors.Value {
			if len(s.Contributors) == MaxContributors {
				break
			}
			if c == nil {
				continue
			}
			s.Contributors = append(s.Contributors, Contributor{
				Login:         c.GetLogin(),
				Contributions: c.GetContributions(),
				AvatarURL:     c.GetAvatarURL(),
			})
		}
	}
	s.Statistics.TotalContributors = len(s.Contributors)

	if r.CommitActivity.OK() {
		for _, w := range r.CommitActivity.Value {
			s.CommitActivity = append(s.CommitActivity, Week{Week: w.Week, Total: w.Total})
			s.Statistics.TotalCommits += w.Total
		}
	}

	if r.Languages.OK() {
		s.Languages = Percentages(r.Languages.Value)
	}

	if r.IssueCounts.OK() {
		c := r.IssueCounts.Value
		s.Statistics.OpenIssues = c.OpenIssues
		s.Statistics.ClosedIssues = c.ClosedIssues
		s.Statistics.TotalIssues = c.TotalIssues
		s.Statistics.OpenPRs = c.OpenPRs
		s.Statistics.ClosedPRs = c.ClosedPRs
		s.Statistics.TotalPRs = c.TotalPRs
	}

	return s
}

// Percentages converts language byte counts into shares of the total,
// ×100. Non-positive counts are skipped. The result is empty, never nil,
// when there are no bytes.
func Percentages(bytes map[string]int64) map[string]float64 {
	var total int64
	for _, n := range bytes {
		if n > 0 {
			total += n
		}
	}
	out := make(map[string]float64, len(bytes))
	if total == 0 {
		return out
	}
	for lang, n := range bytes {
		if n > 0 {
			out[lang] = float64(n) / float64(total) * 100
		}
	}
	return out
}

// String is used in logs.
func (s *Stats) String() string {
	return fmt.Sprintf("%s: %d stars, %d commits, %d contributors",
		s.Repository.FullName, s.Repository.Stars, s.Statistics.TotalCommits, s.Statistics.TotalContributors)
}
