package github

import (
	gh "github.com/google/go-github/v84/github"

	errs "github.com/matzehuels/repostats/pkg/errors"
	"github.com/matzehuels/repostats/pkg/integrations"
)

// FetchSpec identifies the repository and, for the contributor view, the
// contributor to fetch.
type FetchSpec struct {
	Owner    string
	Repo     string
	Username string
}

// FullName returns "owner/repo".
func (s FetchSpec) FullName() string { return s.Owner + "/" + s.Repo }

// Week is one bucket of the weekly commit series. Week is the ISO date of
// the bucket start for upstream data and "2024-MM" for the placeholder.
type Week struct {
	Week  string `json:"week"`
	Total int    `json:"total"`
	Days  []int  `json:"days,omitempty"`
}

// IssueCounts holds the counts derived from pagination metadata.
// The upstream issues listing includes pull requests.
type IssueCounts struct {
	OpenIssues   int `json:"open_issues"`
	ClosedIssues int `json:"closed_issues"`
	TotalIssues  int `json:"total_issues"`
	OpenPRs      int `json:"open_prs"`
	ClosedPRs    int `json:"closed_prs"`
	TotalPRs     int `json:"total_prs"`
}

// Results is the fixed set of sub-resource outcomes for one repository.
// Each slot is written by exactly one fetch task.
type Results struct {
	Repository     integrations.Result[*gh.Repository]
	Contributors   integrations.Result[[]*gh.Contributor]
	CommitActivity integrations.Result[[]Week]
	Languages      integrations.Result[map[string]int64]
	IssueCounts    integrations.Result[IssueCounts]
}

// Failed returns how many slots hold a failure.
func (r Results) Failed() int {
	n := 0
	for _, k := range []integrations.Kind{
		r.Repository.Kind,
		r.Contributors.Kind,
		r.CommitActivity.Kind,
		r.Languages.Kind,
		r.IssueCounts.Kind,
	} {
		if k == integrations.KindFailed {
			n++
		}
	}
	return n
}

// Err returns the error that should abort the aggregate, or nil when the
// results can be merged. The aggregate is aborted when the repository does
// not exist or when every slot failed; any other combination degrades.
func (r Results) Err() error {
	if r.Repository.Kind == integrations.KindFailed && errs.Is(r.Repository.Err, errs.ErrCodeNotFound) {
		return r.Repository.Err
	}
	if r.Failed() == 5 {
		code := errs.GetCode(r.Repository.Err)
		if code == "" {
			code = errs.ErrCodeInternal
		}
		return errs.Wrap(code, r.Repository.Err, "failed to fetch repository data")
	}
	return nil
}
