package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v84/github"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/repostats/pkg/buildinfo"
	errs "github.com/matzehuels/repostats/pkg/errors"
	"github.com/matzehuels/repostats/pkg/integrations"
	"github.com/matzehuels/repostats/pkg/observability"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

// Headers returns the request headers sent with every GitHub call.
func Headers() map[string]string {
	return map[string]string{
		"Accept":     "application/vnd.github.v3+json",
		"User-Agent": buildinfo.UserAgent(),
	}
}

// placeholderWeeks is the length of the synthetic commit series.
const placeholderWeeks = 12

// Client fetches the sub-resources of a repository concurrently.
type Client struct {
	api         *integrations.Client
	baseURL     string
	placeholder bool
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server or
// a GitHub Enterprise instance.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithoutPlaceholder leaves the commit activity slot empty when the upstream
// has no series yet, instead of filling it with synthetic weeks.
func WithoutPlaceholder() Option {
	return func(c *Client) { c.placeholder = false }
}

// NewClient creates a Client on top of the shared upstream client.
func NewClient(api *integrations.Client, opts ...Option) *Client {
	c := &Client{api: api, baseURL: DefaultBaseURL, placeholder: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAll retrieves the five sub-resources of spec concurrently and waits
// for all of them. A failing task never cancels the others; each one writes
// only its own slot of the returned Results.
func (c *Client) FetchAll(ctx context.Context, spec FetchSpec) Results {
	hooks := observability.Fetch()
	hooks.OnFetchStart(ctx, spec.Owner, spec.Repo)
	start := c.api.Clock().Now()

	var r Results
	var g errgroup.Group
	g.Go(func() error {
		r.Repository = integrations.Decode[*gh.Repository](c.api.Fetch(ctx, c.repoURL(spec, "")))
		return nil
	})
	g.Go(func() error {
		r.Contributors = integrations.Decode[[]*gh.Contributor](c.api.Fetch(ctx, c.repoURL(spec, "/contributors")))
		return nil
	})
	g.Go(func() error {
		r.CommitActivity = c.commitActivity(ctx, spec)
		return nil
	})
	g.Go(func() error {
		r.Languages = integrations.Decode[map[string]int64](c.api.Fetch(ctx, c.repoURL(spec, "/languages")))
		return nil
	})
	g.Go(func() error {
		r.IssueCounts = c.issueCounts(ctx, spec)
		return nil
	})
	_ = g.Wait()

	hooks.OnFetchComplete(ctx, spec.Owner, spec.Repo, r.Failed(), c.api.Clock().Since(start))
	return r
}

// FetchContributor retrieves up to 100 commits authored by spec.Username.
func (c *Client) FetchContributor(ctx context.Context, spec FetchSpec) integrations.Result[[]*gh.RepositoryCommit] {
	u := c.repoURL(spec, "/commits?author="+url.QueryEscape(spec.Username)+"&per_page=100")
	return integrations.Decode[[]*gh.RepositoryCommit](c.api.Fetch(ctx, u))
}

func (c *Client) repoURL(spec FetchSpec, suffix string) string {
	return fmt.Sprintf("%s/repos/%s/%s%s", c.baseURL, url.PathEscape(spec.Owner), url.PathEscape(spec.Repo), suffix)
}

// commitActivity fetches the weekly series. A body that is not a non-empty
// list, or a series still being computed after the retry, becomes the
// placeholder when enabled.
func (c *Client) commitActivity(ctx context.Context, spec FetchSpec) integrations.Result[[]Week] {
	res := c.api.Fetch(ctx, c.repoURL(spec, "/stats/commit_activity"))
	if res.Kind == integrations.KindFailed {
		return integrations.Failed[[]Week](res.Err)
	}

	var raw []*gh.WeeklyCommitActivity
	if res.OK() {
		if err := json.Unmarshal(res.Value.Body, &raw); err != nil {
			raw = nil
		}
	}
	if len(raw) == 0 {
		if !c.placeholder {
			return integrations.Empty[[]Week]()
		}
		return integrations.Success(PlaceholderActivity())
	}

	weeks := make([]Week, 0, len(raw))
	for _, w := range raw {
		if w == nil {
			continue
		}
		week := Week{Total: w.GetTotal(), Days: w.Days}
		if w.Week != nil {
			week.Week = w.GetWeek().UTC().Format("2006-01-02")
		}
		weeks = append(weeks, week)
	}
	return integrations.Success(weeks)
}

// PlaceholderActivity returns the deterministic series used when the
// upstream has not computed commit statistics yet.
func PlaceholderActivity() []Week {
	weeks := make([]Week, placeholderWeeks)
	for i := 1; i <= placeholderWeeks; i++ {
		weeks[i-1] = Week{Week: fmt.Sprintf("2024-%02d", i), Total: 5 + i%10}
	}
	return weeks
}

// issueCounts runs the four listing counts concurrently. A failing count
// contributes 0; the slot fails only when all four fail.
func (c *Client) issueCounts(ctx context.Context, spec FetchSpec) integrations.Result[IssueCounts] {
	queries := [4]string{
		"/issues?state=open&per_page=1",
		"/issues?state=closed&per_page=1",
		"/pulls?state=open&per_page=1",
		"/pulls?state=closed&per_page=1",
	}
	var counts [4]int
	var failures [4]error

	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			counts[i], failures[i] = c.api.Count(ctx, c.repoURL(spec, q))
			return nil
		})
	}
	_ = g.Wait()

	allFailed := true
	for _, err := range failures {
		if err == nil {
			allFailed = false
			break
		}
	}
	if allFailed {
		return integrations.Failed[IssueCounts](errs.Wrap(errs.ErrCodeUpstream, failures[0], "count issues and pull requests"))
	}

	return integrations.Success(IssueCounts{
		OpenIssues:   counts[0],
		ClosedIssues: counts[1],
		TotalIssues:  counts[0] + counts[1],
		OpenPRs:      counts[2],
		ClosedPRs:    counts[3],
		TotalPRs:     counts[2] + counts[3],
	})
}
