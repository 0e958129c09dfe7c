package github

import (
	"context"
	"net/http"
	"testing"
	"time"

	gh "github.com/google/go-github/v84/github"
	"github.com/jonboulle/clockwork"

	errs "github.com/matzehuels/repostats/pkg/errors"
	"github.com/matzehuels/repostats/pkg/integrations"
	"github.com/matzehuels/repostats/pkg/integrations/github/githubtest"
)

func testClient(t *testing.T, srv *githubtest.Server, clock clockwork.Clock, opts ...Option) *Client {
	t.Helper()
	api := integrations.NewClient(srv.Client(), clock, Headers())
	return NewClient(api, append([]Option{WithBaseURL(srv.URL)}, opts...)...)
}

func TestFetchAll(t *testing.T) {
	srv := githubtest.NewServer(t, githubtest.Widget())
	c := testClient(t, srv, clockwork.NewFakeClock())

	r := c.FetchAll(context.Background(), FetchSpec{Owner: "acme", Repo: "widget"})

	if err := r.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if r.Failed() != 0 {
		t.Fatalf("Failed() = %d, want 0", r.Failed())
	}
	if got := r.Repository.Value.GetStargazersCount(); got != 150 {
		t.Errorf("stars = %d, want 150", got)
	}
	if got := len(r.Contributors.Value); got != 2 {
		t.Errorf("contributors = %d, want 2", got)
	}
	if got := r.Contributors.Value[0].GetLogin(); got != "alice" {
		t.Errorf("first contributor = %q, want alice", got)
	}

	total := 0
	for _, w := range r.CommitActivity.Value {
		total += w.Total
	}
	if total != 340 {
		t.Errorf("weekly sum = %d, want 340", total)
	}
	if got := r.CommitActivity.Value[0].Week; got != "2024-01-07" {
		t.Errorf("first week = %q, want 2024-01-07", got)
	}
	if got := r.Languages.Value["X"]; got != 800 {
		t.Errorf("languages[X] = %d, want 800", got)
	}

	want := IssueCounts{OpenIssues: 7, ClosedIssues: 42, TotalIssues: 49, OpenPRs: 3, ClosedPRs: 18, TotalPRs: 21}
	if r.IssueCounts.Value != want {
		t.Errorf("issue counts = %+v, want %+v", r.IssueCounts.Value, want)
	}
}

func TestFetchAll_PartialFailure(t *testing.T) {
	repo := githubtest.Widget()
	repo.Status = map[string]int{githubtest.Languages: http.StatusInternalServerError}
	srv := githubtest.NewServer(t, repo)
	c := testClient(t, srv, clockwork.NewFakeClock())

	r := c.FetchAll(context.Background(), FetchSpec{Owner: "acme", Repo: "widget"})

	if r.Languages.Kind != integrations.KindFailed {
		t.Fatalf("languages kind = %v, want failed", r.Languages.Kind)
	}
	if errs.GetStatus(r.Languages.Err) != http.StatusInternalServerError {
		t.Errorf("languages error = %v, want status 500", r.Languages.Err)
	}
	if !r.Repository.OK() || !r.Contributors.OK() || !r.CommitActivity.OK() || !r.IssueCounts.OK() {
		t.Errorf("other slots should succeed: %+v", r)
	}
	if err := r.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestFetchAll_NotFound(t *testing.T) {
	srv := githubtest.NewServer(t)
	c := testClient(t, srv, clockwork.NewFakeClock())

	r := c.FetchAll(context.Background(), FetchSpec{Owner: "acme", Repo: "missing"})

	if err := r.Err(); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Fatalf("Err() = %v, want NOT_FOUND", err)
	}
}

func TestFetchAll_IssueCountsDegrade(t *testing.T) {
	repo := githubtest.Widget()
	repo.Status = map[string]int{githubtest.Pulls: http.StatusForbidden}
	srv := githubtest.NewServer(t, repo)
	c := testClient(t, srv, clockwork.NewFakeClock())

	r := c.FetchAll(context.Background(), FetchSpec{Owner: "acme", Repo: "widget"})

	if !r.IssueCounts.OK() {
		t.Fatalf("issue counts = %v, want success when only pulls fail", r.IssueCounts)
	}
	got := r.IssueCounts.Value
	if got.TotalIssues != 49 || got.TotalPRs != 0 {
		t.Errorf("issue counts = %+v", got)
	}

	repo.Status[githubtest.Issues] = http.StatusForbidden
	srv = githubtest.NewServer(t, repo)
	c = testClient(t, srv, clockwork.NewFakeClock())
	r = c.FetchAll(context.Background(), FetchSpec{Owner: "acme", Repo: "widget"})
	if r.IssueCounts.Kind != integrations.KindFailed {
		t.Errorf("issue counts kind = %v, want failed when all four fail", r.IssueCounts.Kind)
	}
}

func TestFetchAll_StillComputing(t *testing.T) {
	repo := githubtest.Widget()
	repo.Status = map[string]int{githubtest.CommitActivity: http.StatusAccepted}

	for _, tc := range []struct {
		name string
		opts []Option
		want integrations.Kind
	}{
		{"placeholder", nil, integrations.KindSuccess},
		{"without placeholder", []Option{WithoutPlaceholder()}, integrations.KindEmpty},
	} {
		t.Run(tc.name, func(t *testing.T) {
			srv := githubtest.NewServer(t, repo)
			clock := clockwork.NewFakeClock()
			c := testClient(t, srv, clock, tc.opts...)

			done := make(chan Results, 1)
			go func() { done <- c.FetchAll(context.Background(), FetchSpec{Owner: "acme", Repo: "widget"}) }()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := clock.BlockUntilContext(ctx, 1); err != nil {
				t.Fatalf("no retry wait observed: %v", err)
			}
			clock.Advance(integrations.AcceptedDelay)

			var r Results
			select {
			case r = <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("FetchAll did not return")
			}
			if r.CommitActivity.Kind != tc.want {
				t.Fatalf("commit activity kind = %v, want %v", r.CommitActivity.Kind, tc.want)
			}
			if tc.want == integrations.KindSuccess {
				if got := r.CommitActivity.Value; len(got) != 12 || got[0].Week != "2024-01" || got[0].Total != 6 {
					t.Errorf("placeholder = %+v", got)
				}
			}
		})
	}
}

func TestPlaceholderActivity(t *testing.T) {
	weeks := PlaceholderActivity()
	if len(weeks) != 12 {
		t.Fatalf("len = %d, want 12", len(weeks))
	}
	wantTotals := []int{6, 7, 8, 9, 10, 11, 12, 13, 14, 5, 6, 7}
	for i, w := range weeks {
		if w.Total != wantTotals[i] {
			t.Errorf("week %d total = %d, want %d", i+1, w.Total, wantTotals[i])
		}
	}
	if weeks[11].Week != "2024-12" {
		t.Errorf("last week = %q", weeks[11].Week)
	}
}

func TestFetchContributor(t *testing.T) {
	srv := githubtest.NewServer(t, githubtest.Widget())
	c := testClient(t, srv, clockwork.NewFakeClock())

	res := c.FetchContributor(context.Background(), FetchSpec{Owner: "acme", Repo: "widget", Username: "alice"})
	if !res.OK() {
		t.Fatalf("FetchContributor = %v", res)
	}
	if len(res.Value) != 3 {
		t.Fatalf("commits = %d, want 3", len(res.Value))
	}
	if got := res.Value[0].GetCommit().GetAuthor().GetDate(); got.Year() != 2024 {
		t.Errorf("date = %v", got)
	}

	res = c.FetchContributor(context.Background(), FetchSpec{Owner: "acme", Repo: "widget", Username: "nobody"})
	if !res.OK() || len(res.Value) != 0 {
		t.Errorf("unknown author = %v, want empty success", res)
	}
}

func TestResultsErr_AllFailed(t *testing.T) {
	fail := errs.Upstream(http.StatusBadGateway)
	r := Results{
		Repository:     integrations.Failed[*gh.Repository](fail),
		Contributors:   integrations.Failed[[]*gh.Contributor](fail),
		CommitActivity: integrations.Failed[[]Week](fail),
		Languages:      integrations.Failed[map[string]int64](fail),
		IssueCounts:    integrations.Failed[IssueCounts](fail),
	}
	if err := r.Err(); !errs.Is(err, errs.ErrCodeUpstream) {
		t.Errorf("Err() = %v, want UPSTREAM_ERROR", err)
	}

	r.Languages = integrations.Success(map[string]int64{})
	if err := r.Err(); err != nil {
		t.Errorf("Err() = %v, want nil with one success", err)
	}
}
