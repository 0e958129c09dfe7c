// Package githubtest serves canned GitHub REST responses for tests.
package githubtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// Sub-resource names accepted by Repo.Status.
const (
	Info           = "info"
	Contributors   = "contributors"
	CommitActivity = "commit_activity"
	Languages      = "languages"
	Issues         = "issues"
	Pulls          = "pulls"
	Commits        = "commits"
)

// Repo describes one repository served by a Server.
type Repo struct {
	Owner       string
	Name        string
	Description string
	Stars       int
	Forks       int
	Watchers    int
	Size        int

	// Contributors maps logins to contribution counts, served in slice order.
	Contributors []Contributor
	// Weekly holds the commit totals per week, oldest first.
	Weekly    []int
	Languages map[string]int64

	OpenIssues, ClosedIssues int
	OpenPRs, ClosedPRs       int

	// Commits maps an author login to its commit dates.
	Commits map[string][]time.Time

	// Status overrides the response status of a sub-resource on every call,
	// e.g. Status[Languages] = 500.
	Status map[string]int
}

// Contributor is one entry of the contributors listing.
type Contributor struct {
	Login         string
	Contributions int
}

// Widget returns the acme/widget fixture: 150 stars, two contributors, a
// twelve week series summing to 340 and languages {X: 800, Y: 200}.
func Widget() Repo {
	return Repo{
		Owner:       "acme",
		Name:        "widget",
		Description: "Widgets for everyone",
		Stars:       150,
		Forks:       12,
		Watchers:    150,
		Size:        2048,
		Contributors: []Contributor{
			{Login: "alice", Contributions: 210},
			{Login: "bob", Contributions: 130},
		},
		Weekly:       []int{10, 15, 20, 25, 30, 35, 40, 35, 30, 40, 30, 30},
		Languages:    map[string]int64{"X": 800, "Y": 200},
		OpenIssues:   7,
		ClosedIssues: 42,
		OpenPRs:      3,
		ClosedPRs:    18,
		Commits: map[string][]time.Time{
			"alice": {
				time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
				time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC),
				time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC),
			},
		},
	}
}

// Server is an httptest.Server speaking a subset of the GitHub REST API.
type Server struct {
	*httptest.Server
	calls atomic.Int64
}

// Calls returns the number of requests served so far.
func (s *Server) Calls() int { return int(s.calls.Load()) }

// NewServer starts a Server for repos and closes it when the test ends.
// Unknown repositories answer 404.
func NewServer(t testing.TB, repos ...Repo) *Server {
	t.Helper()
	index := make(map[string]Repo, len(repos))
	for _, r := range repos {
		index[r.Owner+"/"+r.Name] = r
	}

	s := &Server{}
	mux := http.NewServeMux()
	handle := func(pattern, resource string, fn func(http.ResponseWriter, *http.Request, Repo)) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
			s.calls.Add(1)
			repo, ok := index[req.PathValue("owner")+"/"+req.PathValue("repo")]
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
				return
			}
			if code := repo.Status[resource]; code != 0 && code != http.StatusOK {
				writeJSON(w, code, map[string]string{"message": http.StatusText(code)})
				return
			}
			fn(w, req, repo)
		})
	}

	handle("GET /repos/{owner}/{repo}", Info, serveInfo)
	handle("GET /repos/{owner}/{repo}/contributors", Contributors, serveContributors)
	handle("GET /repos/{owner}/{repo}/stats/commit_activity", CommitActivity, serveActivity)
	handle("GET /repos/{owner}/{repo}/languages", Languages, func(w http.ResponseWriter, _ *http.Request, r Repo) {
		langs := r.Languages
		if langs == nil {
			langs = map[string]int64{}
		}
		writeJSON(w, http.StatusOK, langs)
	})
	handle("GET /repos/{owner}/{repo}/issues", Issues, func(w http.ResponseWriter, req *http.Request, r Repo) {
		serveCount(w, req, r.OpenIssues, r.ClosedIssues)
	})
	handle("GET /repos/{owner}/{repo}/pulls", Pulls, func(w http.ResponseWriter, req *http.Request, r Repo) {
		serveCount(w, req, r.OpenPRs, r.ClosedPRs)
	})
	handle("GET /repos/{owner}/{repo}/commits", Commits, serveCommits)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func serveInfo(w http.ResponseWriter, _ *http.Request, r Repo) {
	created := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	writeJSON(w, http.StatusOK, map[string]any{
		"name":             r.Name,
		"full_name":        r.Owner + "/" + r.Name,
		"description":      r.Description,
		"stargazers_count": r.Stars,
		"forks_count":      r.Forks,
		"watchers_count":   r.Watchers,
		"size":             r.Size,
		"created_at":       created.Format(time.RFC3339),
		"updated_at":       created.AddDate(4, 0, 0).Format(time.RFC3339),
	})
}

func serveContributors(w http.ResponseWriter, _ *http.Request, r Repo) {
	out := make([]map[string]any, 0, len(r.Contributors))
	for _, c := range r.Contributors {
		out = append(out, map[string]any{
			"login":         c.Login,
			"contributions": c.Contributions,
			"avatar_url":    "https://avatars.example.com/" + c.Login,
			"type":          "User",
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func serveActivity(w http.ResponseWriter, _ *http.Request, r Repo) {
	start := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	out := make([]map[string]any, 0, len(r.Weekly))
	for i, total := range r.Weekly {
		out = append(out, map[string]any{
			"week":  start.AddDate(0, 0, 7*i).Unix(),
			"total": total,
			"days":  []int{0, total, 0, 0, 0, 0, 0},
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func serveCount(w http.ResponseWriter, req *http.Request, open, closed int) {
	n := open
	if req.URL.Query().Get("state") == "closed" {
		n = closed
	}
	if n > 1 {
		w.Header().Set("Link", fmt.Sprintf(
			`<http://%s%s?state=%s&per_page=1&page=2>; rel="next", <http://%s%s?state=%s&per_page=1&page=%d>; rel="last"`,
			req.Host, req.URL.Path, req.URL.Query().Get("state"),
			req.Host, req.URL.Path, req.URL.Query().Get("state"), n))
	}
	items := []map[string]any{}
	if n > 0 {
		items = append(items, map[string]any{"number": 1})
	}
	writeJSON(w, http.StatusOK, items)
}

func serveCommits(w http.ResponseWriter, req *http.Request, r Repo) {
	dates := r.Commits[req.URL.Query().Get("author")]
	out := make([]map[string]any, 0, len(dates))
	for i, d := range dates {
		out = append(out, map[string]any{
			"sha": fmt.Sprintf("%040d", i),
			"commit": map[string]any{
				"author": map[string]any{"date": d.Format(time.RFC3339)},
			},
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
