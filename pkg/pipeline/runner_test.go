package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/repostats/pkg/cache"
	errs "github.com/matzehuels/repostats/pkg/errors"
	"github.com/matzehuels/repostats/pkg/integrations"
	"github.com/matzehuels/repostats/pkg/integrations/github"
	"github.com/matzehuels/repostats/pkg/integrations/github/githubtest"
	"github.com/matzehuels/repostats/pkg/render"
	"github.com/matzehuels/repostats/pkg/stats"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

var widget = github.FetchSpec{Owner: "acme", Repo: "widget"}

func newTestRunner(t *testing.T, opts Options) (*Runner, *githubtest.Server, *cache.Memory) {
	t.Helper()
	srv := githubtest.NewServer(t, githubtest.Widget())
	clock := clockwork.NewFakeClockAt(now)
	api := integrations.NewClient(srv.Client(), clock, github.Headers())
	fetcher := github.NewClient(api, github.WithBaseURL(srv.URL))

	mem := cache.NewMemory(clock)
	opts.Clock = clock
	return NewRunner(mem, nil, fetcher, nil, opts), srv, mem
}

func TestRepoStatsEndToEnd(t *testing.T) {
	r, _, _ := newTestRunner(t, Options{})

	data, hit, err := r.RepoStats(context.Background(), widget)
	require.NoError(t, err)
	assert.False(t, hit)

	var s stats.Stats
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, 340, s.Statistics.TotalCommits)
	assert.Equal(t, 2, s.Statistics.TotalContributors)
	assert.Equal(t, 150, s.Repository.Stars)
	assert.InDelta(t, 80.0, s.Languages["X"], 1e-9)
	assert.InDelta(t, 20.0, s.Languages["Y"], 1e-9)
	assert.Equal(t, 49, s.Statistics.TotalIssues)
	assert.True(t, s.GeneratedAt.Equal(now))
}

func TestRepoServedFromCache(t *testing.T) {
	r, srv, _ := newTestRunner(t, Options{})
	ctx := context.Background()

	first, hit, err := r.Repo(ctx, render.KindRepoStats, widget, "dark")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Contains(t, string(first), ">widget<")
	calls := srv.Calls()
	assert.Equal(t, 8, calls, "five sub-resources, four of them counts")

	second, hit, err := r.Repo(ctx, render.KindRepoStats, widget, "DARK")
	require.NoError(t, err)
	assert.True(t, hit, "theme names are normalized before keying")
	assert.Equal(t, first, second)
	assert.Equal(t, calls, srv.Calls(), "a hit must not reach the upstream")

	// Another kind is another key.
	_, hit, err = r.Repo(ctx, render.KindCommitActivity, widget, "dark")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRepoDefaultTheme(t *testing.T) {
	r, _, _ := newTestRunner(t, Options{})
	ctx := context.Background()

	_, _, err := r.Repo(ctx, render.KindModern, widget, "")
	require.NoError(t, err)
	_, hit, err := r.Repo(ctx, render.KindModern, widget, render.ThemeDark)
	require.NoError(t, err)
	assert.True(t, hit, "modern dashboard defaults to the dark theme")
}

func TestRepoNotFoundIsNotCached(t *testing.T) {
	r, srv, mem := newTestRunner(t, Options{})
	ctx := context.Background()
	missing := github.FetchSpec{Owner: "acme", Repo: "gone"}

	_, _, err := r.Repo(ctx, render.KindRepoStats, missing, "")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeNotFound), "err = %v", err)
	assert.Equal(t, 0, mem.Len())

	calls := srv.Calls()
	_, _, err = r.Repo(ctx, render.KindRepoStats, missing, "")
	require.Error(t, err)
	assert.Greater(t, srv.Calls(), calls, "failures are recomputed")
}

func TestContributor(t *testing.T) {
	r, _, _ := newTestRunner(t, Options{})
	ctx := context.Background()
	spec := github.FetchSpec{Owner: "acme", Repo: "widget", Username: "alice"}

	svg, hit, err := r.Contributor(ctx, spec, "")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Contains(t, string(svg), "Contributor Stats for acme/widget")
	assert.Contains(t, string(svg), "2024-W10: 2 commits")

	_, hit, err = r.Contributor(ctx, spec, render.ThemeDefault)
	require.NoError(t, err)
	assert.True(t, hit)

	// The username is part of the key.
	spec.Username = "bob"
	svg, hit, err = r.Contributor(ctx, spec, "")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Contains(t, string(svg), "No activity data available")
}

func TestInvalidate(t *testing.T) {
	r, _, _ := newTestRunner(t, Options{})
	ctx := context.Background()

	_, _, err := r.Repo(ctx, render.KindRepobeats, widget, "")
	require.NoError(t, err)
	require.NoError(t, r.Invalidate(ctx, string(render.KindRepobeats), widget, ""))

	_, hit, err := r.Repo(ctx, render.KindRepobeats, widget, "")
	require.NoError(t, err)
	assert.False(t, hit)

	_, _, err = r.RepoStats(ctx, widget)
	require.NoError(t, err)
	require.NoError(t, r.Invalidate(ctx, KindStatsJSON, widget, "dark"))
	_, hit, _ = r.RepoStats(ctx, widget)
	assert.False(t, hit, "stats_json keys ignore the theme")
}

func TestGetOrCompute(t *testing.T) {
	r := NewRunner(cache.NewMemory(nil), nil, nil, nil, Options{})
	ctx := context.Background()
	var calls int
	compute := func(context.Context) ([]byte, error) {
		calls++
		return []byte("v"), nil
	}

	data, hit, err := r.GetOrCompute(ctx, "k", time.Hour, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "v", string(data))

	data, hit, err = r.GetOrCompute(ctx, "k", time.Hour, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "v", string(data))
	assert.Equal(t, 1, calls)
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	mem := cache.NewMemory(nil)
	r := NewRunner(mem, nil, nil, nil, Options{})
	ctx := context.Background()
	boom := errors.New("boom")

	_, _, err := r.GetOrCompute(ctx, "k", time.Hour, func(context.Context) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, mem.Len())

	data, hit, err := r.GetOrCompute(ctx, "k", time.Hour, func(context.Context) ([]byte, error) { return []byte("ok"), nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "ok", string(data))
}

func TestGetOrComputeNullCache(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil, Options{})
	var calls int
	for i := 0; i < 3; i++ {
		_, hit, err := r.GetOrCompute(context.Background(), "k", time.Hour, func(context.Context) ([]byte, error) {
			calls++
			return []byte("v"), nil
		})
		require.NoError(t, err)
		assert.False(t, hit)
	}
	assert.Equal(t, 3, calls, "a nil cache disables caching")
}

// gatedCache reports each Get so the test knows when callers have missed.
type gatedCache struct {
	cache.Cache
	gets sync.WaitGroup
}

func (g *gatedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	defer g.gets.Done()
	return g.Cache.Get(ctx, key)
}

func TestGetOrComputeDedup(t *testing.T) {
	const callers = 8
	gc := &gatedCache{Cache: cache.NewMemory(nil)}
	gc.gets.Add(callers)
	r := NewRunner(gc, nil, nil, nil, Options{Dedup: true})

	var computed atomic.Int32
	release := make(chan struct{})
	compute := func(context.Context) ([]byte, error) {
		computed.Add(1)
		<-release
		return []byte("shared"), nil
	}

	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, _, err := r.GetOrCompute(context.Background(), "k", time.Hour, compute)
			if err == nil {
				results[i] = string(data)
			}
		}()
	}

	gc.gets.Wait()
	// Every caller has missed; give them a moment to join the flight.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), computed.Load())
	for i, got := range results {
		assert.Equal(t, "shared", got, "caller %d", i)
	}
}

func TestStatsCancelled(t *testing.T) {
	r, _, mem := newTestRunner(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := r.Repo(ctx, render.KindRepoStats, widget, "")
	require.Error(t, err)
	assert.Equal(t, 0, mem.Len(), "abandoned requests are not cached")
}

func TestRepoFromSharesRepoKey(t *testing.T) {
	r, srv, _ := newTestRunner(t, Options{})
	ctx := context.Background()

	s, err := r.Stats(ctx, widget)
	require.NoError(t, err)
	calls := srv.Calls()

	card, hit, err := r.RepoFrom(ctx, render.KindRepobeats, widget, s, "")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, calls, srv.Calls(), "rendering from held stats must not fetch")

	again, hit, err := r.Repo(ctx, render.KindRepobeats, widget, "")
	require.NoError(t, err)
	assert.True(t, hit, "Repo reads the entry RepoFrom stored")
	assert.Equal(t, card, again)
	assert.Equal(t, calls, srv.Calls())
}

func TestText(t *testing.T) {
	r, srv, mem := newTestRunner(t, Options{})
	ctx := context.Background()

	first, hit, err := r.Text(ctx, render.TextOptions{Text: "Neon Glow", Theme: "neon"})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, mem.Len())

	second, hit, err := r.Text(ctx, render.TextOptions{Text: " Neon Glow ", Theme: "Neon", Speed: render.DefaultTextSpeed})
	require.NoError(t, err)
	assert.True(t, hit, "normalized options are keyed")
	assert.Equal(t, first, second)

	_, hit, err = r.Text(ctx, render.TextOptions{Text: "Neon Glow", Theme: "dark"})
	require.NoError(t, err)
	assert.False(t, hit)

	_, _, err = r.Text(ctx, render.TextOptions{FontSize: 1})
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput))
	assert.Equal(t, 2, mem.Len(), "invalid options are not cached")
	assert.Zero(t, srv.Calls())
}

func TestStatsDurationUsesClock(t *testing.T) {
	srv := githubtest.NewServer(t, githubtest.Widget())
	clock := clockwork.NewFakeClockAt(now)
	api := integrations.NewClient(srv.Client(), clock, github.Headers())

	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Level: log.InfoLevel})
	r := NewRunner(nil, nil, github.NewClient(api, github.WithBaseURL(srv.URL)), logger, Options{Clock: clock})

	_, err := r.Stats(context.Background(), widget)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "duration=0s", "a fake clock that never advances measures zero")
}
