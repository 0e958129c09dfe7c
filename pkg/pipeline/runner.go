package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	gh "github.com/google/go-github/v84/github"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/repostats/pkg/cache"
	"github.com/matzehuels/repostats/pkg/integrations"
	"github.com/matzehuels/repostats/pkg/integrations/github"
	"github.com/matzehuels/repostats/pkg/render"
	"github.com/matzehuels/repostats/pkg/stats"
)

// Fetcher loads repository data from the upstream. *github.Client
// implements it.
type Fetcher interface {
	FetchAll(ctx context.Context, spec github.FetchSpec) github.Results
	FetchContributor(ctx context.Context, spec github.FetchSpec) integrations.Result[[]*gh.RepositoryCommit]
}

// ComputeFunc produces the value stored under a key on a cache miss.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Runner serves cards from the cache, computing them on a miss.
//
// The Runner is stateless except for the cache, logger and dedup group. It is
// safe for concurrent use.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Fetcher Fetcher
	Logger  *log.Logger

	opts  Options
	group singleflight.Group
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// A nil logger discards.
func NewRunner(c cache.Cache, keyer cache.Keyer, fetcher Fetcher, logger *log.Logger, opts Options) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	opts.setDefaults()
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Fetcher: fetcher,
		Logger:  logger,
		opts:    opts,
	}
}

// GetOrCompute returns the cached value of key, or runs compute, caches its
// result with ttl and returns it. The boolean reports a cache hit. Compute
// errors are returned and nothing is stored.
func (r *Runner) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) ([]byte, bool, error) {
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		return data, true, nil
	}
	if !r.opts.Dedup {
		data, err := r.computeAndStore(ctx, key, ttl, compute)
		return data, false, err
	}
	v, err, shared := r.group.Do(key, func() (any, error) {
		return r.computeAndStore(ctx, key, ttl, compute)
	})
	if shared {
		r.Logger.Debug("shared computation", "key", key)
	}
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}

func (r *Runner) computeAndStore(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) ([]byte, error) {
	data, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	_ = r.Cache.Set(ctx, key, data, ttl)
	return data, nil
}

// Repo serves one of the repository cards. An empty theme uses the kind's
// default theme.
func (r *Runner) Repo(ctx context.Context, kind render.Kind, spec github.FetchSpec, theme string) ([]byte, bool, error) {
	theme = r.theme(kind, theme)
	return r.GetOrCompute(ctx, r.repoKey(kind, spec, theme), r.opts.TTL, func(ctx context.Context) ([]byte, error) {
		s, err := r.Stats(ctx, spec)
		if err != nil {
			return nil, err
		}
		return render.Repo(kind, s, theme)
	})
}

// RepoFrom serves the same card as Repo but renders a miss from s instead
// of fetching, for callers that already hold the aggregate.
func (r *Runner) RepoFrom(ctx context.Context, kind render.Kind, spec github.FetchSpec, s *stats.Stats, theme string) ([]byte, bool, error) {
	theme = r.theme(kind, theme)
	return r.GetOrCompute(ctx, r.repoKey(kind, spec, theme), r.opts.TTL, func(context.Context) ([]byte, error) {
		return render.Repo(kind, s, theme)
	})
}

func (r *Runner) repoKey(kind render.Kind, spec github.FetchSpec, theme string) string {
	return r.Keyer.Key(string(kind), cache.KeyParts{Owner: spec.Owner, Repo: spec.Repo, Theme: theme})
}

// Contributor serves the contributor card of spec.Username.
func (r *Runner) Contributor(ctx context.Context, spec github.FetchSpec, theme string) ([]byte, bool, error) {
	theme = r.theme(render.KindContributor, theme)
	key := r.Keyer.Key(string(render.KindContributor), cache.KeyParts{
		Owner: spec.Owner, Repo: spec.Repo, Username: spec.Username, Theme: theme,
	})
	return r.GetOrCompute(ctx, key, r.opts.TTL, func(ctx context.Context) ([]byte, error) {
		cs, err := r.ContributorStats(ctx, spec)
		if err != nil {
			return nil, err
		}
		return render.Contributor(cs, theme), nil
	})
}

// RepoStats serves the JSON-encoded aggregate of spec.
func (r *Runner) RepoStats(ctx context.Context, spec github.FetchSpec) ([]byte, bool, error) {
	key := r.Keyer.Key(KindStatsJSON, cache.KeyParts{Owner: spec.Owner, Repo: spec.Repo})
	return r.GetOrCompute(ctx, key, r.opts.TTL, func(ctx context.Context) ([]byte, error) {
		s, err := r.Stats(ctx, spec)
		if err != nil {
			return nil, err
		}
		return json.Marshal(s)
	})
}

// Text serves the animated text card. The normalized options are part of
// the key, so requests that render the same image share one entry.
func (r *Runner) Text(ctx context.Context, opts render.TextOptions) ([]byte, bool, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, false, err
	}
	params, err := json.Marshal(opts)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.Key(KindText, cache.KeyParts{Theme: opts.Theme, Params: string(params)})
	return r.GetOrCompute(ctx, key, r.opts.TTL, func(context.Context) ([]byte, error) {
		return render.AnimatedText(opts)
	})
}

// Stats fetches and merges the aggregate of spec without caching.
func (r *Runner) Stats(ctx context.Context, spec github.FetchSpec) (*stats.Stats, error) {
	start := r.opts.Clock.Now()
	results := r.Fetcher.FetchAll(ctx, spec)
	if err := results.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", spec.FullName(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := stats.Merge(results, spec, r.opts.Clock.Now())
	r.Logger.Info("aggregated repository",
		"repo", spec.FullName(),
		"failed", results.Failed(),
		"duration", r.opts.Clock.Since(start))
	return s, nil
}

// ContributorStats fetches and merges the commits of spec.Username without
// caching.
func (r *Runner) ContributorStats(ctx context.Context, spec github.FetchSpec) (*stats.ContributorStats, error) {
	res := r.Fetcher.FetchContributor(ctx, spec)
	if res.Kind == integrations.KindFailed {
		return nil, fmt.Errorf("fetch commits of %s in %s: %w", spec.Username, spec.FullName(), res.Err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cs := stats.MergeContributor(res.Or(nil), spec, r.opts.Clock.Now())
	r.Logger.Info("aggregated contributor",
		"repo", spec.FullName(),
		"user", spec.Username,
		"commits", cs.TotalCommits)
	return cs, nil
}

// Invalidate deletes the cached value of a card. kind is a render.Kind or
// KindStatsJSON.
func (r *Runner) Invalidate(ctx context.Context, kind string, spec github.FetchSpec, theme string) error {
	parts := cache.KeyParts{Owner: spec.Owner, Repo: spec.Repo, Username: spec.Username}
	if kind != KindStatsJSON {
		parts.Theme = r.theme(render.Kind(kind), theme)
	}
	return r.Cache.Delete(ctx, r.Keyer.Key(kind, parts))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) theme(kind render.Kind, theme string) string {
	if theme == "" {
		return kind.DefaultTheme()
	}
	return render.NormalizeTheme(theme)
}
