// Package pipeline turns a request into a rendered card, going through the
// cache.
//
// This package implements the fetch → merge → render pipeline shared by the
// HTTP server and the CLI. By centralizing it, both entry points derive the
// same cache keys and apply the same TTL.
//
// # Architecture
//
// Every request runs the same steps:
//
//  1. Key: derive the cache key from the card kind, repository and theme
//  2. Lookup: a cache hit is returned without touching the upstream
//  3. Compute: fetch the sub-resources, merge them, render the card
//  4. Store: the result is written to the cache with the configured TTL
//
// Compute errors are returned and never cached.
//
// # Usage
//
//	runner := pipeline.NewRunner(tiered, nil, fetcher, logger, pipeline.Options{})
//	svg, hit, err := runner.Repo(ctx, render.KindRepoStats, spec, "dark")
//
// [Runner.GetOrCompute] is the generic form for callers with their own
// compute step.
//
// # Deduplication
//
// With [Options.Dedup] set, concurrent misses on the same key share one
// computation. The shared computation runs with the context of the first
// caller, so cancelling that request cancels it for every waiter.
package pipeline

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTTL is how long a rendered card stays cached.
const DefaultTTL = time.Hour

// Cache key kinds of results that are not repository cards.
const (
	KindStatsJSON = "stats_json"
	KindText      = "text"
)

// Options configures a Runner.
type Options struct {
	// TTL of cached results. Zero uses DefaultTTL.
	TTL time.Duration
	// Dedup shares one computation between concurrent misses on a key.
	Dedup bool
	// Clock stamps generated aggregates. Nil uses the real clock.
	Clock clockwork.Clock
}

func (o *Options) setDefaults() {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
}
