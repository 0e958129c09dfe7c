// Package pkg provides the core libraries for repostats, a service that
// renders GitHub repository statistics as embeddable SVG cards.
//
// # Architecture
//
// The data flow of one card request:
//
//	HTTP request or CLI invocation
//	         ↓
//	    [pipeline] (cache lookup, compute on miss)
//	         ↓
//	    [integrations/github] (five upstream sub-resources, concurrently)
//	         ↓
//	    [stats] (merge into one aggregate)
//	         ↓
//	    [render] (SVG card)
//	         ↓
//	    [cache] (durable tier plus in-memory fallback)
//
// # Main Packages
//
// [integrations] - Shared upstream HTTP client with typed results, bounded
// retry for 202 responses and pagination-based counting.
//
// [integrations/github] - GitHub REST fetcher for repository info,
// contributors, commit activity, languages, issue and pull request counts.
//
// [stats] - Aggregation of the fetched sub-resources into the statistics
// record, plus the per-contributor weekly activity.
//
// [render] - Deterministic SVG renderers for the five card kinds and the
// default and dark themes.
//
// [cache] - Cache interface with Redis, MongoDB, file, memory and null
// implementations, combined by [cache.Tiered].
//
// [pipeline] - Get-or-compute orchestration shared by the HTTP server and
// the CLI, with optional request de-duplication.
//
// [server] - chi-based HTTP API with request IDs and Prometheus metrics.
//
// [observability] - Hook interfaces for fetch, cache and HTTP events, and a
// Prometheus implementation.
//
// [errors] - Error codes and input validation shared by all packages.
//
// # Testing
//
//	go test ./...                        # Unit tests
//	go test -tags integration ./pkg/...  # Against local Redis and MongoDB
//
// [integrations]: https://pkg.go.dev/github.com/matzehuels/repostats/pkg/integrations
// [integrations/github]: https://pkg.go.dev/github.com/matzehuels/repostats/pkg/integrations/github
// [stats]: https://pkg.go.dev/github.com/matzehuels/repostats/pkg/stats
// [render]: https://pkg.go.dev/github.com/matzehuels/repostats/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/repostats/pkg/cache
// [cache.Tiered]: https://pkg.go.dev/github.com/matzehuels/repostats/pkg/cache#Tiered
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/repostats/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/repostats/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/repostats/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/repostats/pkg/errors
package pkg
