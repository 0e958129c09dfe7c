// Package github fetches repository statistics from the GitHub REST API.
//
// # Overview
//
// [Client.FetchAll] starts one task per sub-resource and joins them once:
//
//   - repository info: GET /repos/{owner}/{repo}
//   - contributors: GET /repos/{owner}/{repo}/contributors
//   - commit activity: GET /repos/{owner}/{repo}/stats/commit_activity
//   - languages: GET /repos/{owner}/{repo}/languages
//   - issue and pull request counts: four per_page=1 listings whose totals
//     come from the Link header
//
// Each task fills one slot of [Results] with a success, failure or empty
// outcome. Nothing is discarded on partial failure; [Results.Err] decides
// whether the aggregate as a whole is usable.
//
// Payloads decode into the go-github types so field names and nullability
// match the upstream exactly.
//
// # Commit Activity Placeholder
//
// GitHub computes commit statistics lazily and answers 202 until they are
// ready. When no series is available after the client's retry, the slot is
// filled with [PlaceholderActivity] so charts always have twelve points.
// Use [WithoutPlaceholder] to leave the slot empty instead.
//
// # Usage
//
//	api := integrations.NewClient(httpClient, nil, headers)
//	gh := github.NewClient(api)
//	results := gh.FetchAll(ctx, github.FetchSpec{Owner: "acme", Repo: "widget"})
//	if err := results.Err(); err != nil {
//	    return err
//	}
package github
