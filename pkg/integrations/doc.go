// Package integrations provides the shared upstream HTTP client.
//
// # Overview
//
// [Client] performs one GET at a time and turns the reply into a [Result]:
//
//   - success: 200 (and 202 once it resolves) with the body read
//   - empty: 202 "still computing" after the bounded retry
//   - failed: any other status or transport error, tagged with a code
//     from pkg/errors (NOT_FOUND, RATE_LIMITED, FORBIDDEN, UPSTREAM_ERROR,
//     NETWORK_ERROR)
//
// [Client.Count] reads only the pagination metadata of a per_page=1 listing.
//
// # Transport
//
// [NewHTTPClient] attaches the optional bearer credential through
// golang.org/x/oauth2 and parks requests hitting a secondary rate limit with
// go-github-ratelimit. The credential raises the upstream request budget
// (5000/hour vs 60/hour) and changes nothing else.
//
// # Usage
//
//	httpClient, err := integrations.NewHTTPClient(token, 10*time.Second)
//	if err != nil {
//	    return err
//	}
//	c := integrations.NewClient(httpClient, nil, map[string]string{
//	    "Accept": "application/vnd.github.v3+json",
//	})
//	res := integrations.Decode[map[string]int64](c.Fetch(ctx, url))
//	langs := res.Or(map[string]int64{})
package integrations
