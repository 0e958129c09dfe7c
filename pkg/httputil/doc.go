// Package httputil provides HTTP utilities for the upstream API client.
//
// # Retry
//
// [Retry] re-runs an operation whose error is wrapped with [RetryableError],
// sleeping a fixed delay on an injected clockwork.Clock between attempts. The
// GitHub client uses it for the bounded "202 Accepted" retry on statistics
// endpoints:
//
//	err := httputil.Retry(ctx, clock, 2, 2*time.Second, func() error {
//	    if resp.StatusCode == http.StatusAccepted {
//	        return httputil.Retryable(errStillComputing)
//	    }
//	    return nil
//	})
//
// # Pagination
//
// [PageCount] turns a "per_page=1" listing response into an item count by
// reading the rel="last" relation of its Link header:
//
//	Link: <https://api.github.com/repositories/1/issues?per_page=1&page=7>; rel="last"
//
// yields 7. A 200 response without pagination yields 1; any other status 0.
package httputil
