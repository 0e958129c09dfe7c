package integrations

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds one upstream request, connection through body.
const DefaultTimeout = 10 * time.Second

// maxRateLimitSleep caps how long a request may be parked by the secondary
// rate-limit waiter before it fails instead.
const maxRateLimitSleep = time.Minute

// NewHTTPClient builds the HTTP client shared by all upstream calls.
//
// The transport chain is oauth2 (only when token is non-empty) over the
// go-github-ratelimit waiter, so secondary rate limits pause requests instead
// of failing them. A zero timeout uses [DefaultTimeout].
func NewHTTPClient(token string, timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	waiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(maxRateLimitSleep, nil))
	if err != nil {
		return nil, fmt.Errorf("create rate limit waiter: %w", err)
	}

	var transport http.RoundTripper = waiter
	if token != "" {
		transport = &oauth2.Transport{
			Base:   waiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	}
	return &http.Client{Transport: transport, Timeout: timeout}, nil
}
