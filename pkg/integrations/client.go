package integrations

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	errs "github.com/matzehuels/repostats/pkg/errors"
	"github.com/matzehuels/repostats/pkg/httputil"
	"github.com/matzehuels/repostats/pkg/observability"
)

const (
	// AcceptedRetries is how many times a 202 "still computing" reply is
	// retried before the call degrades to an empty result.
	AcceptedRetries = 1

	// AcceptedDelay is the wait before retrying a 202 reply.
	AcceptedDelay = 2 * time.Second

	maxBodySize = 8 << 20
)

var errStillComputing = errs.New(errs.ErrCodeTransientProcessing, "statistics are still being computed")

// Response is a completed upstream response with its body read.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Client issues upstream API calls and translates replies into typed
// outcomes. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	clock   clockwork.Clock
	headers map[string]string
}

// NewClient creates a Client. Headers are applied to every request.
// A nil httpClient uses [NewHTTPClient] defaults without credentials; a nil
// clock uses the real clock.
func NewClient(httpClient *http.Client, clock clockwork.Clock, headers map[string]string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		http:    httpClient,
		clock:   clock,
		headers: headers,
	}
}

// Clock returns the clock used for retry delays.
func (c *Client) Clock() clockwork.Clock { return c.clock }

// Fetch performs a GET and classifies the outcome.
//
// A 202 reply is retried [AcceptedRetries] times after [AcceptedDelay]; if
// the upstream still answers 202 the result is empty. Error statuses become
// failed results with a code from pkg/errors.
func (c *Client) Fetch(ctx context.Context, url string) Result[*Response] {
	var resp *Response
	err := httputil.Retry(ctx, c.clock, AcceptedRetries+1, AcceptedDelay, func() error {
		r, err := c.do(ctx, url)
		if err != nil {
			return err
		}
		if r.Status == http.StatusAccepted {
			return httputil.Retryable(errStillComputing)
		}
		resp = r
		return nil
	})
	switch {
	case err == nil:
		return Success(resp)
	case errors.Is(err, errStillComputing):
		return Empty[*Response]()
	default:
		return Failed[*Response](err)
	}
}

// Count performs a GET on a listing requested with per_page=1 and returns the
// number of items derived from its pagination metadata. A non-200 reply
// counts 0.
func (c *Client) Count(ctx context.Context, url string) (int, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return 0, err
	}
	return httputil.PageCount(resp.Status, resp.Header), nil
}

func (c *Client) do(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, http.MethodGet, host, path)
	start := c.clock.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "GET %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "read %s", path)
	}
	hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, c.clock.Since(start))

	if err := checkStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func checkStatus(code int, body []byte) error {
	switch {
	case code == http.StatusOK, code == http.StatusAccepted:
		return nil
	case code == http.StatusNotFound:
		return errs.New(errs.ErrCodeNotFound, "Repository not found")
	case code == http.StatusForbidden:
		if strings.Contains(strings.ToLower(string(body)), "rate limit") {
			return errs.New(errs.ErrCodeRateLimited,
				"API rate limit exceeded. Set GITHUB_TOKEN for higher limits (5000/hour vs 60/hour)")
		}
		return errs.New(errs.ErrCodeForbidden, "Access forbidden - repository may be private")
	default:
		return errs.Upstream(code)
	}
}
