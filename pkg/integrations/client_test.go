package integrations

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/repostats/pkg/errors"
)

const repoURL = "https://api.github.com/repos/acme/widget"

func mockedClient(t *testing.T, clock clockwork.Clock) *Client {
	t.Helper()
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return NewClient(httpClient, clock, map[string]string{"Accept": "application/vnd.github.v3+json"})
}

func TestFetchSuccess(t *testing.T) {
	c := mockedClient(t, clockwork.NewFakeClock())
	httpmock.RegisterResponder(http.MethodGet, repoURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "application/vnd.github.v3+json", req.Header.Get("Accept"))
		return httpmock.NewStringResponse(http.StatusOK, `{"name":"widget"}`), nil
	})

	res := c.Fetch(context.Background(), repoURL)

	require.True(t, res.OK(), "result: %v", res)
	assert.Equal(t, http.StatusOK, res.Value.Status)
	assert.JSONEq(t, `{"name":"widget"}`, string(res.Value.Body))
}

func TestFetchStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   errs.Code
	}{
		{"not found", http.StatusNotFound, `{"message":"Not Found"}`, errs.ErrCodeNotFound},
		{"rate limited", http.StatusForbidden, `{"message":"API Rate Limit exceeded for 1.2.3.4"}`, errs.ErrCodeRateLimited},
		{"forbidden", http.StatusForbidden, `{"message":"Resource not accessible"}`, errs.ErrCodeForbidden},
		{"server error", http.StatusBadGateway, ``, errs.ErrCodeUpstream},
		{"unauthorized", http.StatusUnauthorized, `{"message":"Bad credentials"}`, errs.ErrCodeUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mockedClient(t, clockwork.NewFakeClock())
			httpmock.RegisterResponder(http.MethodGet, repoURL, httpmock.NewStringResponder(tt.status, tt.body))

			res := c.Fetch(context.Background(), repoURL)

			require.Equal(t, KindFailed, res.Kind)
			assert.True(t, errs.Is(res.Err, tt.code), "got %v, want code %s", res.Err, tt.code)
			assert.Equal(t, 1, httpmock.GetTotalCallCount(), "error statuses must not be retried")
		})
	}
}

func TestFetchUpstreamStatusIsKept(t *testing.T) {
	c := mockedClient(t, clockwork.NewFakeClock())
	httpmock.RegisterResponder(http.MethodGet, repoURL, httpmock.NewStringResponder(http.StatusServiceUnavailable, ""))

	res := c.Fetch(context.Background(), repoURL)

	assert.Equal(t, http.StatusServiceUnavailable, errs.GetStatus(res.Err))
}

func TestFetchNetworkError(t *testing.T) {
	c := mockedClient(t, clockwork.NewFakeClock())
	httpmock.RegisterResponder(http.MethodGet, repoURL, httpmock.NewErrorResponder(errors.New("connection refused")))

	res := c.Fetch(context.Background(), repoURL)

	require.Equal(t, KindFailed, res.Kind)
	assert.True(t, errs.Is(res.Err, errs.ErrCodeNetwork))
}

// fetchAsync runs Fetch on a goroutine so the test can drive the fake clock.
func fetchAsync(c *Client) <-chan Result[*Response] {
	ch := make(chan Result[*Response], 1)
	go func() { ch <- c.Fetch(context.Background(), repoURL+"/stats/commit_activity") }()
	return ch
}

func TestFetchAcceptedTwiceIsEmpty(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := mockedClient(t, clock)
	httpmock.RegisterResponder(http.MethodGet, repoURL+"/stats/commit_activity",
		httpmock.NewStringResponder(http.StatusAccepted, `{}`))

	ch := fetchAsync(c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1), "client should wait before retrying")
	clock.Advance(AcceptedDelay)

	select {
	case res := <-ch:
		assert.Equal(t, KindEmpty, res.Kind, "result: %v", res)
		assert.NoError(t, res.Err)
	case <-time.After(5 * time.Second):
		t.Fatal("Fetch did not return after one retry")
	}
	assert.Equal(t, 1+AcceptedRetries, httpmock.GetTotalCallCount())
}

func TestFetchAcceptedThenOK(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := mockedClient(t, clock)
	calls := 0
	httpmock.RegisterResponder(http.MethodGet, repoURL+"/stats/commit_activity", func(*http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return httpmock.NewStringResponse(http.StatusAccepted, `{}`), nil
		}
		return httpmock.NewStringResponse(http.StatusOK, `[{"total":3,"week":1700000000}]`), nil
	})

	ch := fetchAsync(c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(AcceptedDelay)

	res := <-ch
	require.True(t, res.OK(), "result: %v", res)
	assert.Equal(t, 2, calls)
}

func TestCount(t *testing.T) {
	c := mockedClient(t, clockwork.NewFakeClock())
	issues := repoURL + "/issues?state=open&per_page=1"
	pulls := repoURL + "/pulls?state=open&per_page=1"
	missing := "https://api.github.com/repos/acme/missing/issues?state=open&per_page=1"

	httpmock.RegisterResponder(http.MethodGet, issues, func(*http.Request) (*http.Response, error) {
		resp := httpmock.NewStringResponse(http.StatusOK, `[{}]`)
		resp.Header.Set("Link", `<https://api.github.com/repositories/1/issues?state=open&per_page=1&page=2>; rel="next", <https://api.github.com/repositories/1/issues?state=open&per_page=1&page=7>; rel="last"`)
		return resp, nil
	})
	httpmock.RegisterResponder(http.MethodGet, pulls, httpmock.NewStringResponder(http.StatusOK, `[{}]`))
	httpmock.RegisterResponder(http.MethodGet, missing, httpmock.NewStringResponder(http.StatusNotFound, `{}`))

	ctx := context.Background()

	n, err := c.Count(ctx, issues)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = c.Count(ctx, pulls)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = c.Count(ctx, missing)
	assert.Error(t, err)
	assert.Equal(t, 0, n)
}

func TestDecode(t *testing.T) {
	ok := Success(&Response{Status: http.StatusOK, Body: []byte(`{"Go":800,"C":200}`)})
	langs := Decode[map[string]int64](ok)
	require.True(t, langs.OK())
	assert.Equal(t, map[string]int64{"Go": 800, "C": 200}, langs.Value)

	bad := Decode[[]int](Success(&Response{Status: http.StatusOK, Body: []byte(`{}`)}))
	assert.Equal(t, KindFailed, bad.Kind)

	assert.Equal(t, KindEmpty, Decode[[]int](Empty[*Response]()).Kind)

	failed := Decode[[]int](Failed[*Response](errs.New(errs.ErrCodeNotFound, "gone")))
	assert.True(t, errs.Is(failed.Err, errs.ErrCodeNotFound))
}

func TestResultOr(t *testing.T) {
	assert.Equal(t, 5, Success(5).Or(0))
	assert.Equal(t, 0, Failed[int](errors.New("x")).Or(0))
	assert.Equal(t, 9, Empty[int]().Or(9))
	assert.Equal(t, KindFailed, Failed[int](nil).Kind)
}

func TestNewHTTPClient(t *testing.T) {
	c, err := NewHTTPClient("", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.Timeout)

	authed, err := NewHTTPClient("secret", time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, authed.Timeout)
	assert.NotNil(t, authed.Transport)
}
