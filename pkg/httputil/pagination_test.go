package httputil

import (
	"net/http"
	"testing"
)

func TestPageCount(t *testing.T) {
	tests := []struct {
		name   string
		status int
		link   string
		want   int
	}{
		{
			name:   "last page seven",
			status: http.StatusOK,
			link:   `<https://api.github.com/repositories/1/issues?state=open&per_page=1&page=2>; rel="next", <https://api.github.com/repositories/1/issues?state=open&per_page=1&page=7>; rel="last"`,
			want:   7,
		},
		{
			name:   "page before per_page",
			status: http.StatusOK,
			link:   `<https://api.github.com/repositories/1/pulls?page=42&per_page=1>; rel="last"`,
			want:   42,
		},
		{
			name:   "no pagination",
			status: http.StatusOK,
			want:   1,
		},
		{
			name:   "only next relation",
			status: http.StatusOK,
			link:   `<https://api.github.com/repositories/1/issues?page=2>; rel="next"`,
			want:   1,
		},
		{
			name:   "non-200",
			status: http.StatusNotFound,
			link:   `<https://api.github.com/repositories/1/issues?page=7>; rel="last"`,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.link != "" {
				h.Set("Link", tt.link)
			}
			if got := PageCount(tt.status, h); got != tt.want {
				t.Errorf("PageCount() = %d, want %d", got, tt.want)
			}
		})
	}
}
