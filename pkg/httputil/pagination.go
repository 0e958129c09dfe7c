package httputil

import (
	"net/http"
	"regexp"
	"strconv"
)

var lastPagePattern = regexp.MustCompile(`[?&]page=(\d+)[^>]*>;\s*rel="last"`)

// PageCount derives the number of pages of a paginated listing from the
// response status and its Link header.
//
// A non-200 status yields 0. A 200 response without a rel="last" relation is
// a single page and yields 1. Listings requested with per_page=1 therefore
// report their total item count.
func PageCount(status int, header http.Header) int {
	if status != http.StatusOK {
		return 0
	}
	return LastPage(header.Get("Link"))
}

// LastPage extracts the page number of the rel="last" relation from a Link
// header value, or 1 if there is none.
func LastPage(link string) int {
	m := lastPagePattern.FindStringSubmatch(link)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
