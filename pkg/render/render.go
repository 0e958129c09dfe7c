package render

import (
	"bytes"
	"cmp"
	"slices"

	errs "github.com/matzehuels/repostats/pkg/errors"
	"github.com/matzehuels/repostats/pkg/stats"
)

// Kind names a card layout. The values are also the cache key kinds.
type Kind string

const (
	KindRepoStats      Kind = "repo_stats"
	KindContributor    Kind = "contributor_stats"
	KindCommitActivity Kind = "commit_activity"
	KindRepobeats      Kind = "repobeats_style"
	KindModern         Kind = "modern_dashboard"
)

type repoRenderer func(buf *bytes.Buffer, s *stats.Stats, t Theme)

var repoRenderers = map[Kind]repoRenderer{
	KindRepoStats:      renderRepoStats,
	KindCommitActivity: renderCommitActivity,
	KindRepobeats:      renderRepobeats,
	KindModern:         renderModern,
}

// Kinds returns every card kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindRepoStats, KindContributor, KindCommitActivity, KindRepobeats, KindModern}
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !slices.Contains(Kinds(), k) {
		return "", errs.New(errs.ErrCodeInvalidInput, "unknown card kind: %s", s)
	}
	return k, nil
}

// DefaultTheme is the theme used when a request names none.
func (k Kind) DefaultTheme() string {
	if k == KindModern {
		return ThemeDark
	}
	return ThemeDefault
}

// Repo renders one of the repository kinds from s.
func Repo(kind Kind, s *stats.Stats, theme string) ([]byte, error) {
	draw, ok := repoRenderers[kind]
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidInput, "%s is not a repository card", kind)
	}
	var buf bytes.Buffer
	draw(&buf, s, Lookup(theme))
	return buf.Bytes(), nil
}

// Contributor renders the contributor card.
func Contributor(cs *stats.ContributorStats, theme string) []byte {
	var buf bytes.Buffer
	renderContributor(&buf, cs, Lookup(theme))
	return buf.Bytes()
}

type languageShare struct {
	Name    string
	Percent float64
}

// topLanguages returns up to n languages by descending share, ties by name.
func topLanguages(langs map[string]float64, n int) []languageShare {
	out := make([]languageShare, 0, len(langs))
	for name, pct := range langs {
		out = append(out, languageShare{name, pct})
	}
	slices.SortFunc(out, func(a, b languageShare) int {
		if c := cmp.Compare(b.Percent, a.Percent); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func weekTotals(weeks []stats.Week) []int {
	out := make([]int, len(weeks))
	for i, w := range weeks {
		out[i] = w.Total
	}
	return out
}
