// Package render draws the dashboard SVGs served by repostats.
//
// # Kinds
//
// Each [Kind] is one card layout. The four repository kinds render a
// [stats.Stats]; [KindContributor] renders a [stats.ContributorStats]:
//
//	svg, err := render.Repo(render.KindRepoStats, s, "dark")
//	svg := render.Contributor(cs, "default")
//
// Kind values double as cache key kinds, so a rendered card is cached under
// the name of the layout that produced it.
//
// # Themes
//
// [Lookup] resolves a theme name to a [Theme] palette. Unknown names fall
// back to [ThemeDefault]. [KindModern] ignores the palette and always
// draws on its own dark background, but the theme name still takes part in
// its cache key.
//
// # Output
//
// Renderers write into a bytes.Buffer and never fail once the kind is known.
// All user-controlled text (repository names, descriptions, logins) is XML
// escaped. The footer timestamp comes from the aggregate's GeneratedAt, so
// the same input always renders the same bytes.
package render
