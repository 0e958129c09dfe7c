package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/repostats/pkg/cache"
	errs "github.com/matzehuels/repostats/pkg/errors"
	"github.com/matzehuels/repostats/pkg/integrations/github"
	"github.com/matzehuels/repostats/pkg/pipeline"
	"github.com/matzehuels/repostats/pkg/render"
	"github.com/matzehuels/repostats/pkg/stats"
)

type fetchOpts struct {
	user    string
	kind    string
	theme   string
	output  string
	json    bool
	noCache bool
	summary bool
}

// fetchCommand creates the fetch command that renders one card locally.
func (c *CLI) fetchCommand() *cobra.Command {
	var opts fetchOpts

	cmd := &cobra.Command{
		Use:   "fetch owner/repo",
		Short: "Fetch a repository and render a card",
		Long: `Fetch collects statistics for owner/repo and writes the rendered SVG card,
or with --json the aggregate, to stdout or the file given by --output.`,
		Example: `  repostats fetch acme/widget -o widget.svg
  repostats fetch acme/widget --kind modern_dashboard
  repostats fetch acme/widget --user alice --theme dark
  repostats fetch acme/widget --json --no-cache`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := errs.ParseRepoRef(args[0])
			if err != nil {
				return err
			}
			spec := github.FetchSpec{Owner: owner, Repo: repo, Username: opts.user}
			if spec.Username != "" {
				if err := errs.ValidateUsername(spec.Username); err != nil {
					return err
				}
			}
			return c.runFetch(cmd, spec, opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.user, "user", "", "render the contributor card for this login")
	fs.StringVarP(&opts.kind, "kind", "k", string(render.KindRepoStats), fmt.Sprintf("card kind: %v", render.Kinds()))
	fs.StringVarP(&opts.theme, "theme", "t", "", "color theme: default or dark")
	fs.StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	fs.BoolVar(&opts.json, "json", false, "write the aggregate as JSON instead of SVG")
	fs.BoolVar(&opts.noCache, "no-cache", false, "bypass the cache")
	fs.BoolVar(&opts.summary, "summary", false, "print a summary of the statistics to stderr")
	addCacheFlags(fs)

	return cmd
}

func (c *CLI) runFetch(cmd *cobra.Command, spec github.FetchSpec, opts fetchOpts) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(c.configPath, cmd.Flags())
	if err != nil {
		return err
	}

	var store cache.Cache = cache.NewNullCache()
	if !opts.noCache {
		if store, err = c.openCache(ctx, cfg); err != nil {
			return err
		}
	}
	runner, err := c.newRunner(cfg, store)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spin := startSpinner(ctx, cmd.ErrOrStderr(), "Fetching "+spec.FullName())
	data, hit, summary, err := fetchCard(ctx, runner, spec, opts)
	spin.stop()
	if err != nil {
		return err
	}
	prog.done("fetched " + spec.FullName())

	if err := writeOutput(cmd.OutOrStdout(), opts.output, data); err != nil {
		return err
	}

	p := printer{w: cmd.ErrOrStderr()}
	if opts.output != "" {
		p.success("Rendered %s", spec.FullName())
		p.file(opts.output)
		p.cacheStatus(hit)
	}
	if summary != nil {
		printStats(p, summary)
	}
	return nil
}

// fetchCard produces the requested output. With --summary on a repository
// it also returns the aggregate, computed once and shared with the card.
func fetchCard(ctx context.Context, runner *pipeline.Runner, spec github.FetchSpec, opts fetchOpts) ([]byte, bool, *stats.Stats, error) {
	if spec.Username != "" && !opts.json {
		data, hit, err := runner.Contributor(ctx, spec, opts.theme)
		return data, hit, nil, err
	}

	var kind render.Kind
	if !opts.json {
		k, err := render.ParseKind(opts.kind)
		if err != nil {
			return nil, false, nil, err
		}
		if k == render.KindContributor {
			return nil, false, nil, errs.New(errs.ErrCodeInvalidInput, "kind %s requires --user", k)
		}
		kind = k
	}

	if !opts.summary {
		if opts.json {
			data, hit, err := runner.RepoStats(ctx, spec)
			return data, hit, nil, err
		}
		data, hit, err := runner.Repo(ctx, kind, spec, opts.theme)
		return data, hit, nil, err
	}

	raw, hit, err := runner.RepoStats(ctx, spec)
	if err != nil {
		return nil, false, nil, err
	}
	var s stats.Stats
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, nil, fmt.Errorf("decode stats: %w", err)
	}
	if opts.json {
		return raw, hit, &s, nil
	}
	data, hit, err := runner.RepoFrom(ctx, kind, spec, &s, opts.theme)
	return data, hit, &s, err
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// printStats prints a short human-readable summary of s.
func printStats(p printer, s *stats.Stats) {
	fmt.Fprintln(p.w)
	p.title(s.Repository.FullName)
	if s.Repository.Description != "" {
		p.detail("%s", s.Repository.Description)
	}
	p.number("Stars", s.Repository.Stars)
	p.number("Forks", s.Repository.Forks)
	p.number("Commits", s.Statistics.TotalCommits)
	p.number("Contributors", s.Statistics.TotalContributors)
	p.keyValue("Issues", fmt.Sprintf("%d open, %d closed", s.Statistics.OpenIssues, s.Statistics.ClosedIssues))
	p.keyValue("Pull requests", fmt.Sprintf("%d open, %d closed", s.Statistics.OpenPRs, s.Statistics.ClosedPRs))
	for _, c := range s.Contributors {
		p.info("%s %s", c.Login, StyleDim.Render(fmt.Sprintf("(%d)", c.Contributions)))
	}
	if len(s.Contributors) == 0 {
		p.warning("no contributors")
	}
}
