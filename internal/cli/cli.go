// Package cli implements the repostats command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/repostats/pkg/buildinfo"
	"github.com/matzehuels/repostats/pkg/cache"
	"github.com/matzehuels/repostats/pkg/integrations"
	"github.com/matzehuels/repostats/pkg/integrations/github"
	"github.com/matzehuels/repostats/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "repostats"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "repostats renders GitHub repository statistics as SVG cards",
		Long:         `repostats fetches repository metrics from the GitHub REST API, caches them, and serves embeddable SVG dashboards.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a TOML config file")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// versionCommand prints the build information.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\ncommit: %s\nbuilt: %s\n", appName, buildinfo.Version, buildinfo.Commit, buildinfo.Date)
		},
	}
}

// newFetcher builds the GitHub client described by cfg.
func newFetcher(cfg Config) (*github.Client, error) {
	httpClient, err := integrations.NewHTTPClient(cfg.GitHubToken, cfg.HTTPTimeout)
	if err != nil {
		return nil, err
	}
	api := integrations.NewClient(httpClient, nil, github.Headers())
	opts := []github.Option{github.WithBaseURL(cfg.APIURL)}
	if !cfg.PlaceholderActivity {
		opts = append(opts, github.WithoutPlaceholder())
	}
	return github.NewClient(api, opts...), nil
}

// newRunner creates a pipeline runner over store.
func (c *CLI) newRunner(cfg Config, store cache.Cache) (*pipeline.Runner, error) {
	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, cache.NewScopedKeyer(nil, cfg.Cache.Prefix), fetcher, c.Logger, pipeline.Options{
		TTL:   cfg.Cache.TTL,
		Dedup: cfg.Cache.Dedup,
	}), nil
}

// openCache opens the configured tiered cache. The file backend defaults to
// the user cache directory.
func (c *CLI) openCache(ctx context.Context, cfg Config) (*cache.Tiered, error) {
	dir := cfg.Cache.Dir
	if dir == "" && cfg.Cache.Backend == cache.BackendFile {
		d, err := cacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return cache.Open(ctx, cache.Config{
		Backend:  cfg.Cache.Backend,
		URL:      cfg.Cache.URL,
		Dir:      dir,
		Database: cfg.Cache.Database,
	}, c.Logger)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/repostats/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
