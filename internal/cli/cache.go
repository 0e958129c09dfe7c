package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/repostats/pkg/errors"
	"github.com/matzehuels/repostats/pkg/integrations/github"
	"github.com/matzehuels/repostats/pkg/pipeline"
	"github.com/matzehuels/repostats/pkg/render"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached cards",
	}

	cmd.AddCommand(c.cacheDeleteCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheDeleteCommand creates the "cache delete" subcommand.
func (c *CLI) cacheDeleteCommand() *cobra.Command {
	var user, theme string

	cmd := &cobra.Command{
		Use:   "delete KIND owner/repo",
		Short: "Remove one cached card from the configured cache",
		Long: fmt.Sprintf(`Delete removes the cached entry for one card so the next request
recomputes it. KIND is one of %v or %s.`, render.Kinds(), pipeline.KindStatsJSON),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := args[0]
			if kind != pipeline.KindStatsJSON {
				k, err := render.ParseKind(kind)
				if err != nil {
					return err
				}
				kind = string(k)
			}
			owner, repo, err := errs.ParseRepoRef(args[1])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, err := loadConfig(c.configPath, cmd.Flags())
			if err != nil {
				return err
			}
			store, err := c.openCache(ctx, cfg)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cfg, store)
			if err != nil {
				_ = store.Close()
				return err
			}
			defer runner.Close()

			p := printer{w: cmd.ErrOrStderr()}
			if store.Primary() == "" {
				p.warning("durable cache unavailable, nothing to delete")
				return nil
			}
			spec := github.FetchSpec{Owner: owner, Repo: repo, Username: user}
			if err := runner.Invalidate(ctx, kind, spec, theme); err != nil {
				p.error("Failed to delete %s for %s", kind, spec.FullName())
				return err
			}
			p.success("Deleted %s for %s", kind, spec.FullName())
			p.detail("Cache: %s", store.Primary())
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "contributor login of a contributor card")
	cmd.Flags().StringVarP(&theme, "theme", "t", "", "theme the card was rendered with")
	addCacheFlags(cmd.Flags())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry of the local file cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := c.fileCacheDir()
			if err != nil {
				return err
			}

			p := printer{w: cmd.ErrOrStderr()}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				p.info("Cache is empty")
				return nil
			}

			count := 0
			err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
					return nil
				}
				if os.Remove(path) == nil {
					count++
				}
				return nil
			})
			if err != nil {
				return err
			}

			// Shard directories are recreated on demand.
			if subdirs, err := os.ReadDir(dir); err == nil {
				for _, d := range subdirs {
					if d.IsDir() {
						_ = os.Remove(filepath.Join(dir, d.Name()))
					}
				}
			}

			p.success("Cleared %d cached entries", count)
			p.detail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the local file cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := c.fileCacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// fileCacheDir returns cache.dir from the configuration, or the user cache
// directory when unset.
func (c *CLI) fileCacheDir() (string, error) {
	cfg, err := loadConfig(c.configPath, nil)
	if err != nil {
		return "", err
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}
