package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/repostats/pkg/observability"
	"github.com/matzehuels/repostats/pkg/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve SVG cards over HTTP",
		Long: `Serve runs the HTTP API. Cards are cached in the configured durable tier
(redis, mongo or file) with an in-memory fallback when it is unreachable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(c.configPath, cmd.Flags())
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := observability.NewPrometheus(reg)
			observability.SetFetchHooks(metrics)
			observability.SetCacheHooks(metrics)
			observability.SetHTTPHooks(metrics)
			defer observability.Reset()

			ctx := cmd.Context()
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

			tier := store.Primary()
			if tier == "" {
				tier = "memory"
			}
			c.Logger.Info("starting server", "addr", cfg.Addr, "cache", tier, "ttl", cfg.Cache.TTL)

			srv := server.New(runner, c.Logger,
				server.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
				server.WithMaxAge(cfg.Cache.TTL),
			)
			return srv.Serve(ctx, cfg.Addr)
		},
	}

	fs := cmd.Flags()
	fs.String("addr", "", "listen address (default :8000)")
	fs.Duration("cache-ttl", 0, "lifetime of cached cards (default 1h)")
	fs.Bool("dedup", false, "collapse concurrent misses for the same card")
	addCacheFlags(fs)

	return cmd
}
