package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crystal/internal/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

POST /v1/solve accepts a JSON tree document and returns the solved
geometry, layout errors and any requested artifacts. The cache backend,
body limit and timeouts come from the configuration file or CRYSTAL_*
environment variables. With the redis backend several instances share
one artifact cache.

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg := c.Config.Server
	if addr == "" {
		addr = cfg.Addr
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := server.New(runner, c.Logger.WithPrefix("http"), server.Options{
		MaxBodyBytes: cfg.MaxBodyBytes,
		Viewport:     c.defaultViewport(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	printInfo("Serving the solve API")
	printKeyValue("addr", addr)
	printKeyValue("cache", c.cacheBackend(noCache))
	printKeyValue("viewport", formatSize(c.defaultViewport()))
	return srv.ListenAndServe(ctx, addr)
}

func (c *CLI) cacheBackend(noCache bool) string {
	if noCache {
		return "none"
	}
	return c.Config.Cache.Backend
}
