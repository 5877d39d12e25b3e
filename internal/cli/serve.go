package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/anchit2000/flowcanvas/internal/config"
	"github.com/anchit2000/flowcanvas/internal/server"
)

type serveOpts struct {
	addr    string
	file    string
	sources sourceOptions
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an editing session over HTTP",
		Long: `Serve exposes one editing session as a JSON API for browser front-ends:
palette drops, pointer events, scrolling, block and connection edits, and
whole-document export (GET /api/flow) and import (PUT /api/flow).
Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(withLogger(cmd.Context(), c.Logger), &opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.file, "file", "", "flow document to import on start")
	opts.sources.addFlags(cmd)
	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	reg, closeCache, err := c.newRegistry(ctx, opts.sources)
	if err != nil {
		return err
	}
	defer closeCache()

	metrics := server.NewMetrics(config.AppName)
	metrics.Install()

	ed := c.newEditor(reg)
	if opts.file != "" {
		if err := importInto(ctx, ed, opts.file); err != nil {
			return err
		}
	}

	addr := opts.addr
	if addr == "" {
		addr = c.cfg.Server.Addr
	}
	srv := server.New(ed, reg, server.WithLogger(logger), server.WithMetrics(metrics))
	printInfo("Serving on %s", StyleLink.Render("http://"+displayAddr(addr)))
	return srv.ListenAndServe(ctx, addr)
}

// displayAddr fills in localhost for addresses without a host.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
