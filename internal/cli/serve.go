package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/preslug/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload and print web server",
		Long: `Run the web server: upload a CSV roster at /, then print the slips of each
room from the page that follows. The server stops gracefully on SIGINT or
SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.settings()
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv, err := server.New(runner, server.Config{
				Addr:            cfg.Server.Addr,
				MaxUploadBytes:  cfg.MaxUploadBytes(),
				ReadTimeout:     cfg.Server.ReadTimeout.Duration,
				ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration,
				Render:          cfg.RenderOptions(),
			}, loggerFromContext(ctx))
			if err != nil {
				return err
			}
			newConsole(cmd).info("Serving on %s", styleAccent.Render(cfg.Server.Addr))
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the document cache")
	return cmd
}
