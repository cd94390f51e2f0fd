package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/preslug/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered document cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached document",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newConsole(cmd)
			opts := c.settings().CacheOptions()
			if opts.Backend == cache.BackendNone {
				out.info("Cache is disabled")
				return nil
			}

			ch, err := cache.Open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				return fmt.Errorf("%s cache cannot be cleared", opts.Backend)
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			out.success("Cleared %s cache", opts.Backend)
			out.detail("%s", cacheLocation(opts))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where documents are cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			newConsole(cmd).println(cacheLocation(c.settings().CacheOptions()))
			return nil
		},
	}
}

// cacheLocation describes a backend: the directory of a file cache, the
// address of a Redis cache.
func cacheLocation(opts cache.Options) string {
	switch opts.Backend {
	case cache.BackendFile:
		return opts.Dir
	case cache.BackendRedis:
		return fmt.Sprintf("redis://%s/%d", opts.Redis.Addr, opts.Redis.DB)
	}
	return "none"
}
