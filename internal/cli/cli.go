// Package cli implements the preslug command-line interface.
//
// # Commands
//
//   - serve: run the upload and print web server
//   - render: render the slips of one room, or every room, to files
//   - testpage: render the alignment page
//   - roster: summarize a CSV roster per event and room
//   - schema: validate or show form definitions
//   - cache: manage the rendered document cache
//
// # Configuration
//
// Settings come from a TOML file (--config, default
// $XDG_CONFIG_HOME/preslug/config.toml); see package config. Flags override
// the file for a single run.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs pipeline and cache events. Loggers travel through context.Context.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/preslug/pkg/buildinfo"
	"github.com/matzehuels/preslug/pkg/cache"
	"github.com/matzehuels/preslug/pkg/config"
	"github.com/matzehuels/preslug/pkg/pipeline"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        *config.Config
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
		Use:   "preslug",
		Short: "Preslug prints answer slips for scantron forms",
		Long: `Preslug fills pre-printed scantron answer forms with student names, ids
and test codes, bubbling in the numeric fields, for speech, interview and
objective test events.`,
		Version:           buildinfo.Get().Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/preslug/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.testPageCommand())
	root.AddCommand(c.rosterCommand())
	root.AddCommand(c.schemaCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// setup loads the config and applies the log level before any command runs.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	if c.verbose {
		level = LogDebug
		registerLoggingHooks(c.Logger)
	}
	c.SetLogLevel(level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// settings returns the loaded settings, or the defaults outside a command run.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg := c.settings()
	schema, err := cfg.Schema()
	if err != nil {
		return nil, err
	}

	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(schema, ch, cfg.Keyer(), c.Logger)
	r.TTL = cfg.Cache.TTL.Duration
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, c.settings().CacheOptions())
}
