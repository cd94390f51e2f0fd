package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/preslug/pkg/errors"
	"github.com/matzehuels/preslug/pkg/pipeline"
	"github.com/matzehuels/preslug/pkg/roster"
)

// renderOpts holds the command-line flags shared by render and testpage.
type renderOpts struct {
	event       string  // speech, interview or objective
	room        string  // room key; empty with all=false opens the picker
	all         bool    // render every room of the event
	judges      int     // judge slips per student (speech, interview)
	testDate    string  // objective Date field
	format      string  // pdf or json
	output      string  // output file, or directory with --all
	offsetX     float64 // printer alignment
	offsetY     float64
	concurrency int // rooms rendered at once with --all
	noCache     bool
	refresh     bool
}

func (c *CLI) addRenderFlags(cmd *cobra.Command, opts *renderOpts) {
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatPDF, "output format: pdf, json (draw-op preview)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (directory with --all)")
	cmd.Flags().Float64Var(&opts.offsetX, "offset-x", 0, "horizontal print offset in points (overrides config)")
	cmd.Flags().Float64Var(&opts.offsetY, "offset-y", 0, "vertical print offset in points (overrides config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the document cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")
}

// pipelineOptions merges config defaults with the flags set on cmd.
func (c *CLI) pipelineOptions(cmd *cobra.Command, opts *renderOpts) pipeline.Options {
	po := c.settings().RenderOptions()
	po.Event = roster.Event(opts.event)
	po.Room = opts.room
	po.Format = opts.format
	po.Refresh = opts.refresh
	po.Logger = loggerFromContext(cmd.Context())

	flags := cmd.Flags()
	if flags.Changed("judges") {
		po.Judges = opts.judges
	}
	if flags.Changed("test-date") {
		po.TestDate = opts.testDate
	}
	if flags.Changed("offset-x") {
		po.OffsetX = opts.offsetX
	}
	if flags.Changed("offset-y") {
		po.OffsetY = opts.offsetY
	}
	return po
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{concurrency: runtime.NumCPU()}

	cmd := &cobra.Command{
		Use:   "render <roster.csv>",
		Short: "Render the answer slips of a room",
		Long: `Render the answer slips of one room of an event from a CSV roster.

Without --room an interactive picker lists the event's rooms. With --all
every room is rendered into its own <event>-<room>.pdf.`,
		Example: `  preslug render roster.csv --event speech --room 101 --judges 2
  preslug render roster.csv --event objective --all -o slips/
  preslug render roster.csv --event interview --room 202 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := roster.ParseEvent(opts.event); err != nil {
				return err
			}
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.event, "event", "e", "", "event: speech, interview, objective (required)")
	cmd.Flags().StringVarP(&opts.room, "room", "r", "", "room key (interactive picker when omitted)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "render every room of the event")
	cmd.Flags().IntVarP(&opts.judges, "judges", "j", pipeline.DefaultJudges, "judge slips per student (overrides config)")
	cmd.Flags().StringVar(&opts.testDate, "test-date", "", "objective test date (default today)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", opts.concurrency, "rooms rendered at once with --all")
	c.addRenderFlags(cmd, &opts)
	_ = cmd.MarkFlagRequired("event")
	cmd.MarkFlagsMutuallyExclusive("room", "all")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts *renderOpts) error {
	ctx := cmd.Context()
	out := newConsole(cmd)
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	ros, err := readRoster(ctx, runner, path)
	if err != nil {
		return err
	}
	po := c.pipelineOptions(cmd, opts)

	if opts.all {
		return c.renderAll(ctx, out, runner, ros, po, opts)
	}

	if !cmd.Flags().Changed("room") {
		room, ok, err := pickRoom(ros, po.Event)
		if err != nil {
			return err
		}
		if !ok {
			out.detail("No room selected")
			return nil
		}
		po.Room = room
	}

	s := spin(ctx, fmt.Sprintf("Rendering %s room %s...", po.Event, roomLabel(po.Room)))
	res, err := runner.Render(ctx, ros, po)
	s.stop()
	if err != nil {
		return err
	}

	path := opts.output
	if path == "" {
		path = res.Filename
	}
	if err := writeResult(path, res); err != nil {
		return err
	}
	out.success("Rendered %s room %s", po.Event.Label(), styleAccent.Render(roomLabel(po.Room)))
	out.document(res.Pages, res.CacheHit)
	out.wrote(path)
	return nil
}

func (c *CLI) renderAll(ctx context.Context, out *console, runner *pipeline.Runner, ros *roster.Roster, po pipeline.Options, opts *renderOpts) error {
	rooms := ros.Rooms(po.Event)
	if len(rooms) == 0 {
		out.warn("No %s rooms in roster", po.Event)
		return nil
	}

	dir := opts.output
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	start := time.Now()
	s := spin(ctx, fmt.Sprintf("Rendering %d %s rooms...", len(rooms), po.Event))
	results, err := runner.RenderAll(ctx, ros, po, opts.concurrency)
	s.stop()
	if err != nil {
		return err
	}

	pages, cached := 0, 0
	for _, res := range results {
		path := filepath.Join(dir, res.Filename)
		if err := writeResult(path, res); err != nil {
			return err
		}
		out.wrote(path)
		pages += res.Pages
		if res.CacheHit {
			cached++
		}
	}
	logDone(loggerFromContext(ctx), start, "render all", "event", po.Event, "rooms", len(results), "pages", pages)
	out.success("Rendered %d %s rooms", len(results), po.Event.Label())
	out.detail("%d pages · %d rooms cached", pages, cached)
	return nil
}

// testPageCommand creates the testpage command.
func (c *CLI) testPageCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "testpage",
		Short: "Render the alignment test page",
		Long: `Render one page filling every field of the form, for checking printer
alignment against a blank form. Adjust offset_x/offset_y in the config (or
--offset-x/--offset-y) until the marks land inside the bubbles.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.TestPage(ctx, c.pipelineOptions(cmd, &opts))
			if err != nil {
				return err
			}
			path := opts.output
			if path == "" {
				path = res.Filename
			}
			if err := writeResult(path, res); err != nil {
				return err
			}
			out := newConsole(cmd)
			out.success("Rendered test page")
			out.wrote(path)
			out.hint("Print it on a blank form, then tune the offsets", "preslug testpage --offset-x 1.5 --offset-y -2")
			return nil
		},
	}
	c.addRenderFlags(cmd, &opts)
	return cmd
}

// readRoster extracts the CSV roster at path.
func readRoster(ctx context.Context, runner *pipeline.Runner, path string) (*roster.Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open roster")
	}
	defer f.Close()
	ros, _, err := runner.Extract(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ros, nil
}

func writeResult(path string, res *pipeline.Result) error {
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
