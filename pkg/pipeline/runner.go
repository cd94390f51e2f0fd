package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/preslug/pkg/cache"
	"github.com/matzehuels/preslug/pkg/errors"
	"github.com/matzehuels/preslug/pkg/layout"
	"github.com/matzehuels/preslug/pkg/observability"
	"github.com/matzehuels/preslug/pkg/render"
	"github.com/matzehuels/preslug/pkg/render/sink"
	"github.com/matzehuels/preslug/pkg/roster"
	"github.com/matzehuels/preslug/pkg/sheets"
)

const artifactKeyType = "artifact"

// testPageEvent labels alignment pages in hooks and logs.
const testPageEvent = "testpage"

// Runner renders documents with caching.
//
// The Runner holds no per-request state. Multiple goroutines can share one
// Runner; each render composes onto its own surface.
type Runner struct {
	Schema *layout.Schema
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL of cached documents; zero means DefaultTTL.
	TTL time.Duration

	schemaHash string
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses DefaultKeyer, a nil logger uses log.Default().
func NewRunner(schema *layout.Schema, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Schema:     schema,
		Cache:      c,
		Keyer:      keyer,
		Logger:     logger,
		schemaHash: schemaFingerprint(schema),
	}
}

// Extract reads a CSV roster.
func (r *Runner) Extract(ctx context.Context, in io.Reader) (*roster.Roster, int, error) {
	hooks := observability.Pipeline()
	hooks.OnExtractStart(ctx)
	start := time.Now()

	ros, students, err := roster.ReadCSV(in)
	hooks.OnExtractComplete(ctx, students, time.Since(start), err)
	if err != nil {
		return nil, 0, err
	}
	r.Logger.Info("extracted roster",
		"students", students,
		"duration", time.Since(start))
	return ros, students, nil
}

// Render produces the document of one room of one event.
func (r *Runner) Render(ctx context.Context, ros *roster.Roster, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, string(opts.Event), opts.Room)
	start := time.Now()

	res, err := r.render(ctx, ros, opts)
	pages := 0
	if res != nil {
		pages = res.Pages
	}
	hooks.OnRenderComplete(ctx, string(opts.Event), opts.Room, pages, time.Since(start), err)
	if err != nil {
		logger.Debug("render failed", "event", opts.Event, "room", opts.Room, "err", err)
		return nil, err
	}

	res.Duration = time.Since(start)
	logger.Info("rendered slips",
		"event", opts.Event,
		"room", opts.Room,
		"pages", res.Pages,
		"cached", res.CacheHit,
		"duration", res.Duration)
	return res, nil
}

func (r *Runner) render(ctx context.Context, ros *roster.Roster, opts Options) (*Result, error) {
	pages, err := sheets.Plan(opts.Event, ros, opts.Room, sheets.Options{
		TestDate: opts.TestDate,
		Judges:   opts.Judges,
	})
	if err != nil {
		return nil, err
	}

	planData, err := json.Marshal(pages)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash page plan")
	}
	key := r.Keyer.ArtifactKey(r.keyOpts(opts, cache.Hash(planData)))

	res := &Result{
		Filename:    opts.Filename(),
		ContentType: ContentType(opts.Format),
		Pages:       len(pages),
	}
	if data, ok := r.cached(ctx, key, opts.Refresh); ok {
		res.Data, res.CacheHit = data, true
		return res, nil
	}

	data, err := r.compose(opts, opts.Filename(), func(c *render.Composer) error {
		return sheets.Assemble(c, pages)
	})
	if err != nil {
		return nil, err
	}
	res.Data = data
	r.store(ctx, key, data)
	return res, nil
}

// TestPage renders one alignment page filling every schema field.
func (r *Runner) TestPage(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateForTestPage(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, testPageEvent, "")
	start := time.Now()

	filename := TestPageFilename(opts.Format)
	key := r.Keyer.ArtifactKey(r.keyOpts(opts, testPageEvent))
	res := &Result{Filename: filename, ContentType: ContentType(opts.Format), Pages: 1}

	data, hit := r.cached(ctx, key, opts.Refresh)
	if !hit {
		var err error
		data, err = r.compose(opts, filename, (*render.Composer).TestPage)
		if err != nil {
			hooks.OnRenderComplete(ctx, testPageEvent, "", 0, time.Since(start), err)
			return nil, err
		}
		r.store(ctx, key, data)
	}
	res.Data, res.CacheHit = data, hit
	hooks.OnRenderComplete(ctx, testPageEvent, "", res.Pages, time.Since(start), nil)

	res.Duration = time.Since(start)
	logger.Info("rendered test page", "cached", res.CacheHit, "duration", res.Duration)
	return res, nil
}

// RenderAll renders every room of opts.Event with at most concurrency
// renders in flight. Results follow roster room order. The first error
// cancels the remaining renders.
func (r *Runner) RenderAll(ctx context.Context, ros *roster.Roster, opts Options, concurrency int) ([]*Result, error) {
	rooms := ros.Rooms(opts.Event)
	results := make([]*Result, len(rooms))

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, room := range rooms {
		roomOpts := opts
		roomOpts.Room = room
		roomOpts.validated = false
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.Render(ctx, ros, roomOpts)
			if err != nil {
				return errors.Wrap(codeOf(err), err, "room %q", room)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// compose draws onto a fresh surface for the requested format and returns
// the finished document.
func (r *Runner) compose(opts Options, title string, draw func(*render.Composer) error) ([]byte, error) {
	var surface render.Surface
	switch opts.Format {
	case FormatJSON:
		surface = sink.NewRecorder()
	default:
		surface = sink.NewPDF(r.Schema, sink.WithTitle(title))
	}

	c := render.NewComposer(r.Schema, surface, opts.composerOptions()...)
	if err := draw(c); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := surface.Finish(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Runner) cached(ctx context.Context, key string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, artifactKeyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, artifactKeyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, key string, data []byte) {
	ttl := r.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, artifactKeyType, len(data))
}

func (r *Runner) keyOpts(opts Options, contentHash string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		SchemaHash: r.schemaHash,
		RosterHash: contentHash,
		Event:      string(opts.Event),
		Room:       opts.Room,
		Judges:     opts.Judges,
		TestDate:   opts.TestDate,
		FontFamily: opts.FontFamily,
		FontSize:   opts.FontSize,
		OffsetX:    opts.OffsetX,
		OffsetY:    opts.OffsetY,
		Format:     opts.Format,
	}
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func codeOf(err error) errors.Code {
	if code := errors.GetCode(err); code != "" {
		return code
	}
	return errors.ErrCodeInternal
}

// schemaFingerprint hashes the geometry of a schema so documents rendered
// with different form definitions never share a cache entry.
func schemaFingerprint(s *layout.Schema) string {
	if s == nil {
		return ""
	}
	w, h := s.PageSize()
	data, _ := json.Marshal(struct {
		Page   [2]float64
		Slug   layout.Slug
		Fields []layout.Field
	}{[2]float64{w, h}, s.SlugSize(), s.Fields()})
	return cache.Hash(data)
}
