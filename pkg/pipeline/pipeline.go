// Package pipeline runs the roster -> plan -> compose -> document flow.
//
// Both the HTTP server and the CLI render through a [Runner], so caching,
// logging and hooks behave the same at every entry point.
//
// # Usage
//
//	schema, _ := layout.Default()
//	runner := pipeline.NewRunner(schema, cache, nil, logger)
//
//	r, students, err := runner.Extract(ctx, csvFile)
//	res, err := runner.Render(ctx, r, pipeline.Options{
//	    Event: roster.EventSpeech,
//	    Room:  "101",
//	})
//	// res.Data holds speech-101.pdf
//
// A failed render returns no document. Partial output is never produced.
package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/preslug/pkg/errors"
	"github.com/matzehuels/preslug/pkg/render"
	"github.com/matzehuels/preslug/pkg/roster"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultJudges is the number of judge slips per student.
	DefaultJudges = 3

	// DefaultTTL is how long a rendered document stays cached.
	DefaultTTL = 24 * time.Hour

	// TestDateLayout formats the default objective test date.
	TestDateLayout = "1/2/2006"
)

// Format constants for output formats.
const (
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPDF:  true,
	FormatJSON: true,
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	if format == FormatJSON {
		return "application/json"
	}
	return "application/pdf"
}

// =============================================================================
// Options
// =============================================================================

// Options configure one render.
type Options struct {
	Event    roster.Event `json:"event"`
	Room     string       `json:"room"`
	Judges   int          `json:"judges,omitempty"`
	TestDate string       `json:"test_date,omitempty"`
	Format   string       `json:"format,omitempty"`

	FontFamily string  `json:"font_family,omitempty"`
	FontSize   float64 `json:"font_size,omitempty"`
	OffsetX    float64 `json:"offset_x,omitempty"`
	OffsetY    float64 `json:"offset_y,omitempty"`

	// Refresh bypasses cached documents.
	Refresh bool `json:"refresh,omitempty"`

	// Logger overrides the runner's logger for this render.
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result is a rendered document.
type Result struct {
	Filename    string
	ContentType string
	Data        []byte
	Pages       int
	CacheHit    bool
	Duration    time.Duration
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format %q (must be pdf or json)", format)
	}
	return nil
}

// ValidateAndSetDefaults checks a room render request and fills defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if _, err := roster.ParseEvent(string(o.Event)); err != nil {
		return err
	}
	if err := errors.ValidateRoomKey(o.Room); err != nil {
		return err
	}
	if o.Judges == 0 {
		o.Judges = DefaultJudges
	}
	if o.Event != roster.EventObjective {
		if err := errors.ValidateJudges(o.Judges); err != nil {
			return err
		}
	}
	if o.TestDate == "" {
		o.TestDate = time.Now().Format(TestDateLayout)
	}
	if err := o.setRenderDefaults(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForTestPage fills the defaults a test page needs; event, room and
// judges are ignored.
func (o *Options) ValidateForTestPage() error {
	return o.setRenderDefaults()
}

func (o *Options) setRenderDefaults() error {
	if o.Format == "" {
		o.Format = FormatPDF
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.FontFamily == "" {
		o.FontFamily = render.DefaultFontFamily
	}
	if o.FontSize == 0 {
		o.FontSize = render.DefaultFontSize
	}
	if o.FontSize < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "font size must be positive, got %g", o.FontSize)
	}
	return nil
}

// Filename returns the download name of the document, e.g. "speech-101.pdf".
func (o *Options) Filename() string {
	return fmt.Sprintf("%s-%s.%s", o.Event, o.Room, o.Format)
}

// TestPageFilename returns the download name of an alignment page.
func TestPageFilename(format string) string {
	return "test_page." + format
}

func (o *Options) composerOptions() []render.Option {
	return []render.Option{
		render.WithFont(o.FontFamily, o.FontSize),
		render.WithOffset(o.OffsetX, o.OffsetY),
	}
}
