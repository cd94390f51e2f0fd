package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/preslug/pkg/cache"
	"github.com/matzehuels/preslug/pkg/errors"
	"github.com/matzehuels/preslug/pkg/layout"
	"github.com/matzehuels/preslug/pkg/observability"
	"github.com/matzehuels/preslug/pkg/render/sink"
	"github.com/matzehuels/preslug/pkg/roster"
)

const rosterCSV = `1001,T1,Ada,Lovelace,101,14:05:00,202,09:30:00,12,3
1002,T1,Alan,Turing,101,13:00:00,202,09:15:00,12,10
1003,T2,Grace,Hopper,102,13:30:00,203,10:00:00,14,1
`

func newTestRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	schema, err := layout.Default()
	if err != nil {
		t.Fatalf("layout.Default() error: %v", err)
	}
	return NewRunner(schema, c, nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func extract(t *testing.T, r *Runner) *roster.Roster {
	t.Helper()
	ros, n, err := r.Extract(context.Background(), strings.NewReader(rosterCSV))
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if n != 3 {
		t.Fatalf("students = %d, want 3", n)
	}
	return ros
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"pdf", false},
		{"json", false},
		{"svg", true},
		{"PDF", true}, // case-sensitive
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Event: roster.EventSpeech, Room: "101"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Judges != DefaultJudges {
		t.Errorf("Judges = %d, want %d", opts.Judges, DefaultJudges)
	}
	if opts.Format != FormatPDF {
		t.Errorf("Format = %q, want %q", opts.Format, FormatPDF)
	}
	if opts.FontFamily != "Courier" || opts.FontSize != 10 {
		t.Errorf("font = %s %v, want Courier 10", opts.FontFamily, opts.FontSize)
	}
	if _, err := time.Parse(TestDateLayout, opts.TestDate); err != nil {
		t.Errorf("TestDate = %q, want a %s date", opts.TestDate, TestDateLayout)
	}
	if got := opts.Filename(); got != "speech-101.pdf" {
		t.Errorf("Filename() = %q, want speech-101.pdf", got)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"unknown event", Options{Event: "debate"}, errors.ErrCodeInvalidEvent},
		{"bad room", Options{Event: roster.EventSpeech, Room: "12B"}, errors.ErrCodeInvalidInput},
		{"too many judges", Options{Event: roster.EventInterview, Judges: 12}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Event: roster.EventObjective, Format: "svg"}, errors.ErrCodeInvalidInput},
		{"negative font", Options{Event: roster.EventObjective, FontSize: -1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want %v", err, tt.code)
			}
		})
	}
}

func TestObjectiveJudgesIgnored(t *testing.T) {
	opts := Options{Event: roster.EventObjective, Judges: 42}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("objective renders ignore judges, got %v", err)
	}
}

func TestRenderPDF(t *testing.T) {
	r := newTestRunner(t, nil)
	ros := extract(t, r)

	res, err := r.Render(context.Background(), ros, Options{Event: roster.EventObjective, Room: "12", TestDate: "3/20/2016"})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if res.Filename != "objective-12.pdf" {
		t.Errorf("Filename = %q, want objective-12.pdf", res.Filename)
	}
	if res.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q, want application/pdf", res.ContentType)
	}
	if res.Pages != 14 {
		t.Errorf("Pages = %d, want 14", res.Pages)
	}
	if !bytes.HasPrefix(res.Data, []byte("%PDF-")) {
		t.Error("Data is not a PDF document")
	}
	if res.CacheHit {
		t.Error("NullCache render should not be a cache hit")
	}
}

func TestRenderJSON(t *testing.T) {
	r := newTestRunner(t, nil)
	ros := extract(t, r)

	res, err := r.Render(context.Background(), ros, Options{Event: roster.EventSpeech, Room: "101", Judges: 2, Format: FormatJSON})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if res.Filename != "speech-101.json" {
		t.Errorf("Filename = %q, want speech-101.json", res.Filename)
	}

	var preview sink.Preview
	if err := json.Unmarshal(res.Data, &preview); err != nil {
		t.Fatalf("unmarshal preview: %v", err)
	}
	if len(preview.Pages) != 4 {
		t.Fatalf("preview pages = %d, want 4", len(preview.Pages))
	}
	first := preview.Pages[0].Ops[0]
	if first.Kind != "text" || first.Text != "Alan Turing (1002)" {
		t.Errorf("first op = %+v, want the earliest speaker's name", first)
	}
}

func TestRenderErrors(t *testing.T) {
	r := newTestRunner(t, nil)
	ros := extract(t, r)

	_, err := r.Render(context.Background(), ros, Options{Event: roster.EventSpeech, Room: "999"})
	if !errors.Is(err, errors.ErrCodeRoomNotFound) {
		t.Errorf("Render(missing room) error = %v, want %v", err, errors.ErrCodeRoomNotFound)
	}
}

func TestRenderCached(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRunner(t, c)
	ros := extract(t, r)
	ctx := context.Background()
	opts := Options{Event: roster.EventInterview, Room: "202"}

	first, err := r.Render(ctx, ros, opts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	second, err := r.Render(ctx, ros, opts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if first.CacheHit || !second.CacheHit {
		t.Errorf("CacheHit = %v, %v, want false, true", first.CacheHit, second.CacheHit)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Error("cached document differs from the rendered one")
	}
	if second.Pages != first.Pages {
		t.Errorf("cached Pages = %d, want %d", second.Pages, first.Pages)
	}

	opts.Refresh = true
	third, err := r.Render(ctx, ros, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("Refresh should bypass the cache")
	}

	other := Options{Event: roster.EventInterview, Room: "202", Judges: 1}
	fourth, err := r.Render(ctx, ros, other)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheHit {
		t.Error("a different judge count must not hit the cache")
	}
}

func TestTestPage(t *testing.T) {
	r := newTestRunner(t, nil)
	res, err := r.TestPage(context.Background(), Options{})
	if err != nil {
		t.Fatalf("TestPage() error: %v", err)
	}
	if res.Filename != "test_page.pdf" {
		t.Errorf("Filename = %q, want test_page.pdf", res.Filename)
	}
	if !bytes.HasPrefix(res.Data, []byte("%PDF-")) {
		t.Error("Data is not a PDF document")
	}
}

func TestRenderAll(t *testing.T) {
	r := newTestRunner(t, nil)
	ros := extract(t, r)

	results, err := r.RenderAll(context.Background(), ros, Options{Event: roster.EventSpeech, Judges: 1}, 2)
	if err != nil {
		t.Fatalf("RenderAll() error: %v", err)
	}
	var names []string
	for _, res := range results {
		names = append(names, res.Filename)
	}
	want := []string{"speech-101.pdf", "speech-102.pdf"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("filenames mismatch (-want +got):\n%s", diff)
	}
	if results[0].Pages != 2 || results[1].Pages != 1 {
		t.Errorf("pages = %d, %d, want 2, 1", results[0].Pages, results[1].Pages)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, event, room string, pages int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	status := "ok"
	if err != nil {
		status = string(errors.GetCode(err))
	}
	h.events = append(h.events, event+"/"+room+":"+status)
}

func TestRenderHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := newTestRunner(t, nil)
	ros := extract(t, r)
	ctx := context.Background()
	_, _ = r.Render(ctx, ros, Options{Event: roster.EventObjective, Room: "14"})
	_, _ = r.Render(ctx, ros, Options{Event: roster.EventObjective, Room: "15"})

	want := []string{"objective/14:ok", "objective/15:ROOM_NOT_FOUND"}
	if diff := cmp.Diff(want, hooks.events); diff != "" {
		t.Errorf("hook events mismatch (-want +got):\n%s", diff)
	}
}
