package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/preslug/pkg/cache"
	"github.com/matzehuels/preslug/pkg/errors"
	"github.com/matzehuels/preslug/pkg/roster"
)

const rosterCSV = `1001,T1,Ada,Lovelace,101,14:05:00,202,09:30:00,12,3
1002,T1,Alan,Turing,101,13:00:00,202,09:15:00,12,10
1003,T2,Grace,Hopper,102,13:30:00,203,10:00:00,14,1
`

// isolate points config and cache lookups at fresh temp dirs and returns a
// roster file inside the work dir.
func isolate(t *testing.T) (work, rosterPath string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	work = t.TempDir()
	rosterPath = filepath.Join(work, "roster.csv")
	if err := os.WriteFile(rosterPath, []byte(rosterCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return work, rosterPath
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestRenderRoom(t *testing.T) {
	work, rosterPath := isolate(t)
	out := filepath.Join(work, "slips.pdf")

	if err := execute(t, "render", rosterPath, "--event", "speech", "--room", "101", "--judges", "2", "-o", out); err != nil {
		t.Fatalf("render error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func TestRenderJSONPreview(t *testing.T) {
	work, rosterPath := isolate(t)
	out := filepath.Join(work, "preview.json")

	err := execute(t, "render", rosterPath, "-e", "objective", "-r", "12", "--format", "json", "--test-date", "3/20/2016", "-o", out)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"3/20/2016"`)) {
		t.Error("preview lacks the test date")
	}
}

func TestRenderAll(t *testing.T) {
	work, rosterPath := isolate(t)
	dir := filepath.Join(work, "out")

	if err := execute(t, "render", rosterPath, "--event", "interview", "--all", "-o", dir, "--no-cache"); err != nil {
		t.Fatalf("render --all error: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{"interview-202.pdf", "interview-203.pdf"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderErrors(t *testing.T) {
	_, rosterPath := isolate(t)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown event", []string{"render", rosterPath, "-e", "debate", "-r", "1"}, errors.ErrCodeInvalidEvent},
		{"missing room", []string{"render", rosterPath, "-e", "speech", "-r", "999"}, errors.ErrCodeRoomNotFound},
		{"too many judges", []string{"render", rosterPath, "-e", "speech", "-r", "101", "-j", "10"}, errors.ErrCodeInvalidInput},
		{"bad format", []string{"render", rosterPath, "-e", "speech", "-r", "101", "-f", "svg"}, errors.ErrCodeInvalidInput},
		{"missing file", []string{"render", rosterPath + ".missing", "-e", "speech", "-r", "101"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %v", err, tt.code)
			}
		})
	}
}

func TestRenderUsesConfig(t *testing.T) {
	work, rosterPath := isolate(t)
	cfgPath := filepath.Join(work, "config.toml")
	cfg := "[render]\ndefault_judges = 1\n\n[cache]\nbackend = \"none\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(work, "speech.json")

	if err := execute(t, "--config", cfgPath, "render", rosterPath, "-e", "speech", "-r", "101", "-f", "json", "-o", out); err != nil {
		t.Fatalf("render error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	// One judge for two students.
	if n := strings.Count(string(data), `"ops"`); n != 2 {
		t.Errorf("pages = %d, want 2", n)
	}
}

func TestTestPage(t *testing.T) {
	work, _ := isolate(t)
	out := filepath.Join(work, "align.pdf")
	if err := execute(t, "testpage", "-o", out, "--offset-x", "2"); err != nil {
		t.Fatalf("testpage error: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("test page not written: %v", err)
	}
}

func TestRosterCommand(t *testing.T) {
	_, rosterPath := isolate(t)
	if err := execute(t, "roster", rosterPath); err != nil {
		t.Errorf("roster error: %v", err)
	}

	var out bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"roster", rosterPath, "--encode"})
	root.SetOut(&out)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("roster --encode error: %v", err)
	}
	ros, err := roster.Decode(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("Decode(roster --encode output) error: %v", err)
	}
	if ros.Len(roster.EventObjective) != 3 {
		t.Errorf("decoded roster has %d objective students, want 3", ros.Len(roster.EventObjective))
	}
}

func TestRosterTable(t *testing.T) {
	ros, _, err := roster.ReadCSV(strings.NewReader(rosterCSV))
	if err != nil {
		t.Fatal(err)
	}
	out := rosterTable(ros)
	for _, want := range []string{"Speech", "Interview", "Objective", "101 (2)", "14 (1)"} {
		if !strings.Contains(out, want) {
			t.Errorf("table lacks %q:\n%s", want, out)
		}
	}
}

func TestSchemaCommands(t *testing.T) {
	work, _ := isolate(t)
	bad := filepath.Join(work, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"page_size": [612], "slug_size": [9, 6], "fields": []}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := execute(t, "schema", "validate", bad); !errors.Is(err, errors.ErrCodeSchemaInvalid) {
		t.Errorf("schema validate error = %v, want %v", err, errors.ErrCodeSchemaInvalid)
	}
	if err := execute(t, "schema", "show"); err != nil {
		t.Errorf("schema show error: %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	work, rosterPath := isolate(t)
	dir := filepath.Join(work, "cache")
	cfgPath := filepath.Join(work, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[cache]\nbackend = \"file\"\ndir = \""+dir+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(work, "s.pdf")
	if err := execute(t, "--config", cfgPath, "render", rosterPath, "-e", "speech", "-r", "102", "-o", out); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) == 0 {
		t.Fatal("render should populate the file cache")
	}

	if err := execute(t, "--config", cfgPath, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	_ = filepath.WalkDir(fc.Dir(), func(_ string, d os.DirEntry, _ error) error {
		if d != nil && !d.IsDir() {
			n++
		}
		return nil
	})
	if n != 0 {
		t.Errorf("%d cache files left after clear", n)
	}
}

func TestCacheLocation(t *testing.T) {
	tests := []struct {
		opts cache.Options
		want string
	}{
		{cache.Options{Backend: cache.BackendNone}, "none"},
		{cache.Options{Backend: cache.BackendFile, Dir: "/var/cache/preslug"}, "/var/cache/preslug"},
		{cache.Options{Backend: cache.BackendRedis, Redis: cache.RedisConfig{Addr: "localhost:6379", DB: 2}}, "redis://localhost:6379/2"},
	}
	for _, tt := range tests {
		if got := cacheLocation(tt.opts); got != tt.want {
			t.Errorf("cacheLocation(%s) = %q, want %q", tt.opts.Backend, got, tt.want)
		}
	}
}

func TestBadConfig(t *testing.T) {
	work, _ := isolate(t)
	cfgPath := filepath.Join(work, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[render]\nfont_size = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "--config", cfgPath, "cache", "path"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want %v", err, errors.ErrCodeInvalidInput)
	}
}
