package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/preslug/pkg/cache"
	"github.com/matzehuels/preslug/pkg/errors"
	"github.com/matzehuels/preslug/pkg/roster"
)

func TestDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
	if cfg.Cache.Backend != string(cache.BackendFile) {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Cache.Dir != filepath.Join("/tmp/xdg-cache", AppName) {
		t.Errorf("Cache.Dir = %q", cfg.Cache.Dir)
	}
	if cfg.MaxUploadBytes() != 10<<20 {
		t.Errorf("MaxUploadBytes() = %d, want %d", cfg.MaxUploadBytes(), 10<<20)
	}
}

func TestLoad(t *testing.T) {
	const file = `
[server]
addr = "127.0.0.1:9000"
shutdown_timeout = "3s"

[render]
font_size = 11
offset_x = 1.5
offset_y = -2
default_judges = 4
slug_radius = 2.0

[cache]
backend = "none"
ttl = "90m"
namespace = "spring"

[log]
level = "debug"
`
	cfg, err := Load(strings.NewReader(file))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout.Duration != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 3s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.ReadTimeout.Duration != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want default 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("Cache.TTL = %v, want 90m", cfg.Cache.TTL)
	}
	if level, _ := cfg.LogLevel(); level != log.DebugLevel {
		t.Errorf("LogLevel() = %v, want debug", level)
	}

	opts := cfg.RenderOptions()
	want := struct {
		Judges           int
		Family           string
		Size, OffX, OffY float64
	}{4, "Courier", 11, 1.5, -2}
	got := struct {
		Judges           int
		Family           string
		Size, OffX, OffY float64
	}{opts.Judges, opts.FontFamily, opts.FontSize, opts.OffsetX, opts.OffsetY}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RenderOptions() mismatch (-want +got):\n%s", diff)
	}

	s, err := cfg.Schema()
	if err != nil {
		t.Fatalf("Schema() error: %v", err)
	}
	if r := s.SlugSize().Radius; r != 2 {
		t.Errorf("slug radius = %v, want 2", r)
	}

	key := cfg.Keyer().ArtifactKey(cache.ArtifactKeyOpts{Event: string(roster.EventSpeech)})
	if !strings.HasPrefix(key, "spring:artifact:") {
		t.Errorf("ArtifactKey = %q, want spring: prefix", key)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"syntax", `[server`},
		{"unknown key", "[render]\nfont = \"Helvetica\""},
		{"bad duration", "[server]\nread_timeout = \"soon\""},
		{"zero judges", "[render]\ndefault_judges = 0"},
		{"too many judges", "[render]\ndefault_judges = 10"},
		{"font size", "[render]\nfont_size = 0"},
		{"backend", "[cache]\nbackend = \"memcached\""},
		{"redis without addr", "[cache]\nbackend = \"redis\""},
		{"file without dir", "[cache]\nbackend = \"file\"\ndir = \"\""},
		{"log level", "[log]\nlevel = \"chatty\""},
		{"upload limit", "[server]\nmax_upload_mb = 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.file))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Load() error = %v, want %v", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestSchemaRadiusTooLarge(t *testing.T) {
	cfg := Default()
	r := 100.0
	cfg.Render.SlugRadius = &r
	if _, err := cfg.Schema(); !errors.Is(err, errors.ErrCodeSchemaInvalid) {
		t.Errorf("Schema() error = %v, want %v", err, errors.ErrCodeSchemaInvalid)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() without a file error: %v", err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}

	path := DefaultPath()
	if path != filepath.Join(dir, AppName, "config.toml") {
		t.Fatalf("DefaultPath() = %q", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9999\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q, want :9999", cfg.Server.Addr)
	}

	if _, err := Resolve(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("Resolve(missing explicit path) should fail")
	}
}

func TestCacheOptions(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisAddr = "localhost:6379"
	cfg.Cache.RedisDB = 2

	got := cfg.CacheOptions()
	want := cache.Options{
		Backend: cache.BackendRedis,
		Dir:     cfg.Cache.Dir,
		Redis:   cache.RedisConfig{Addr: "localhost:6379", DB: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CacheOptions() mismatch (-want +got):\n%s", diff)
	}
}
