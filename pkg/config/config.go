// Package config loads preslug settings from a TOML file.
//
// Every setting has a built-in default, so a missing file is not an error.
// A file only needs the keys it changes:
//
//	[server]
//	addr = ":8080"
//	shutdown_timeout = "15s"
//
//	[render]
//	offset_x = 1.5
//	default_judges = 4
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "2h"
//
//	[log]
//	level = "debug"
//
// Unknown keys are rejected so typos surface at startup.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/preslug/pkg/cache"
	"github.com/matzehuels/preslug/pkg/errors"
	"github.com/matzehuels/preslug/pkg/layout"
	"github.com/matzehuels/preslug/pkg/pipeline"
	"github.com/matzehuels/preslug/pkg/render"
)

// AppName names the config and cache directories.
const AppName = "preslug"

// Config is the full settings tree.
type Config struct {
	Server ServerConfig `toml:"server"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	MaxUploadMB     int64    `toml:"max_upload_mb"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	ReadTimeout     Duration `toml:"read_timeout"`
}

// RenderConfig sets render defaults. Requests may still override judges.
type RenderConfig struct {
	// Schema is a form definition file; empty uses the built-in form.
	Schema        string  `toml:"schema"`
	FontFamily    string  `toml:"font_family"`
	FontSize      float64 `toml:"font_size"`
	OffsetX       float64 `toml:"offset_x"`
	OffsetY       float64 `toml:"offset_y"`
	TestDate      string  `toml:"test_date"`
	DefaultJudges int     `toml:"default_judges"`
	// SlugRadius overrides the schema's corner radius when set.
	SlugRadius *float64 `toml:"slug_radius"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
	// Namespace scopes cache keys, e.g. per printing of the form.
	Namespace string `toml:"namespace"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration written as a string ("30s", "2h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats d as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	backend, dir := string(cache.BackendFile), DefaultCacheDir()
	if dir == "" {
		backend = string(cache.BackendNone)
	}
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MaxUploadMB:     10,
			ShutdownTimeout: Duration{10 * time.Second},
			ReadTimeout:     Duration{30 * time.Second},
		},
		Render: RenderConfig{
			FontFamily:    render.DefaultFontFamily,
			FontSize:      render.DefaultFontSize,
			DefaultJudges: pipeline.DefaultJudges,
		},
		Cache: CacheConfig{
			Backend: backend,
			Dir:     dir,
			TTL:     Duration{pipeline.DefaultTTL},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load decodes TOML from r over the defaults and validates the result.
func Load(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the config at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open config")
	}
	defer f.Close()
	cfg, err := Load(f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "%s", path)
	}
	return cfg, nil
}

// Resolve loads path, or the file at DefaultPath when path is empty. A
// missing default file yields Default().
func Resolve(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	def := DefaultPath()
	if def == "" {
		return Default(), nil
	}
	if _, err := os.Stat(def); err != nil {
		return Default(), nil
	}
	return LoadFile(def)
}

// DefaultPath returns $XDG_CONFIG_HOME/preslug/config.toml, falling back to
// ~/.config. It returns "" when no home directory is known.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName, "config.toml")
}

// DefaultCacheDir returns $XDG_CACHE_HOME/preslug, falling back to ~/.cache.
func DefaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", AppName)
}

// Validate rejects settings no render could use.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidInput, format, args...)
	}
	switch {
	case c.Server.Addr == "":
		return invalid("server.addr must not be empty")
	case c.Server.MaxUploadMB < 1:
		return invalid("server.max_upload_mb must be at least 1, got %d", c.Server.MaxUploadMB)
	case c.Server.ShutdownTimeout.Duration < 0 || c.Server.ReadTimeout.Duration < 0:
		return invalid("server timeouts must not be negative")
	case c.Render.FontFamily == "":
		return invalid("render.font_family must not be empty")
	case c.Render.FontSize <= 0:
		return invalid("render.font_size must be positive, got %g", c.Render.FontSize)
	case c.Render.SlugRadius != nil && *c.Render.SlugRadius < 0:
		return invalid("render.slug_radius must not be negative")
	case c.Cache.TTL.Duration < 0:
		return invalid("cache.ttl must not be negative")
	}
	if err := errors.ValidateJudges(c.Render.DefaultJudges); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "render.default_judges")
	}
	switch cache.Backend(c.Cache.Backend) {
	case cache.BackendNone:
	case cache.BackendFile:
		if c.Cache.Dir == "" {
			return invalid("cache.dir is required for the file backend")
		}
	case cache.BackendRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache.redis_addr is required for the redis backend")
		}
	default:
		return invalid("unknown cache.backend %q (must be none, file or redis)", c.Cache.Backend)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (log.Level, error) {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "log.level")
	}
	return level, nil
}

// Schema loads the configured form definition.
func (c *Config) Schema() (*layout.Schema, error) {
	var (
		s   *layout.Schema
		err error
	)
	if c.Render.Schema == "" {
		s, err = layout.Default()
	} else {
		s, err = layout.LoadFile(c.Render.Schema)
	}
	if err != nil {
		return nil, err
	}
	if c.Render.SlugRadius != nil {
		return s.WithSlugRadius(*c.Render.SlugRadius)
	}
	return s, nil
}

// CacheOptions returns the options for cache.Open.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: cache.Backend(c.Cache.Backend),
		Dir:     c.Cache.Dir,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
	}
}

// Keyer returns the cache keyer, scoped when a namespace is set.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Namespace == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Cache.Namespace+":")
}

// RenderOptions returns pipeline options carrying the render defaults.
// Callers fill in event, room and format.
func (c *Config) RenderOptions() pipeline.Options {
	return pipeline.Options{
		Judges:     c.Render.DefaultJudges,
		TestDate:   c.Render.TestDate,
		FontFamily: c.Render.FontFamily,
		FontSize:   c.Render.FontSize,
		OffsetX:    c.Render.OffsetX,
		OffsetY:    c.Render.OffsetY,
	}
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}
