package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/preslug/pkg/observability"
)

// newLogger writes leveled, timestamped lines ("14:32:01.45 INFO ...") to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// logDone logs the end of an operation started at start, with its elapsed
// time appended to keyvals.
func logDone(l *log.Logger, start time.Time, msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(start).Round(time.Millisecond))
	l.Info(msg, keyvals...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger setup attached, or log.Default()
// for commands run without it.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks traces pipeline and cache events for --verbose. Successful
// events log at debug; failures log at warn so they show without -v too.
type logHooks struct {
	logger *log.Logger
}

func registerLoggingHooks(l *log.Logger) {
	h := logHooks{logger: l.WithPrefix("hooks")}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
}

func (h logHooks) finished(msg string, err error, keyvals ...any) {
	if err != nil {
		h.logger.Warn(msg, append(keyvals, "err", err)...)
		return
	}
	h.logger.Debug(msg, keyvals...)
}

func (h logHooks) OnExtractStart(context.Context) {
	h.logger.Debug("extract started")
}

func (h logHooks) OnExtractComplete(_ context.Context, students int, d time.Duration, err error) {
	h.finished("extract finished", err, "students", students, "duration", d)
}

func (h logHooks) OnRenderStart(_ context.Context, event, room string) {
	h.logger.Debug("render started", "event", event, "room", room)
}

func (h logHooks) OnRenderComplete(_ context.Context, event, room string, pages int, d time.Duration, err error) {
	h.finished("render finished", err, "event", event, "room", room, "pages", pages, "duration", d)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
