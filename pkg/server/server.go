// Package server serves the slip printer over HTTP.
//
// # Routes
//
//	GET  /               upload form
//	POST /               upload a CSV roster, answer the print page
//	GET  /testpage       alignment page as test_page.pdf
//	POST /print/{event}  slips of one room as <event>-<room>.pdf
//	GET  /healthz        liveness probe
//
// The print page carries the uploaded roster in each room's form, encoded
// with [roster.Encode], so the server keeps no state between requests.
//
// Failures answer a JSON body:
//
//	{"type": "client_error", "code": "ROOM_NOT_FOUND", "message": "..."}
package server

import (
	"context"
	"embed"
	stderrors "errors"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/preslug/pkg/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

// Defaults used when Config leaves a value zero.
const (
	DefaultMaxUploadBytes  = 10 << 20
	DefaultReadTimeout     = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	Addr            string
	MaxUploadBytes  int64
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Render holds per-render defaults (judges, font, offsets, test date).
	// Event, room and format are set per request.
	Render pipeline.Options
}

// Server is the HTTP front end of a pipeline.Runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	cfg    Config
	pages  *template.Template
	router chi.Router
}

// New creates a server rendering through runner.
func New(runner *pipeline.Runner, cfg Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Render.Judges == 0 {
		cfg.Render.Judges = pipeline.DefaultJudges
	}

	pages, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		runner: runner,
		logger: logger,
		cfg:    cfg,
		pages:  pages,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleIndex)
	r.Post("/", s.handleUpload)
	r.Get("/testpage", s.handleTestPage)
	r.Post("/print/{event}", s.handlePrint)
	r.Get("/healthz", s.handleHealth)
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully, letting in-flight renders finish within ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown failed", "err", err)
		return err
	}
	if err := <-serveErr; err != nil {
		return err
	}
	s.logger.Info("shutdown complete")
	return nil
}
