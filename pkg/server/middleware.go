package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/preslug/pkg/observability"
)

// RequestIDHeader carries the request id in responses.
const RequestIDHeader = "X-Request-ID"

type ctxKey int

const loggerKey ctxKey = 0

// requestLogger tags each request with a uuid, hands a request-scoped logger
// to handlers and logs one line per response.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		l := s.logger.With("req", id)
		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), loggerKey, l)
		r = r.WithContext(ctx)

		hooks := observability.HTTP()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			hooks.OnResponse(r.Context(), r.Method, route, status, elapsed)
			l.Info("request",
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", elapsed.Round(time.Millisecond))
		}()

		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)
	})
}

// logger returns the request-scoped logger, or fallback outside a request.
func logger(r *http.Request, fallback *log.Logger) *log.Logger {
	if l, ok := r.Context().Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return fallback
}
