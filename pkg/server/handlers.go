package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/preslug/pkg/buildinfo"
	"github.com/matzehuels/preslug/pkg/errors"
	"github.com/matzehuels/preslug/pkg/pipeline"
	"github.com/matzehuels/preslug/pkg/roster"
)

// multipartMemory is the part of an upload kept in memory; the rest spills
// to temporary files.
const multipartMemory = 1 << 20

type indexPage struct {
	Judges    int
	MaxJudges int
}

type printPage struct {
	UploadID string
	Students int
	Data     string
	Events   []eventRooms
}

type eventRooms struct {
	Event  roster.Event
	Label  string
	Judged bool
	Judges int
	Rooms  []roomEntry
}

type roomEntry struct {
	Key      string
	Students int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "index", indexPage{
		Judges:    s.cfg.Render.Judges,
		MaxJudges: errors.MaxJudges,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.writeError(w, r, uploadError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	judges := map[roster.Event]int{}
	for event, param := range map[roster.Event]string{
		roster.EventSpeech:    "num_speech",
		roster.EventInterview: "num_interview",
	} {
		n, err := errors.ParseJudges(r.FormValue(param), s.cfg.Render.Judges)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", param))
			return
		}
		judges[event] = n
	}

	file, _, err := r.FormFile("csvfile")
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "csvfile is required"))
		return
	}
	defer file.Close()

	ros, students, err := s.runner.Extract(r.Context(), file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := roster.Encode(ros)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	page := printPage{
		UploadID: uuid.NewString(),
		Students: students,
		Data:     data,
	}
	for _, e := range roster.Events {
		er := eventRooms{
			Event:  e,
			Label:  e.Label(),
			Judged: e != roster.EventObjective,
			Judges: judges[e],
		}
		for _, room := range ros.Rooms(e) {
			recs, _ := ros.Records(e, room)
			er.Rooms = append(er.Rooms, roomEntry{Key: room, Students: len(recs)})
		}
		page.Events = append(page.Events, er)
	}

	logger(r, s.logger).Info("roster uploaded",
		"upload", page.UploadID,
		"students", students,
		"speech_rooms", len(page.Events[0].Rooms),
		"interview_rooms", len(page.Events[1].Rooms),
		"objective_rooms", len(page.Events[2].Rooms))
	s.renderPage(w, r, "print", page)
}

func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	event, err := roster.ParseEvent(chi.URLParam(r, "event"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	judges := s.cfg.Render.Judges
	if event != roster.EventObjective {
		judges, err = errors.ParseJudges(r.URL.Query().Get("num_judges"), judges)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, uploadError(err))
		return
	}
	ros, err := roster.Decode(r.PostForm.Get("data"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.cfg.Render
	opts.Event = event
	opts.Room = r.PostForm.Get("room")
	opts.Judges = judges
	opts.Format = formatParam(r)
	opts.Logger = logger(r, s.logger)

	res, err := s.runner.Render(r.Context(), ros, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeDocument(w, res)
}

func (s *Server) handleTestPage(w http.ResponseWriter, r *http.Request) {
	opts := s.cfg.Render
	opts.Format = formatParam(r)
	opts.Logger = logger(r, s.logger)

	res, err := s.runner.TestPage(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeDocument(w, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

// formatParam returns the ?format= query value, defaulting to PDF.
func formatParam(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	return pipeline.FormatPDF
}

// writeDocument sends a rendered document as a download.
func writeDocument(w http.ResponseWriter, res *pipeline.Result) {
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment;filename=%s", res.Filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// renderPage executes a template into a buffer first, so a template error
// still yields a clean error response.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render %s page", name))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type errorResponse struct {
	Type    string      `json:"type"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// writeError answers err as JSON. Server-side failures are logged in full
// and reported with a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}

	resp := errorResponse{
		Type:    "client_error",
		Code:    errors.GetCode(err),
		Message: errors.UserMessage(err),
	}
	if resp.Code == "" {
		resp.Code = errors.ErrCodeInternal
	}
	l := logger(r, s.logger)
	if status >= http.StatusInternalServerError {
		resp.Type = "server_error"
		resp.Message = "internal error"
		l.Error("request failed", "code", resp.Code, "err", err)
	} else {
		l.Warn("request rejected", "status", status, "code", resp.Code, "err", errors.UserMessage(err))
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func uploadError(err error) error {
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
}
