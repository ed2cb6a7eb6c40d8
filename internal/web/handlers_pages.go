package web

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/datasweeper/internal/core"
	"github.com/JonMunkholm/datasweeper/internal/logging"
	"github.com/JonMunkholm/datasweeper/internal/web/templates"
)

const dashboardHistory = 10

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	history, err := s.service.History(ctx, dashboardHistory)
	if err != nil {
		// The page is still useful without history.
		logging.FromContext(ctx).Warn("load history", "error", err)
	}

	s.renderPage(w, r, templates.Dashboard(templates.DashboardParams{
		Files:     s.service.Files(),
		History:   history,
		MaxFiles:  s.cfg.Upload.MaxFiles,
		MaxSizeMB: s.cfg.Upload.MaxFileSize >> 20,
	}))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	files, err := s.readUploads(w, r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	summaries := s.service.Upload(withRequestMetadata(r.Context(), r), files)

	if isHTMX(r) {
		s.renderPage(w, r, templates.UploadResults(summaries))
		return
	}
	s.renderPage(w, r, templates.UploadResultsPage(summaries))
}

func (s *Server) handleFilePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	file, err := s.service.File(id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	form := parseForm(r, file.Format)
	params := templates.FilePageParams{File: file, Form: form}

	preview, err := s.service.Preview(r.Context(), id, formOptions(form))
	switch {
	case errors.Is(err, core.ErrFileNotFound):
		respondError(w, r, err, http.StatusNotFound)
		return
	case err != nil:
		// Option errors are shown next to the controls that caused them.
		logging.FromContext(r.Context()).Warn("preview failed", "file_id", id, "error", err)
		msg := core.MapError(err)
		params.Error = &msg
	default:
		params.Preview = preview
	}

	s.renderPage(w, r, templates.FilePage(params))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	file, err := s.service.File(id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	res, err := s.service.Convert(withRequestMetadata(r.Context(), r), id, formOptions(parseForm(r, file.Format)))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeDownload(w, res)
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Discard(chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"files":   len(s.service.Files()),
		"limiter": s.service.Limiter().Status(),
	})
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "path", r.URL.Path, "error", err)
	}
}

// writeDownload sends the converted file as an attachment.
func writeDownload(w http.ResponseWriter, res *core.ConvertResult) {
	h := w.Header()
	h.Set("Content-Type", res.MIMEType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	h.Set("Content-Length", strconv.Itoa(len(res.Data)))
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}
