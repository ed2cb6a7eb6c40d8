package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/datasweeper/internal/core"
)

// uploadResponse is the body of POST /api/files. Failed files carry their
// error fields and no id.
type uploadResponse struct {
	Files []core.FileSummary `json:"files"`
}

type historyResponse struct {
	Records []core.HistoryRecord `json:"records"`
}

func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	files, err := s.readUploads(w, r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	summaries := s.service.Upload(withRequestMetadata(r.Context(), r), files)
	writeJSON(w, r, http.StatusOK, uploadResponse{Files: summaries})
}

func (s *Server) handleAPIListFiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, uploadResponse{Files: s.service.Files()})
}

func (s *Server) handleAPIFile(w http.ResponseWriter, r *http.Request) {
	file, err := s.service.File(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, file)
}

func (s *Server) handleAPIPreview(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.decodeOptions(w, r)
	if !ok {
		return
	}
	res, err := s.service.Preview(r.Context(), chi.URLParam(r, "id"), opts)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleAPIConvert(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.decodeOptions(w, r)
	if !ok {
		return
	}
	res, err := s.service.Convert(withRequestMetadata(r.Context(), r), chi.URLParam(r, "id"), opts)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeDownload(w, res)
}

func (s *Server) handleAPIDiscard(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Discard(chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	limit := core.DefaultHistorySize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, r, fmt.Errorf("%w: limit must be a positive integer", errInvalidOptions), http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := s.service.History(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []core.HistoryRecord{}
	}
	writeJSON(w, r, http.StatusOK, historyResponse{Records: records})
}

// decodeOptions binds and validates the JSON body. It writes the error
// response itself and reports whether the handler should continue.
func (s *Server) decodeOptions(w http.ResponseWriter, r *http.Request) (core.Options, bool) {
	var req optionsRequest
	if err := render.Bind(r, &req); err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", errInvalidOptions, err), http.StatusBadRequest)
		return core.Options{}, false
	}
	opts, err := s.options(&req)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return core.Options{}, false
	}
	return opts, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}
