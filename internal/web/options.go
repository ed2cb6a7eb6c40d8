package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/datasweeper/internal/core"
	"github.com/JonMunkholm/datasweeper/internal/table"
	"github.com/JonMunkholm/datasweeper/internal/web/templates"
)

var errInvalidOptions = errors.New("invalid options")

// optionsRequest is the JSON body of the preview and convert endpoints.
type optionsRequest struct {
	Target             string   `json:"target" validate:"required,oneof=csv excel xlsx"`
	RemoveDuplicates   bool     `json:"removeDuplicates"`
	FillMissingNumeric bool     `json:"fillMissingNumeric"`
	Columns            []string `json:"columns" validate:"omitempty,unique,dive,required"`
	Chart              bool     `json:"chart"`
}

// Bind implements render.Binder.
func (o *optionsRequest) Bind(*http.Request) error {
	return nil
}

func (s *Server) options(req *optionsRequest) (core.Options, error) {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return core.Options{}, fmt.Errorf("%w: %s failed %q", errInvalidOptions, fe.Field(), fe.Tag())
		}
		return core.Options{}, fmt.Errorf("%w: %v", errInvalidOptions, err)
	}
	target, err := table.ParseFormat(req.Target)
	if err != nil {
		return core.Options{}, fmt.Errorf("%w: %v", errInvalidOptions, err)
	}
	return core.Options{
		Clean: table.CleanOptions{
			RemoveDuplicates:   req.RemoveDuplicates,
			FillMissingNumeric: req.FillMissingNumeric,
		},
		Columns: req.Columns,
		Target:  target,
		Chart:   req.Chart,
	}, nil
}

// parseForm reads the file page controls from the query string. The
// cleaning operations only apply while "clean" is ticked, and an unknown
// target falls back to the format the file is not already in.
func parseForm(r *http.Request, source string) templates.FileForm {
	q := r.URL.Query()
	form := templates.FileForm{
		Clean:   q.Get("clean") == "on",
		Dedupe:  q.Get("dedupe") == "on",
		Fill:    q.Get("fill") == "on",
		Columns: q["columns"],
		Chart:   q.Get("chart") == "on",
	}
	target, err := table.ParseFormat(q.Get("to"))
	if err != nil {
		target = table.Excel
		if source == table.Excel.String() {
			target = table.CSV
		}
	}
	form.Target = target
	return form
}

func formOptions(form templates.FileForm) core.Options {
	return core.Options{
		Clean: table.CleanOptions{
			RemoveDuplicates:   form.Clean && form.Dedupe,
			FillMissingNumeric: form.Clean && form.Fill,
		},
		Columns: form.Columns,
		Target:  form.Target,
		Chart:   form.Chart,
	}
}

// readUploads parses the multipart body and reads every "files" part.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request) ([]core.UploadFile, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		return nil, core.ErrNoFile
	}

	files := make([]core.UploadFile, 0, len(headers))
	for _, h := range headers {
		data, err := readPart(h)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", h.Filename, err)
		}
		files = append(files, core.UploadFile{Name: h.Filename, Data: data})
	}
	return files, nil
}

func readPart(h *multipart.FileHeader) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
