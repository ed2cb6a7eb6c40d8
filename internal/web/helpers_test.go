package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datasweeper/internal/config"
	"github.com/JonMunkholm/datasweeper/internal/core"
	"github.com/JonMunkholm/datasweeper/internal/metrics"
)

const scenarioCSV = "a,b\n1,\n2,4\n1,\n"

type testFile struct {
	name string
	data string
}

type testEnv struct {
	server  *Server
	service *core.Service
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg, err := config.LoadFrom(map[string]string{"RATE_LIMIT_ENABLED": "false"})
	require.NoError(t, err)
	for _, m := range mutate {
		m(cfg)
	}

	svc := core.NewService(core.Config{
		SessionTTL:  cfg.Upload.SessionTTL,
		PreviewRows: cfg.Upload.PreviewRows,
		MaxFiles:    cfg.Upload.MaxFiles,
	})
	srv := NewServer(cfg, svc, metrics.New())
	t.Cleanup(func() { _ = srv.Shutdown(t.Context()) })
	return &testEnv{server: srv, service: svc}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) postJSON(path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

// upload stores files through the service directly and returns their ids in
// order. Failed files get an empty id.
func (e *testEnv) upload(t *testing.T, files ...testFile) []string {
	t.Helper()
	in := make([]core.UploadFile, len(files))
	for i, f := range files {
		in[i] = core.UploadFile{Name: f.name, Data: []byte(f.data)}
	}
	var ids []string
	for _, s := range e.service.Upload(t.Context(), in) {
		ids = append(ids, s.ID)
	}
	return ids
}

func multipartRequest(t *testing.T, path, field string, files ...testFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		fw, err := mw.CreateFormFile(field, f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.data))
		require.NoError(t, err)
	}
	if len(files) == 0 {
		require.NoError(t, mw.WriteField("note", "empty"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(strings.NewReader(rec.Body.String())).Decode(&v), rec.Body.String())
	return v
}
