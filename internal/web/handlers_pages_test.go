package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datasweeper/internal/core"
	"github.com/JonMunkholm/datasweeper/internal/table"
)

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.upload(t, testFile{"data.csv", scenarioCSV})

	rec := env.get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Upload files")
	assert.Contains(t, rec.Body.String(), "data.csv")
	assert.Contains(t, rec.Body.String(), "Nothing converted yet")
}

func TestUploadPage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(multipartRequest(t, "/upload", "files",
		testFile{"report.txt", "hello"},
		testFile{"data.csv", scenarioCSV},
	))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "report.txt")
	assert.Contains(t, body, "FILE006")
	assert.Contains(t, body, "data.csv")
	assert.Contains(t, body, "<!doctype html>")
	assert.Len(t, env.service.Files(), 1)
}

func TestUploadPage_HTMXPartial(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, "/upload", "files", testFile{"data.csv", scenarioCSV})
	req.Header.Set("HX-Request", "true")
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<!doctype html>")
	assert.Contains(t, rec.Body.String(), `<ul class="results">`)
}

func TestFilePage(t *testing.T) {
	env := newTestEnv(t)
	id := env.upload(t, testFile{"data.csv", scenarioCSV})[0]

	rec := env.get("/files/" + id + "?clean=on&dedupe=on&fill=on&to=csv&chart=on")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "1 duplicates removed")
	assert.Contains(t, body, "b filled with 4")
	assert.Contains(t, body, "Download data.csv")
}

func TestFilePage_DefaultTargetIsOtherFormat(t *testing.T) {
	env := newTestEnv(t)
	id := env.upload(t, testFile{"data.csv", scenarioCSV})[0]

	rec := env.get("/files/" + id)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Download data.xlsx")
	assert.NotContains(t, rec.Body.String(), "<svg")
}

func TestFilePage_CleanToggleGatesOperations(t *testing.T) {
	env := newTestEnv(t)
	id := env.upload(t, testFile{"data.csv", scenarioCSV})[0]

	rec := env.get("/files/" + id + "?dedupe=on&fill=on&to=csv")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "duplicates removed")
}

func TestFilePage_UnknownColumnShowsAlert(t *testing.T) {
	env := newTestEnv(t)
	id := env.upload(t, testFile{"data.csv", scenarioCSV})[0]

	rec := env.get("/files/" + id + "?columns=zzz")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "VAL007")
	assert.NotContains(t, rec.Body.String(), "Download")
}

func TestFilePage_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/files/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "UPL003")
}

func TestDownload(t *testing.T) {
	env := newTestEnv(t)
	id := env.upload(t, testFile{"data.csv", scenarioCSV})[0]

	rec := env.get("/files/" + id + "/download?clean=on&dedupe=on&fill=on&to=csv")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a,b\n1,4\n2,4\n", rec.Body.String())
	assert.Equal(t, `attachment; filename=data.csv`, rec.Header().Get("Content-Disposition"))
}

func TestDownload_ColumnSelectedTwice(t *testing.T) {
	env := newTestEnv(t)
	id := env.upload(t, testFile{"data.csv", scenarioCSV})[0]

	rec := env.get("/files/" + id + "/download?columns=a&columns=a")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VAL009")
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}

func TestDownload_ExcelToCSVByDefault(t *testing.T) {
	env := newTestEnv(t)
	src, err := table.Parse([]byte("x,y\n1,a\n2,b\n"), table.CSV)
	require.NoError(t, err)
	out, err := table.Serialize(src, table.Excel)
	require.NoError(t, err)
	id := env.upload(t, testFile{"Book.XLSX", string(out.Data)})[0]
	require.NotEmpty(t, id)

	rec := env.get("/files/" + id + "/download")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "x,y\n1,a\n2,b\n", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Book.csv")
}

func TestDiscardPage(t *testing.T) {
	env := newTestEnv(t)
	id := env.upload(t, testFile{"data.csv", scenarioCSV})[0]

	rec := env.do(httptest.NewRequest(http.MethodPost, "/files/"+id+"/discard", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Empty(t, env.service.Files())
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	health := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, "ok", health["status"])

	rec = env.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "datasweeper_http_requests_total")
}

func TestStaticAndSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/static/app.css")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".container")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrFileNotFound, http.StatusNotFound},
		{fmt.Errorf("preview: %w", core.ErrTooManyConversions), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{&table.UnknownColumnError{Column: "x"}, http.StatusBadRequest},
		{fmt.Errorf("convert: %w", &table.DuplicateColumnError{Column: "a", Selection: true}), http.StatusBadRequest},
		{&table.UnsupportedFormatError{Extension: ".txt"}, http.StatusBadRequest},
		{errInvalidOptions, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
