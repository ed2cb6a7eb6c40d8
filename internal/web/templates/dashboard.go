package templates

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datasweeper/internal/core"
)

// DashboardParams holds the dashboard view data.
type DashboardParams struct {
	Files     []core.FileSummary
	History   []core.HistoryRecord
	MaxFiles  int
	MaxSizeMB int64
}

// Dashboard renders the upload form, the files of the current session and
// recent conversions.
func Dashboard(params DashboardParams) templ.Component {
	return Layout("Uploads", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.raw(`<section class="card"><h1>Upload files</h1>`)
		p.raw(`<form action="/upload" method="post" enctype="multipart/form-data" class="upload-form">`)
		p.raw(`<input type="file" name="files" accept=".csv,.xlsx" multiple required>`)
		p.raw(`<button type="submit">Upload</button></form>`)
		p.rawf(`<p class="hint">CSV or Excel (.xlsx). Up to %d files, %d MB per upload.</p></section>`,
			params.MaxFiles, params.MaxSizeMB)

		p.raw(`<section class="card"><h2>Uploaded files</h2>`)
		if len(params.Files) == 0 {
			p.raw(`<p class="empty">No files uploaded yet.</p>`)
		} else {
			p.render(fileTable(params.Files))
		}
		p.raw(`</section>`)

		p.raw(`<section class="card"><h2>Recent conversions</h2>`)
		if len(params.History) == 0 {
			p.raw(`<p class="empty">Nothing converted yet.</p>`)
		} else {
			p.render(historyTable(params.History))
		}
		p.raw(`</section>`)
		return p.err
	}))
}

// UploadResults renders one line per uploaded file, failed files included.
func UploadResults(files []core.FileSummary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.raw(`<ul class="results">`)
		for _, f := range files {
			if f.Failed() {
				p.rawf(`<li class="result result-error"><span class="name">%s</span>`, esc(f.Name))
				p.render(ErrorAlert(f.Error, f.Action, f.ErrorCode))
				p.raw(`</li>`)
				continue
			}
			p.rawf(`<li class="result"><a href="/files/%s">%s</a> `, esc(f.ID), esc(f.Name))
			p.rawf(`<span class="meta">%s · %d rows · %d columns · %s KB</span>`,
				esc(f.Format), f.Rows, len(f.Columns), formatKB(f.SizeKB))
			if f.Notice != "" {
				p.rawf(`<div class="alert alert-notice">%s</div>`, esc(f.Notice))
			}
			p.raw(`</li>`)
		}
		p.raw(`</ul>`)
		return p.err
	})
}

// UploadResultsPage renders UploadResults as a full page.
func UploadResultsPage(files []core.FileSummary) templ.Component {
	return Layout("Upload results", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.raw(`<section class="card"><h1>Upload results</h1>`)
		p.render(UploadResults(files))
		p.raw(`<p><a href="/">Back to uploads</a></p></section>`)
		return p.err
	}))
}

func fileTable(files []core.FileSummary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.raw(`<table class="grid"><thead><tr><th>File</th><th>Format</th><th>Rows</th><th>Columns</th><th>Size</th><th>Expires</th></tr></thead><tbody>`)
		for _, f := range files {
			p.rawf(`<tr><td><a href="/files/%s">%s</a></td>`, esc(f.ID), esc(f.Name))
			p.rawf(`<td>%s</td><td>%d</td><td>%s</td><td>%s KB</td><td>%s</td></tr>`,
				esc(f.Format), f.Rows, esc(strings.Join(f.ColumnNames(), ", ")),
				formatKB(f.SizeKB), f.ExpiresAt.Format(time.Kitchen))
		}
		p.raw(`</tbody></table>`)
		return p.err
	})
}

func historyTable(records []core.HistoryRecord) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.raw(`<table class="grid"><thead><tr><th>When</th><th>File</th><th>Output</th><th>Rows</th><th>Duplicates removed</th><th>Cells filled</th></tr></thead><tbody>`)
		for _, rec := range records {
			p.rawf(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%d → %d</td><td>%d</td><td>%d</td></tr>`,
				rec.CreatedAt.Format(time.DateTime), esc(rec.FileName), esc(rec.OutputName),
				rec.RowsIn, rec.RowsOut, rec.DuplicatesRemoved, rec.CellsFilled)
		}
		p.raw(`</tbody></table>`)
		return p.err
	})
}

func formatKB(kb float64) string {
	return strconv.FormatFloat(kb, 'f', 2, 64)
}
