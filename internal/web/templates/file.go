package templates

import (
	"context"
	"io"
	"net/url"
	"slices"
	"sort"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datasweeper/internal/core"
	"github.com/JonMunkholm/datasweeper/internal/table"
)

// FileForm is the state of the controls on the file page.
type FileForm struct {
	Clean   bool
	Dedupe  bool
	Fill    bool
	Columns []string
	Target  table.Format
	Chart   bool
}

// Values encodes the form as query parameters.
func (f FileForm) Values() url.Values {
	v := url.Values{}
	if f.Clean {
		v.Set("clean", "on")
	}
	if f.Dedupe {
		v.Set("dedupe", "on")
	}
	if f.Fill {
		v.Set("fill", "on")
	}
	for _, c := range f.Columns {
		v.Add("columns", c)
	}
	v.Set("to", f.Target.String())
	if f.Chart {
		v.Set("chart", "on")
	}
	return v
}

// FilePageParams holds the file page view data. Preview is nil when Error is set.
type FilePageParams struct {
	File    core.FileSummary
	Form    FileForm
	Preview *core.PreviewResult
	Error   *core.UserMessage
}

// FilePage renders the preview, the cleaning and conversion controls, the
// optional chart and the download link for one uploaded file.
func FilePage(params FilePageParams) templ.Component {
	return Layout(params.File.Name, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		f := params.File

		p.rawf(`<h1>%s</h1>`, esc(f.Name))
		p.rawf(`<p class="meta">%s · %d rows · %s KB</p>`, esc(f.Format), f.Rows, formatKB(f.SizeKB))
		if f.Notice != "" {
			p.rawf(`<div class="alert alert-notice">%s</div>`, esc(f.Notice))
		}

		p.raw(`<section class="card"><h2>Preview</h2>`)
		p.render(previewTable(columnHeaders(f.Columns), f.Head))
		p.raw(`</section>`)

		p.render(optionsForm(f, params.Form))

		if params.Error != nil {
			p.render(ErrorAlert(params.Error.Message, params.Error.Action, params.Error.Code))
		}
		if res := params.Preview; res != nil {
			p.render(previewSection(res))
			if res.Chart != nil {
				p.raw(`<section class="card"><h2>Chart</h2>`)
				p.render(BarChart(res.Chart))
				p.raw(`</section>`)
			}
			p.raw(`<section class="card"><h2>Download</h2>`)
			p.rawf(`<a class="button" href="/files/%s/download?%s">Download %s</a>`,
				esc(f.ID), esc(params.Form.Values().Encode()), esc(res.OutputName))
			p.raw(`</section>`)
		}

		p.rawf(`<form action="/files/%s/discard" method="post" class="discard"><button type="submit" class="secondary">Remove file</button></form>`, esc(f.ID))
		return p.err
	}))
}

func optionsForm(f core.FileSummary, form FileForm) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.rawf(`<section class="card"><h2>Options</h2><form action="/files/%s" method="get" class="options">`, esc(f.ID))

		p.raw(`<fieldset><legend>Cleaning</legend>`)
		p.render(checkbox("clean", "Clean data", form.Clean))
		p.render(checkbox("dedupe", "Remove duplicates", form.Dedupe))
		p.render(checkbox("fill", "Fill missing values", form.Fill))
		p.raw(`</fieldset>`)

		p.raw(`<fieldset><legend>Columns</legend><select name="columns" multiple>`)
		for _, c := range f.Columns {
			selected := ""
			if len(form.Columns) == 0 || slices.Contains(form.Columns, c.Name) {
				selected = " selected"
			}
			p.rawf(`<option value="%s"%s>%s (%s)</option>`, esc(c.Name), selected, esc(c.Name), esc(c.Kind))
		}
		p.raw(`</select></fieldset>`)

		p.raw(`<fieldset><legend>Convert to</legend>`)
		for _, target := range []table.Format{table.CSV, table.Excel} {
			checked := ""
			if form.Target == target {
				checked = " checked"
			}
			p.rawf(`<label><input type="radio" name="to" value="%s"%s> %s</label>`,
				target.String(), checked, target.Extension())
		}
		p.raw(`</fieldset>`)

		p.render(checkbox("chart", "Show chart", form.Chart))
		p.raw(`<button type="submit">Apply</button></form></section>`)
		return p.err
	})
}

func checkbox(name, label string, checked bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		attr := ""
		if checked {
			attr = " checked"
		}
		_, err := io.WriteString(w, `<label><input type="checkbox" name="`+name+`"`+attr+`> `+esc(label)+`</label>`)
		return err
	})
}

func previewSection(res *core.PreviewResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.raw(`<section class="card"><h2>Result</h2>`)
		p.rawf(`<p class="meta">%d rows in · %d rows out`, res.RowsIn, res.RowsOut)
		if res.DuplicatesRemoved > 0 {
			p.rawf(` · %d duplicates removed`, res.DuplicatesRemoved)
		}
		if res.CellsFilled > 0 {
			p.rawf(` · %d cells filled`, res.CellsFilled)
		}
		p.raw(`</p>`)

		for _, n := range res.Notices {
			p.rawf(`<div class="alert alert-notice">%s</div>`, esc(n))
		}
		if len(res.Means) > 0 {
			names := make([]string, 0, len(res.Means))
			for name := range res.Means {
				names = append(names, name)
			}
			sort.Strings(names)
			p.raw(`<ul class="means">`)
			for _, name := range names {
				p.rawf(`<li>%s filled with %s</li>`, esc(name), table.FormatNumber(res.Means[name]))
			}
			p.raw(`</ul>`)
		}

		p.render(previewTable(columnHeaders(res.Columns), res.Head))
		p.raw(`</section>`)
		return p.err
	})
}

func previewTable(headers []string, rows [][]string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.raw(`<div class="scroll"><table class="grid"><thead><tr>`)
		for _, h := range headers {
			p.rawf(`<th>%s</th>`, esc(h))
		}
		p.raw(`</tr></thead><tbody>`)
		for _, row := range rows {
			p.raw(`<tr>`)
			for _, cell := range row {
				if cell == "" {
					p.raw(`<td class="missing">NaN</td>`)
					continue
				}
				p.rawf(`<td>%s</td>`, esc(cell))
			}
			p.raw(`</tr>`)
		}
		p.raw(`</tbody></table></div>`)
		return p.err
	})
}

func columnHeaders(cols []core.ColumnInfo) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}
