// Package templates renders the HTML pages as templ components. The page
// shell and error views are .templ sources; run templ generate after editing
// them. Table-heavy views build markup through page.
package templates

//go:generate templ generate

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// page accumulates the first write error so components can emit markup
// without checking every call.
type page struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newPage(ctx context.Context, w io.Writer) *page {
	return &page{ctx: ctx, w: w}
}

// raw writes trusted markup.
func (p *page) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

// rawf formats trusted markup. Untrusted arguments must go through esc.
func (p *page) rawf(format string, args ...any) {
	p.raw(fmt.Sprintf(format, args...))
}

// text writes escaped text.
func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

// render writes a child component.
func (p *page) render(c templ.Component) {
	if p.err == nil && c != nil {
		p.err = c.Render(p.ctx, p.w)
	}
}

func esc(s string) string {
	return templ.EscapeString(s)
}
