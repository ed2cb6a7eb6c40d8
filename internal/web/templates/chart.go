package templates

import (
	"context"
	"io"
	"math"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datasweeper/internal/table"
)

const (
	chartWidth  = 640.0
	chartHeight = 240.0
	chartPad    = 24.0
)

var seriesColors = []string{"#3b82f6", "#f59e0b"}

// BarChart renders grouped bars as inline SVG. Bars grow from the zero line
// so negative values point down.
func BarChart(ch *table.Chart) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		if ch == nil || len(ch.Labels) == 0 {
			p.raw(`<p class="empty">No numeric data to chart.</p>`)
			return p.err
		}

		span := ch.Max - ch.Min
		if span == 0 {
			span = 1
		}
		plotH := chartHeight - 2*chartPad
		zeroY := chartPad + plotH*ch.Max/span
		group := (chartWidth - 2*chartPad) / float64(len(ch.Labels))
		bar := group * 0.8 / float64(len(ch.Series))

		p.rawf(`<svg class="chart" viewBox="0 0 %.0f %.0f" role="img" aria-label="Bar chart">`, chartWidth, chartHeight)
		p.rawf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#9ca3af"/>`,
			chartPad, zeroY, chartWidth-chartPad, zeroY)

		for si, s := range ch.Series {
			color := seriesColors[si%len(seriesColors)]
			for i, v := range s.Values {
				if s.Missing[i] {
					continue
				}
				h := math.Abs(v) / span * plotH
				y := zeroY
				if v > 0 {
					y = zeroY - h
				}
				x := chartPad + float64(i)*group + group*0.1 + float64(si)*bar
				p.rawf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s[%s] = %s</title></rect>`,
					x, y, bar, h, color, esc(s.Name), esc(ch.Labels[i]), table.FormatNumber(v))
			}
		}
		p.raw(`</svg><ul class="legend">`)
		for si, s := range ch.Series {
			p.rawf(`<li><span class="swatch" style="background:%s"></span>%s</li>`,
				seriesColors[si%len(seriesColors)], esc(s.Name))
		}
		p.raw(`</ul>`)
		return p.err
	})
}
