// Package export renders recorded runs and terminal frames as SVG.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/rigidsync/internal/analysis"
	"github.com/san-kum/rigidsync/internal/storage"
	"github.com/san-kum/rigidsync/internal/viz"
)

// Palette colours successive series.
var Palette = []string{"#00ffff", "#ff00ff", "#ffcc00", "#00ff88", "#ff6b6b", "#0088ff"}

const header = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// CanvasToSVG draws each lit braille dot as a circle, scale pixels apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	dw, dh := canvas.Dots()
	width, height := int(float64(dw)*scale), int(float64(dh)*scale)

	var sb strings.Builder
	fmt.Fprintf(&sb, header, width, height, width, height)
	sb.WriteString("<g fill=\"#00ff00\">\n")
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if canvas.Lit(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, scale*0.4)
			}
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// Series is one named polyline in data coordinates.
type Series struct {
	Name   string
	Points []analysis.Point
}

// HeightSeries returns one height-over-time series per traced body.
func HeightSeries(tr *storage.Trace) []Series {
	var out []Series
	for _, body := range tr.Bodies() {
		ts, ys := tr.Heights(body)
		s := Series{Name: body, Points: make([]analysis.Point, len(ts))}
		for i := range ts {
			s.Points[i] = analysis.Point{X: ts[i], Y: ys[i]}
		}
		out = append(out, s)
	}
	return out
}

// PlotSVG draws every series with at least two points on shared axes with a
// 10% margin, plus a legend in the top-left corner.
func PlotSVG(series []Series, width, height int) string {
	var all []analysis.Point
	for _, s := range series {
		if len(s.Points) >= 2 {
			all = append(all, s.Points...)
		}
	}
	if len(all) == 0 {
		return ""
	}

	lo, hi := all[0], all[0]
	for _, p := range all {
		lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
		hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
	}
	spanX, spanY := hi.X-lo.X, hi.Y-lo.Y
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	lo.X, hi.X = lo.X-spanX*0.1, hi.X+spanX*0.1
	lo.Y, hi.Y = lo.Y-spanY*0.1, hi.Y+spanY*0.1
	spanX, spanY = hi.X-lo.X, hi.Y-lo.Y

	px := func(x float64) float64 { return (x - lo.X) / spanX * float64(width) }
	py := func(y float64) float64 { return float64(height) - (y-lo.Y)/spanY*float64(height) }

	var sb strings.Builder
	fmt.Fprintf(&sb, header, width, height, width, height)
	if lo.Y < 0 && hi.Y > 0 {
		fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\" stroke=\"#333344\"/>\n", py(0), width, py(0))
	}

	drawn := 0
	for _, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		color := Palette[drawn%len(Palette)]
		fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"", color)
		for i, p := range s.Points {
			cmd := " L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&sb, "%s%.1f,%.1f", cmd, px(p.X), py(p.Y))
		}
		sb.WriteString("\"/>\n")
		fmt.Fprintf(&sb, "<text x=\"8\" y=\"%d\" fill=\"%s\" font-family=\"monospace\" font-size=\"12\">%s</text>\n",
			16+drawn*14, color, escape(s.Name))
		drawn++
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TraceToSVG plots the height of every body in the trace over time.
func TraceToSVG(tr *storage.Trace, width, height int) string {
	return PlotSVG(HeightSeries(tr), width, height)
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
