package export

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/analysis"
	"github.com/san-kum/rigidsync/internal/storage"
	"github.com/san-kum/rigidsync/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)

	svg := CanvasToSVG(c, 4)
	if !strings.Contains(svg, `width="16" height="16"`) {
		t.Errorf("unexpected size in %s", svg)
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if CanvasToSVG(nil, 1) != "" {
		t.Error("nil canvas should give empty output")
	}
}

func TestTraceToSVG(t *testing.T) {
	tr := &storage.Trace{}
	for i := 0; i < 3; i++ {
		for _, b := range []string{"cube", "a<b"} {
			tr.Samples = append(tr.Samples, storage.Sample{
				Frame:    i,
				Time:     float64(i) / 60,
				Body:     b,
				Position: mgl32.Vec3{0, 5 - float32(i), 0},
			})
		}
	}

	svg := TraceToSVG(tr, 200, 100)
	if n := strings.Count(svg, "<path"); n != 2 {
		t.Errorf("expected 2 paths, got %d", n)
	}
	if !strings.Contains(svg, ">cube</text>") || !strings.Contains(svg, "a&lt;b") {
		t.Error("legend missing or unescaped")
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("svg not closed")
	}
}

func TestPlotSVGSkipsShortSeries(t *testing.T) {
	if PlotSVG([]Series{{Name: "one", Points: []analysis.Point{{X: 1, Y: 1}}}}, 10, 10) != "" {
		t.Error("a single point should not be plotted")
	}

	svg := PlotSVG([]Series{{Name: "flat", Points: []analysis.Point{{X: 0, Y: -1}, {X: 1, Y: 1}}}}, 10, 10)
	if !strings.Contains(svg, "<line") {
		t.Error("expected zero line when the range spans zero")
	}
}
