package viz

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/scene"
)

// Edges with an endpoint beyond this device-space extent are skipped rather
// than rasterised across the whole plane.
const maxExtent = 3

// Wireframe draws scene nodes as triangle edges on a braille canvas. It
// satisfies sim.Renderer and sim.Resizer; sizes are in dots.
type Wireframe struct {
	canvas *Canvas
	nodes  int
	edges  int
}

func NewWireframe(cols, rows int) *Wireframe {
	return &Wireframe{canvas: NewCanvas(cols, rows)}
}

// Resize takes the surface size in dots, two per column and four per row.
func (w *Wireframe) Resize(width, height int) {
	w.canvas.Resize(width/2, height/4)
}

func (w *Wireframe) Canvas() *Canvas { return w.canvas }

// Stats reports what the last frame drew.
func (w *Wireframe) Stats() (nodes, edges int) { return w.nodes, w.edges }

func (w *Wireframe) Render(sc *scene.Scene, cam *scene.Camera) error {
	w.canvas.Clear()
	w.nodes, w.edges = 0, 0

	dw, dh := w.canvas.Dots()
	if dw == 0 || dh == 0 {
		return nil
	}
	viewProj := cam.Projection().Mul4(cam.View())

	for _, n := range sc.Nodes() {
		if n.Geometry == nil {
			continue
		}
		mvp := viewProj.Mul4(n.Matrix())
		drawn := 0
		for i := 0; i < n.Geometry.TriangleCount(); i++ {
			a, b, c := n.Geometry.Triangle(i)
			pa, okA := toDots(mvp, a, dw, dh)
			pb, okB := toDots(mvp, b, dw, dh)
			pc, okC := toDots(mvp, c, dw, dh)
			drawn += w.edge(pa, pb, okA && okB)
			drawn += w.edge(pb, pc, okB && okC)
			drawn += w.edge(pc, pa, okC && okA)
		}
		if drawn > 0 {
			w.nodes++
			w.edges += drawn
		}
	}
	return nil
}

func (w *Wireframe) edge(p, q [2]int, ok bool) int {
	if !ok {
		return 0
	}
	w.canvas.DrawLine(p[0], p[1], q[0], q[1])
	return 1
}

// toDots projects a model-space point into dot coordinates, origin top-left.
func toDots(mvp mgl32.Mat4, p mgl32.Vec3, dw, dh int) ([2]int, bool) {
	clip := mvp.Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return [2]int{}, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	if ndc.Z() < -1 || ndc.Z() > 1 || absf(ndc.X()) > maxExtent || absf(ndc.Y()) > maxExtent {
		return [2]int{}, false
	}
	x := (ndc.X() + 1) / 2 * float32(dw)
	y := (1 - ndc.Y()) / 2 * float32(dh)
	return [2]int{int(x), int(y)}, true
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
