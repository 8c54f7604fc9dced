package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/scene"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
)

// light is the fixed direction used to shade Phong nodes.
var light = mgl32.Vec3{-0.4, 1, 0.3}.Normalize()

// HUD is the text drawn over the scene each frame.
type HUD func() []string

// Renderer draws the scene with raylib immediate-mode calls. It needs an
// open window; see Open.
type Renderer struct {
	hud    HUD
	width  int
	height int
}

func NewRenderer() *Renderer { return &Renderer{} }

// SetHUD installs the overlay text source.
func (r *Renderer) SetHUD(h HUD) { r.hud = h }

// Resize records the surface size; raylib resizes the framebuffer itself.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
}

func (r *Renderer) Render(sc *scene.Scene, cam *scene.Camera) error {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginMode3D(toCamera(cam))
	for _, n := range sc.Nodes() {
		drawNode(n)
	}
	rl.EndMode3D()

	if r.hud != nil {
		for i, line := range r.hud() {
			rl.DrawText(line, 12, int32(12+i*18), 16, ColText)
		}
	}
	rl.DrawText(fmt.Sprintf("%d fps", rl.GetFPS()), int32(max(r.width-80, 12)), 12, 16, ColTextDim)
	rl.EndDrawing()
	return nil
}

func toCamera(c *scene.Camera) rl.Camera3D {
	return rl.NewCamera3D(vec(c.Position), vec(c.Target), vec(c.Up), c.Fov, rl.CameraPerspective)
}

func vec(v mgl32.Vec3) rl.Vector3 { return rl.NewVector3(v.X(), v.Y(), v.Z()) }

func drawNode(n *scene.Node) {
	g := n.Geometry
	if g == nil {
		return
	}
	for i := 0; i < g.TriangleCount(); i++ {
		a, b, c := g.Triangle(i)
		a, b, c = n.LocalToWorld(a), n.LocalToWorld(b), n.LocalToWorld(c)
		normal := b.Sub(a).Cross(c.Sub(a))
		if normal.Len() == 0 {
			continue
		}
		normal = normal.Normalize()
		rl.DrawTriangle3D(vec(a), vec(b), vec(c), shade(n.Material, normal))
	}
}

// shade colours a face by its world normal, or by a lambert term against
// the fixed light for Phong nodes.
func shade(m scene.Material, normal mgl32.Vec3) rl.Color {
	if m.Kind == scene.PhongMaterial {
		k := 0.25 + 0.75*max(normal.Dot(light), 0)
		return rl.NewColor(
			uint8(float32(m.Color>>16&0xff)*k),
			uint8(float32(m.Color>>8&0xff)*k),
			uint8(float32(m.Color&0xff)*k),
			255,
		)
	}
	return rl.NewColor(
		uint8((normal.X()*0.5+0.5)*255),
		uint8((normal.Y()*0.5+0.5)*255),
		uint8((normal.Z()*0.5+0.5)*255),
		255,
	)
}
