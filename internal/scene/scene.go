// Package scene holds the visual side: nodes with geometry and a transform,
// a perspective camera, and ray casting against node triangles.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/geometry"
)

type MaterialKind uint8

const (
	// NormalMaterial shades by surface normal.
	NormalMaterial MaterialKind = iota
	PhongMaterial
)

type Material struct {
	Kind  MaterialKind
	Color uint32
}

type Node struct {
	Name       string
	Geometry   *geometry.Geometry
	Material   Material
	Position   mgl32.Vec3
	Quaternion mgl32.Quat

	Pickable      bool
	CastShadow    bool
	ReceiveShadow bool
}

func NewNode(name string, g *geometry.Geometry, m Material) *Node {
	return &Node{Name: name, Geometry: g, Material: m, Quaternion: mgl32.QuatIdent()}
}

// Matrix returns the local-to-world transform.
func (n *Node) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z()).Mul4(n.Quaternion.Mat4())
}

func (n *Node) LocalToWorld(p mgl32.Vec3) mgl32.Vec3 {
	return n.Quaternion.Rotate(p).Add(n.Position)
}

type Scene struct {
	Background uint32
	nodes      []*Node
}

func New() *Scene {
	return &Scene{Background: 0x000000}
}

func (s *Scene) Add(n *Node) { s.nodes = append(s.nodes, n) }

func (s *Scene) Nodes() []*Node {
	out := make([]*Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Pickable returns the nodes that take part in pointer picking, in insertion
// order.
func (s *Scene) Pickable() []*Node {
	var out []*Node
	for _, n := range s.nodes {
		if n.Pickable {
			out = append(out, n)
		}
	}
	return out
}

func (s *Scene) Len() int { return len(s.nodes) }
