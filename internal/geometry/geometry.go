package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type Kind uint8

const (
	Custom Kind = iota
	Box
	Sphere
	Cylinder
	Icosahedron
	TorusKnot
)

func (k Kind) String() string {
	switch k {
	case Box:
		return "box"
	case Sphere:
		return "sphere"
	case Cylinder:
		return "cylinder"
	case Icosahedron:
		return "icosahedron"
	case TorusKnot:
		return "torus_knot"
	default:
		return "custom"
	}
}

// Geometry is a flat vertex buffer (float triples) with an optional index
// buffer (uint32 triples). A nil Indices slice means every three consecutive
// vertices form a triangle.
type Geometry struct {
	Kind      Kind
	Positions []float32
	Indices   []uint32

	// Authored dimensions, zero when not applicable.
	Width, Height, Depth float32
	Radius               float32
	Tube                 float32

	boundsValid  bool
	sphereCenter mgl32.Vec3
	sphereRadius float32
	boxMin       mgl32.Vec3
	boxMax       mgl32.Vec3
}

// New wraps caller-built buffers. The buffers are not copied.
func New(positions []float32, indices []uint32) *Geometry {
	return &Geometry{Kind: Custom, Positions: positions, Indices: indices}
}

func (g *Geometry) VertexCount() int { return len(g.Positions) / 3 }

func (g *Geometry) Vertex(i int) mgl32.Vec3 {
	return mgl32.Vec3{g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2]}
}

func (g *Geometry) Indexed() bool { return g.Indices != nil }

func (g *Geometry) TriangleCount() int {
	if g.Indexed() {
		return len(g.Indices) / 3
	}
	return g.VertexCount() / 3
}

// Triangle returns the corners of triangle i. Out-of-range indices in a
// caller-built buffer panic, same as any slice access.
func (g *Geometry) Triangle(i int) (mgl32.Vec3, mgl32.Vec3, mgl32.Vec3) {
	if g.Indexed() {
		return g.Vertex(int(g.Indices[i*3])), g.Vertex(int(g.Indices[i*3+1])), g.Vertex(int(g.Indices[i*3+2]))
	}
	return g.Vertex(i * 3), g.Vertex(i*3 + 1), g.Vertex(i*3 + 2)
}

// BoundingSphere returns a sphere centered on the bounding box that encloses
// every vertex.
func (g *Geometry) BoundingSphere() (mgl32.Vec3, float32) {
	g.computeBounds()
	return g.sphereCenter, g.sphereRadius
}

func (g *Geometry) BoundingBox() (mgl32.Vec3, mgl32.Vec3) {
	g.computeBounds()
	return g.boxMin, g.boxMax
}

func (g *Geometry) computeBounds() {
	if g.boundsValid {
		return
	}
	n := g.VertexCount()
	if n == 0 {
		g.boundsValid = true
		return
	}
	lo, hi := g.Vertex(0), g.Vertex(0)
	for i := 1; i < n; i++ {
		v := g.Vertex(i)
		for a := 0; a < 3; a++ {
			lo[a] = min(lo[a], v[a])
			hi[a] = max(hi[a], v[a])
		}
	}
	center := lo.Add(hi).Mul(0.5)
	var r2 float32
	for i := 0; i < n; i++ {
		d := g.Vertex(i).Sub(center)
		r2 = max(r2, d.Dot(d))
	}
	g.boxMin, g.boxMax = lo, hi
	g.sphereCenter = center
	g.sphereRadius = float32(math.Sqrt(float64(r2)))
	g.boundsValid = true
}
