// Package shape turns visual geometry into collision-shape descriptors.
//
// Primitive shapes are derived from authored dimensions, never from vertex
// data. Convex hulls take the raw vertex buffer as-is and triangle meshes take
// the vertex and index buffers unchanged.
package shape

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/geometry"
)

type Kind uint8

const (
	Cuboid Kind = iota
	Ball
	Cylinder
	ConvexHull
	Trimesh
)

var kindNames = map[Kind]string{
	Cuboid:     "cuboid",
	Ball:       "ball",
	Cylinder:   "cylinder",
	ConvexHull: "convex_hull",
	Trimesh:    "trimesh",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a config name to a Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown shape kind %q", name)
}

type Material struct {
	Mass        float32 `yaml:"mass"`
	Restitution float32 `yaml:"restitution"`
}

func (m Material) validate(kind Kind) error {
	if !(m.Mass > 0) || math.IsInf(float64(m.Mass), 0) {
		return newError(kind, ErrInvalidMaterial, "mass %g must be positive", m.Mass)
	}
	if !(m.Restitution >= 0) || math.IsInf(float64(m.Restitution), 0) {
		return newError(kind, ErrInvalidMaterial, "restitution %g must be non-negative", m.Restitution)
	}
	return nil
}

// Descriptor is a collision-shape request. Only the fields of its Kind are
// meaningful.
type Descriptor struct {
	Kind Kind

	HalfExtents mgl32.Vec3 // Cuboid
	Radius      float32    // Ball, Cylinder
	HalfHeight  float32    // Cylinder

	// Points holds ConvexHull input; Vertices and Indices hold Trimesh input.
	// Both are flat float triples.
	Points   []float32
	Vertices []float32
	Indices  []uint32

	Material
}

func NewCuboid(halfExtents mgl32.Vec3, mat Material) Descriptor {
	return Descriptor{Kind: Cuboid, HalfExtents: halfExtents, Material: mat}
}

func NewBall(radius float32, mat Material) Descriptor {
	return Descriptor{Kind: Ball, Radius: radius, Material: mat}
}

func NewCylinder(halfHeight, radius float32, mat Material) Descriptor {
	return Descriptor{Kind: Cylinder, HalfHeight: halfHeight, Radius: radius, Material: mat}
}

// NewConvexHull keeps vertices as given; duplicates are allowed.
func NewConvexHull(vertices []float32, mat Material) (Descriptor, error) {
	return checked(Descriptor{Kind: ConvexHull, Points: vertices, Material: mat})
}

func NewTrimesh(vertices []float32, indices []uint32, mat Material) (Descriptor, error) {
	return checked(Descriptor{Kind: Trimesh, Vertices: vertices, Indices: indices, Material: mat})
}

// checked returns d when it is valid and the zero Descriptor otherwise.
func checked(d Descriptor) (Descriptor, error) {
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// FromGeometry builds the descriptor of the requested kind for g. Primitive
// kinds read the authored dimensions recorded on g.
func FromGeometry(kind Kind, g *geometry.Geometry, mat Material) (Descriptor, error) {
	if g == nil {
		return Descriptor{}, newError(kind, ErrDegenerateGeometry, "nil geometry")
	}
	var d Descriptor
	switch kind {
	case Cuboid:
		d = NewCuboid(mgl32.Vec3{g.Width / 2, g.Height / 2, g.Depth / 2}, mat)
	case Ball:
		d = NewBall(g.Radius, mat)
	case Cylinder:
		d = NewCylinder(g.Height/2, g.Radius, mat)
	case ConvexHull:
		return NewConvexHull(g.Positions, mat)
	case Trimesh:
		return NewTrimesh(g.Positions, g.Indices, mat)
	default:
		return Descriptor{}, fmt.Errorf("unknown shape kind %d", kind)
	}
	return checked(d)
}

func (d Descriptor) Validate() error {
	if err := d.Material.validate(d.Kind); err != nil {
		return err
	}

	switch d.Kind {
	case Cuboid:
		for i := 0; i < 3; i++ {
			if !positive(d.HalfExtents[i]) {
				return newError(d.Kind, ErrDegenerateGeometry, "half extent %g on axis %d", d.HalfExtents[i], i)
			}
		}
	case Ball:
		if !positive(d.Radius) {
			return newError(d.Kind, ErrDegenerateGeometry, "radius %g", d.Radius)
		}
	case Cylinder:
		if !positive(d.Radius) || !positive(d.HalfHeight) {
			return newError(d.Kind, ErrDegenerateGeometry, "radius %g half height %g", d.Radius, d.HalfHeight)
		}
	case ConvexHull:
		return validateHull(d.Points)
	case Trimesh:
		return validateTrimesh(d.Vertices, d.Indices)
	default:
		return fmt.Errorf("unknown shape kind %d", d.Kind)
	}
	return nil
}

func positive(v float32) bool {
	return v > 0 && !math.IsInf(float64(v), 0)
}

func validateHull(points []float32) error {
	if len(points)%3 != 0 {
		return newError(ConvexHull, ErrDegenerateGeometry, "buffer length %d is not a multiple of 3", len(points))
	}
	n := len(points) / 3
	if n < 4 {
		return newError(ConvexHull, ErrDegenerateGeometry, "%d points, need at least 4", n)
	}
	if !spansVolume(points) {
		return newError(ConvexHull, ErrDegenerateGeometry, "points are coplanar")
	}
	return nil
}

func validateTrimesh(vertices []float32, indices []uint32) error {
	if len(vertices)%3 != 0 {
		return newError(Trimesh, ErrDegenerateGeometry, "buffer length %d is not a multiple of 3", len(vertices))
	}
	if len(indices) == 0 {
		return newError(Trimesh, ErrMalformedIndices, "no triangles")
	}
	if len(indices)%3 != 0 {
		return newError(Trimesh, ErrMalformedIndices, "index count %d is not a multiple of 3", len(indices))
	}
	n := uint32(len(vertices) / 3)
	for i, idx := range indices {
		if idx >= n {
			return newError(Trimesh, ErrMalformedIndices, "index %d at %d out of range [0,%d)", idx, i, n)
		}
	}
	return nil
}

// spansVolume reports whether the points are not all on one plane. The
// tolerance scales with the extent of the set.
func spansVolume(points []float32) bool {
	at := func(i int) mgl32.Vec3 {
		return mgl32.Vec3{points[i*3], points[i*3+1], points[i*3+2]}
	}
	n := len(points) / 3

	a := at(0)
	b, far := a, float32(0)
	for i := 1; i < n; i++ {
		if d := at(i).Sub(a).Len(); d > far {
			b, far = at(i), d
		}
	}
	if far == 0 {
		return false
	}
	eps := far * 1e-5

	ab := b.Sub(a)
	var normal mgl32.Vec3
	area := float32(0)
	for i := 1; i < n; i++ {
		c := ab.Cross(at(i).Sub(a))
		if l := c.Len(); l > area {
			normal, area = c, l
		}
	}
	if area <= eps*far {
		return false
	}
	normal = normal.Normalize()

	for i := 1; i < n; i++ {
		d := normal.Dot(at(i).Sub(a))
		if d > eps || d < -eps {
			return true
		}
	}
	return false
}
