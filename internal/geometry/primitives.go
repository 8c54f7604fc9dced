package geometry

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// NewBox builds an indexed box centered on the origin: 4 vertices and
// 2 triangles per face.
func NewBox(width, height, depth float32) *Geometry {
	half := mgl32.Vec3{width / 2, height / 2, depth / 2}
	positions := make([]float32, 0, 24*3)
	indices := make([]uint32, 0, 36)
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	for axis := 0; axis < 3; axis++ {
		u, v := (axis+1)%3, (axis+2)%3
		for _, sign := range [2]float32{1, -1} {
			base := uint32(len(positions) / 3)
			for _, c := range corners {
				var p mgl32.Vec3
				p[axis] = sign * half[axis]
				p[u] = c[0] * half[u]
				p[v] = c[1] * half[v]
				positions = append(positions, p[0], p[1], p[2])
			}
			if sign > 0 {
				indices = append(indices, base, base+1, base+2, base, base+2, base+3)
			} else {
				indices = append(indices, base, base+2, base+1, base, base+3, base+2)
			}
		}
	}

	return &Geometry{Kind: Box, Positions: positions, Indices: indices, Width: width, Height: height, Depth: depth}
}

// NewSphere builds a UV sphere. widthSegments >= 3, heightSegments >= 2.
func NewSphere(radius float32, widthSegments, heightSegments int) *Geometry {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	positions := make([]float32, 0, (widthSegments+1)*(heightSegments+1)*3)
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			x := -float64(radius) * math.Cos(u*2*math.Pi) * math.Sin(v*math.Pi)
			y := float64(radius) * math.Cos(v*math.Pi)
			z := float64(radius) * math.Sin(u*2*math.Pi) * math.Sin(v*math.Pi)
			positions = append(positions, float32(x), float32(y), float32(z))
		}
	}

	row := uint32(widthSegments + 1)
	var indices []uint32
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(iy)*row + uint32(ix) + 1
			b := uint32(iy)*row + uint32(ix)
			c := uint32(iy+1)*row + uint32(ix)
			d := uint32(iy+1)*row + uint32(ix) + 1
			if iy != 0 {
				indices = append(indices, a, b, d)
			}
			if iy != heightSegments-1 {
				indices = append(indices, b, c, d)
			}
		}
	}

	return &Geometry{Kind: Sphere, Positions: positions, Indices: indices, Radius: radius}
}

// NewCylinder builds a capped cylinder along the Y axis.
func NewCylinder(radius, height float32, radialSegments int) *Geometry {
	radialSegments = max(radialSegments, 3)
	halfHeight := height / 2
	ring := func(y float32) []float32 {
		out := make([]float32, 0, (radialSegments+1)*3)
		for x := 0; x <= radialSegments; x++ {
			theta := float64(x) / float64(radialSegments) * 2 * math.Pi
			out = append(out, radius*float32(math.Sin(theta)), y, radius*float32(math.Cos(theta)))
		}
		return out
	}

	var positions []float32
	var indices []uint32
	n := uint32(radialSegments + 1)

	// torso
	positions = append(positions, ring(halfHeight)...)
	positions = append(positions, ring(-halfHeight)...)
	for x := uint32(0); x < uint32(radialSegments); x++ {
		a, b, c, d := x, n+x, n+x+1, x+1
		indices = append(indices, a, b, d, b, c, d)
	}

	// caps
	for _, y := range [2]float32{halfHeight, -halfHeight} {
		center := uint32(len(positions) / 3)
		positions = append(positions, 0, y, 0)
		start := center + 1
		positions = append(positions, ring(y)...)
		for x := uint32(0); x < uint32(radialSegments); x++ {
			if y > 0 {
				indices = append(indices, start+x, start+x+1, center)
			} else {
				indices = append(indices, start+x+1, start+x, center)
			}
		}
	}

	return &Geometry{Kind: Cylinder, Positions: positions, Indices: indices, Radius: radius, Height: height}
}

var (
	icoT       = float32((1 + math.Sqrt(5)) / 2)
	icoCorners = [12]mgl32.Vec3{
		{-1, icoT, 0}, {1, icoT, 0}, {-1, -icoT, 0}, {1, -icoT, 0},
		{0, -1, icoT}, {0, 1, icoT}, {0, -1, -icoT}, {0, 1, -icoT},
		{icoT, 0, -1}, {icoT, 0, 1}, {-icoT, 0, -1}, {-icoT, 0, 1},
	}
	icoFaces = [60]uint32{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}
)

// IcosahedronVertices returns the 12 corners of a regular icosahedron with
// the given circumradius as a flat float buffer.
func IcosahedronVertices(radius float32) []float32 {
	out := make([]float32, 0, 36)
	for _, c := range icoCorners {
		p := c.Normalize().Mul(radius)
		out = append(out, p[0], p[1], p[2])
	}
	return out
}

// NewIcosahedron builds a non-indexed regular icosahedron: 20 faces, 60
// vertices, corners repeated once per adjacent face.
func NewIcosahedron(radius float32) *Geometry {
	corners := IcosahedronVertices(radius)
	positions := make([]float32, 0, len(icoFaces)*3)
	for _, i := range icoFaces {
		positions = append(positions, corners[i*3], corners[i*3+1], corners[i*3+2])
	}
	return &Geometry{Kind: Icosahedron, Positions: positions, Radius: radius}
}

// NewTorusKnot builds an indexed (p, q) torus knot tube.
func NewTorusKnot(radius, tube float32, tubularSegments, radialSegments, p, q int) *Geometry {
	tubularSegments = max(tubularSegments, 3)
	radialSegments = max(radialSegments, 3)

	positions := make([]float32, 0, (tubularSegments+1)*(radialSegments+1)*3)
	for i := 0; i <= tubularSegments; i++ {
		u := float64(i) / float64(tubularSegments) * float64(p) * math.Pi * 2
		p1 := knotPoint(u, p, q, radius)
		p2 := knotPoint(u+0.01, p, q, radius)

		t := p2.Sub(p1)
		n := p2.Add(p1)
		b := t.Cross(n)
		n = b.Cross(t)
		b = b.Normalize()
		n = n.Normalize()

		for j := 0; j <= radialSegments; j++ {
			v := float64(j) / float64(radialSegments) * math.Pi * 2
			cx := -tube * float32(math.Cos(v))
			cy := tube * float32(math.Sin(v))
			vert := p1.Add(n.Mul(cx)).Add(b.Mul(cy))
			positions = append(positions, vert[0], vert[1], vert[2])
		}
	}

	row := uint32(radialSegments + 1)
	indices := make([]uint32, 0, tubularSegments*radialSegments*6)
	for j := uint32(1); j <= uint32(tubularSegments); j++ {
		for i := uint32(1); i <= uint32(radialSegments); i++ {
			a := row*(j-1) + (i - 1)
			b := row*j + (i - 1)
			c := row*j + i
			d := row*(j-1) + i
			indices = append(indices, a, b, d, b, c, d)
		}
	}

	return &Geometry{Kind: TorusKnot, Positions: positions, Indices: indices, Radius: radius, Tube: tube}
}

func knotPoint(u float64, p, q int, radius float32) mgl32.Vec3 {
	cu, su := math.Cos(u), math.Sin(u)
	quOverP := float64(q) / float64(p) * u
	cs := math.Cos(quOverP)
	r := float64(radius)
	return mgl32.Vec3{
		float32(r * (2 + cs) * 0.5 * cu),
		float32(r * (2 + cs) * su * 0.5),
		float32(r * math.Sin(quOverP) * 0.5),
	}
}

// ByName builds a primitive with its default dimensions: unit box, unit
// sphere, 1x2 cylinder with 16 segments, unit icosahedron, and the (2,3)
// torus knot.
func ByName(name string) (*Geometry, error) {
	switch name {
	case "box":
		return NewBox(1, 1, 1), nil
	case "sphere":
		return NewSphere(1, 32, 16), nil
	case "cylinder":
		return NewCylinder(1, 2, 16), nil
	case "icosahedron":
		return NewIcosahedron(1), nil
	case "torus_knot":
		return NewTorusKnot(1, 0.4, 64, 8, 2, 3), nil
	default:
		return nil, fmt.Errorf("unknown geometry %q", name)
	}
}
