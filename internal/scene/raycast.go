package scene

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

type Hit struct {
	Node     *Node
	Distance float32
	Point    mgl32.Vec3
	Triangle int
}

const rayEpsilon = 1e-6

// Intersect returns the nearest hit of r on the node's triangles. Triangles
// are hit from either side.
func Intersect(r Ray, n *Node) (Hit, bool) {
	if n.Geometry == nil || n.Geometry.TriangleCount() == 0 {
		return Hit{}, false
	}

	inv := n.Quaternion.Conjugate()
	local := Ray{
		Origin:    inv.Rotate(r.Origin.Sub(n.Position)),
		Direction: inv.Rotate(r.Direction),
	}

	center, radius := n.Geometry.BoundingSphere()
	if !hitsSphere(local, center, radius) {
		return Hit{}, false
	}

	best := Hit{Distance: float32(math.Inf(1)), Triangle: -1}
	for i := 0; i < n.Geometry.TriangleCount(); i++ {
		a, b, c := n.Geometry.Triangle(i)
		if t, ok := intersectTriangle(local, a, b, c); ok && t < best.Distance {
			best.Distance, best.Triangle = t, i
		}
	}
	if best.Triangle < 0 {
		return Hit{}, false
	}
	best.Node = n
	best.Point = r.At(best.Distance)
	return best, true
}

// Raycast intersects r with every node and returns the hits nearest first.
// Equal distances keep the order of nodes.
func Raycast(r Ray, nodes []*Node) []Hit {
	var hits []Hit
	for _, n := range nodes {
		if h, ok := Intersect(r, n); ok {
			hits = append(hits, h)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

func hitsSphere(r Ray, center mgl32.Vec3, radius float32) bool {
	oc := center.Sub(r.Origin)
	tca := oc.Dot(r.Direction)
	d2 := oc.Dot(oc) - tca*tca
	if d2 > radius*radius {
		return false
	}
	// behind the origin and not containing it
	return tca >= 0 || oc.Dot(oc) <= radius*radius
}

// intersectTriangle is the Möller-Trumbore test.
func intersectTriangle(r Ray, a, b, c mgl32.Vec3) (float32, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if det > -rayEpsilon && det < rayEpsilon {
		return 0, false
	}
	invDet := 1 / det

	s := r.Origin.Sub(a)
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * invDet
	if t <= rayEpsilon {
		return 0, false
	}
	return t, true
}
