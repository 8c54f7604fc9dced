package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/shape"
)

const DefaultFriction = 0.5

type ColliderDesc struct {
	Shape    shape.Descriptor
	Friction float32
}

func NewColliderDesc(d shape.Descriptor) ColliderDesc {
	return ColliderDesc{Shape: d, Friction: DefaultFriction}
}

func (d ColliderDesc) SetFriction(f float32) ColliderDesc {
	d.Friction = f
	return d
}

type Collider struct {
	handle      int
	body        *RigidBody
	shape       shape.Descriptor
	restitution float32
	friction    float32

	// Local-space sample points on the collider surface, used as the
	// source side of contact tests.
	probes      []mgl32.Vec3
	boundCenter mgl32.Vec3
	boundRadius float32
}

func (c *Collider) Handle() int             { return c.handle }
func (c *Collider) Body() *RigidBody        { return c.body }
func (c *Collider) Shape() shape.Descriptor { return c.shape }
func (c *Collider) Restitution() float32    { return c.restitution }
func (c *Collider) Friction() float32       { return c.friction }

// BoundingSphere returns the world-space sphere enclosing the collider.
func (c *Collider) BoundingSphere() (mgl32.Vec3, float32) {
	return c.body.toWorld(c.boundCenter), c.boundRadius
}

func newCollider(d ColliderDesc) *Collider {
	c := &Collider{
		shape:       d.Shape,
		restitution: d.Shape.Restitution,
		friction:    d.Friction,
	}
	c.probes = probePoints(d.Shape)

	lo, hi := c.probes[0], c.probes[0]
	for _, p := range c.probes[1:] {
		for a := 0; a < 3; a++ {
			lo[a] = min(lo[a], p[a])
			hi[a] = max(hi[a], p[a])
		}
	}
	c.boundCenter = lo.Add(hi).Mul(0.5)
	for _, p := range c.probes {
		c.boundRadius = max(c.boundRadius, p.Sub(c.boundCenter).Len())
	}
	return c
}

// inertia returns a scalar moment of inertia, the mean of the principal
// moments of the shape.
func (c *Collider) inertia(mass float32) float32 {
	d := c.shape
	switch d.Kind {
	case shape.Ball:
		return 0.4 * mass * d.Radius * d.Radius
	case shape.Cuboid:
		h := d.HalfExtents
		return 2 * mass / 9 * h.Dot(h)
	case shape.Cylinder:
		r2, h := d.Radius*d.Radius, 2*d.HalfHeight
		axial := 0.5 * mass * r2
		radial := mass / 12 * (3*r2 + h*h)
		return (axial + 2*radial) / 3
	default:
		return 0.4 * mass * c.boundRadius * c.boundRadius
	}
}

func probePoints(d shape.Descriptor) []mgl32.Vec3 {
	switch d.Kind {
	case shape.Cuboid:
		h := d.HalfExtents
		pts := make([]mgl32.Vec3, 0, 20)
		for _, x := range [3]float32{-1, 0, 1} {
			for _, y := range [3]float32{-1, 0, 1} {
				for _, z := range [3]float32{-1, 0, 1} {
					zeros := 0
					for _, v := range [3]float32{x, y, z} {
						if v == 0 {
							zeros++
						}
					}
					// corners and edge midpoints
					if zeros <= 1 {
						pts = append(pts, mgl32.Vec3{x * h[0], y * h[1], z * h[2]})
					}
				}
			}
		}
		return pts
	case shape.Ball:
		pts := make([]mgl32.Vec3, 0, 26)
		for _, x := range [3]float32{-1, 0, 1} {
			for _, y := range [3]float32{-1, 0, 1} {
				for _, z := range [3]float32{-1, 0, 1} {
					if x == 0 && y == 0 && z == 0 {
						continue
					}
					pts = append(pts, mgl32.Vec3{x, y, z}.Normalize().Mul(d.Radius))
				}
			}
		}
		return pts
	case shape.Cylinder:
		const segments = 16
		pts := make([]mgl32.Vec3, 0, segments*2)
		for i := 0; i < segments; i++ {
			theta := float64(i) / segments * 2 * math.Pi
			x := d.Radius * float32(math.Sin(theta))
			z := d.Radius * float32(math.Cos(theta))
			pts = append(pts, mgl32.Vec3{x, d.HalfHeight, z}, mgl32.Vec3{x, -d.HalfHeight, z})
		}
		return pts
	case shape.ConvexHull:
		return unpack(d.Points)
	default:
		return unpack(d.Vertices)
	}
}

func unpack(flat []float32) []mgl32.Vec3 {
	pts := make([]mgl32.Vec3, len(flat)/3)
	for i := range pts {
		pts[i] = mgl32.Vec3{flat[i*3], flat[i*3+1], flat[i*3+2]}
	}
	return pts
}

// penetration tests world-space point p against the collider volume. The
// returned normal points out of the collider; toward is a world-space point
// on the source side, used to pick the face when p is past the center.
func (c *Collider) penetration(p, toward mgl32.Vec3) (mgl32.Vec3, float32, bool) {
	b := c.body
	local := b.toLocal(p)
	side := b.toLocal(toward)

	switch c.shape.Kind {
	case shape.Cuboid:
		h := c.shape.HalfExtents
		best, axis := float32(math.MaxFloat32), -1
		var sign float32
		for a := 0; a < 3; a++ {
			if local[a] <= -h[a] || local[a] >= h[a] {
				return mgl32.Vec3{}, 0, false
			}
			s := float32(1)
			if side[a] < 0 {
				s = -1
			}
			if depth := h[a] - s*local[a]; depth < best {
				best, axis, sign = depth, a, s
			}
		}
		var n mgl32.Vec3
		n[axis] = sign
		return b.rot.Rotate(n), best, true

	case shape.Cylinder:
		hh, r := c.shape.HalfHeight, c.shape.Radius
		rho := float32(math.Hypot(float64(local[0]), float64(local[2])))
		if local[1] <= -hh || local[1] >= hh || rho >= r {
			return mgl32.Vec3{}, 0, false
		}
		s := float32(1)
		if side[1] < 0 {
			s = -1
		}
		axial := hh - s*local[1]
		radial := r - rho
		if axial < radial {
			return b.rot.Rotate(mgl32.Vec3{0, s, 0}), axial, true
		}
		dir := mgl32.Vec3{local[0], 0, local[2]}
		if rho == 0 {
			dir = mgl32.Vec3{side[0], 0, side[2]}
			if dir.Len() == 0 {
				dir = mgl32.Vec3{1, 0, 0}
			}
		}
		return b.rot.Rotate(dir.Normalize()), radial, true

	default:
		center, radius := c.boundCenter, c.boundRadius
		if c.shape.Kind == shape.Ball {
			center, radius = mgl32.Vec3{}, c.shape.Radius
		}
		d := local.Sub(center)
		dist := d.Len()
		if dist >= radius {
			return mgl32.Vec3{}, 0, false
		}
		if dist == 0 {
			d = side.Sub(center)
			if d.Len() == 0 {
				d = mgl32.Vec3{0, 1, 0}
			}
		}
		return b.rot.Rotate(d.Normalize()), radius - dist, true
	}
}

// analytic reports whether penetration tests against this collider use the
// exact shape.
func (c *Collider) analytic() bool {
	switch c.shape.Kind {
	case shape.Cuboid, shape.Ball, shape.Cylinder:
		return true
	}
	return false
}
