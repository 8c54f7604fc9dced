package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultTimestep = 1.0 / 60

	// Bodies slower than SleepThreshold (linear and angular) for SleepTime
	// seconds fall asleep.
	SleepThreshold = 0.05
	SleepTime      = 1.0

	// Normal approach speeds below RestingSpeed bounce with zero restitution.
	RestingSpeed = 0.5
)

var (
	ErrColliderAttached = errors.New("physics: body already has a collider")
	ErrUnknownBody      = errors.New("physics: body does not belong to this world")
)

type World struct {
	Gravity  mgl32.Vec3
	Timestep float32

	bodies     []*RigidBody
	nextHandle int
}

func NewWorld(gravity mgl32.Vec3) *World {
	return &World{Gravity: gravity, Timestep: DefaultTimestep}
}

func (w *World) CreateRigidBody(desc RigidBodyDesc) *RigidBody {
	b := &RigidBody{
		handle:   w.nextHandle,
		typ:      desc.Type,
		pos:      desc.Translation,
		rot:      desc.Rotation.Normalize(),
		linDamp:  desc.LinearDamping,
		angDamp:  desc.AngularDamping,
		canSleep: desc.CanSleep && desc.Type == Dynamic,
	}
	if desc.Type == Dynamic {
		b.linvel = desc.Linvel
	}
	w.nextHandle++
	w.bodies = append(w.bodies, b)
	return b
}

// CreateCollider attaches a collider to body and takes the body's mass
// properties from the shape descriptor. A body holds at most one collider.
func (w *World) CreateCollider(desc ColliderDesc, body *RigidBody) (*Collider, error) {
	if !w.contains(body) {
		return nil, ErrUnknownBody
	}
	if body.collider != nil {
		return nil, ErrColliderAttached
	}
	if err := desc.Shape.Validate(); err != nil {
		return nil, fmt.Errorf("collider: %w", err)
	}

	c := newCollider(desc)
	c.handle = body.handle
	c.body = body
	body.collider = c

	if body.typ == Dynamic {
		body.mass = desc.Shape.Mass
		body.invMass = 1 / body.mass
		if i := c.inertia(body.mass); i > 0 {
			body.invInertia = 1 / i
		}
	}
	return c, nil
}

// RemoveRigidBody detaches body and its collider from the world.
func (w *World) RemoveRigidBody(body *RigidBody) {
	for i, b := range w.bodies {
		if b == body {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return
		}
	}
}

func (w *World) Bodies() []*RigidBody {
	out := make([]*RigidBody, len(w.bodies))
	copy(out, w.bodies)
	return out
}

func (w *World) NumBodies() int { return len(w.bodies) }

func (w *World) contains(body *RigidBody) bool {
	for _, b := range w.bodies {
		if b == body {
			return true
		}
	}
	return false
}

// Step advances the world by Timestep. It panics when a body's state stops
// being finite.
func (w *World) Step() {
	dt := w.Timestep
	if dt <= 0 {
		return
	}

	for _, b := range w.bodies {
		if b.typ == Fixed || b.sleeping || b.collider == nil {
			continue
		}
		w.integrate(b, dt)
	}

	for i, a := range w.bodies {
		if a.collider == nil {
			continue
		}
		for _, other := range w.bodies[i+1:] {
			if other.collider == nil {
				continue
			}
			w.collide(a, other)
		}
	}

	for _, b := range w.bodies {
		if b.typ == Fixed || b.sleeping {
			continue
		}
		if !b.canSleep {
			b.idleTime = 0
			continue
		}
		if b.linvel.Len() < SleepThreshold && b.angvel.Len() < SleepThreshold {
			b.idleTime += dt
			if b.idleTime > SleepTime {
				b.Sleep()
			}
		} else {
			b.idleTime = 0
		}
	}

	for _, b := range w.bodies {
		if !finite(b.pos) || !finite(b.linvel) || !finite(b.angvel) || !finite(b.rot.V) || !finite32(b.rot.W) {
			panic(fmt.Sprintf("physics: body %d left the finite range (pos %v, vel %v)", b.handle, b.pos, b.linvel))
		}
	}
}

func (w *World) integrate(b *RigidBody, dt float32) {
	b.linvel = b.linvel.Add(w.Gravity.Mul(dt))
	if b.linDamp > 0 {
		b.linvel = b.linvel.Mul(1 / (1 + dt*b.linDamp))
	}
	if b.angDamp > 0 {
		b.angvel = b.angvel.Mul(1 / (1 + dt*b.angDamp))
	}

	b.pos = b.pos.Add(b.linvel.Mul(dt))

	if b.angvel.Len() > 0 {
		spin := mgl32.Quat{W: 0, V: b.angvel.Mul(0.5 * dt)}
		b.rot = b.rot.Add(spin.Mul(b.rot)).Normalize()
	}
}

func (w *World) collide(a, b *RigidBody) {
	if a.typ == Fixed && b.typ == Fixed {
		return
	}
	aRest := a.typ == Fixed || a.sleeping
	bRest := b.typ == Fixed || b.sleeping
	if aRest && bRest {
		return
	}

	// src is sampled, dst is the volume; the normal points out of dst.
	src, dst := a, b
	switch {
	case a.typ == Fixed:
		src, dst = b, a
	case b.typ == Fixed:
	case !b.collider.analytic() && a.collider.analytic():
		src, dst = b, a
	case !b.collider.analytic():
		w.collideSpheres(a, b)
		return
	}

	n, depth, contact, ok := contactPoint(src, dst)
	if !ok {
		return
	}
	resolve(src, dst, n, depth, contact)
}

// contactPoint returns the deepest penetration of src's probes into dst and
// the mean of all penetrating probes as the contact point.
func contactPoint(src, dst *RigidBody) (mgl32.Vec3, float32, mgl32.Vec3, bool) {
	c := dst.collider
	dc, dr := c.BoundingSphere()
	sc, sr := src.collider.BoundingSphere()
	if sc.Sub(dc).Len() >= dr+sr {
		return mgl32.Vec3{}, 0, mgl32.Vec3{}, false
	}

	var (
		normal mgl32.Vec3
		depth  float32
		sum    mgl32.Vec3
		count  int
	)
	for _, lp := range src.collider.probes {
		p := src.toWorld(lp)
		n, d, ok := c.penetration(p, src.pos)
		if !ok {
			continue
		}
		sum = sum.Add(p)
		count++
		if d > depth {
			normal, depth = n, d
		}
	}
	if count == 0 {
		return mgl32.Vec3{}, 0, mgl32.Vec3{}, false
	}
	return normal, depth, sum.Mul(1 / float32(count)), true
}

func (w *World) collideSpheres(a, b *RigidBody) {
	ac, ar := a.collider.BoundingSphere()
	bc, br := b.collider.BoundingSphere()
	d := ac.Sub(bc)
	dist := d.Len()
	if dist >= ar+br {
		return
	}
	n := mgl32.Vec3{0, 1, 0}
	if dist > 0 {
		n = d.Mul(1 / dist)
	}
	contact := bc.Add(n.Mul(br - (ar+br-dist)/2))
	resolve(a, b, n, ar+br-dist, contact)
}

// resolve separates src from dst along n and applies a restitution and
// friction impulse at the contact point.
func resolve(src, dst *RigidBody, n mgl32.Vec3, depth float32, contact mgl32.Vec3) {
	if dst.typ == Fixed || dst.sleeping {
		src.pos = src.pos.Add(n.Mul(depth))
	} else {
		src.pos = src.pos.Add(n.Mul(depth / 2))
		dst.pos = dst.pos.Sub(n.Mul(depth / 2))
	}

	rA := contact.Sub(src.pos)
	rB := contact.Sub(dst.pos)
	rel := src.velocityAt(rA).Sub(dst.velocityAt(rB))
	vn := rel.Dot(n)
	if vn > 0 {
		return
	}

	// only a sleeper is woken; an awake body keeps its idle time
	if -vn > SleepThreshold {
		if src.sleeping {
			src.WakeUp()
		}
		if dst.sleeping {
			dst.WakeUp()
		}
	}

	restitution := (src.collider.restitution + dst.collider.restitution) * 0.5
	if -vn < RestingSpeed {
		restitution = 0
	}

	denom := src.effectiveInvMass(rA, n) + dst.effectiveInvMass(rB, n)
	if denom == 0 {
		return
	}

	j := -(1 + restitution) * vn / denom
	impulse := n.Mul(j)
	src.applyImpulseAt(impulse, rA)
	dst.applyImpulseAt(impulse.Mul(-1), rB)

	friction := (src.collider.friction + dst.collider.friction) * 0.5
	tangent := rel.Sub(n.Mul(vn))
	if tl := tangent.Len(); tl > 1e-4 {
		tangent = tangent.Mul(1 / tl)
		jt := -rel.Dot(tangent) * friction / denom
		// Coulomb cone
		jt = max(jt, -friction*j)
		f := tangent.Mul(jt)
		src.applyImpulseAt(f, rA)
		dst.applyImpulseAt(f.Mul(-1), rB)
	}
}

func finite(v mgl32.Vec3) bool {
	return finite32(v[0]) && finite32(v[1]) && finite32(v[2])
}

func finite32(f float32) bool {
	x := float64(f)
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
