package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

type BodyType uint8

const (
	Dynamic BodyType = iota
	Fixed
)

func (t BodyType) String() string {
	if t == Fixed {
		return "fixed"
	}
	return "dynamic"
}

// RigidBodyDesc describes a body before it is inserted into a World. The
// Set methods return a modified copy so descriptions chain.
type RigidBodyDesc struct {
	Type           BodyType
	Translation    mgl32.Vec3
	Rotation       mgl32.Quat
	Linvel         mgl32.Vec3
	CanSleep       bool
	LinearDamping  float32
	AngularDamping float32
}

func NewDynamicBodyDesc() RigidBodyDesc {
	return RigidBodyDesc{Type: Dynamic, Rotation: mgl32.QuatIdent(), CanSleep: true}
}

func NewFixedBodyDesc() RigidBodyDesc {
	return RigidBodyDesc{Type: Fixed, Rotation: mgl32.QuatIdent(), CanSleep: false}
}

func (d RigidBodyDesc) SetTranslation(x, y, z float32) RigidBodyDesc {
	d.Translation = mgl32.Vec3{x, y, z}
	return d
}

func (d RigidBodyDesc) SetRotation(q mgl32.Quat) RigidBodyDesc {
	d.Rotation = q
	return d
}

func (d RigidBodyDesc) SetLinvel(v mgl32.Vec3) RigidBodyDesc {
	d.Linvel = v
	return d
}

func (d RigidBodyDesc) SetCanSleep(canSleep bool) RigidBodyDesc {
	d.CanSleep = canSleep
	return d
}

func (d RigidBodyDesc) SetDamping(linear, angular float32) RigidBodyDesc {
	d.LinearDamping, d.AngularDamping = linear, angular
	return d
}

type RigidBody struct {
	handle   int
	typ      BodyType
	pos      mgl32.Vec3
	rot      mgl32.Quat
	linvel   mgl32.Vec3
	angvel   mgl32.Vec3
	linDamp  float32
	angDamp  float32
	canSleep bool
	sleeping bool
	idleTime float32

	mass       float32
	invMass    float32
	invInertia float32
	collider   *Collider
}

func (b *RigidBody) Handle() int             { return b.handle }
func (b *RigidBody) Type() BodyType          { return b.typ }
func (b *RigidBody) IsFixed() bool           { return b.typ == Fixed }
func (b *RigidBody) Translation() mgl32.Vec3 { return b.pos }
func (b *RigidBody) Rotation() mgl32.Quat    { return b.rot }
func (b *RigidBody) Linvel() mgl32.Vec3      { return b.linvel }
func (b *RigidBody) Angvel() mgl32.Vec3      { return b.angvel }
func (b *RigidBody) Mass() float32           { return b.mass }
func (b *RigidBody) Collider() *Collider     { return b.collider }
func (b *RigidBody) CanSleep() bool          { return b.canSleep }
func (b *RigidBody) IsSleeping() bool        { return b.sleeping }

// SetCanSleep wakes the body when sleeping is disabled.
func (b *RigidBody) SetCanSleep(canSleep bool) {
	if b.typ == Fixed {
		return
	}
	b.canSleep = canSleep
	if !canSleep {
		b.WakeUp()
	}
}

func (b *RigidBody) WakeUp() {
	b.sleeping = false
	b.idleTime = 0
}

// Sleep puts the body to rest immediately, clearing its velocities.
func (b *RigidBody) Sleep() {
	if b.typ == Fixed {
		return
	}
	b.sleeping = true
	b.linvel = mgl32.Vec3{}
	b.angvel = mgl32.Vec3{}
}

func (b *RigidBody) SetTranslation(v mgl32.Vec3, wake bool) {
	if b.typ == Fixed {
		return
	}
	b.pos = v
	if wake {
		b.WakeUp()
	}
}

func (b *RigidBody) SetLinvel(v mgl32.Vec3, wake bool) {
	if b.typ == Fixed {
		return
	}
	b.linvel = v
	if wake {
		b.WakeUp()
	}
}

// ApplyImpulse changes the linear velocity by impulse / mass. Fixed bodies
// ignore impulses.
func (b *RigidBody) ApplyImpulse(impulse mgl32.Vec3, wake bool) {
	if b.typ == Fixed {
		return
	}
	if wake {
		b.WakeUp()
	}
	b.linvel = b.linvel.Add(impulse.Mul(b.invMass))
}

func (b *RigidBody) applyImpulseAt(impulse, r mgl32.Vec3) {
	if b.typ == Fixed || b.sleeping {
		return
	}
	b.linvel = b.linvel.Add(impulse.Mul(b.invMass))
	b.angvel = b.angvel.Add(r.Cross(impulse).Mul(b.invInertia))
}

// effectiveInvMass is the inverse mass felt by an impulse along n applied at
// offset r. Resting bodies are immovable.
func (b *RigidBody) effectiveInvMass(r, n mgl32.Vec3) float32 {
	if b.typ == Fixed || b.sleeping {
		return 0
	}
	rn := r.Cross(n)
	return b.invMass + rn.Dot(rn)*b.invInertia
}

func (b *RigidBody) velocityAt(r mgl32.Vec3) mgl32.Vec3 {
	return b.linvel.Add(b.angvel.Cross(r))
}

// KineticEnergy is the translational plus rotational energy of the body.
func (b *RigidBody) KineticEnergy() float32 {
	if b.typ == Fixed {
		return 0
	}
	e := 0.5 * b.mass * b.linvel.Dot(b.linvel)
	if b.invInertia > 0 {
		e += 0.5 / b.invInertia * b.angvel.Dot(b.angvel)
	}
	return e
}

func (b *RigidBody) toWorld(p mgl32.Vec3) mgl32.Vec3 {
	return b.rot.Rotate(p).Add(b.pos)
}

func (b *RigidBody) toLocal(p mgl32.Vec3) mgl32.Vec3 {
	return b.rot.Conjugate().Rotate(p.Sub(b.pos))
}
