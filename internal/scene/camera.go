package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Camera struct {
	Fov    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32

	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
}

func NewCamera(fov, aspect, near, far float32) *Camera {
	return &Camera{
		Fov:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Up:     mgl32.Vec3{0, 1, 0},
	}
}

func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// SetAspect ignores degenerate sizes such as a minimised window.
func (c *Camera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// Project maps a world point to normalized device coordinates. ok is false
// for points behind the camera.
func (c *Camera) Project(p mgl32.Vec3) (mgl32.Vec3, bool) {
	clip := c.Projection().Mul4(c.View()).Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return mgl32.Vec3{}, false
	}
	return clip.Vec3().Mul(1 / clip.W()), true
}

// Ray returns the ray from the camera through a device-space point.
func (c *Camera) Ray(ndcX, ndcY float32) Ray {
	inv := c.Projection().Mul4(c.View()).Inv()
	p := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, 0.5, 1})
	through := p.Vec3().Mul(1 / p.W())
	return Ray{Origin: c.Position, Direction: through.Sub(c.Position).Normalize()}
}

// Orbit rotates the camera position around Target by yaw (about world up)
// and pitch, keeping the distance.
func (c *Camera) Orbit(yaw, pitch float32) {
	offset := c.Position.Sub(c.Target)
	offset = mgl32.QuatRotate(yaw, c.Up).Rotate(offset)

	right := c.Up.Cross(offset)
	if right.Len() > 0 {
		rotated := mgl32.QuatRotate(pitch, right.Normalize()).Rotate(offset)
		// stay off the poles
		if rotated.Normalize().Cross(c.Up).Len() > 0.05 {
			offset = rotated
		}
	}
	c.Position = c.Target.Add(offset)
}

// Zoom scales the distance to Target, clamped to [minDist, maxDist].
func (c *Camera) Zoom(factor, minDist, maxDist float32) {
	offset := c.Position.Sub(c.Target)
	d := mgl32.Clamp(offset.Len()*factor, minDist, maxDist)
	c.Position = c.Target.Add(offset.Normalize().Mul(d))
}
