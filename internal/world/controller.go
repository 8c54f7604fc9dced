// Package world owns the physics timeline: body creation, gravity and
// stepping.
package world

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/logging"
	"github.com/san-kum/rigidsync/internal/physics"
	"github.com/san-kum/rigidsync/internal/shape"
)

type Option func(*Controller)

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithFriction sets the friction coefficient of every collider created
// afterwards.
func WithFriction(f float32) Option {
	return func(c *Controller) { c.friction = f }
}

type Controller struct {
	physics  *physics.World
	log      *log.Logger
	friction float32

	steps    int
	time     float64
	lastStep float32
	fatal    *FatalError
}

func New(gravity mgl32.Vec3, opts ...Option) *Controller {
	c := &Controller{
		physics:  physics.NewWorld(gravity),
		log:      logging.Discard(),
		friction: physics.DefaultFriction,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateBody registers a dynamic body and its collider. Either both exist
// afterwards or neither does.
func (c *Controller) CreateBody(desc shape.Descriptor, translation mgl32.Vec3, canSleep bool) (*physics.RigidBody, error) {
	bodyDesc := physics.NewDynamicBodyDesc().
		SetTranslation(translation.X(), translation.Y(), translation.Z()).
		SetCanSleep(canSleep)
	return c.create(bodyDesc, desc)
}

// CreateFixedBody registers an immovable body, such as the floor.
func (c *Controller) CreateFixedBody(desc shape.Descriptor, translation mgl32.Vec3) (*physics.RigidBody, error) {
	bodyDesc := physics.NewFixedBodyDesc().SetTranslation(translation.X(), translation.Y(), translation.Z())
	return c.create(bodyDesc, desc)
}

func (c *Controller) create(bodyDesc physics.RigidBodyDesc, desc shape.Descriptor) (*physics.RigidBody, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	body := c.physics.CreateRigidBody(bodyDesc)
	if _, err := c.physics.CreateCollider(physics.NewColliderDesc(desc).SetFriction(c.friction), body); err != nil {
		c.physics.RemoveRigidBody(body)
		return nil, fmt.Errorf("create %s body: %w", bodyDesc.Type, err)
	}
	c.log.Debug("body created", "handle", body.Handle(), "type", bodyDesc.Type, "shape", desc.Kind, "at", bodyDesc.Translation)
	return body, nil
}

// SetGravity takes effect from the next Step. Non-finite gravity is ignored.
func (c *Controller) SetGravity(g mgl32.Vec3) {
	for _, v := range g {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			c.log.Warn("non-finite gravity ignored", "gravity", g)
			return
		}
	}
	c.physics.Gravity = g
	c.log.Debug("gravity set", "gravity", g)
}

func (c *Controller) SetGravityX(v float32) { c.setAxis(0, v) }
func (c *Controller) SetGravityY(v float32) { c.setAxis(1, v) }
func (c *Controller) SetGravityZ(v float32) { c.setAxis(2, v) }

func (c *Controller) setAxis(axis int, v float32) {
	g := c.physics.Gravity
	g[axis] = v
	c.SetGravity(g)
}

func (c *Controller) Gravity() mgl32.Vec3 { return c.physics.Gravity }

// Step advances the world by dt seconds. dt is used as given; keeping it in
// range is the caller's job. A solver panic poisons the controller and every
// later call returns the same *FatalError.
func (c *Controller) Step(dt float32) (err error) {
	if c.fatal != nil {
		return c.fatal
	}

	defer func() {
		if r := recover(); r != nil {
			c.fatal = &FatalError{Step: c.steps, Time: c.time, Cause: r}
			c.log.Error("simulation fatal", "step", c.steps, "time", c.time, "cause", r)
			err = c.fatal
		}
	}()

	c.physics.Timestep = dt
	c.physics.Step()
	c.lastStep = dt
	c.steps++
	c.time += float64(dt)
	return nil
}

// ApplyImpulse is the single write path for external pushes.
func (c *Controller) ApplyImpulse(body *physics.RigidBody, impulse mgl32.Vec3, wake bool) {
	body.ApplyImpulse(impulse, wake)
	c.log.Debug("impulse applied", "handle", body.Handle(), "impulse", impulse, "wake", wake)
}

func (c *Controller) Bodies() []*physics.RigidBody { return c.physics.Bodies() }

func (c *Controller) Steps() int        { return c.steps }
func (c *Controller) Time() float64     { return c.time }
func (c *Controller) LastStep() float32 { return c.lastStep }

func (c *Controller) Fatal() error {
	if c.fatal == nil {
		return nil
	}
	return c.fatal
}
