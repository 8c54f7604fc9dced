// Package picker turns pointer clicks into impulses on the body under the
// pointer.
package picker

import (
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/logging"
	"github.com/san-kum/rigidsync/internal/physics"
	"github.com/san-kum/rigidsync/internal/scene"
)

var DefaultImpulse = mgl32.Vec3{0, 10, 0}

type BodyLookup interface {
	FindBodyForNode(node *scene.Node) (*physics.RigidBody, bool)
}

type Impulser interface {
	ApplyImpulse(body *physics.RigidBody, impulse mgl32.Vec3, wake bool)
}

type Option func(*Picker)

func WithImpulse(v mgl32.Vec3) Option {
	return func(p *Picker) { p.impulse = v }
}

func WithLogger(l *log.Logger) Option {
	return func(p *Picker) { p.log = l }
}

type Picker struct {
	lookup   BodyLookup
	impulser Impulser
	impulse  mgl32.Vec3
	log      *log.Logger
}

func New(lookup BodyLookup, impulser Impulser, opts ...Option) *Picker {
	p := &Picker{
		lookup:   lookup,
		impulser: impulser,
		impulse:  DefaultImpulse,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Picker) Impulse() mgl32.Vec3 { return p.impulse }

// NormalizePointer maps surface coordinates (origin top-left, Y down) to
// device space [-1,1]x[-1,1] with Y up.
func NormalizePointer(x, y float32, width, height int) (float32, float32) {
	return x/float32(width)*2 - 1, -(y/float32(height))*2 + 1
}

// Pick returns the nearest node under the pointer. Equal distances resolve
// to the node listed first.
func Pick(x, y float32, width, height int, cam *scene.Camera, nodes []*scene.Node) (scene.Hit, bool) {
	if width <= 0 || height <= 0 {
		return scene.Hit{}, false
	}
	nx, ny := NormalizePointer(x, y, width, height)
	hits := scene.Raycast(cam.Ray(nx, ny), nodes)
	if len(hits) == 0 {
		return scene.Hit{}, false
	}
	return hits[0], true
}

// Click applies one impulse, with wake set, to the body bound to the nearest
// node under the pointer. It returns the body that was pushed, if any.
func (p *Picker) Click(x, y float32, width, height int, cam *scene.Camera, nodes []*scene.Node) (*physics.RigidBody, bool) {
	hit, ok := Pick(x, y, width, height, cam, nodes)
	if !ok {
		p.log.Debug("click hit nothing", "x", x, "y", y)
		return nil, false
	}
	body, ok := p.lookup.FindBodyForNode(hit.Node)
	if !ok {
		p.log.Debug("clicked node has no body", "node", hit.Node.Name)
		return nil, false
	}
	p.impulser.ApplyImpulse(body, p.impulse, true)
	p.log.Info("impulse", "node", hit.Node.Name, "distance", hit.Distance)
	return body, true
}
