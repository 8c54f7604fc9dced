// Package app builds one self-contained scene instance from configuration:
// scene graph, camera, world, registry and picker, threaded explicitly
// instead of living in package globals.
package app

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/config"
	"github.com/san-kum/rigidsync/internal/geometry"
	"github.com/san-kum/rigidsync/internal/logging"
	"github.com/san-kum/rigidsync/internal/metrics"
	"github.com/san-kum/rigidsync/internal/physics"
	"github.com/san-kum/rigidsync/internal/picker"
	"github.com/san-kum/rigidsync/internal/registry"
	"github.com/san-kum/rigidsync/internal/scene"
	"github.com/san-kum/rigidsync/internal/shape"
	"github.com/san-kum/rigidsync/internal/sim"
	"github.com/san-kum/rigidsync/internal/tuning"
	"github.com/san-kum/rigidsync/internal/world"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// SetupError records one body that could not be built. The rest of the
// scene is unaffected.
type SetupError struct {
	Body string
	Kind string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("body %q (%s): %v", e.Body, e.Kind, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

type Option func(*App)

func WithLogger(l *log.Logger) Option {
	return func(a *App) { a.log = l }
}

// WithRenderer sets the renderer handed to drivers built by NewDriver.
func WithRenderer(r sim.Renderer) Option {
	return func(a *App) { a.renderer = r }
}

func WithSize(width, height int) Option {
	return func(a *App) {
		if width > 0 && height > 0 {
			a.width, a.height = width, height
		}
	}
}

type App struct {
	Config    *config.Config
	Scene     *scene.Scene
	Camera    *scene.Camera
	World     *world.Controller
	Registry  *registry.Registry
	Picker    *picker.Picker
	Panel     *tuning.Panel
	FrameRate *metrics.FrameRate
	Floor     *physics.RigidBody

	renderer    sim.Renderer
	instruments *metrics.Instruments
	log         *log.Logger
	setupErrs   []*SetupError
	names       map[string]*scene.Node
	width       int
	height      int
}

// New builds the scene described by cfg. An invalid cfg is an error; a body
// whose shape cannot be built is skipped and reported by SetupErrors.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Scene:     scene.New(),
		Registry:  registry.New(),
		FrameRate: metrics.NewFrameRate(),
		renderer:  sim.NopRenderer{},
		log:       logging.Discard(),
		names:     make(map[string]*scene.Node),
		width:     DefaultWidth,
		height:    DefaultHeight,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.Camera = scene.NewCamera(cfg.Camera.Fov, float32(a.width)/float32(a.height), cfg.Camera.Near, cfg.Camera.Far)
	a.Camera.Position = cfg.Camera.Position
	a.Camera.Target = cfg.Camera.Target

	a.World = world.New(cfg.Gravity, world.WithLogger(a.log), world.WithFriction(cfg.Friction))
	a.Panel = tuning.NewPanel(a.World, a.log)

	ins, err := metrics.NewInstruments()
	if err != nil {
		a.log.Warn("telemetry disabled", "err", err)
	}
	a.instruments = ins

	a.Picker = picker.New(a.Registry, a.World, picker.WithImpulse(cfg.Impulse), picker.WithLogger(a.log))

	for _, b := range cfg.Bodies {
		if err := a.addBody(b); err != nil {
			a.setupErrs = append(a.setupErrs, err)
			a.log.Error("body setup failed", "body", err.Body, "kind", err.Kind, "err", err.Err)
		}
	}

	if cfg.Floor.Enabled {
		if err := a.addFloor(); err != nil {
			return nil, fmt.Errorf("floor: %w", err)
		}
	}

	a.log.Info("scene ready", "bodies", a.Registry.Len(), "failed", len(a.setupErrs), "gravity", cfg.Gravity)
	return a, nil
}

func (a *App) addBody(b config.BodyConfig) *SetupError {
	fail := func(err error) *SetupError {
		return &SetupError{Body: b.Name, Kind: b.Collider, Err: err}
	}

	geo, err := geometry.ByName(b.Geometry)
	if err != nil {
		return fail(err)
	}
	kind, err := shape.ParseKind(b.Collider)
	if err != nil {
		return fail(err)
	}
	desc, err := shape.FromGeometry(kind, geo, a.Config.MaterialFor(b))
	if err != nil {
		return fail(err)
	}
	body, err := a.World.CreateBody(desc, b.Position, b.CanSleep)
	if err != nil {
		return fail(err)
	}

	node := scene.NewNode(b.Name, geo, scene.Material{Kind: scene.NormalMaterial})
	node.Position = body.Translation()
	node.Quaternion = body.Rotation()
	node.Pickable = true
	node.CastShadow = true
	if err := a.Registry.Add(node, body); err != nil {
		return fail(err)
	}
	a.Scene.Add(node)
	a.names[b.Name] = node
	return nil
}

func (a *App) addFloor() error {
	f := a.Config.Floor
	geo := geometry.NewBox(f.Size.X(), f.Size.Y(), f.Size.Z())
	desc := shape.NewCuboid(f.Size.Mul(0.5), shape.Material{Mass: 1, Restitution: f.Restitution})
	body, err := a.World.CreateFixedBody(desc, f.Position)
	if err != nil {
		return err
	}

	node := scene.NewNode("floor", geo, scene.Material{Kind: scene.PhongMaterial, Color: 0xffffff})
	node.Position = f.Position
	node.ReceiveShadow = true
	a.Scene.Add(node)
	a.Floor = body
	return nil
}

func (a *App) SetupErrors() []*SetupError { return a.setupErrs }

// SetupErr joins every setup failure, or returns nil.
func (a *App) SetupErr() error {
	errs := make([]error, len(a.setupErrs))
	for i, e := range a.setupErrs {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Node returns the bound node with the given config name.
func (a *App) Node(name string) (*scene.Node, bool) {
	n, ok := a.names[name]
	return n, ok
}

func (a *App) Body(name string) (*physics.RigidBody, bool) {
	n, ok := a.names[name]
	if !ok {
		return nil, false
	}
	return a.Registry.FindBodyForNode(n)
}

// Click pushes the body under the pointer, in surface pixels.
func (a *App) Click(x, y float32) (*physics.RigidBody, bool) {
	body, ok := a.Picker.Click(x, y, a.width, a.height, a.Camera, a.Scene.Pickable())
	if a.instruments != nil {
		a.instruments.Click(ok)
	}
	return body, ok
}

// Resize updates the camera aspect and forwards the size to the renderer.
// The simulation is untouched.
func (a *App) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.width, a.height = width, height
	a.Camera.SetAspect(width, height)
	if r, ok := a.renderer.(sim.Resizer); ok {
		r.Resize(width, height)
	}
	a.log.Debug("resized", "width", width, "height", height)
}

func (a *App) Size() (int, int) { return a.width, a.height }

func (a *App) Renderer() sim.Renderer { return a.renderer }

// NewDriver builds a frame driver over this instance with the frame-rate
// counter and telemetry attached.
func (a *App) NewDriver(opts ...sim.Option) *sim.Driver {
	opts = append([]sim.Option{sim.WithMaxDelta(a.Config.MaxDelta), sim.WithLogger(a.log)}, opts...)
	d := sim.NewDriver(a.World, a.Registry, a.Scene, a.Camera, a.renderer, opts...)
	d.AddMetric(a.FrameRate)
	if a.instruments != nil {
		d.AddObserver(a.instruments)
	}
	return d
}

// Gravity is a shortcut for the world's current gravity.
func (a *App) Gravity() mgl32.Vec3 { return a.World.Gravity() }
