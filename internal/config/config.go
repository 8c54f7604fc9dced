package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigidsync/internal/logging"
	"github.com/san-kum/rigidsync/internal/shape"
)

const (
	DefaultMaxDelta    = 0.1
	DefaultFrames      = 600
	DefaultFrameRate   = 60.0
	DefaultFov         = 75.0
	DefaultNear        = 0.1
	DefaultFar         = 100.0
	DefaultMass        = 1.0
	DefaultRestitution = 1.1
	DefaultFriction    = 0.5
	DefaultDataDir     = "runs"

	// GravityLimit bounds each gravity axis in the tuning panel.
	GravityLimit = 10.0
)

var DefaultGravity = mgl32.Vec3{0, -9.81, 0}

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrUnknownPreset = errors.New("unknown preset")
)

type Config struct {
	Gravity  mgl32.Vec3      `yaml:"gravity,flow"`
	MaxDelta float32         `yaml:"max_delta"`
	Impulse  mgl32.Vec3      `yaml:"impulse,flow"`
	Material shape.Material  `yaml:"material"`
	Friction float32         `yaml:"friction"`
	Camera   CameraConfig    `yaml:"camera"`
	Floor    FloorConfig     `yaml:"floor"`
	Bodies   []BodyConfig    `yaml:"bodies"`
	Run      RunConfig       `yaml:"run"`
	Logging  logging.Options `yaml:"logging"`
	Influx   InfluxConfig    `yaml:"influx"`
}

type CameraConfig struct {
	Fov      float32    `yaml:"fov"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
	Position mgl32.Vec3 `yaml:"position,flow"`
	Target   mgl32.Vec3 `yaml:"target,flow"`
}

// FloorConfig describes the fixed slab under the scene. Size is the full
// visual extent; the collider uses half of it.
type FloorConfig struct {
	Enabled     bool       `yaml:"enabled"`
	Size        mgl32.Vec3 `yaml:"size,flow"`
	Position    mgl32.Vec3 `yaml:"position,flow"`
	Restitution float32    `yaml:"restitution"`
}

// BodyConfig binds one visual geometry to one collider kind.
type BodyConfig struct {
	Name     string          `yaml:"name"`
	Geometry string          `yaml:"geometry"`
	Collider string          `yaml:"collider"`
	Position mgl32.Vec3      `yaml:"position,flow"`
	CanSleep bool            `yaml:"can_sleep"`
	Material *shape.Material `yaml:"material,omitempty"`
}

// Geometry names accepted in BodyConfig.Geometry.
var GeometryNames = []string{"box", "sphere", "cylinder", "icosahedron", "torus_knot"}

type RunConfig struct {
	Frames    int     `yaml:"frames"`
	FrameRate float64 `yaml:"frame_rate"`
	DataDir   string  `yaml:"data_dir"`
}

type InfluxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

func DefaultConfig() *Config {
	return &Config{
		Gravity:  DefaultGravity,
		MaxDelta: DefaultMaxDelta,
		Impulse:  mgl32.Vec3{0, 10, 0},
		Material: shape.Material{Mass: DefaultMass, Restitution: DefaultRestitution},
		Friction: DefaultFriction,
		Camera: CameraConfig{
			Fov:      DefaultFov,
			Near:     DefaultNear,
			Far:      DefaultFar,
			Position: mgl32.Vec3{0, 2, 5},
			Target:   mgl32.Vec3{0, 1, 0},
		},
		Floor: FloorConfig{
			Enabled:  true,
			Size:     mgl32.Vec3{100, 1, 100},
			Position: mgl32.Vec3{0, -1, 0},
		},
		Bodies: DemoBodies(),
		Run: RunConfig{
			Frames:    DefaultFrames,
			FrameRate: DefaultFrameRate,
			DataDir:   DefaultDataDir,
		},
		Logging: logging.Options{Level: "info"},
		Influx:  InfluxConfig{Bucket: "rigidsync"},
	}
}

// DemoBodies is the five-shape showcase scene.
func DemoBodies() []BodyConfig {
	return []BodyConfig{
		{Name: "cube", Geometry: "box", Collider: "cuboid", Position: mgl32.Vec3{0, 5, 0}},
		{Name: "sphere", Geometry: "sphere", Collider: "ball", Position: mgl32.Vec3{-2, 5, 0}},
		{Name: "cylinder", Geometry: "cylinder", Collider: "cylinder", Position: mgl32.Vec3{0, 5, 0}},
		{Name: "icosahedron", Geometry: "icosahedron", Collider: "convex_hull", Position: mgl32.Vec3{2, 5, 0}},
		{Name: "torus_knot", Geometry: "torus_knot", Collider: "trimesh", Position: mgl32.Vec3{4, 5, 0}, CanSleep: true},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseGravity returns the gravity set by data. ok is false when data has no
// gravity key.
func ParseGravity(data []byte) (g mgl32.Vec3, ok bool, err error) {
	var doc struct {
		Gravity *mgl32.Vec3 `yaml:"gravity"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return g, false, err
	}
	if doc.Gravity == nil {
		return g, false, nil
	}
	if !finiteVec(*doc.Gravity) {
		return g, false, fmt.Errorf("%w: gravity %v", ErrInvalidConfig, *doc.Gravity)
	}
	return *doc.Gravity, true, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Write encodes cfg as YAML with two-space indentation.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// MaterialFor returns the body's own material or the default one.
func (c *Config) MaterialFor(b BodyConfig) shape.Material {
	if b.Material != nil {
		return *b.Material
	}
	return c.Material
}

// Validate checks the scene-wide settings. Individual body materials and
// shapes are checked when the scene is built so one bad body does not reject
// the whole file.
func (c *Config) Validate() error {
	if !finiteVec(c.Gravity) {
		return fmt.Errorf("%w: gravity %v", ErrInvalidConfig, c.Gravity)
	}
	if !finiteVec(c.Impulse) {
		return fmt.Errorf("%w: impulse %v", ErrInvalidConfig, c.Impulse)
	}
	if !(c.MaxDelta > 0) || c.MaxDelta > DefaultMaxDelta {
		return fmt.Errorf("%w: max_delta %g must be in (0, %g]", ErrInvalidConfig, c.MaxDelta, DefaultMaxDelta)
	}
	if c.Friction < 0 {
		return fmt.Errorf("%w: friction %g", ErrInvalidConfig, c.Friction)
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		return fmt.Errorf("%w: camera fov %g", ErrInvalidConfig, c.Camera.Fov)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("%w: camera clip planes %g..%g", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	}
	if c.Floor.Enabled && (c.Floor.Size.X() <= 0 || c.Floor.Size.Y() <= 0 || c.Floor.Size.Z() <= 0) {
		return fmt.Errorf("%w: floor size %v", ErrInvalidConfig, c.Floor.Size)
	}
	if c.Run.Frames < 0 || c.Run.FrameRate <= 0 {
		return fmt.Errorf("%w: run frames %d at %g fps", ErrInvalidConfig, c.Run.Frames, c.Run.FrameRate)
	}

	seen := make(map[string]bool, len(c.Bodies))
	for i, b := range c.Bodies {
		if b.Name == "" {
			return fmt.Errorf("%w: body %d has no name", ErrInvalidConfig, i)
		}
		if seen[b.Name] {
			return fmt.Errorf("%w: duplicate body %q", ErrInvalidConfig, b.Name)
		}
		seen[b.Name] = true
	}
	return nil
}

func finiteVec(v mgl32.Vec3) bool {
	for _, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return false
		}
	}
	return true
}
