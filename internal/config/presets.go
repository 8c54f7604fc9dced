package config

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Presets adjust the default scene. Each call of GetPreset starts from a
// fresh DefaultConfig.
var Presets = map[string]func(*Config){
	"default": func(*Config) {},
	"moon": func(c *Config) {
		c.Gravity = mgl32.Vec3{0, -1.62, 0}
	},
	"zero_g": func(c *Config) {
		c.Gravity = mgl32.Vec3{}
		c.Impulse = mgl32.Vec3{0, 2, 0}
	},
	"sideways": func(c *Config) {
		c.Gravity = mgl32.Vec3{4, -9.81, 0}
	},
	"bouncy": func(c *Config) {
		c.Material.Restitution = 1.3
		c.Floor.Restitution = 0.9
	},
	"calm": func(c *Config) {
		c.Material.Restitution = 0.2
		for i := range c.Bodies {
			c.Bodies[i].CanSleep = true
		}
	},
}

func GetPreset(name string) (*Config, error) {
	apply, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
