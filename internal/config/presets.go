package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

// Goal region and player spawn of the level scene.
var (
	LevelPlayerSpawn = mgl64.Vec3{10, 5.5, -10}
	LevelGoalCenter  = mgl64.Vec3{-46, -4, 44}
	LevelGoalHalf    = mgl64.Vec3{10.6, 4.4, 4.0}
)

func withDefaults(apply func(c *Config)) *Config {
	c := DefaultConfig()
	apply(c)
	return c
}

var Presets = map[string]*Config{
	"drop": withDefaults(func(c *Config) {
		c.Scene = "drop"
		c.Duration = 5
		c.Bodies = []BodyConfig{
			{Position: mgl64.Vec3{0, 5, 0}, Mass: 1, Radius: 0.5},
		}
	}),
	"collide": withDefaults(func(c *Config) {
		c.Scene = "collide"
		c.Duration = 5
		c.Bodies = []BodyConfig{
			// launched from above the ground so they meet in the air
			{Position: mgl64.Vec3{-2, 5, 0}, Velocity: mgl64.Vec3{6, 0, 0}, Mass: 1, Radius: 0.5},
			{Position: mgl64.Vec3{2, 5, 0}, Velocity: mgl64.Vec3{-6, 0, 0}, Mass: 1, Radius: 0.5},
		}
	}),
	"stack": withDefaults(func(c *Config) {
		c.Scene = "stack"
		c.Duration = 8
		c.Bodies = []BodyConfig{
			{Position: mgl64.Vec3{0, 2, 0}, Mass: 3, Radius: 0.5},
			{Position: mgl64.Vec3{0.1, 4, 0}, Mass: 2, Radius: 0.5},
			{Position: mgl64.Vec3{-0.1, 6, 0.1}, Mass: 1, Radius: 0.5},
		}
	}),
	"pile": withDefaults(func(c *Config) {
		c.Scene = "pile"
		c.Seed = 42
		c.Random = RandomConfig{
			Count:     12,
			Min:       mgl64.Vec3{-3, 3, -3},
			Max:       mgl64.Vec3{3, 10, 3},
			RadiusMin: 0.3,
			RadiusMax: 0.6,
			MassMin:   1,
			MassMax:   3,
			Speed:     1,
		}
	}),
	"rain": withDefaults(func(c *Config) {
		c.Scene = "rain"
		c.Duration = 6
		c.Bodies = []BodyConfig{
			{Position: mgl64.Vec3{0, 3, 0}, Mass: 2, Radius: 0.6},
		}
		c.Spawner = &SpawnConfig{
			Interval: 0.5,
			Limit:    8,
			Body:     BodyConfig{Position: mgl64.Vec3{0.2, 8, 0.1}, Mass: 1, Radius: 0.4},
		}
	}),
	"level": withDefaults(func(c *Config) {
		c.Scene = "level"
		c.Duration = 30
		c.Bodies = []BodyConfig{
			{Position: LevelPlayerSpawn, Mass: 5, Radius: 0.5},
		}
		c.Player = 0
		c.Goal = &GoalConfig{Center: LevelGoalCenter, HalfExtents: LevelGoalHalf}
		c.Mesh = &MeshConfig{
			// spawn platform and a ramp down to the ground toward -x
			Vertices: []mgl64.Vec3{
				{6, 4, -14}, {14, 4, -14}, {14, 4, -6}, {6, 4, -6},
				{0, 1, -14}, {0, 1, -6},
			},
			Indices: []int{
				0, 2, 1, 0, 3, 2,
				4, 3, 0, 4, 5, 3,
			},
		}
	}),
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (*Config, error) {
	cfg, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	return cfg.Clone(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
