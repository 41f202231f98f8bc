package config

import (
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt            = 0.01
	DefaultDuration      = 10.0
	DefaultInputStrength = 20.0
	DefaultRestitution   = 0.8
	DefaultDamping       = 0.98
	DefaultRestThreshold = -1.5
	DefaultRenderScale   = 0.2
	DefaultGroundD       = -1.0
	// NoPlayer disables input and the goal check.
	NoPlayer = -1
)

var (
	DefaultGravity      = mgl64.Vec3{0, -9.81, 0}
	DefaultGroundNormal = mgl64.Vec3{0, 1, 0}
)

type Config struct {
	Scene     string     `yaml:"scene"`
	Dt        float64    `yaml:"dt"`
	Duration  float64    `yaml:"duration"`
	Seed      int64      `yaml:"seed"`
	Gravity   mgl64.Vec3 `yaml:"gravity"`
	MaxBodies int        `yaml:"max_bodies"`

	Ground  PlaneConfig   `yaml:"ground"`
	Physics PhysicsConfig `yaml:"physics"`
	Bodies  []BodyConfig  `yaml:"bodies"`
	Random  RandomConfig  `yaml:"random"`

	// Player indexes Bodies; NoPlayer for none.
	Player        int         `yaml:"player"`
	InputStrength float64     `yaml:"input_strength"`
	Goal          *GoalConfig `yaml:"goal,omitempty"`
	Mesh          *MeshConfig `yaml:"mesh,omitempty"`

	Spawner *SpawnConfig `yaml:"spawner,omitempty"`
}

type PlaneConfig struct {
	Normal mgl64.Vec3 `yaml:"normal"`
	D      float64    `yaml:"d"`
}

type PhysicsConfig struct {
	Restitution      float64 `yaml:"restitution"`
	Damping          float64 `yaml:"damping"`
	RestingThreshold float64 `yaml:"resting_threshold"`
	RenderScale      float64 `yaml:"render_scale"`
}

type BodyConfig struct {
	Position mgl64.Vec3 `yaml:"position"`
	Velocity mgl64.Vec3 `yaml:"velocity"`
	Mass     float64    `yaml:"mass"`
	Radius   float64    `yaml:"radius"`
}

// RandomConfig spawns Count extra bodies uniformly inside [Min, Max] using
// the run seed.
type RandomConfig struct {
	Count     int        `yaml:"count"`
	Min       mgl64.Vec3 `yaml:"min"`
	Max       mgl64.Vec3 `yaml:"max"`
	RadiusMin float64    `yaml:"radius_min"`
	RadiusMax float64    `yaml:"radius_max"`
	MassMin   float64    `yaml:"mass_min"`
	MassMax   float64    `yaml:"mass_max"`
	Speed     float64    `yaml:"speed"`
}

// SpawnConfig adds a copy of Body to the running world every Interval
// seconds, at most Limit times (zero: until MaxBodies refuses).
type SpawnConfig struct {
	Interval float64    `yaml:"interval"`
	Limit    int        `yaml:"limit"`
	Body     BodyConfig `yaml:"body"`
}

type GoalConfig struct {
	Center      mgl64.Vec3 `yaml:"center"`
	HalfExtents mgl64.Vec3 `yaml:"half_extents"`
}

type MeshConfig struct {
	Vertices []mgl64.Vec3 `yaml:"vertices"`
	Indices  []int        `yaml:"indices"`
}

func DefaultPhysics() PhysicsConfig {
	return PhysicsConfig{
		Restitution:      DefaultRestitution,
		Damping:          DefaultDamping,
		RestingThreshold: DefaultRestThreshold,
		RenderScale:      DefaultRenderScale,
	}
}

// DefaultRandom is the spawn range used when bodies are requested without
// one.
func DefaultRandom() RandomConfig {
	return RandomConfig{
		Min:       mgl64.Vec3{-4, 2, -4},
		Max:       mgl64.Vec3{4, 8, 4},
		RadiusMin: 0.3,
		RadiusMax: 0.6,
		MassMin:   1,
		MassMax:   2,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Scene:         "custom",
		Dt:            DefaultDt,
		Duration:      DefaultDuration,
		Gravity:       DefaultGravity,
		Ground:        PlaneConfig{Normal: DefaultGroundNormal, D: DefaultGroundD},
		Physics:       DefaultPhysics(),
		Player:        NoPlayer,
		InputStrength: DefaultInputStrength,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy so presets can be modified by callers.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = append([]BodyConfig(nil), c.Bodies...)
	if c.Goal != nil {
		g := *c.Goal
		out.Goal = &g
	}
	if c.Spawner != nil {
		sp := *c.Spawner
		out.Spawner = &sp
	}
	if c.Mesh != nil {
		out.Mesh = &MeshConfig{
			Vertices: append([]mgl64.Vec3(nil), c.Mesh.Vertices...),
			Indices:  append([]int(nil), c.Mesh.Indices...),
		}
	}
	return &out
}

// TotalBodies is the number of bodies the scene starts with.
func (c *Config) TotalBodies() int {
	return len(c.Bodies) + c.Random.Count
}

// SetRandomBodies requests n random bodies, filling in DefaultRandom when no
// spawn range is set.
func (c *Config) SetRandomBodies(n int) {
	if c.Random.RadiusMax <= 0 {
		c.Random = DefaultRandom()
	}
	c.Random.Count = n
}
