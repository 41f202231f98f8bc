package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/collision"
	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/physics"
	"github.com/san-kum/spheresim/internal/world"
)

func near(a, b mgl64.Vec3) bool { return a.Sub(b).Len() < 1e-9 }

func preset(t *testing.T, name string) *config.Config {
	t.Helper()
	cfg, err := config.GetPreset(name)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestBuildPresets(t *testing.T) {
	for _, name := range config.ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := preset(t, name)
			s, err := Build(cfg)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if s.World.Len() != cfg.TotalBodies() {
				t.Errorf("expected %d bodies, got %d", cfg.TotalBodies(), s.World.Len())
			}
		})
	}
}

func TestBuildLevel(t *testing.T) {
	s, err := Build(preset(t, "level"))
	if err != nil {
		t.Fatal(err)
	}
	player, ok := s.PlayerBody()
	if !ok {
		t.Fatal("expected a player")
	}
	if player.Position() != (mgl64.Vec3{10, 5.5, -10}) || player.Mass != 5 || player.Radius() != 0.5 {
		t.Errorf("unexpected player at %v mass %v radius %v", player.Position(), player.Mass, player.Radius())
	}
	if s.Goal == nil {
		t.Fatal("expected a goal")
	}
	if !near(s.Goal.Region.Center(), mgl64.Vec3{-46, -4, 44}) {
		t.Errorf("unexpected goal center %v", s.Goal.Region.Center())
	}
	if s.World.Mesh() == nil || s.World.Mesh().Len() != 4 {
		t.Errorf("expected a 4 triangle mesh")
	}
	if s.Input.Strength != 20 {
		t.Errorf("expected input strength 20, got %v", s.Input.Strength)
	}
	if s.World.Ground().D != -1 {
		t.Errorf("expected ground d -1, got %v", s.World.Ground().D)
	}
}

func TestBuildAppliesParams(t *testing.T) {
	cfg := preset(t, "drop")
	cfg.Physics.Restitution = 0.5
	s, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := s.World.Body(0)
	if b.Params.Restitution != 0.5 || b.Params.Damping != physics.DefaultDamping {
		t.Errorf("unexpected params %+v", b.Params)
	}
}

func TestSpecsDeterministic(t *testing.T) {
	cfg := preset(t, "pile")
	a, err := Specs(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Specs(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 12 {
		t.Fatalf("expected 12 specs, got %d", len(a))
	}
	for i := range a {
		if a[i].Position != b[i].Position || a[i].Radius != b[i].Radius {
			t.Errorf("spec %d differs between runs with the same seed", i)
		}
	}

	region, _ := collision.NewBox(cfg.Random.Min, cfg.Random.Max)
	for i, s := range a {
		if region.ClosestPoint(s.Position) != s.Position {
			t.Errorf("spec %d at %v outside spawn region", i, s.Position)
		}
		if s.Radius < 0.3 || s.Radius > 0.6 {
			t.Errorf("spec %d radius %v out of range", i, s.Radius)
		}
	}

	cfg.Seed = 43
	c, err := Specs(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if c[0].Position == a[0].Position {
		t.Error("expected a different layout for a different seed")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *config.Config)
		err    error
	}{
		{"no bodies", func(c *config.Config) { c.Bodies = nil }, ErrNoBodies},
		{"player out of range", func(c *config.Config) { c.Player = 3 }, ErrInvalidPlayer},
		{"bad ground", func(c *config.Config) { c.Ground.Normal = mgl64.Vec3{0, 2, 0} }, collision.ErrInvalidNormal},
		{"bad radius", func(c *config.Config) { c.Bodies[0].Radius = 0 }, collision.ErrInvalidRadius},
		{"bad mass", func(c *config.Config) { c.Bodies[0].Mass = -1 }, physics.ErrInvalidMass},
		{"bad mesh", func(c *config.Config) { c.Mesh.Indices = c.Mesh.Indices[:4] }, collision.ErrInvalidMesh},
		{"bad goal", func(c *config.Config) { c.Goal.HalfExtents = mgl64.Vec3{-1, 1, 1} }, collision.ErrInvalidBox},
		{"negative random count", func(c *config.Config) { c.Random.Count = -1 }, ErrInvalidRandom},
		{"negative random count only", func(c *config.Config) {
			c.Bodies = nil
			c.Player = config.NoPlayer
			c.Random = config.DefaultRandom()
			c.Random.Count = -3
		}, ErrInvalidRandom},
		{"nan goal", func(c *config.Config) { c.Goal.Center = mgl64.Vec3{math.NaN(), 0, 0} }, collision.ErrInvalidBox},
		{"zero spawn interval", func(c *config.Config) {
			c.Spawner = &config.SpawnConfig{Body: c.Bodies[0]}
		}, ErrInvalidSpawner},
		{"negative spawn limit", func(c *config.Config) {
			c.Spawner = &config.SpawnConfig{Interval: 1, Limit: -1, Body: c.Bodies[0]}
		}, ErrInvalidSpawner},
		{"bad spawn body", func(c *config.Config) {
			c.Spawner = &config.SpawnConfig{Interval: 1, Body: config.BodyConfig{Mass: 1}}
		}, ErrInvalidSpawner},
		{"cap", func(c *config.Config) {
			c.MaxBodies = 1
			c.Bodies = append(c.Bodies, config.BodyConfig{Position: mgl64.Vec3{0, 9, 0}, Mass: 1, Radius: 0.5})
		}, world.ErrWorldFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := preset(t, "level")
			tt.modify(cfg)
			_, err := Build(cfg)
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestSpawnerAddsBodiesBetweenSteps(t *testing.T) {
	cfg := preset(t, "rain")
	cfg.Physics.Restitution = 0.6
	s, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	w := s.World

	steps := 0
	for w.Len() == 1 && steps < 100 {
		if err := w.Update(0.01); err != nil {
			t.Fatal(err)
		}
		steps++
	}
	if steps != 50 {
		t.Fatalf("expected the first spawn after 50 steps, got %d", steps)
	}
	b, _ := w.Body(1)
	if b.Position() != cfg.Spawner.Body.Position || b.Velocity != (mgl64.Vec3{}) {
		t.Errorf("spawned body moved during its own step: %v %v", b.Position(), b.Velocity)
	}
	if b.Params.Restitution != 0.6 || b.Radius() != 0.4 {
		t.Errorf("unexpected spawned body params %+v radius %v", b.Params, b.Radius())
	}

	for i := 0; i < 1000; i++ {
		if err := w.Update(0.01); err != nil {
			t.Fatal(err)
		}
	}
	if w.Len() != 1+cfg.Spawner.Limit {
		t.Errorf("expected %d bodies at the limit, got %d", 1+cfg.Spawner.Limit, w.Len())
	}
}

func TestSpawnerStopsWhenWorldFull(t *testing.T) {
	cfg := preset(t, "rain")
	cfg.MaxBodies = 3
	s, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 500; i++ {
		if err := s.World.Update(0.01); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if s.World.Len() != 3 {
		t.Errorf("expected 3 bodies, got %d", s.World.Len())
	}
}
