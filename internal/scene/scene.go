// Package scene spawns the world described by a config.
package scene

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/collision"
	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/game"
	"github.com/san-kum/spheresim/internal/physics"
	"github.com/san-kum/spheresim/internal/world"
)

var (
	ErrNoBodies      = errors.New("scene: no bodies")
	ErrInvalidPlayer = errors.New("scene: player index out of range")
	ErrInvalidRandom = errors.New("scene: invalid random spawn range")
)

// Build creates a session from cfg. Random bodies are drawn from cfg.Seed
// and appended after the explicit ones.
func Build(cfg *config.Config) (*game.Session, error) {
	if cfg.Random.Count < 0 {
		return nil, fmt.Errorf("%w: count %d", ErrInvalidRandom, cfg.Random.Count)
	}
	if cfg.TotalBodies() == 0 {
		return nil, ErrNoBodies
	}
	if cfg.Player != config.NoPlayer && (cfg.Player < 0 || cfg.Player >= len(cfg.Bodies)) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPlayer, cfg.Player)
	}

	ground, err := collision.NewPlane(cfg.Ground.Normal, cfg.Ground.D)
	if err != nil {
		return nil, fmt.Errorf("ground: %w", err)
	}
	w := world.New(ground)
	w.Gravity = cfg.Gravity
	w.MaxBodies = cfg.MaxBodies

	if cfg.Mesh != nil {
		mesh, err := collision.MeshFromIndexed(cfg.Mesh.Vertices, cfg.Mesh.Indices)
		if err != nil {
			return nil, fmt.Errorf("mesh: %w", err)
		}
		w.SetMesh(mesh)
	}

	specs, err := Specs(cfg)
	if err != nil {
		return nil, err
	}
	params := Params(cfg.Physics)

	handles := make([]world.Handle, 0, len(specs))
	for i, spec := range specs {
		b, err := physics.New(spec)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		b.Params = params
		b.UpdateMatrix()
		h, err := w.AddObject(b)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		handles = append(handles, h)
	}
	if cfg.Spawner != nil {
		obs, err := spawner(*cfg.Spawner, params)
		if err != nil {
			return nil, err
		}
		w.AddObserver(obs)
	}

	s := game.NewSession(w)
	s.Input.Strength = cfg.InputStrength
	if cfg.Player != config.NoPlayer {
		if err := s.SetPlayer(handles[cfg.Player]); err != nil {
			return nil, err
		}
	}
	if cfg.Goal != nil {
		region, err := collision.BoxFromCenter(cfg.Goal.Center, cfg.Goal.HalfExtents)
		if err != nil {
			return nil, fmt.Errorf("goal: %w", err)
		}
		s.Goal = game.NewGoal(region, nil)
	}
	return s, nil
}

// Specs lists every body cfg spawns, explicit bodies first.
func Specs(cfg *config.Config) ([]physics.Spec, error) {
	if cfg.Random.Count < 0 {
		return nil, fmt.Errorf("%w: count %d", ErrInvalidRandom, cfg.Random.Count)
	}
	specs := make([]physics.Spec, 0, cfg.TotalBodies())
	for _, bc := range cfg.Bodies {
		specs = append(specs, spawnSpec(bc))
	}

	rc := cfg.Random
	if rc.Count == 0 {
		return specs, nil
	}
	if rc.RadiusMin > rc.RadiusMax || rc.MassMin > rc.MassMax {
		return nil, ErrInvalidRandom
	}
	if _, err := collision.NewBox(rc.Min, rc.Max); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRandom, err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	span := rc.Max.Sub(rc.Min)
	for i := 0; i < rc.Count; i++ {
		pos := mgl64.Vec3{
			rc.Min.X() + rng.Float64()*span.X(),
			rc.Min.Y() + rng.Float64()*span.Y(),
			rc.Min.Z() + rng.Float64()*span.Z(),
		}
		vel := mgl64.Vec3{rng.Float64()*2 - 1, 0, rng.Float64()*2 - 1}.Mul(rc.Speed)
		specs = append(specs, physics.Spec{
			Position: pos,
			Velocity: vel,
			Mass:     rc.MassMin + rng.Float64()*(rc.MassMax-rc.MassMin),
			Radius:   rc.RadiusMin + rng.Float64()*(rc.RadiusMax-rc.RadiusMin),
		})
	}
	return specs, nil
}

// Params converts the configured response constants.
func Params(pc config.PhysicsConfig) physics.Params {
	return physics.Params{
		Restitution:      pc.Restitution,
		Damping:          pc.Damping,
		RestingThreshold: pc.RestingThreshold,
		RenderScale:      pc.RenderScale,
	}
}
