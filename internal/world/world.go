// Package world holds the simulated bodies and the static geometry they
// collide with, and advances them with a fixed four-phase step.
package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/collision"
	"github.com/san-kum/spheresim/internal/physics"
)

// DefaultGravity is the acceleration applied to every body.
var DefaultGravity = mgl64.Vec3{0, -9.81, 0}

// Handle identifies a body inside one world. Bodies are never removed, so a
// handle stays valid for the lifetime of the world.
type Handle int

// Observer is called at the end of every step, after collision response.
// Bodies added from an observer are queued until the step finishes.
type Observer func(w *World, dt float64)

type World struct {
	Gravity mgl64.Vec3
	// MaxBodies caps AddObject; zero means unbounded.
	MaxBodies int

	ground collision.Plane
	mesh   *collision.TriangleMesh

	bodies    []*physics.Body
	pending   []*physics.Body
	observers []Observer
	stepping  bool
}

func New(ground collision.Plane) *World {
	return &World{
		Gravity: DefaultGravity,
		ground:  ground,
		bodies:  make([]*physics.Body, 0),
	}
}

func (w *World) Ground() collision.Plane { return w.ground }

func (w *World) SetGround(p collision.Plane) { w.ground = p }

// SetMesh installs the static level mesh; nil removes it.
func (w *World) SetMesh(m *collision.TriangleMesh) { w.mesh = m }

func (w *World) Mesh() *collision.TriangleMesh { return w.mesh }

func (w *World) AddObserver(o Observer) { w.observers = append(w.observers, o) }

// AddObject takes ownership of b. During a step the body is queued and
// joins the simulation at the step boundary; its handle is valid at once.
func (w *World) AddObject(b *physics.Body) (Handle, error) {
	if b == nil {
		return 0, ErrNilBody
	}
	if b.ID != 0 {
		return 0, fmt.Errorf("%w: id %d", ErrAlreadyAdded, b.ID)
	}
	n := len(w.bodies) + len(w.pending)
	if w.MaxBodies > 0 && n >= w.MaxBodies {
		return 0, fmt.Errorf("%w: %d", ErrWorldFull, w.MaxBodies)
	}

	h := Handle(n)
	b.ID = n + 1
	if w.stepping {
		w.pending = append(w.pending, b)
	} else {
		w.bodies = append(w.bodies, b)
	}
	return h, nil
}

// Body resolves h, including bodies still queued by a running step.
func (w *World) Body(h Handle) (*physics.Body, bool) {
	i := int(h)
	if i < 0 {
		return nil, false
	}
	if i < len(w.bodies) {
		return w.bodies[i], true
	}
	i -= len(w.bodies)
	if i < len(w.pending) {
		return w.pending[i], true
	}
	return nil, false
}

// Bodies returns the live bodies in insertion order. The slice is shared.
func (w *World) Bodies() []*physics.Body { return w.bodies }

func (w *World) Len() int { return len(w.bodies) }

// Update advances every body by dt:
//
//  1. gravity is applied as a force,
//  2. every body is integrated,
//  3. every body is resolved against the ground and the mesh,
//  4. every unordered pair is resolved once, in insertion order.
func (w *World) Update(dt float64) error {
	if !(dt >= 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTimestep, dt)
	}

	w.stepping = true
	for _, b := range w.bodies {
		b.ApplyForceToCenter(w.Gravity.Mul(b.Mass))
	}
	for _, b := range w.bodies {
		b.Integrate(dt)
	}
	for _, b := range w.bodies {
		b.HandlePlane(w.ground, dt)
		if w.mesh != nil {
			b.HandleMesh(w.mesh, dt)
		}
	}
	for i := 0; i < len(w.bodies); i++ {
		for j := i + 1; j < len(w.bodies); j++ {
			w.bodies[i].HandleBody(w.bodies[j], dt)
		}
	}
	for _, o := range w.observers {
		o(w, dt)
	}
	w.stepping = false

	w.bodies = append(w.bodies, w.pending...)
	w.pending = w.pending[:0]
	return nil
}

// KineticEnergy sums ½mv² over the live bodies.
func (w *World) KineticEnergy() float64 {
	var e float64
	for _, b := range w.bodies {
		e += b.KineticEnergy()
	}
	return e
}

// UpdateMatrices refreshes the render transform of every body.
func (w *World) UpdateMatrices() {
	for _, b := range w.bodies {
		b.UpdateMatrix()
	}
}
