package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/collision"
)

// ErrInvalidMass indicates a non-positive or non-finite mass.
var ErrInvalidMass = errors.New("physics: mass must be positive and finite")

const (
	DefaultRestitution      = 0.8
	DefaultDamping          = 0.98
	DefaultRestingThreshold = -1.5
	DefaultRenderScale      = 0.2
)

// Params are the per-body response constants.
type Params struct {
	Restitution float64
	// Damping multiplies the velocity once per Integrate call.
	Damping float64
	// RestingThreshold: a static contact whose velocity correction is greater
	// than this (i.e. smaller in magnitude) is resolved as resting contact.
	RestingThreshold float64
	// RenderScale is the uniform scale baked into Transform.
	RenderScale float64
}

func DefaultParams() Params {
	return Params{
		Restitution:      DefaultRestitution,
		Damping:          DefaultDamping,
		RestingThreshold: DefaultRestingThreshold,
		RenderScale:      DefaultRenderScale,
	}
}

// Renderable receives a body's world transform once per frame. The body
// does not own it.
type Renderable interface {
	SetTransform(m mgl64.Mat4)
}

// Spec describes a body to spawn.
type Spec struct {
	Position   mgl64.Vec3
	Velocity   mgl64.Vec3
	Mass       float64
	Radius     float64
	Renderable Renderable
}

// Body is a simulated sphere.
type Body struct {
	// ID is assigned by the world the body is added to; zero means unowned.
	ID int

	position mgl64.Vec3
	collider collision.Sphere

	// Orientation and AngularVelocity are carried but never integrated.
	Orientation     mgl64.Quat
	AngularVelocity mgl64.Vec3

	Velocity mgl64.Vec3
	Mass     float64

	// Accumulator sums forces until the next Integrate.
	Accumulator mgl64.Vec3

	Renderable Renderable
	Transform  mgl64.Mat4

	Params Params
}

// New validates spec and builds a body at rest orientation.
func New(spec Spec) (*Body, error) {
	if !(spec.Mass > 0) || math.IsInf(spec.Mass, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMass, spec.Mass)
	}
	sphere, err := collision.NewSphere(spec.Position, spec.Radius)
	if err != nil {
		return nil, err
	}
	b := &Body{
		collider:    sphere,
		Orientation: mgl64.QuatIdent(),
		Velocity:    spec.Velocity,
		Mass:        spec.Mass,
		Renderable:  spec.Renderable,
		Params:      DefaultParams(),
	}
	b.SetPosition(spec.Position)
	b.UpdateMatrix()
	return b, nil
}

// SetPosition moves the body and its collider together.
func (b *Body) SetPosition(p mgl64.Vec3) {
	b.position = p
	b.collider.Center = p
}

func (b *Body) Position() mgl64.Vec3 { return b.position }

// Collider returns a copy of the body's sphere.
func (b *Body) Collider() collision.Sphere { return b.collider }

func (b *Body) Radius() float64 { return b.collider.Radius }

// ApplyForceToCenter adds f to the force accumulator. No torque is produced.
func (b *Body) ApplyForceToCenter(f mgl64.Vec3) {
	b.Accumulator = b.Accumulator.Add(f)
}

// ApplyImpulse adds j directly to the velocity.
func (b *Body) ApplyImpulse(j mgl64.Vec3) {
	b.Velocity = b.Velocity.Add(j)
}

// Integrate advances the body by dt and clears the accumulator.
func (b *Body) Integrate(dt float64) {
	accel := b.Accumulator.Mul(1 / b.Mass)
	b.Velocity = b.Velocity.Add(accel.Mul(dt))
	b.SetPosition(b.position.Add(b.Velocity.Mul(dt)))
	b.Velocity = b.Velocity.Mul(b.Params.Damping)
	b.Accumulator = mgl64.Vec3{}
}

// UpdateMatrix rebuilds Transform from the position and the fixed render
// scale and pushes it to the renderable. Orientation is not applied.
func (b *Body) UpdateMatrix() {
	s := b.Params.RenderScale
	p := b.position
	b.Transform = mgl64.Translate3D(p.X(), p.Y(), p.Z()).Mul4(mgl64.Scale3D(s, s, s))
	if b.Renderable != nil {
		b.Renderable.SetTransform(b.Transform)
	}
}

// KineticEnergy is ½mv².
func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * b.Velocity.LenSqr()
}

// AtRest reports whether the velocity is exactly zero, which only happens
// after a resting-contact snap.
func (b *Body) AtRest() bool {
	return b.Velocity == mgl64.Vec3{}
}
