package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/collision"
	"github.com/san-kum/spheresim/internal/physics"
)

var gravity = mgl64.Vec3{0, -9.81, 0}

func body(t *testing.T, pos, vel mgl64.Vec3, mass float64) *physics.Body {
	t.Helper()
	b, err := physics.New(physics.Spec{Position: pos, Velocity: vel, Mass: mass, Radius: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestTotalEnergy(t *testing.T) {
	bodies := []*physics.Body{
		body(t, mgl64.Vec3{0, 2, 0}, mgl64.Vec3{0, 0, 0}, 1),
		body(t, mgl64.Vec3{5, 0, 0}, mgl64.Vec3{3, 0, 4}, 2),
	}
	expected := 1*9.81*2 + 0.5*2*25
	if got := TotalEnergy(bodies, gravity); math.Abs(got-expected) > 1e-9 {
		t.Errorf("expected energy %f, got %f", expected, got)
	}
}

func TestEnergyReset(t *testing.T) {
	m := NewEnergy(gravity)
	bodies := []*physics.Body{body(t, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0}, 1)}

	m.Observe(bodies, 0)
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyLoss(t *testing.T) {
	m := NewEnergyLoss(gravity)
	b := body(t, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 0}, 1)
	bodies := []*physics.Body{b}

	m.Observe(bodies, 0)
	b.Velocity = mgl64.Vec3{1, 0, 0}
	m.Observe(bodies, 1)

	if got := m.Value(); math.Abs(got-0.75) > 1e-12 {
		t.Errorf("expected loss 0.75, got %f", got)
	}
}

func TestMaxPenetration(t *testing.T) {
	m := NewMaxPenetration()
	a := body(t, mgl64.Vec3{0, 5, 0}, mgl64.Vec3{}, 1)
	b := body(t, mgl64.Vec3{0.8, 5, 0}, mgl64.Vec3{}, 1)
	c := body(t, mgl64.Vec3{10, 5, 0}, mgl64.Vec3{}, 1)

	m.Observe([]*physics.Body{a, b, c}, 0)
	if got := m.Value(); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("expected 0.2, got %f", got)
	}

	b.SetPosition(mgl64.Vec3{3, 5, 0})
	m.Observe([]*physics.Body{a, b, c}, 1)
	if got := m.Value(); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("expected maximum to be kept, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestResting(t *testing.T) {
	m := NewResting()
	bodies := []*physics.Body{
		body(t, mgl64.Vec3{0, 1.5, 0}, mgl64.Vec3{}, 1),
		body(t, mgl64.Vec3{3, 1.5, 0}, mgl64.Vec3{}, 1),
		body(t, mgl64.Vec3{6, 1.5, 0}, mgl64.Vec3{1, 0, 0}, 1),
		body(t, mgl64.Vec3{9, 1.5, 0}, mgl64.Vec3{0, -1, 0}, 1),
	}
	m.Observe(bodies, 0)
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
	m.Observe(nil, 1)
	if m.Value() != 0 {
		t.Errorf("expected 0 with no bodies, got %f", m.Value())
	}
}

func TestContainment(t *testing.T) {
	region, err := collision.NewBox(mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	m := NewContainment(region)
	if m.Value() != 1 {
		t.Errorf("expected 1 before observations, got %f", m.Value())
	}

	a := body(t, mgl64.Vec3{}, mgl64.Vec3{}, 1)
	b := body(t, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{}, 1)
	bodies := []*physics.Body{a, b}

	tests := []struct {
		name string
		posB mgl64.Vec3
		want float64
	}{
		{"both inside", mgl64.Vec3{0.5, 0, 0}, 1},
		{"one escaped", mgl64.Vec3{2, 0, 0}, 0.5},
		{"back inside", mgl64.Vec3{1, 1, 1}, 1},
	}
	for _, tt := range tests {
		b.SetPosition(tt.posB)
		m.Observe(bodies, 0)
		if m.Value() != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, m.Value())
		}
	}

	m.Observe(nil, 1)
	if m.Value() != 1 {
		t.Errorf("expected 1 with no bodies, got %f", m.Value())
	}
	b.SetPosition(mgl64.Vec3{5, 0, 0})
	m.Observe(bodies, 2)
	m.Reset()
	if m.Value() != 1 {
		t.Errorf("expected 1 after reset, got %f", m.Value())
	}
}

func TestStandardNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Standard(gravity) {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	for _, name := range []string{"energy", "energy_loss", "max_penetration", "resting", "containment"} {
		if !seen[name] {
			t.Errorf("missing metric %s", name)
		}
	}
}
