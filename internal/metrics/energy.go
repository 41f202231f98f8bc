package metrics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/physics"
)

// Energy is the mean total mechanical energy over all observations.
type Energy struct {
	name        string
	gravity     mgl64.Vec3
	samples     int
	totalEnergy float64
}

func NewEnergy(gravity mgl64.Vec3) *Energy {
	return &Energy{
		name:    "energy",
		gravity: gravity,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(bodies []*physics.Body, t float64) {
	e.totalEnergy += TotalEnergy(bodies, e.gravity)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// TotalEnergy is kinetic plus potential energy, with zero potential at
// the origin.
func TotalEnergy(bodies []*physics.Body, gravity mgl64.Vec3) float64 {
	var sum float64
	for _, b := range bodies {
		sum += b.KineticEnergy() - b.Mass*gravity.Dot(b.Position())
	}
	return sum
}

// EnergyLoss is the fraction of the first observed energy that has been
// dissipated by the last observation.
type EnergyLoss struct {
	name          string
	gravity       mgl64.Vec3
	initialEnergy float64
	currentEnergy float64
	samples       int
}

func NewEnergyLoss(gravity mgl64.Vec3) *EnergyLoss {
	return &EnergyLoss{
		name:    "energy_loss",
		gravity: gravity,
	}
}

func (e *EnergyLoss) Name() string { return e.name }

func (e *EnergyLoss) Observe(bodies []*physics.Body, t float64) {
	energy := TotalEnergy(bodies, e.gravity)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.currentEnergy = energy
	e.samples++
}

func (e *EnergyLoss) Value() float64 {
	if e.samples == 0 || e.initialEnergy == 0 {
		return 0
	}
	return (e.initialEnergy - e.currentEnergy) / e.initialEnergy
}

func (e *EnergyLoss) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.samples = 0
}
