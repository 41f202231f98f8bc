// Package metrics provides per-step measurements of a running world.
package metrics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/collision"
	"github.com/san-kum/spheresim/internal/sim"
)

// DefaultArena is the containment region used by Standard.
var DefaultArena = collision.Box{
	Min: mgl64.Vec3{-100, -100, -100},
	Max: mgl64.Vec3{100, 100, 100},
}

// Standard returns a fresh set of the metrics every run reports.
func Standard(gravity mgl64.Vec3) []sim.Metric {
	return []sim.Metric{
		NewEnergy(gravity),
		NewEnergyLoss(gravity),
		NewMaxPenetration(),
		NewResting(),
		NewContainment(DefaultArena),
	}
}
