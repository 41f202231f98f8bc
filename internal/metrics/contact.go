package metrics

import (
	"math"

	"github.com/san-kum/spheresim/internal/collision"
	"github.com/san-kum/spheresim/internal/physics"
)

// MaxPenetration is the deepest sphere-sphere overlap seen after any step.
type MaxPenetration struct {
	name  string
	worst float64
}

func NewMaxPenetration() *MaxPenetration {
	return &MaxPenetration{name: "max_penetration"}
}

func (m *MaxPenetration) Name() string { return m.name }

func (m *MaxPenetration) Observe(bodies []*physics.Body, t float64) {
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i].Collider(), bodies[j].Collider()
			m.worst = math.Max(m.worst, a.SpherePenetration(b))
		}
	}
}

func (m *MaxPenetration) Value() float64 { return m.worst }

func (m *MaxPenetration) Reset() { m.worst = 0 }

// Resting is the fraction of bodies at rest at the last observation.
type Resting struct {
	name     string
	fraction float64
}

func NewResting() *Resting {
	return &Resting{name: "resting"}
}

func (r *Resting) Name() string { return r.name }

func (r *Resting) Observe(bodies []*physics.Body, t float64) {
	if len(bodies) == 0 {
		r.fraction = 0
		return
	}
	n := 0
	for _, b := range bodies {
		if b.AtRest() {
			n++
		}
	}
	r.fraction = float64(n) / float64(len(bodies))
}

func (r *Resting) Value() float64 { return r.fraction }

func (r *Resting) Reset() { r.fraction = 0 }

// Containment is the fraction of bodies inside the region at the last
// observation. An empty world counts as contained.
type Containment struct {
	name     string
	region   collision.Box
	fraction float64
}

func NewContainment(region collision.Box) *Containment {
	return &Containment{
		name:     "containment",
		region:   region,
		fraction: 1,
	}
}

func (c *Containment) Name() string { return c.name }

func (c *Containment) Observe(bodies []*physics.Body, t float64) {
	if len(bodies) == 0 {
		c.fraction = 1
		return
	}
	inside := 0
	for _, b := range bodies {
		p := b.Position()
		if c.region.ClosestPoint(p) == p {
			inside++
		}
	}
	c.fraction = float64(inside) / float64(len(bodies))
}

func (c *Containment) Value() float64 { return c.fraction }

func (c *Containment) Reset() { c.fraction = 1 }
