package game

import (
	"github.com/san-kum/spheresim/internal/collision"
	"github.com/san-kum/spheresim/internal/physics"
)

// Goal fires OnReach the first time a body touches Region.
type Goal struct {
	Region  collision.Box
	OnReach func(b *physics.Body)

	reached bool
}

func NewGoal(region collision.Box, onReach func(b *physics.Body)) *Goal {
	return &Goal{Region: region, OnReach: onReach}
}

// Check reports whether b reached the goal during this call. It returns
// true at most once.
func (g *Goal) Check(b *physics.Body) bool {
	if g.reached || b == nil {
		return false
	}
	if !b.Collider().IntersectsBox(g.Region) {
		return false
	}
	g.reached = true
	if g.OnReach != nil {
		g.OnReach(b)
	}
	return true
}

func (g *Goal) Reached() bool { return g.reached }

// Reset arms the trigger again.
func (g *Goal) Reset() { g.reached = false }
