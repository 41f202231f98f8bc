package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/spheresim/internal/game"
	"github.com/san-kum/spheresim/internal/physics"
)

// StrideBody is the number of State values recorded per body:
// x, y, z, vx, vy, vz.
const StrideBody = 6

// State is a flat snapshot of every body in insertion order.
type State []float64

// Capture records the position and velocity of bodies.
func Capture(bodies []*physics.Body) State {
	s := make(State, 0, len(bodies)*StrideBody)
	for _, b := range bodies {
		p := b.Position()
		s = append(s, p.X(), p.Y(), p.Z(), b.Velocity.X(), b.Velocity.Y(), b.Velocity.Z())
	}
	return s
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Bodies is the number of bodies in the snapshot.
func (s State) Bodies() int { return len(s) / StrideBody }

// Height returns the y coordinate of body i.
func (s State) Height(i int) float64 { return s[i*StrideBody+1] }

type Metric interface {
	Name() string
	Observe(bodies []*physics.Body, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s *game.Session)
}

type Config struct {
	Dt       float64
	Duration float64
	Seed     int64
	// RecordEvery keeps one state out of every n steps; 0 or 1 keeps all.
	RecordEvery   int
	ValidateState bool
	StopOnGoal    bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		RecordEvery:   1,
		ValidateState: true,
	}
}

type Result struct {
	States     []State
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	// GoalTime is the session time the goal fired at, or -1.
	GoalTime float64
	Errors   []error
}

// ErrInvalidState marks a step that produced a NaN or Inf component.
var ErrInvalidState = errors.New("sim: invalid state (NaN/Inf)")

// SimError gives an error the step it happened at.
type SimError struct {
	Time    float64
	Step    int
	Wrapped error
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e SimError) Unwrap() error { return e.Wrapped }
