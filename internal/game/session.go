// Package game drives a world once per frame: it steps the physics, turns
// the player's directional input into a force and watches the goal region.
package game

import (
	"errors"
	"fmt"
	"log"

	"github.com/san-kum/spheresim/internal/physics"
	"github.com/san-kum/spheresim/internal/world"
)

// NoPlayer marks a session without a controllable body.
const NoPlayer world.Handle = -1

// ErrUnknownPlayer is returned when the player handle does not resolve.
var ErrUnknownPlayer = errors.New("game: unknown player handle")

// Session is the whole per-run state. Nothing in the package is global.
type Session struct {
	World  *world.World
	Player world.Handle
	Input  Input
	Goal   *Goal
	Logger *log.Logger

	Time   float64
	Frames int
	// GoalTime is the session time the goal fired at, or -1.
	GoalTime float64
}

func NewSession(w *world.World) *Session {
	return &Session{
		World:    w,
		Player:   NoPlayer,
		Input:    NewInput(),
		Logger:   log.Default(),
		GoalTime: -1,
	}
}

func (s *Session) SetPlayer(h world.Handle) error {
	if _, ok := s.World.Body(h); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPlayer, h)
	}
	s.Player = h
	return nil
}

func (s *Session) PlayerBody() (*physics.Body, bool) {
	if s.Player == NoPlayer {
		return nil, false
	}
	return s.World.Body(s.Player)
}

// Frame runs one frame. The input force is applied after the world step,
// so it acts during the next one.
func (s *Session) Frame(dt float64) error {
	if err := s.World.Update(dt); err != nil {
		return err
	}
	s.Time += dt
	s.Frames++

	player, hasPlayer := s.PlayerBody()
	if hasPlayer {
		player.ApplyForceToCenter(s.Input.Force())
	}

	s.World.UpdateMatrices()

	if hasPlayer && s.Goal != nil && s.Goal.Check(player) {
		s.GoalTime = s.Time
		s.Logger.Printf("goal reached at t=%.2fs frame %d", s.Time, s.Frames)
	}
	return nil
}

func (s *Session) GoalReached() bool { return s.GoalTime >= 0 }
