package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/spheresim/internal/game"
)

type Simulator struct {
	session   *game.Session
	metrics   []Metric
	observers []Observer
}

func New(session *game.Session) *Simulator {
	return &Simulator{
		session:   session,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) Session() *game.Session { return s.session }

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run steps the session for cfg.Duration. The context is only checked
// between frames.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := stepCount(cfg)
	every := cfg.RecordEvery
	if every < 1 {
		every = 1
	}
	result := &Result{
		States:   make([]State, 0, steps/every+2),
		Times:    make([]float64, 0, steps/every+2),
		Metrics:  make(map[string]float64),
		GoalTime: -1,
		Errors:   make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	w := s.session.World
	start := s.session.Time
	result.States = append(result.States, Capture(w.Bodies()))
	result.Times = append(result.Times, 0)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		if err := s.session.Frame(cfg.Dt); err != nil {
			return result, err
		}
		t := s.session.Time - start
		result.StepsTaken++

		x := Capture(w.Bodies())
		if cfg.ValidateState && !x.IsValid() {
			result.Errors = append(result.Errors, SimError{Time: t, Step: i, Wrapped: ErrInvalidState})
			break
		}

		for _, m := range s.metrics {
			m.Observe(w.Bodies(), t)
		}
		for _, obs := range s.observers {
			obs.OnStep(s.session)
		}

		if (i+1)%every == 0 || i == steps-1 {
			result.States = append(result.States, x)
			result.Times = append(result.Times, t)
		}

		if s.session.GoalReached() && result.GoalTime < 0 {
			result.GoalTime = s.session.GoalTime - start
			if cfg.StopOnGoal {
				if (i+1)%every != 0 && i != steps-1 {
					result.States = append(result.States, x)
					result.Times = append(result.Times, t)
				}
				break
			}
		}
	}

	s.collect(result)
	return result, nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if s.session == nil || s.session.World == nil {
		return fmt.Errorf("simulator has no session")
	}
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("record interval must not be negative, got %d", cfg.RecordEvery)
	}
	return nil
}

// stepCount tolerates durations that are not an exact multiple of dt in
// binary floating point.
func stepCount(cfg Config) int {
	return int(cfg.Duration/cfg.Dt + 1e-9)
}

// RunWithCallback steps the session until the duration elapses or callback
// returns false. callback sees the session before every frame.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(*game.Session) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	steps := stepCount(cfg)
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(s.session) {
			return nil
		}

		if err := s.session.Frame(cfg.Dt); err != nil {
			return err
		}

		if cfg.ValidateState && !Capture(s.session.World.Bodies()).IsValid() {
			return SimError{Time: s.session.Time, Step: i, Wrapped: ErrInvalidState}
		}
	}

	return nil
}
