package sim

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/collision"
	"github.com/san-kum/spheresim/internal/game"
	"github.com/san-kum/spheresim/internal/physics"
	"github.com/san-kum/spheresim/internal/world"
)

func testSession(t *testing.T, groundD float64, specs ...physics.Spec) *game.Session {
	t.Helper()
	ground, err := collision.NewPlane(mgl64.Vec3{0, 1, 0}, groundD)
	if err != nil {
		t.Fatal(err)
	}
	w := world.New(ground)
	for _, spec := range specs {
		b, err := physics.New(spec)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.AddObject(b); err != nil {
			t.Fatal(err)
		}
	}
	s := game.NewSession(w)
	s.Logger = log.New(io.Discard, "", 0)
	return s
}

func dropSession(t *testing.T) *game.Session {
	return testSession(t, -1, physics.Spec{Position: mgl64.Vec3{0, 5, 0}, Mass: 1, Radius: 0.5})
}

func TestSimulatorRun(t *testing.T) {
	sim := New(dropSession(t))

	cfg := Config{Dt: 0.1, Duration: 1.0}
	result, err := sim.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if result.GoalTime != -1 {
		t.Errorf("expected no goal, got %v", result.GoalTime)
	}

	first := result.States[0].Height(0)
	last := result.States[len(result.States)-1].Height(0)
	if first != 5 {
		t.Errorf("expected initial height 5, got %v", first)
	}
	if last >= first {
		t.Errorf("expected the ball to fall, got %v", last)
	}
	if math.Abs(result.Times[10]-1.0) > 1e-9 {
		t.Errorf("expected final time 1.0, got %v", result.Times[10])
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(dropSession(t))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"negative record interval", Config{Dt: 0.1, Duration: 1.0, RecordEvery: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSimulatorNoSession(t *testing.T) {
	if _, err := New(nil).Run(context.Background(), DefaultConfig()); err == nil {
		t.Error("expected error for a simulator without session")
	}
}

type countingMetric struct {
	count int
	sum   float64
}

func (m *countingMetric) Name() string { return "test" }
func (m *countingMetric) Observe(bodies []*physics.Body, t float64) {
	m.count++
	m.sum += bodies[0].Position().Y()
}
func (m *countingMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *countingMetric) Reset() {
	m.count = 0
	m.sum = 0
}

type countingObserver struct{ frames []int }

func (o *countingObserver) OnStep(s *game.Session) { o.frames = append(o.frames, s.Frames) }

func TestSimulatorMetricsAndObservers(t *testing.T) {
	sim := New(dropSession(t))

	metric := &countingMetric{}
	obs := &countingObserver{}
	sim.AddMetric(metric)
	sim.AddObserver(obs)

	result, err := sim.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
	if len(obs.frames) != 10 || obs.frames[0] != 1 || obs.frames[9] != 10 {
		t.Errorf("unexpected observer frames %v", obs.frames)
	}
}

func TestSimulatorRecordEvery(t *testing.T) {
	sim := New(dropSession(t))

	result, err := sim.Run(context.Background(), Config{Dt: 0.01, Duration: 1.0, RecordEvery: 5})
	if err != nil {
		t.Fatal(err)
	}
	if result.StepsTaken != 100 {
		t.Errorf("expected 100 steps, got %d", result.StepsTaken)
	}
	if len(result.States) != 21 {
		t.Errorf("expected 21 states, got %d", len(result.States))
	}
}

func TestSimulatorStopOnGoal(t *testing.T) {
	s := testSession(t, 100, physics.Spec{Position: mgl64.Vec3{-46, 0.5, 44}, Mass: 5, Radius: 0.5})
	s.World.Gravity = mgl64.Vec3{}
	if err := s.SetPlayer(0); err != nil {
		t.Fatal(err)
	}
	region, err := collision.BoxFromCenter(mgl64.Vec3{-46, -4, 44}, mgl64.Vec3{10.6, 4.4, 4.0})
	if err != nil {
		t.Fatal(err)
	}
	s.Goal = game.NewGoal(region, nil)

	result, err := New(s).Run(context.Background(), Config{Dt: 0.1, Duration: 5, StopOnGoal: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.StepsTaken != 1 {
		t.Errorf("expected the run to stop after 1 step, got %d", result.StepsTaken)
	}
	if math.Abs(result.GoalTime-0.1) > 1e-12 {
		t.Errorf("expected goal time 0.1, got %v", result.GoalTime)
	}
	if len(result.States) != 2 {
		t.Errorf("expected 2 states, got %d", len(result.States))
	}
}

func TestSimulatorInvalidState(t *testing.T) {
	s := testSession(t, -1, physics.Spec{
		Position: mgl64.Vec3{0, 5, 0},
		Velocity: mgl64.Vec3{math.NaN(), 0, 0},
		Mass:     1,
		Radius:   0.5,
	})

	result, err := New(s).Run(context.Background(), Config{Dt: 0.1, Duration: 1.0, ValidateState: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}
	var simErr SimError
	if !errors.As(result.Errors[0], &simErr) || simErr.Step != 0 {
		t.Errorf("unexpected error %v", result.Errors[0])
	}
	if result.StepsTaken != 1 || len(result.States) != 1 {
		t.Errorf("expected the run to stop at the first step, got %d steps %d states", result.StepsTaken, len(result.States))
	}
}

func TestSimulatorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(dropSession(t)).Run(ctx, Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Errorf("expected an empty partial result, got %+v", result)
	}
}

func TestRunWithCallback(t *testing.T) {
	sim := New(dropSession(t))

	calls := 0
	err := sim.RunWithCallback(context.Background(), Config{Dt: 0.1, Duration: 1.0}, func(s *game.Session) bool {
		calls++
		return s.Frames < 4
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 5 || sim.Session().Frames != 4 {
		t.Errorf("expected 5 callbacks and 4 frames, got %d and %d", calls, sim.Session().Frames)
	}
}

func TestEnsemble(t *testing.T) {
	seeds := make([]int64, 0)
	build := func(seed int64) (*game.Session, error) {
		seeds = append(seeds, seed)
		return dropSession(t), nil
	}
	metrics := func() []Metric { return []Metric{&countingMetric{}} }

	results, err := NewEnsemble(build, metrics, 3, 10).Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if seeds[0] != 10 || seeds[2] != 12 {
		t.Errorf("unexpected seeds %v", seeds)
	}
	for i, r := range results {
		if len(r.States) != 11 {
			t.Errorf("run %d: expected 11 states, got %d", i, len(r.States))
		}
		if r.Metrics["test"] != results[0].Metrics["test"] {
			t.Errorf("run %d: identical scenes produced different metrics", i)
		}
	}
}

func TestEnsembleBuildError(t *testing.T) {
	boom := errors.New("boom")
	build := func(seed int64) (*game.Session, error) { return nil, boom }

	_, err := NewEnsemble(build, nil, 2, 0).Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, boom) {
		t.Errorf("expected build error, got %v", err)
	}
}
