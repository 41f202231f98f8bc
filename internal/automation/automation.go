// Package automation runs scripted batches of scenes: YAML scenarios,
// parameter sweeps and Monte Carlo perturbation trials.
package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/game"
	"github.com/san-kum/spheresim/internal/metrics"
	"github.com/san-kum/spheresim/internal/scene"
	"github.com/san-kum/spheresim/internal/sim"
	"github.com/san-kum/spheresim/internal/storage"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoScene      = errors.New("automation: step needs a preset or a config file")
	ErrUnknownParam = errors.New("automation: unknown sweep parameter")
	ErrSweepSteps   = errors.New("automation: sweep needs at least 2 steps")
)

// SweepParams lists the parameters a sweep can vary.
var SweepParams = []string{"restitution", "damping", "gravity", "input_strength"}

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	// dir resolves relative config paths.
	dir string
}

// ScenarioStep runs one scene. Zero Dt, Duration and Seed keep the scene's
// own values; Runs above 1 repeats it over consecutive seeds.
type ScenarioStep struct {
	Preset     string  `yaml:"preset"`
	Config     string  `yaml:"config"`
	Dt         float64 `yaml:"dt"`
	Duration   float64 `yaml:"duration"`
	Seed       int64   `yaml:"seed"`
	Runs       int     `yaml:"runs"`
	StopOnGoal bool    `yaml:"stop_on_goal"`
	SaveAs     string  `yaml:"save_as"`
}

type StepResult struct {
	Step   int
	Scene  string
	Seed   int64
	RunID  string
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	scenario.dir = filepath.Dir(path)

	return &scenario, nil
}

// resolve loads the step's scene and applies its overrides.
func (sc *Scenario) resolve(step ScenarioStep) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case step.Config != "":
		path := step.Config
		if !filepath.IsAbs(path) && sc.dir != "" {
			path = filepath.Join(sc.dir, path)
		}
		cfg, err = config.Load(path)
	case step.Preset != "":
		cfg, err = config.GetPreset(step.Preset)
	default:
		return nil, ErrNoScene
	}
	if err != nil {
		return nil, err
	}

	if step.Dt > 0 {
		cfg.Dt = step.Dt
	}
	if step.Duration > 0 {
		cfg.Duration = step.Duration
	}
	if step.Seed != 0 {
		cfg.Seed = step.Seed
	}
	if step.SaveAs != "" {
		cfg.Scene = step.SaveAs
	}
	return cfg, nil
}

// RunScenario executes all steps in order and saves every run to store
// when store is not nil. Progress goes to out.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store, out io.Writer) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))
	logger := log.New(out, "", 0)

	for i, step := range scenario.Steps {
		cfg, err := scenario.resolve(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		fmt.Fprintf(out, "Running step %d/%d: %s\n", i+1, len(scenario.Steps), cfg.Scene)

		build := func(seed int64) (*game.Session, error) {
			runCfg := cfg.Clone()
			runCfg.Seed = seed
			session, err := scene.Build(runCfg)
			if err != nil {
				return nil, err
			}
			session.Logger = logger
			return session, nil
		}
		standard := func() []sim.Metric { return metrics.Standard(cfg.Gravity) }

		runs := sim.NewEnsemble(build, standard, max(1, step.Runs), cfg.Seed)
		batch, err := runs.Run(ctx, simConfig(cfg, step.StopOnGoal))
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		for r, res := range batch {
			sr := StepResult{Step: i + 1, Scene: cfg.Scene, Seed: cfg.Seed + int64(r), Result: res}
			if store != nil {
				sr.RunID, err = store.Save(cfg.Scene, cfg.Dt, cfg.Duration, sr.Seed, res)
				if err != nil {
					return results, fmt.Errorf("step %d save: %w", i+1, err)
				}
			}
			results = append(results, sr)
		}
	}

	return results, nil
}

// Run builds cfg and runs it headless with the standard metrics.
func Run(ctx context.Context, cfg *config.Config, stopOnGoal bool, logger *log.Logger) (*sim.Result, error) {
	session, err := scene.Build(cfg)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		session.Logger = logger
	}
	return runSession(ctx, session, cfg, stopOnGoal)
}

func runSession(ctx context.Context, session *game.Session, cfg *config.Config, stopOnGoal bool) (*sim.Result, error) {
	s := sim.New(session)
	for _, m := range metrics.Standard(cfg.Gravity) {
		s.AddMetric(m)
	}
	if cfg.Spawner != nil {
		s.AddObserver(&spawnLog{seen: session.World.Len()})
	}
	return s.Run(ctx, simConfig(cfg, stopOnGoal))
}

// spawnLog reports bodies joining a running session.
type spawnLog struct {
	seen int
}

func (l *spawnLog) OnStep(s *game.Session) {
	n := s.World.Len()
	if n > l.seen {
		s.Logger.Printf("t=%.2fs: %d bodies joined, %d total", s.Time, n-l.seen, n)
	}
	l.seen = n
}

// Bench steps cfg without recording states or metrics and returns the
// number of frames taken.
func Bench(ctx context.Context, cfg *config.Config, logger *log.Logger) (int, error) {
	session, err := scene.Build(cfg)
	if err != nil {
		return 0, err
	}
	if logger != nil {
		session.Logger = logger
	}
	s := sim.New(session)
	err = s.RunWithCallback(ctx, simConfig(cfg, false), func(*game.Session) bool { return true })
	return session.Frames, err
}

func simConfig(cfg *config.Config, stopOnGoal bool) sim.Config {
	simCfg := sim.DefaultConfig()
	simCfg.Dt = cfg.Dt
	simCfg.Duration = cfg.Duration
	simCfg.Seed = cfg.Seed
	simCfg.StopOnGoal = stopOnGoal
	return simCfg
}

// ParameterSweep runs a preset across evenly spaced values of one parameter.
type ParameterSweep struct {
	Preset    string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Duration  float64
	Dt        float64
}

type SweepResult struct {
	ParamValue float64
	FinalState sim.State
	Metrics    map[string]float64
}

// applyParam sets one sweep parameter. gravity is the downward magnitude.
func applyParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "restitution":
		cfg.Physics.Restitution = v
	case "damping":
		cfg.Physics.Damping = v
	case "gravity":
		cfg.Gravity = mgl64.Vec3{0, -v, 0}
	case "input_strength":
		cfg.InputStrength = v
	default:
		return fmt.Errorf("%w: %s (available: %v)", ErrUnknownParam, name, SweepParams)
	}
	return nil
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, out io.Writer) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, ErrSweepSteps
	}
	base, err := config.GetPreset(sweep.Preset)
	if err != nil {
		return nil, err
	}
	if sweep.Dt > 0 {
		base.Dt = sweep.Dt
	}
	if sweep.Duration > 0 {
		base.Duration = sweep.Duration
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg := base.Clone()
		if err := applyParam(cfg, sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		result, err := Run(ctx, cfg, false, log.New(io.Discard, "", 0))
		if err != nil {
			return nil, fmt.Errorf("%s=%.4f: %w", sweep.ParamName, paramVal, err)
		}

		var final sim.State
		if len(result.States) > 0 {
			final = result.States[len(result.States)-1]
		}
		results = append(results, SweepResult{
			ParamValue: paramVal,
			FinalState: final,
			Metrics:    result.Metrics,
		})

		fmt.Fprintf(out, "Sweep %d/%d: %s=%.4f\n", i+1, sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}

// MonteCarloConfig jitters every spawn position of a preset.
type MonteCarloConfig struct {
	Preset       string
	Perturbation float64
	NumTrials    int
	Duration     float64
	Dt           float64
	Seed         int64
}

type MonteCarloResult struct {
	TrialID    int
	InitState  sim.State
	FinalState sim.State
	// Stable means every body stayed finite and inside the arena.
	Stable bool
}

// RunMonteCarlo runs the trials concurrently. Results are in trial order.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, out io.Writer) ([]MonteCarloResult, error) {
	base, err := config.GetPreset(cfg.Preset)
	if err != nil {
		return nil, err
	}
	if cfg.Dt > 0 {
		base.Dt = cfg.Dt
	}
	if cfg.Duration > 0 {
		base.Duration = cfg.Duration
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	jitter := func() float64 { return (rng.Float64() - 0.5) * 2 * cfg.Perturbation }

	// jitter is drawn in trial order before any trial starts
	n := max(0, cfg.NumTrials)
	trialCfgs := make([]*config.Config, n)
	for trial := range trialCfgs {
		trialCfg := base.Clone()
		for i := range trialCfg.Bodies {
			trialCfg.Bodies[i].Position = trialCfg.Bodies[i].Position.Add(mgl64.Vec3{jitter(), jitter(), jitter()})
		}
		trialCfgs[trial] = trialCfg
	}

	results := make([]MonteCarloResult, n)
	errs := make([]error, n)

	var mu sync.Mutex
	done := 0

	var wg sync.WaitGroup
	for trial := range trialCfgs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			result, err := Run(ctx, trialCfgs[idx], false, log.New(io.Discard, "", 0))
			if err != nil {
				errs[idx] = fmt.Errorf("trial %d: %w", idx, err)
				return
			}

			var init, final sim.State
			if len(result.States) > 0 {
				init = result.States[0]
				final = result.States[len(result.States)-1]
			}
			results[idx] = MonteCarloResult{
				TrialID:    idx,
				InitState:  init,
				FinalState: final,
				Stable:     len(result.Errors) == 0 && result.Metrics["containment"] == 1,
			}

			mu.Lock()
			done++
			if done%10 == 0 {
				fmt.Fprintf(out, "Monte Carlo: %d/%d trials complete\n", done, n)
			}
			mu.Unlock()
		}(trial)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
