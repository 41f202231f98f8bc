package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/spheresim/internal/game"
)

// Builder creates a fresh session for one seed.
type Builder func(seed int64) (*game.Session, error)

// Ensemble runs the same scene over consecutive seeds, one after another.
type Ensemble struct {
	build     Builder
	metrics   func() []Metric
	numRuns   int
	seedStart int64
}

// NewEnsemble returns an ensemble of numRuns runs. metrics, if not nil, is
// called once per run so metric state is never shared.
func NewEnsemble(build Builder, metrics func() []Metric, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, metrics: metrics, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, 0, e.numRuns)
	for i := 0; i < e.numRuns; i++ {
		seed := e.seedStart + int64(i)
		session, err := e.build(seed)
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", seed, err)
		}

		s := New(session)
		if e.metrics != nil {
			for _, m := range e.metrics() {
				s.AddMetric(m)
			}
		}

		runCfg := cfg
		runCfg.Seed = seed
		res, err := s.Run(ctx, runCfg)
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", seed, err)
		}
		results = append(results, res)
	}
	return results, nil
}
