package scene

import (
	"errors"
	"fmt"

	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/physics"
	"github.com/san-kum/spheresim/internal/world"
)

var ErrInvalidSpawner = errors.New("scene: invalid spawner")

// spawnTolerance absorbs the rounding of summed timesteps.
const spawnTolerance = 1e-9

func spawnSpec(bc config.BodyConfig) physics.Spec {
	return physics.Spec{
		Position: bc.Position,
		Velocity: bc.Velocity,
		Mass:     bc.Mass,
		Radius:   bc.Radius,
	}
}

// spawner returns a world observer that adds a body every sc.Interval
// seconds of simulated time. The body joins after the step that crossed the
// interval. Spawning stops at sc.Limit or once the world refuses a body.
func spawner(sc config.SpawnConfig, params physics.Params) (world.Observer, error) {
	if !(sc.Interval > 0) || sc.Limit < 0 {
		return nil, fmt.Errorf("%w: interval %v limit %d", ErrInvalidSpawner, sc.Interval, sc.Limit)
	}
	spec := spawnSpec(sc.Body)
	if _, err := physics.New(spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpawner, err)
	}

	var elapsed float64
	spawned := 0
	done := false
	return func(w *world.World, dt float64) {
		if done {
			return
		}
		elapsed += dt
		if elapsed+spawnTolerance < sc.Interval {
			return
		}
		elapsed -= sc.Interval

		b, err := physics.New(spec)
		if err != nil {
			done = true
			return
		}
		b.Params = params
		b.UpdateMatrix()
		if _, err := w.AddObject(b); err != nil {
			done = true
			return
		}
		spawned++
		done = sc.Limit > 0 && spawned >= sc.Limit
	}, nil
}
