package world

import "errors"

var (
	// ErrNilBody is returned when AddObject receives a nil body.
	ErrNilBody = errors.New("world: nil body")

	// ErrAlreadyAdded is returned for a body that already belongs to a world.
	ErrAlreadyAdded = errors.New("world: body already added")

	// ErrWorldFull is returned once MaxBodies bodies have been added.
	ErrWorldFull = errors.New("world: body limit reached")

	// ErrInvalidTimestep is returned by Update for a negative or non-finite dt.
	ErrInvalidTimestep = errors.New("world: timestep must be finite and non-negative")
)
