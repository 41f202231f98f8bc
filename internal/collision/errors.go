package collision

import "errors"

// Geometry validation errors.
var (
	// ErrInvalidRadius indicates a non-positive or non-finite sphere radius.
	ErrInvalidRadius = errors.New("collision: radius must be positive and finite")

	// ErrInvalidNormal indicates a zero-length, non-unit or non-finite plane normal.
	ErrInvalidNormal = errors.New("collision: plane normal must be a finite unit vector")

	// ErrDegenerateTriangle indicates a triangle with (near) zero area.
	ErrDegenerateTriangle = errors.New("collision: degenerate triangle")

	// ErrInvalidBox indicates a box whose min corner exceeds its max corner.
	ErrInvalidBox = errors.New("collision: box min exceeds max")

	// ErrInvalidMesh indicates malformed indexed mesh data.
	ErrInvalidMesh = errors.New("collision: invalid mesh data")
)
