package game

import "github.com/go-gl/mathgl/mgl64"

// DefaultStrength scales the directional input into a force.
const DefaultStrength = 20.0

// Input is the directional state for one frame. Up and Down push along x,
// Left and Right along z.
type Input struct {
	Up, Down, Left, Right bool
	Strength              float64
}

func NewInput() Input {
	return Input{Strength: DefaultStrength}
}

// Force maps the held directions onto the ground plane. Opposite keys
// cancel.
func (in Input) Force() mgl64.Vec3 {
	var f mgl64.Vec3
	if in.Up {
		f[0]++
	}
	if in.Down {
		f[0]--
	}
	if in.Left {
		f[2]++
	}
	if in.Right {
		f[2]--
	}
	return f.Mul(in.Strength)
}

// Clear releases every direction.
func (in *Input) Clear() {
	in.Up, in.Down, in.Left, in.Right = false, false, false, false
}
