package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/spheresim/internal/sim"
)

// Per-body state fields, in recording order.
var Fields = [sim.StrideBody]string{"x", "y", "z", "vx", "vy", "vz"}

const fieldVY = 4

// FieldIndex resolves a field name to its offset within a body's record.
func FieldIndex(name string) (int, error) {
	for i, f := range Fields {
		if f == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q (available: %v)", name, Fields)
}

type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

// PhasePortrait collects fields xIdx and yIdx of body from every recorded
// state that contains it.
func PhasePortrait(states []sim.State, body, xIdx, yIdx int) *PhasePortrait2D {
	if body < 0 || xIdx < 0 || yIdx < 0 || xIdx >= sim.StrideBody || yIdx >= sim.StrideBody {
		return nil
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, len(states)),
	}
	off := body * sim.StrideBody
	for _, s := range states {
		if body >= s.Bodies() {
			continue
		}
		portrait.Points = append(portrait.Points, Point{s[off+xIdx], s[off+yIdx]})
	}
	return portrait
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// axes, where they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Bounce is a sample where a body stopped falling.
type Bounce struct {
	Time     float64
	Height   float64
	SpeedIn  float64
	SpeedOut float64
}

// Bounces records every sample at which body's vertical velocity turns from
// negative to non-negative. Resting snaps show up with SpeedOut 0.
func Bounces(states []sim.State, times []float64, body int) []Bounce {
	bounces := make([]Bounce, 0)
	off := body * sim.StrideBody
	for i := 1; i < len(states) && i < len(times); i++ {
		prev, cur := states[i-1], states[i]
		if body >= prev.Bodies() || body >= cur.Bodies() {
			continue
		}
		in, out := prev[off+fieldVY], cur[off+fieldVY]
		if in < 0 && out >= 0 {
			bounces = append(bounces, Bounce{
				Time:     times[i],
				Height:   cur.Height(body),
				SpeedIn:  -in,
				SpeedOut: out,
			})
		}
	}
	return bounces
}

// Restitution is the mean SpeedOut/SpeedIn over the bounces hitting faster
// than minSpeed. ok is false when none qualify.
func Restitution(bounces []Bounce, minSpeed float64) (e float64, ok bool) {
	n := 0
	for _, b := range bounces {
		if b.SpeedIn > minSpeed && b.SpeedOut > 0 {
			e += b.SpeedOut / b.SpeedIn
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return e / float64(n), true
}
