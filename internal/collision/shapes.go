package collision

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// unitTolerance is how far |normal| may drift from 1 and still count as unit length.
const unitTolerance = 1e-6

// Up is the world up axis.
var Up = mgl64.Vec3{0, 1, 0}

// Plane is the set of points p with Normal·p + D = 0.
type Plane struct {
	Normal mgl64.Vec3
	D      float64
}

// NewPlane validates normal and returns the plane. The normal must already
// have unit length.
func NewPlane(normal mgl64.Vec3, d float64) (Plane, error) {
	if !finiteVec(normal) || math.IsNaN(d) || math.IsInf(d, 0) {
		return Plane{}, ErrInvalidNormal
	}
	if math.Abs(normal.Len()-1) > unitTolerance {
		return Plane{}, fmt.Errorf("%w: |n| = %.6f", ErrInvalidNormal, normal.Len())
	}
	return Plane{Normal: normal, D: d}, nil
}

// PlaneThrough returns the plane through point with the given (not
// necessarily unit) normal.
func PlaneThrough(point, normal mgl64.Vec3) (Plane, error) {
	l := normal.Len()
	if l == 0 || !finiteVec(normal) || !finiteVec(point) {
		return Plane{}, ErrInvalidNormal
	}
	n := normal.Mul(1 / l)
	return Plane{Normal: n, D: -n.Dot(point)}, nil
}

// SignedDistance returns Normal·p + D.
func (p Plane) SignedDistance(pt mgl64.Vec3) float64 {
	return p.Normal.Dot(pt) + p.D
}

// Sphere is a ball collider.
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

func NewSphere(center mgl64.Vec3, radius float64) (Sphere, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return Sphere{}, fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}
	if !finiteVec(center) {
		return Sphere{}, fmt.Errorf("collision: sphere center %v is not finite", center)
	}
	return Sphere{Center: center, Radius: radius}, nil
}

// Box is an axis-aligned box.
type Box struct {
	Min, Max mgl64.Vec3
}

// NewBox rejects non-finite corners and min above max on any axis.
func NewBox(min, max mgl64.Vec3) (Box, error) {
	if !finiteVec(min) || !finiteVec(max) {
		return Box{}, fmt.Errorf("%w: non-finite corner %v %v", ErrInvalidBox, min, max)
	}
	for i := 0; i < 3; i++ {
		if min[i] > max[i] {
			return Box{}, fmt.Errorf("%w: axis %d (%.3f > %.3f)", ErrInvalidBox, i, min[i], max[i])
		}
	}
	return Box{Min: min, Max: max}, nil
}

// BoxFromCenter builds a box from its center and non-negative half extents.
func BoxFromCenter(center, halfExtents mgl64.Vec3) (Box, error) {
	return NewBox(center.Sub(halfExtents), center.Add(halfExtents))
}

func (b Box) Center() mgl64.Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

// ClosestPoint clamps p into the box.
func (b Box) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		mgl64.Clamp(p[0], b.Min[0], b.Max[0]),
		mgl64.Clamp(p[1], b.Min[1], b.Max[1]),
		mgl64.Clamp(p[2], b.Min[2], b.Max[2]),
	}
}

// Overlaps reports whether two boxes share any point.
func (b Box) Overlaps(o Box) bool {
	for i := 0; i < 3; i++ {
		if b.Max[i] < o.Min[i] || o.Max[i] < b.Min[i] {
			return false
		}
	}
	return true
}

// Expand grows the box to contain p.
func (b Box) Expand(p mgl64.Vec3) Box {
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
	return b
}

func finiteVec(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
