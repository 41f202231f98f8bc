package collision

import "github.com/go-gl/mathgl/mgl64"

// IntersectsSphere reports whether |c1-c2| <= r1+r2.
func (s Sphere) IntersectsSphere(o Sphere) bool {
	return s.Center.Sub(o.Center).Len() <= s.Radius+o.Radius
}

// SphereNormal is the unit vector from s toward o. Coincident centers yield Up.
func (s Sphere) SphereNormal(o Sphere) mgl64.Vec3 {
	d := o.Center.Sub(s.Center)
	l := d.Len()
	if l == 0 {
		return Up
	}
	return d.Mul(1 / l)
}

// SpherePenetration is (r1+r2) - |c1-c2|; positive when overlapping.
func (s Sphere) SpherePenetration(o Sphere) float64 {
	return s.Radius + o.Radius - s.Center.Sub(o.Center).Len()
}

// IntersectsPlane reports whether n·c + d <= r.
func (s Sphere) IntersectsPlane(p Plane) bool {
	return p.SignedDistance(s.Center) <= s.Radius
}

// PlaneNormal is the collision normal against p, which is always p's normal.
func (s Sphere) PlaneNormal(p Plane) mgl64.Vec3 {
	return p.Normal
}

// PlanePenetration is n·c + d - r; negative when overlapping.
func (s Sphere) PlanePenetration(p Plane) float64 {
	return p.SignedDistance(s.Center) - s.Radius
}

// TriangleContact returns the contact with t and whether the sphere touches it.
func (s Sphere) TriangleContact(t Triangle) (Contact, bool) {
	c := triangleContact(s, t)
	return c, c.Distance <= s.Radius
}

func (s Sphere) IntersectsTriangle(t Triangle) bool {
	_, ok := s.TriangleContact(t)
	return ok
}

// MeshContact returns the contact with the nearest triangle of m and whether
// the sphere touches it.
func (s Sphere) MeshContact(m *TriangleMesh) (Contact, bool) {
	if m == nil || len(m.Triangles) == 0 {
		return Contact{}, false
	}
	if !s.Bounds().Overlaps(m.bounds) {
		return Contact{}, false
	}
	c, found := nearestContact(s, m)
	return c, found && c.Distance <= s.Radius
}

func (s Sphere) IntersectsMesh(m *TriangleMesh) bool {
	_, ok := s.MeshContact(m)
	return ok
}

// IntersectsBox reports whether the sphere touches the box.
func (s Sphere) IntersectsBox(b Box) bool {
	q := b.ClosestPoint(s.Center)
	return q.Sub(s.Center).LenSqr() <= s.Radius*s.Radius
}

// Bounds is the axis-aligned box around the sphere.
func (s Sphere) Bounds() Box {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return Box{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}
