package collision

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// minTriangleArea2 is the smallest accepted |AB x AC|.
const minTriangleArea2 = 1e-12

// onFaceTolerance scales with the radius; centers closer than this to the
// triangle count as lying on it.
const onFaceTolerance = 1e-9

// Triangle is a single static triangle, wound A, B, C.
type Triangle struct {
	A, B, C mgl64.Vec3
}

func NewTriangle(a, b, c mgl64.Vec3) (Triangle, error) {
	t := Triangle{A: a, B: b, C: c}
	if !finiteVec(a) || !finiteVec(b) || !finiteVec(c) {
		return Triangle{}, fmt.Errorf("%w: non-finite vertex", ErrDegenerateTriangle)
	}
	if b.Sub(a).Cross(c.Sub(a)).Len() < minTriangleArea2 {
		return Triangle{}, fmt.Errorf("%w: %v %v %v", ErrDegenerateTriangle, a, b, c)
	}
	return t, nil
}

// Normal is the unit face normal following the right-hand rule over A, B, C.
func (t Triangle) Normal() mgl64.Vec3 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Normalize()
}

func (t Triangle) Bounds() Box {
	b := Box{Min: t.A, Max: t.A}
	return b.Expand(t.B).Expand(t.C)
}

// ClosestPoint returns the point of the triangle nearest to p. It walks the
// vertex, edge and face Voronoi regions in turn.
func (t Triangle) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	a, b, c := t.A, t.B, t.C
	ab := b.Sub(a)
	ac := c.Sub(a)

	ap := p.Sub(a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}

// Contact describes the nearest approach of a sphere to static geometry.
type Contact struct {
	// Point is the closest point on the geometry.
	Point mgl64.Vec3
	// Normal points from Point toward the sphere center.
	Normal mgl64.Vec3
	// Distance from Point to the sphere center. It is exactly 0 when the
	// center lies on the face; Normal is then the face normal and may point
	// to either side.
	Distance float64
	// Depth is Distance - radius; negative when overlapping.
	Depth float64
}

// TriangleMesh is a static collection of triangles with cached bounds.
type TriangleMesh struct {
	Triangles []Triangle
	bounds    Box
}

func NewTriangleMesh(tris []Triangle) (*TriangleMesh, error) {
	if len(tris) == 0 {
		return nil, fmt.Errorf("%w: no triangles", ErrInvalidMesh)
	}
	m := &TriangleMesh{Triangles: make([]Triangle, len(tris))}
	copy(m.Triangles, tris)
	m.bounds = tris[0].Bounds()
	for _, t := range tris[1:] {
		m.bounds = m.bounds.Expand(t.A).Expand(t.B).Expand(t.C)
	}
	return m, nil
}

// MeshFromIndexed builds a mesh from a vertex list and a flat triangle index list.
func MeshFromIndexed(vertices []mgl64.Vec3, indices []int) (*TriangleMesh, error) {
	if len(indices) == 0 || len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices is not a positive multiple of 3", ErrInvalidMesh, len(indices))
	}
	tris := make([]Triangle, 0, len(indices)/3)
	for i := 0; i < len(indices); i += 3 {
		var v [3]mgl64.Vec3
		for k := 0; k < 3; k++ {
			idx := indices[i+k]
			if idx < 0 || idx >= len(vertices) {
				return nil, fmt.Errorf("%w: index %d out of range [0,%d)", ErrInvalidMesh, idx, len(vertices))
			}
			v[k] = vertices[idx]
		}
		t, err := NewTriangle(v[0], v[1], v[2])
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i/3, err)
		}
		tris = append(tris, t)
	}
	return NewTriangleMesh(tris)
}

func (m *TriangleMesh) Bounds() Box { return m.bounds }

func (m *TriangleMesh) Len() int { return len(m.Triangles) }

// triangleContact computes the contact between a sphere and one triangle.
func triangleContact(s Sphere, t Triangle) Contact {
	q := t.ClosestPoint(s.Center)
	d := s.Center.Sub(q)
	dist := d.Len()

	if dist <= onFaceTolerance*max(1, s.Radius) {
		// d is rounding noise here, its direction is meaningless
		return Contact{Point: q, Normal: t.Normal(), Distance: 0, Depth: -s.Radius}
	}
	n := d.Mul(1 / dist)
	return Contact{Point: q, Normal: n, Distance: dist, Depth: dist - s.Radius}
}

// nearestContact returns the closest triangle contact in the mesh.
func nearestContact(s Sphere, m *TriangleMesh) (Contact, bool) {
	best := Contact{Distance: math.Inf(1)}
	found := false
	for _, t := range m.Triangles {
		c := triangleContact(s, t)
		if c.Distance < best.Distance {
			best = c
			found = true
		}
	}
	return best, found
}
