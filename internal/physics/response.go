package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/collision"
)

// velocityChange returns the change in approach speed needed to bounce
// with the body's restitution, and false when the body is already moving
// away along n (relative velocity rel).
//
// separating velocity is -(rel·n): positive while approaching.
func (b *Body) velocityChange(rel, n mgl64.Vec3) (float64, bool) {
	separating := -rel.Dot(n)
	if separating < 0 {
		return 0, false
	}
	newSeparating := -separating * b.Params.Restitution
	return newSeparating - separating, true
}

// HandlePlane resolves a collision against a static plane, including the
// intersection test. dt is unused; the response is instantaneous.
func (b *Body) HandlePlane(p collision.Plane, dt float64) {
	if !b.collider.IntersectsPlane(p) {
		return
	}
	n := b.collider.PlaneNormal(p)
	dv, ok := b.velocityChange(b.Velocity, n)
	if !ok {
		return
	}
	if dv > b.Params.RestingThreshold {
		b.rest(restOnPlane(b.position, p, b.collider.Radius))
		return
	}
	b.ApplyImpulse(n.Mul(-dv))
}

// restOnPlane replaces the normal component of pos so the sphere touches
// the plane. For the up-axis plane this sets y to exactly radius - d.
func restOnPlane(pos mgl64.Vec3, p collision.Plane, radius float64) mgl64.Vec3 {
	n := p.Normal
	return pos.Sub(n.Mul(n.Dot(pos))).Add(n.Mul(radius - p.D))
}

// HandleTriangle resolves a collision against one static triangle. The
// response mirrors HandlePlane with the contact normal in place of the
// plane normal.
func (b *Body) HandleTriangle(t collision.Triangle, dt float64) {
	c, ok := b.collider.TriangleContact(t)
	if !ok {
		return
	}
	b.respondStatic(c)
}

// HandleMesh resolves a collision against the nearest triangle of m.
func (b *Body) HandleMesh(m *collision.TriangleMesh, dt float64) {
	c, ok := b.collider.MeshContact(m)
	if !ok {
		return
	}
	b.respondStatic(c)
}

// respondStatic bounces or rests the body on static geometry. A center lying
// on the face gives no side to push toward, so the face normal is turned
// against the motion.
func (b *Body) respondStatic(c collision.Contact) {
	if c.Distance == 0 && c.Normal.Dot(b.Velocity) > 0 {
		c.Normal = c.Normal.Mul(-1)
	}
	dv, ok := b.velocityChange(b.Velocity, c.Normal)
	if !ok {
		return
	}
	if dv > b.Params.RestingThreshold {
		b.rest(c.Point.Add(c.Normal.Mul(b.collider.Radius)))
		return
	}
	b.ApplyImpulse(c.Normal.Mul(-dv))
}

func (b *Body) rest(pos mgl64.Vec3) {
	b.Velocity = mgl64.Vec3{}
	b.SetPosition(pos)
}

// HandleBody resolves a collision between b and other, including the
// intersection test. The overlap is split evenly between the two bodies and
// both receive the same impulse magnitude in opposite directions.
func (b *Body) HandleBody(other *Body, dt float64) {
	if other == nil || other == b {
		return
	}
	if !b.collider.IntersectsSphere(other.collider) {
		return
	}
	n := b.collider.SphereNormal(other.collider)
	dv, ok := b.velocityChange(other.Velocity.Sub(b.Velocity), n)
	if !ok {
		return
	}

	half := b.collider.SpherePenetration(other.collider) * 0.5
	b.SetPosition(b.position.Sub(n.Mul(half)))
	other.SetPosition(other.position.Add(n.Mul(half)))

	impulse := n.Mul(-dv)
	b.ApplyImpulse(impulse.Mul(-1))
	other.ApplyImpulse(impulse)
}
