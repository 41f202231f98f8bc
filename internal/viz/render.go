package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/collision"
	"github.com/san-kum/spheresim/internal/game"
	"github.com/san-kum/spheresim/internal/physics"
)

const (
	gridHalf = 20
	gridStep = 4
)

// Sprite is the terminal stand-in for a body's mesh. It only keeps the last
// transform it was handed.
type Sprite struct {
	Transform mgl64.Mat4
	Radius    float64
	Updates   int
}

func (s *Sprite) SetTransform(m mgl64.Mat4) {
	s.Transform = m
	s.Updates++
}

// Position is the translation part of the transform.
func (s *Sprite) Position() mgl64.Vec3 { return s.Transform.Col(3).Vec3() }

var _ physics.Renderable = (*Sprite)(nil)

// AttachSprites gives every body in the session a sprite and pushes the
// current transforms into them.
func AttachSprites(s *game.Session) []*Sprite {
	bodies := s.World.Bodies()
	sprites := make([]*Sprite, len(bodies))
	for i, b := range bodies {
		sp := &Sprite{Radius: b.Radius()}
		b.Renderable = sp
		sprites[i] = sp
	}
	s.World.UpdateMatrices()
	return sprites
}

// StaticWireframe outlines the ground plane, the level mesh and the goal.
func StaticWireframe(s *game.Session) *Wireframe {
	wf := NewWireframe()
	addGround(wf, s.World.Ground())
	if mesh := s.World.Mesh(); mesh != nil {
		for _, t := range mesh.Triangles {
			wf.AddEdge(t.A, t.B)
			wf.AddEdge(t.B, t.C)
			wf.AddEdge(t.C, t.A)
		}
	}
	if s.Goal != nil {
		addBox(wf, s.Goal.Region)
	}
	return wf
}

// addGround draws a square grid on the plane, centered on the point of the
// plane closest to the origin.
func addGround(wf *Wireframe, p collision.Plane) {
	n := p.Normal
	origin := n.Mul(-p.D)
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(n.Dot(ref)) > 0.9 {
		ref = mgl64.Vec3{0, 0, 1}
	}
	u := n.Cross(ref).Normalize()
	v := n.Cross(u)
	for k := -gridHalf; k <= gridHalf; k += gridStep {
		off := float64(k)
		wf.AddEdge(origin.Add(u.Mul(off)).Sub(v.Mul(gridHalf)), origin.Add(u.Mul(off)).Add(v.Mul(gridHalf)))
		wf.AddEdge(origin.Add(v.Mul(off)).Sub(u.Mul(gridHalf)), origin.Add(v.Mul(off)).Add(u.Mul(gridHalf)))
	}
}

func addBox(wf *Wireframe, b collision.Box) {
	lo, hi := b.Min, b.Max
	c := [8]mgl64.Vec3{
		{lo.X(), lo.Y(), lo.Z()}, {hi.X(), lo.Y(), lo.Z()},
		{hi.X(), lo.Y(), hi.Z()}, {lo.X(), lo.Y(), hi.Z()},
		{lo.X(), hi.Y(), lo.Z()}, {hi.X(), hi.Y(), lo.Z()},
		{hi.X(), hi.Y(), hi.Z()}, {lo.X(), hi.Y(), hi.Z()},
	}
	for i := 0; i < 4; i++ {
		wf.AddEdge(c[i], c[(i+1)%4])
		wf.AddEdge(c[i+4], c[(i+1)%4+4])
		wf.AddEdge(c[i], c[i+4])
	}
}

// DrawSprites draws each sprite as a projected circle. The sprite at
// player is filled; pass -1 for none.
func DrawSprites(c *Canvas, cam *Camera, sprites []*Sprite, player int) {
	w, h := c.Dots()
	for i, sp := range sprites {
		x, y, _, ok := cam.Project(sp.Position(), w, h)
		if !ok {
			continue
		}
		r := cam.ProjectedRadius(sp.Position(), sp.Radius, w, h)
		if r < 1 {
			c.Set(x, y)
			continue
		}
		if i == player {
			c.FillCircle(x, y, r)
		} else {
			c.DrawCircle(x, y, r)
		}
	}
}

// Focus is the player position, or the centroid of all bodies.
func Focus(s *game.Session) mgl64.Vec3 {
	if p, ok := s.PlayerBody(); ok {
		return p.Position()
	}
	bodies := s.World.Bodies()
	if len(bodies) == 0 {
		return mgl64.Vec3{}
	}
	var c mgl64.Vec3
	for _, b := range bodies {
		c = c.Add(b.Position())
	}
	return c.Mul(1 / float64(len(bodies)))
}

func playerIndex(s *game.Session) int {
	if s.Player == game.NoPlayer {
		return -1
	}
	return int(s.Player)
}

// Snapshot draws the current frame of s onto a new w x h cell canvas.
func Snapshot(s *game.Session, w, h int) *Canvas {
	sprites := AttachSprites(s)
	cam := NewCamera()
	cam.Follow(Focus(s))
	c := NewCanvas(w, h)
	Render3D(c, StaticWireframe(s), cam)
	DrawSprites(c, cam, sprites, playerIndex(s))
	return c
}

// DrawTrail plots past positions as single dots.
func DrawTrail(c *Canvas, cam *Camera, trail []mgl64.Vec3) {
	w, h := c.Dots()
	for _, p := range trail {
		if x, y, _, ok := cam.Project(p, w, h); ok {
			c.Set(x, y)
		}
	}
}
