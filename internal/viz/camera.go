package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	minDistance = 2.0
	maxDistance = 500.0
	maxPitch    = 1.5
)

// Camera orbits Target at Distance. Yaw turns around the world up axis and
// Pitch tilts toward it.
type Camera struct {
	Target     mgl64.Vec3
	Yaw, Pitch float64
	Distance   float64
	FOV        float64
	Near, Far  float64
}

func NewCamera() *Camera {
	return &Camera{
		Yaw:      math.Pi / 4,
		Pitch:    0.5,
		Distance: 25,
		FOV:      mgl64.DegToRad(50),
		Near:     0.1,
		Far:      1000,
	}
}

func (c *Camera) Eye() mgl64.Vec3 {
	cp := math.Cos(c.Pitch)
	dir := mgl64.Vec3{cp * math.Sin(c.Yaw), math.Sin(c.Pitch), cp * math.Cos(c.Yaw)}
	return c.Target.Add(dir.Mul(c.Distance))
}

func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Eye(), c.Target, mgl64.Vec3{0, 1, 0})
}

func (c *Camera) Orbit(dyaw, dpitch float64) {
	c.Yaw += dyaw
	c.Pitch = mgl64.Clamp(c.Pitch+dpitch, -maxPitch, maxPitch)
}

func (c *Camera) ZoomIn()  { c.Distance = math.Max(minDistance, c.Distance/1.2) }
func (c *Camera) ZoomOut() { c.Distance = math.Min(maxDistance, c.Distance*1.2) }

// Follow moves the orbit center.
func (c *Camera) Follow(p mgl64.Vec3) { c.Target = p }

// Project maps a world point onto a w x h dot raster. depth is the view
// distance; ok is false for points behind the camera or off screen.
func (c *Camera) Project(p mgl64.Vec3, w, h int) (x, y int, depth float64, ok bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, 0, false
	}
	proj := mgl64.Perspective(c.FOV, float64(w)/float64(h), c.Near, c.Far)
	clip := proj.Mul4(c.View()).Mul4x1(p.Vec4(1))
	if clip.W() <= c.Near {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	x = int((ndc.X() + 1) / 2 * float64(w))
	y = int((1 - ndc.Y()) / 2 * float64(h))
	return x, y, clip.W(), x >= 0 && x < w && y >= 0 && y < h
}

// ProjectedRadius is the on-screen radius in dots of a sphere at center.
func (c *Camera) ProjectedRadius(center mgl64.Vec3, radius float64, w, h int) int {
	_, _, depth, _ := c.Project(center, w, h)
	if depth <= 0 {
		return 0
	}
	focal := float64(h) / 2 / math.Tan(c.FOV/2)
	return int(radius * focal / depth)
}

type Edge struct {
	Start, End mgl64.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe { return &Wireframe{Edges: make([]Edge, 0)} }

func (w *Wireframe) AddEdge(s, e mgl64.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p mgl64.Vec3)   { w.Edges = append(w.Edges, Edge{p, p}) }
func (w *Wireframe) Clear()                  { w.Edges = w.Edges[:0] }

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe back to front. Edges with one end behind the
// camera are dropped.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.Dots()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch)
		if d1 <= 0 || d2 <= 0 || !(v1 || v2) {
			continue
		}
		proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth > proj[j].depth })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.Set(e.x1, e.y1)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}
