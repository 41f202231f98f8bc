// Package collision provides the geometric primitives used by the physics
// core and the stateless intersection tests between them.
//
//   - [Plane]: infinite plane n·p + d = 0 (ground)
//   - [Sphere]: the only dynamic collider shape
//   - [Triangle], [TriangleMesh]: static level geometry
//   - [Box]: axis-aligned region, used for trigger tests only
//
// Every test is a pure function of its inputs; nothing here remembers
// contacts between frames.
//
// # Sign conventions
//
// Plane and triangle penetration is a signed distance: negative means the
// sphere overlaps the surface. Sphere-sphere penetration is an overlap
// amount: positive means the spheres overlap.
package collision
