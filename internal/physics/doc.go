// Package physics provides the simulated sphere body and its collision
// response.
//
// A [Body] owns exactly one [collision.Sphere] whose center always equals the
// body position; [Body.SetPosition] is the only way to move either. Forces
// accumulate until [Body.Integrate] consumes them with a semi-implicit Euler
// step:
//
//	v += (F/m)·dt
//	p += v·dt
//	v *= damping
//
// Collision response is impulse based with a fixed restitution. Two
// simplifications are kept on purpose:
//
//   - impulses are velocity deltas, never divided by mass;
//   - both bodies of a pair receive the same impulse magnitude whatever
//     their mass ratio.
//
// Slow contacts against static geometry are treated as resting contact: the
// body is stopped and snapped onto the surface instead of bounced.
package physics
