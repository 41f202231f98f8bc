// Package analysis inspects recorded runs.
//
//   - [Bounces]: ground contacts found where a body stops falling
//   - [Restitution]: measured bounce coefficient
//   - [PhasePortrait]: one body's trajectory in two of its state fields
//   - [DominantFrequency]: strongest periodic component of a series
package analysis
