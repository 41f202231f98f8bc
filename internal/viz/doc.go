// Package viz draws sessions in the terminal.
//
// Bodies get a [Sprite] as their renderable, and the world's frame-end
// transform push is what moves them on screen. An orbit [Camera] projects
// the sprites, the ground grid, the level mesh and the goal box onto a
// braille [Canvas].
//
// # Key Bindings
//
//	Arrows/WASD - Push the player
//	Space       - Pause/Resume
//	R           - Rebuild the scene
//	x/X y/Y     - Orbit the camera
//	+/-         - Zoom
//	T           - Cycle color themes
//	?           - Show help overlay
package viz
