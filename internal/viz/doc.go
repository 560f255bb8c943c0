// Package viz provides the terminal front end for the fluid solver.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [App]: preset picker with a short parameter editor
//   - [Model]: live view stepping a solver once per 60 Hz tick
//   - [Canvas]: Braille-based pixel canvas, one dot per particle
//   - [Recorder]: GIF capture of the canvas
//
// # Key Bindings
//
//	Space - Drop a block of particles
//	R     - Reset to the dam break
//	C     - Clear all particles
//	P     - Pause/Resume
//	N     - Step one frame while paused
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
