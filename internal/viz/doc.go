// Package viz renders a running simulation in the terminal.
//
// The live view is a Bubble Tea program:
//
//   - [Model]: steps the simulation on every tick and draws it
//   - [Canvas]: Braille-based dot canvas with per-cell body colors
//   - [Camera]: world-to-canvas projection with spring-eased auto zoom
//
// Bodies are drawn as discs whose diameter is twice the cube root of their
// mass, each with a fading trail in its own color. When a step fails with
// a degenerate configuration the view halts, keeps the last good frame and
// shows which pair of bodies collapsed.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	S     - Single step while paused
//	R     - Reset to initial state
//	+/-   - Zoom
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
