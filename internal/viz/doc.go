// Package viz is the terminal dashboard for a running simulation.
//
// A [Feed] is attached to a sim.Simulation as a trajectory reporter and pushes
// every report and frame into a Bubble Tea program running [Model]. The model
// draws the particles projected on the x-y plane onto a Braille [Canvas] and
// plots one energy or temperature series with asciigraph.
//
// # Key Bindings
//
//	Tab - Cycle plotted series
//	T   - Cycle color themes
//	?   - Show help overlay
//	Q   - Quit (cancels the run at the next report)
package viz
