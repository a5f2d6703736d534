// Package reporters contains the sinks a simulation pushes reports to.
//
// Reporters only observe. They never modify the state they are given and
// they never retry; any error is handed back to the simulation, which decides
// whether to abort or carry on.
package reporters
