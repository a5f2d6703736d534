// Package md provides the core value types for Langevin molecular dynamics.
//
// The package defines the contracts shared by every other part of mdsim:
//
//   - [Vec3]: 3D vector (positions, velocities, forces)
//   - [State]: read-only snapshot of particle positions, velocities and masses
//   - [Parameters]: temperature, friction and timestep of an integrator
//   - [ForceEvaluator]: potential energy and forces as a function of positions
//   - [Integrator]: advances exactly one [State] in time
//   - [Reporter]: passive sink for periodic [Report] values
//
// Units follow the usual molecular engine convention: nm, ps, amu, kJ/mol, K.
//
// # Ownership
//
// An integrator exclusively owns its state. Every [State] handed out is a deep
// copy, so reporters and analysis code can keep snapshots without locking.
package md
