// Package forcefield provides [md.ForceEvaluator] implementations.
//
// Each evaluator is a pure function of particle positions; its parameters are
// fixed at construction:
//
//   - [Harmonic]: independent isotropic oscillators
//   - [DoubleWell]: bistable quartic well on every axis
//   - [BondChain]: harmonic bonds between consecutive particles
//   - [LennardJones]: 12-6 pair potential with optional cutoff and periodic box
//   - [Gravity]: softened Newtonian attraction, Barnes-Hut forces for large N
//
// Wrap any evaluator with [Checked] to turn NaN/Inf inputs or outputs into
// errors wrapping [md.ErrEvaluation].
//
// # Parallelism
//
// LennardJones splits the force summation across goroutines for large systems.
// Callers still see a single blocking Evaluate call.
package forcefield
