// Package metrics provides reporters that reduce a run to scalar figures.
//
// Every metric implements md.Reporter plus Name, Value and Reset, so it can
// be attached to a simulation like any other reporter; the simulation copies
// the final values into its result.
//
//   - [MeanTemperature] averages the instantaneous temperature.
//   - [EnergyDrift] is the largest relative total-energy deviation.
//   - [Stability] is the fraction of reports with a sane temperature.
package metrics
