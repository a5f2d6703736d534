// Package analysis turns recorded reports and frames into physical checks.
//
//   - [Equipartition]: temperature statistics against the bath target
//   - [KineticTemperature]: instantaneous temperature from velocities
//   - [Autocorrelation]: normalised autocorrelation of a scalar series
//   - [PowerSpectrum] and [DominantFrequency]: FFT of a scalar series
//   - [MeanSquaredDisplacement]: MSD over trajectory frames
//
// # Thermostat Check
//
// A correctly thermostatted run should satisfy equipartition:
//
//	st, err := analysis.Equipartition(rec.Reports, 300, 10)
//	if st.RelativeDeviation > 0.05 {
//	    // not equilibrated, or the timestep is too large
//	}
package analysis
