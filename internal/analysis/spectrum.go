package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns |X_k|²/n for k in [0, n/2] of the mean-removed series.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}

	mean := stat.Mean(data, nil)
	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, n/2+1)
	for i := range ps {
		a := cmplx.Abs(coeffs[i])
		ps[i] = a * a / float64(n)
	}
	return ps
}

// DominantFrequency returns the frequency, in cycles per unit of dt, of the
// strongest non-zero bin of the power spectrum.
func DominantFrequency(data []float64, dt float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0
	}

	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	return float64(best) / (float64(len(data)) * dt)
}

// Autocorrelation returns the normalised autocorrelation C(τ)/C(0) for lags
// 0..maxLag. A constant series yields nil.
func Autocorrelation(data []float64, maxLag int) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	mean, variance := stat.PopMeanVariance(data, nil)
	if variance == 0 || math.IsNaN(variance) {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		sum := 0.0
		for i := 0; i+lag < n; i++ {
			sum += (data[i] - mean) * (data[i+lag] - mean)
		}
		acf[lag] = sum / float64(n-lag) / variance
	}
	return acf
}

// CorrelationTime integrates the autocorrelation up to its first zero
// crossing, in units of the sample spacing.
func CorrelationTime(data []float64, maxLag int) float64 {
	acf := Autocorrelation(data, maxLag)
	if len(acf) == 0 {
		return 0
	}
	tau := 0.5
	for _, c := range acf[1:] {
		if c <= 0 {
			break
		}
		tau += c
	}
	return tau
}
