package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrFFTLength = errors.New("analysis: fft length must be a power of 2")

// FFT is the discrete Fourier transform of data. The length must be a
// power of 2.
func FFT(data []float64) ([]complex128, error) {
	n := len(data)
	if n > 1 && n&(n-1) != 0 {
		return nil, ErrFFTLength
	}
	return fft.FFTReal(data), nil
}

// PowerSpectrum is the magnitude of the first half of the FFT of data
// truncated to the largest power of 2.
func PowerSpectrum(data []float64) []float64 {
	n := 1
	for n*2 <= len(data) {
		n *= 2
	}
	if len(data) == 0 {
		return nil
	}
	spec, _ := FFT(data[:n])
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-constant
// component of data sampled every dt. The mean is removed first.
func DominantFrequency(data []float64, dt float64) float64 {
	if len(data) < 4 || dt <= 0 {
		return 0
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))
	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	n := 2 * len(ps)
	return float64(best) / (float64(n) * dt)
}
