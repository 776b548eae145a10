package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/gravsim/internal/dynamo"
)

// PowerSpectrum returns |X_k| for k in [0, n/2) after subtracting the mean,
// so bin 0 carries no DC offset.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
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

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod returns the period, in samples, of the strongest non-DC
// component. ok is false for series too short or flat to have one.
func DominantPeriod(data []float64) (period float64, ok bool) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0, false
	}

	maxIdx := 0
	maxPower := 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}
	if maxIdx == 0 || maxPower < 1e-9 {
		return 0, false
	}
	return float64(len(data)) / float64(maxIdx), true
}

// Separation returns the distance between bodies i and j in every snapshot.
func Separation(snaps []dynamo.Snapshot, i, j int) []float64 {
	d := make([]float64, 0, len(snaps))
	for _, s := range snaps {
		if i >= len(s.Bodies) || j >= len(s.Bodies) {
			continue
		}
		d = append(d, s.Bodies[j].Position.Sub(s.Bodies[i].Position).Len())
	}
	return d
}

// Series extracts one scalar per snapshot.
func Series(snaps []dynamo.Snapshot, fn func(dynamo.Snapshot) float64) []float64 {
	out := make([]float64, len(snaps))
	for k, s := range snaps {
		out[k] = fn(s)
	}
	return out
}
