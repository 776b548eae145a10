// Package analysis extracts orbital characteristics from recorded runs.
//
//   - [Separation]: distance between two bodies over a run
//   - [PowerSpectrum]: magnitude spectrum of a series (mean removed)
//   - [DominantPeriod]: strongest periodic component, in samples
//
// # Orbital Period
//
// For a bound pair the separation oscillates once per orbit:
//
//	d := analysis.Separation(snaps, 0, 1)
//	if period, ok := analysis.DominantPeriod(d); ok {
//	    steps := period * float64(sampleEvery)
//	}
package analysis
