package analysis

import (
	"github.com/qdev-lab/memtest/internal/constants"
	"github.com/qdev-lab/memtest/internal/sample"
)

// DeltaPairs extracts the spike-timing curve from an STDP sweep log:
// conductance change fractions paired with spike-timing offsets.
//
// Read samples (label containing readLabel) are grouped into blocks of
// readNum and averaged; the relative change between consecutive block means
// gives Δg = (I2-I1)/I1. Pre/post spike samples are grouped into blocks of
// spikeNum and the onset time of each block gives the pair's
// Δt = t_post - t_pre, sign flipped when the post train led. The i-th Δg and
// the i-th Δt belong to the same spike pairing, so a pairing whose baseline
// mean is negligible is dropped from both outputs.
func DeltaPairs(lg *sample.Log, readLabel, preLabel, postLabel string, readNum, spikeNum int, preBeforePost bool) (dt, dg []float64) {
	if readNum <= 0 || spikeNum <= 0 {
		return nil, nil
	}

	readMeans := blockMeans(lg.Filter(readLabel), readNum)
	preTimes := blockOnsets(lg.Filter(preLabel), spikeNum)
	postTimes := blockOnsets(lg.Filter(postLabel), spikeNum)

	pairs := min(len(readMeans)-1, len(preTimes), len(postTimes))
	for i := 0; i < pairs; i++ {
		i1, i2 := readMeans[i], readMeans[i+1]
		if i1 < constants.MinBaselineCurrent && i1 > -constants.MinBaselineCurrent {
			continue
		}
		d := postTimes[i] - preTimes[i]
		if !preBeforePost {
			d = -d
		}
		dt = append(dt, d)
		dg = append(dg, (i2-i1)/i1)
	}
	return dt, dg
}

// blockMeans splits samples into complete blocks of size n and returns the
// mean current of each block. A trailing partial block is dropped.
func blockMeans(samples []sample.Sample, n int) []float64 {
	var out []float64
	for i := 0; i+n <= len(samples); i += n {
		var sum float64
		for _, s := range samples[i : i+n] {
			sum += s.Current
		}
		out = append(out, sum/float64(n))
	}
	return out
}

// blockOnsets splits samples into complete blocks of size n and returns the
// first timestamp of each block.
func blockOnsets(samples []sample.Sample, n int) []float64 {
	var out []float64
	for i := 0; i+n <= len(samples); i += n {
		out = append(out, samples[i].Timestamp)
	}
	return out
}

// ClassifyDeviceType buckets a pulse-peak current trend into the M0..M4
// device classes by the signs of the slopes over the first and second half
// of the train. Too few points, or a flat trend, classify as M0.
func ClassifyDeviceType(currents []float64) string {
	half := len(currents) / 2
	if half < 2 || len(currents)-half < 2 {
		return "M0"
	}

	firstX := make([]float64, half)
	firstY := currents[:half]
	for i := range firstX {
		firstX[i] = float64(i + 1)
	}
	secondX := make([]float64, len(currents)-half)
	secondY := currents[half:]
	for i := range secondX {
		secondX[i] = float64(i + 1)
	}

	k1, _, _ := LinearFit(firstX, firstY)
	k2, _, _ := LinearFit(secondX, secondY)

	switch {
	case k1 < 0 && k2 > 0:
		return "M1"
	case k1 < 0 && k2 < 0:
		return "M2"
	case k1 > 0 && k2 < 0:
		return "M3"
	case k1 > 0 && k2 > 0:
		return "M4"
	}
	return "M0"
}
