// Package analysis derives plasticity metrics from sweep data: paired-pulse
// ratios, exponential and gaussian fits with R² scoring, hysteresis loop
// area and frequency, differential conductance, and segment-intersection
// detection.
//
// Every function tolerates sparse or degenerate input by returning its
// documented degenerate value instead of an error; downstream consumers
// (plots, the convergence loop) must keep working on thin data.
package analysis

import (
	"github.com/qdev-lab/memtest/internal/constants"
	"github.com/qdev-lab/memtest/internal/sample"
)

// PairRatio is the result of a paired-pulse comparison.
type PairRatio struct {
	// Ratio is (I2/I1) - 1. Zero when undefined.
	Ratio float64

	// Facilitation is true when the second pulse drew more current than the
	// first (ratio > 0).
	Facilitation bool

	// Defined is false when the first-pulse current was too small to divide
	// by; Ratio and Facilitation carry their zero values then.
	Defined bool
}

// PairedPulseRatio computes the paired-pulse ratio from the two pulse
// currents. A baseline below constants.MinBaselineCurrent makes the ratio
// undefined.
func PairedPulseRatio(i1, i2 float64) PairRatio {
	if i1 < constants.MinBaselineCurrent && i1 > -constants.MinBaselineCurrent {
		return PairRatio{}
	}
	r := i2/i1 - 1
	return PairRatio{Ratio: r, Facilitation: r > 0, Defined: true}
}

// PeakCurrents returns the currents of all samples whose voltage lies within
// tol of target, in log order. Used to pull pulse-peak currents out of a raw
// sweep.
func PeakCurrents(lg *sample.Log, target, tol float64) []float64 {
	var out []float64
	for _, s := range lg.Samples() {
		d := s.Voltage - target
		if d < tol && d > -tol {
			out = append(out, s.Current)
		}
	}
	return out
}

// Conductance converts the read-labeled samples of a log into a
// (time, conductance) trace, with G = I / readVoltage. A zero read voltage
// yields an empty trace.
func Conductance(lg *sample.Log, readLabel string, readVoltage float64) []sample.XY {
	if readVoltage == 0 {
		return nil
	}
	reads := lg.Filter(readLabel)
	out := make([]sample.XY, len(reads))
	for i, s := range reads {
		out[i] = sample.XY{X: s.Timestamp, Y: s.Current / readVoltage}
	}
	return out
}
