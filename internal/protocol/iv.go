package protocol

import (
	"math"
	"time"
)

// IVParams parameterizes a sinusoidal voltage sweep used for hysteresis-loop
// measurements.
type IVParams struct {
	// Amplitude scales the sine lobes, in volts.
	Amplitude float64

	// PointsPerHalf is the number of points per half-sine lobe.
	PointsPerHalf int

	// Cycles is the number of full sine periods.
	Cycles int

	// PulseWidth is the source-on time before each measurement.
	PulseWidth time.Duration

	// SourceDelay is the pause after each measurement.
	SourceDelay time.Duration
}

// LabelIV tags every sample of a sinusoidal sweep.
const LabelIV = "iv"

// SinePoints returns the voltage waveform of an IV sweep: per cycle a
// positive then a negative half-sine lobe of PointsPerHalf points each,
// closed with a final zero so the device is left unbiased.
func SinePoints(amplitude float64, pointsPerHalf, cycles int) []float64 {
	if pointsPerHalf <= 0 || cycles <= 0 {
		return nil
	}

	points := make([]float64, 0, 2*pointsPerHalf*cycles+1)
	for c := 0; c < cycles; c++ {
		for i := 0; i < pointsPerHalf; i++ {
			points = append(points, amplitude*math.Sin(float64(i)*math.Pi/float64(pointsPerHalf)))
		}
		for i := 0; i < pointsPerHalf; i++ {
			points = append(points, -amplitude*math.Sin(float64(i)*math.Pi/float64(pointsPerHalf)))
		}
	}
	return append(points, 0)
}

// IVSineSteps builds the step sequence for a sinusoidal IV sweep: one
// measured point per waveform sample with SourceDelay between points.
func IVSineSteps(p IVParams) []Step {
	points := SinePoints(p.Amplitude, p.PointsPerHalf, p.Cycles)
	if points == nil {
		return nil
	}

	steps := make([]Step, 0, 2*len(points)+2)
	steps = append(steps, Output(true))
	for _, v := range points {
		steps = append(steps,
			Read(v, p.PulseWidth, LabelIV),
			Wait(p.SourceDelay),
		)
	}
	steps = append(steps, Output(false))
	return steps
}
