package protocol

import (
	"fmt"
	"time"
)

// PairedPulseParams parameterizes a paired-pulse sweep over a set of
// inter-pulse intervals.
type PairedPulseParams struct {
	// PulseVoltage is the level of both pulses. Positive probes
	// facilitation (PPF), negative probes depression (PPD).
	PulseVoltage float64

	// Intervals are the inter-pulse gaps to sweep, in seconds.
	Intervals []float64

	// Repetitions is the number of pulse pairs per interval.
	Repetitions int

	// PulseWidth is the source-on time of each pulse.
	PulseWidth time.Duration

	// OffTime is the output-disabled pause between the two pulses of a
	// pair, and the cooldown between pairs.
	OffTime time.Duration
}

// PairedPulseSteps builds the sequence for one paired-pulse sweep. Each pair
// is pulse1, an output-disabled pause of OffTime, then the interval under
// test, then pulse2. Pairs are separated by an output-disabled cooldown so
// residual facilitation does not contaminate the next baseline. Labels carry
// the interval and repetition indices as pulse1_i-j / pulse2_i-j.
func PairedPulseSteps(p PairedPulseParams) []Step {
	if len(p.Intervals) == 0 || p.Repetitions <= 0 {
		return nil
	}

	var steps []Step
	steps = append(steps, Output(true))
	for i, interval := range p.Intervals {
		gap := time.Duration(interval * float64(time.Second))
		for j := 0; j < p.Repetitions; j++ {
			suffix := fmt.Sprintf("%d-%d", i, j)
			steps = append(steps,
				Read(p.PulseVoltage, p.PulseWidth, "pulse1_"+suffix),
				Output(false),
				Wait(p.OffTime),
				Output(true),
				Wait(gap),
				Read(p.PulseVoltage, p.PulseWidth, "pulse2_"+suffix),
				Output(false),
				Wait(p.OffTime),
				Output(true),
			)
		}
	}
	steps = append(steps, Output(false))
	return steps
}
