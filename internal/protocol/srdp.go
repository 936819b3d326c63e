package protocol

import (
	"fmt"
	"time"
)

// SRDPParams parameterizes a spike-rate-dependent plasticity sweep over a
// schedule of inter-pulse spacings.
type SRDPParams struct {
	// ReadVoltage is the non-disturbing read level.
	ReadVoltage float64

	// WriteVoltage is the plasticity-inducing level.
	WriteVoltage float64

	// Spaces are the inter-repetition spacings to sweep, in seconds,
	// normally descending so the pulse rate ramps up.
	Spaces []float64

	// Repetitions is the number of (read, write) pairs per spacing.
	Repetitions int

	// PulseWidth is the source-on time of each pulse.
	PulseWidth time.Duration

	// OffTime is the output-disabled gap between the read and write of a
	// pair, and part of the inter-repetition cooldown.
	OffTime time.Duration
}

// SRDPSteps builds the rate sweep: per spacing, Repetitions pairs of
// (read, off-gap, write), each pair followed by an output-disabled cooldown
// of OffTime plus the spacing, except after the final pair of the final
// spacing. Labels carry the spacing and repetition indices as
// read_i-j / write_i-j.
func SRDPSteps(p SRDPParams) []Step {
	if len(p.Spaces) == 0 || p.Repetitions <= 0 {
		return nil
	}

	var steps []Step
	steps = append(steps, Output(true))
	for i, space := range p.Spaces {
		cooldown := p.OffTime + time.Duration(space*float64(time.Second))
		for j := 0; j < p.Repetitions; j++ {
			suffix := fmt.Sprintf("%d-%d", i, j)
			steps = append(steps,
				Read(p.ReadVoltage, p.PulseWidth, "read_"+suffix),
				Output(false),
				Wait(p.OffTime),
				Output(true),
				Write(p.WriteVoltage, p.PulseWidth, "write_"+suffix),
			)
			if i == len(p.Spaces)-1 && j == p.Repetitions-1 {
				continue
			}
			steps = append(steps,
				Output(false),
				Wait(cooldown),
				Output(true),
			)
		}
	}
	steps = append(steps, Output(false))
	return steps
}

// LTMSteps builds the long-term-memory endurance variant: a write-only pulse
// train per spacing with the same cooldown schedule, labels ltm_write_i-j.
func LTMSteps(p SRDPParams) []Step {
	if len(p.Spaces) == 0 || p.Repetitions <= 0 {
		return nil
	}

	var steps []Step
	steps = append(steps, Output(true))
	for i, space := range p.Spaces {
		cooldown := p.OffTime + time.Duration(space*float64(time.Second))
		for j := 0; j < p.Repetitions; j++ {
			label := fmt.Sprintf("ltm_write_%d-%d", i, j)
			steps = append(steps, Write(p.WriteVoltage, p.PulseWidth, label))
			if i == len(p.Spaces)-1 && j == p.Repetitions-1 {
				continue
			}
			steps = append(steps,
				Output(false),
				Wait(cooldown),
				Output(true),
			)
		}
	}
	steps = append(steps, Output(false))
	return steps
}
