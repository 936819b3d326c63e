package protocol

import (
	"fmt"
	"time"
)

// Label prefixes for spike-timing sweeps, consumed by the Δt/Δg
// extraction in the analysis package.
const (
	LabelSTDPRead      = "read"
	LabelSTDPPreSpike  = "pre_spike"
	LabelSTDPPostSpike = "post_spike"
)

// STDPParams parameterizes a spike-timing-dependent plasticity sweep.
type STDPParams struct {
	// ReadVoltage is the non-disturbing read level.
	ReadVoltage float64

	// SpikeVoltage is the level of each spike in the pre/post trains.
	SpikeVoltage float64

	// Deltas are the spike-timing offsets to sweep, in seconds.
	Deltas []float64

	// ReadNum is the number of reads per read block; their mean forms one
	// conductance point.
	ReadNum int

	// SpikeNum is the number of spikes per pre or post train.
	SpikeNum int

	// PulseWidth is the source-on time of each read or spike.
	PulseWidth time.Duration

	// OffTime is the output-disabled rest between a read block and the
	// following spike pair.
	OffTime time.Duration

	// PreBeforePost selects train order. When false the post train leads,
	// flipping the sign of Δt during analysis.
	PreBeforePost bool
}

// STDPSteps builds the spike-timing sequence: a baseline read block, then per
// timing offset a spike pair (leading train, timed gap, trailing train)
// followed by a read block measuring the resulting conductance. Read blocks
// are labeled read_k, spike trains pre_spike_k / post_spike_k.
func STDPSteps(p STDPParams) []Step {
	if len(p.Deltas) == 0 || p.ReadNum <= 0 || p.SpikeNum <= 0 {
		return nil
	}

	var steps []Step
	steps = append(steps, Output(true))
	steps = append(steps, readBlock(p, 0)...)
	for k, delta := range p.Deltas {
		steps = append(steps,
			Output(false),
			Wait(p.OffTime),
			Output(true),
		)

		first, second := LabelSTDPPreSpike, LabelSTDPPostSpike
		if !p.PreBeforePost {
			first, second = second, first
		}
		steps = append(steps, spikeTrain(p, first, k)...)
		steps = append(steps, Wait(time.Duration(delta*float64(time.Second))))
		steps = append(steps, spikeTrain(p, second, k)...)

		steps = append(steps, readBlock(p, k+1)...)
	}
	steps = append(steps, Output(false))
	return steps
}

func readBlock(p STDPParams, k int) []Step {
	steps := make([]Step, 0, p.ReadNum)
	label := fmt.Sprintf("%s_%d", LabelSTDPRead, k)
	for i := 0; i < p.ReadNum; i++ {
		steps = append(steps, Read(p.ReadVoltage, p.PulseWidth, label))
	}
	return steps
}

func spikeTrain(p STDPParams, prefix string, k int) []Step {
	steps := make([]Step, 0, p.SpikeNum)
	label := fmt.Sprintf("%s_%d", prefix, k)
	for i := 0; i < p.SpikeNum; i++ {
		steps = append(steps, Write(p.SpikeVoltage, p.PulseWidth, label))
	}
	return steps
}
