package simulation

import (
	"github.com/qdev-lab/memtest/internal/port"
	"github.com/qdev-lab/memtest/internal/protocol"
	"github.com/qdev-lab/memtest/internal/sample"
)

// Scenario defines one end-to-end protocol experiment.
type Scenario struct {
	Name string

	// Protocol names the sweep for the archive, e.g. "ltp".
	Protocol string

	// Steps is the sequence to play against the device.
	Steps []protocol.Step

	// Device overrides the default simulated device config.
	Device *port.SimConfig

	// CurrentLimit and NPLC configure the instrument before the run.
	// Zero values take the simulation defaults.
	CurrentLimit float64
	NPLC         float64

	// FailMeasurements schedules communication failures on the given
	// zero-based measurement indices.
	FailMeasurements []int

	// Archive stores the finished sweep in the runner's database.
	Archive bool
}

// Result captures one scenario's outcome.
type Result struct {
	Sweep  *sample.Sweep
	Device *port.SimDevice
}

// Samples returns the sweep's recorded samples.
func (r Result) Samples() []sample.Sample {
	return r.Sweep.Log.Samples()
}

// Labels returns the ordered labels of all recorded samples.
func (r Result) Labels() []string {
	samples := r.Sweep.Log.Samples()
	labels := make([]string, len(samples))
	for i, s := range samples {
		labels[i] = s.Label
	}
	return labels
}
