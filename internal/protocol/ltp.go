package protocol

import "time"

// LTPParams parameterizes a potentiation/depression sweep.
type LTPParams struct {
	// ReadVoltage is the non-disturbing read level.
	ReadVoltage float64

	// WriteVoltage is the potentiation level; DepressVoltage the depression
	// level (normally negative).
	WriteVoltage   float64
	DepressVoltage float64

	// Repetitions is the number of (read, write) pairs per phase.
	Repetitions int

	// PulseWidth is the source-on time before each measurement.
	PulseWidth time.Duration
}

// Phase labels for potentiation/depression sweeps.
const (
	LabelLTPRead  = "LTP_read"
	LabelLTPWrite = "LTP_write"
	LabelLTDRead  = "LTD_read"
	LabelLTDWrite = "LTD_write"
)

// LTPLTDSteps builds the potentiation/depression sequence: N repetitions of
// (read, write at +WriteVoltage) followed immediately, with no intervening
// delay or output-disable, by N repetitions of (read, write at DepressVoltage).
func LTPLTDSteps(p LTPParams) []Step {
	if p.Repetitions <= 0 {
		return nil
	}

	steps := make([]Step, 0, 4*p.Repetitions+2)
	steps = append(steps, Output(true))
	for i := 0; i < p.Repetitions; i++ {
		steps = append(steps,
			Read(p.ReadVoltage, p.PulseWidth, LabelLTPRead),
			Write(p.WriteVoltage, p.PulseWidth, LabelLTPWrite),
		)
	}
	for i := 0; i < p.Repetitions; i++ {
		steps = append(steps,
			Read(p.ReadVoltage, p.PulseWidth, LabelLTDRead),
			Write(p.DepressVoltage, p.PulseWidth, LabelLTDWrite),
		)
	}
	steps = append(steps, Output(false))
	return steps
}
