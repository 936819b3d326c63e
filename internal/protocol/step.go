// Package protocol builds and executes the step sequences that drive a
// memristive device through its electrical test protocols. Generators turn
// protocol parameters into ordered step lists; the Sequencer plays a step
// list against a port and produces the sweep's sample log.
package protocol

import (
	"fmt"
	"time"
)

// Action is the primitive a step performs.
type Action int

const (
	// ActionRead sets the source to a non-disturbing level and measures.
	ActionRead Action = iota

	// ActionWrite sets the source to a state-changing level and measures.
	ActionWrite

	// ActionWait suspends the sweep for the step's duration. This is a
	// blocking hold; nothing else proceeds during it.
	ActionWait

	// ActionOutput toggles the output relay.
	ActionOutput
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionWrite:
		return "write"
	case ActionWait:
		return "wait"
	case ActionOutput:
		return "output"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Step is one primitive protocol action. Steps never outlive the sweep that
// contains them; the sequencer owns the step list for one run only.
type Step struct {
	// Action selects the primitive.
	Action Action

	// Level is the source voltage for read and write steps.
	Level float64

	// Settle is the time the source is held before measuring, for read and
	// write steps.
	Settle time.Duration

	// Wait is the hold duration for wait steps.
	Wait time.Duration

	// Enable is the relay state for output steps.
	Enable bool

	// Label tags samples produced by this step with the protocol phase.
	Label string
}

// Read builds a measuring step at a non-disturbing level.
func Read(volts float64, settle time.Duration, label string) Step {
	return Step{Action: ActionRead, Level: volts, Settle: settle, Label: label}
}

// Write builds a measuring step at a state-changing level.
func Write(volts float64, settle time.Duration, label string) Step {
	return Step{Action: ActionWrite, Level: volts, Settle: settle, Label: label}
}

// Wait builds a blocking hold step.
func Wait(d time.Duration) Step {
	return Step{Action: ActionWait, Wait: d}
}

// Output builds a relay toggle step.
func Output(on bool) Step {
	return Step{Action: ActionOutput, Enable: on}
}

// CountMeasuring returns the number of steps in the list that produce a
// sample.
func CountMeasuring(steps []Step) int {
	n := 0
	for _, s := range steps {
		if s.Action == ActionRead || s.Action == ActionWrite {
			n++
		}
	}
	return n
}
