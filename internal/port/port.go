// Package port defines the source-measurement unit capability consumed by the
// protocol sequencer, its error taxonomy, and a simulated memristive device
// implementation used for tests and dry runs.
//
// The instrument is modeled as an explicit request/response capability rather
// than remote-query property accessors, so the sequencer can run against a
// mock with cached last-known state and no hardware attached.
package port

import (
	"errors"
	"fmt"
)

// Port is the source-measurement unit capability. One Port is exclusively
// owned per test session; nothing in this package serializes concurrent use.
type Port interface {
	// SetOutputEnabled toggles the output relay.
	SetOutputEnabled(on bool) error

	// SetVoltageLevel sets the source level in volts.
	SetVoltageLevel(volts float64) error

	// SetCurrentLimit sets the compliance limit in amperes.
	SetCurrentLimit(amps float64) error

	// SetIntegrationCycles sets the measurement integration time in power
	// line cycles (NPLC).
	SetIntegrationCycles(nplc float64) error

	// Measure issues one measurement and returns (current, voltage).
	Measure() (current, voltage float64, err error)
}

// ErrTimeout indicates the instrument did not answer within the
// communication deadline.
var ErrTimeout = errors.New("instrument timeout")

// CommError is a communication-level failure: the instrument was unreachable
// or its reply was unusable. The sequencer degrades the affected sample to a
// sentinel and continues.
type CommError struct {
	Op  string
	Err error
}

func (e *CommError) Error() string {
	return fmt.Sprintf("port: %s: %v", e.Op, e.Err)
}

func (e *CommError) Unwrap() error { return e.Err }

// MeasurementError is a content-level failure: the instrument answered, but
// the reading itself is invalid (compliance hit, overflow sentinel).
// Distinct from CommError so callers can tell a broken link from a bad value.
type MeasurementError struct {
	Op     string
	Detail string
}

func (e *MeasurementError) Error() string {
	return fmt.Sprintf("port: %s: %s", e.Op, e.Detail)
}

// IsComm reports whether err is a communication-level failure.
func IsComm(err error) bool {
	var ce *CommError
	return errors.As(err, &ce)
}
