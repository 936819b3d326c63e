// Package simulation provides an end-to-end test harness for validating
// protocol dynamics against the simulated device.
//
// Scenarios exercise the real Sequencer, SimDevice, analysis functions, and
// sweep archive, with no mocks. Each scenario builds a step list from real
// protocol parameters, runs it on a fake clock so hour-long hold schedules
// finish in microseconds, and exposes the resulting sweep for
// property-based assertions.
//
// Each test gets an isolated archive database via t.TempDir().
//
// Usage:
//
//	func TestPotentiation(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:  "ltp-monotonic",
//	        Steps: protocol.LTPLTDSteps(params),
//	    })
//	    simulation.AssertMonotonicTimestamps(t, result)
//	}
package simulation
