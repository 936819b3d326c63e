// Package constants provides named constants used throughout the memtest codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Numerical guard thresholds
const (
	// MinBaselineCurrent is the smallest first-pulse current considered
	// meaningful for a paired-pulse ratio. Below this the ratio is undefined
	// and reported as 0 with the facilitation flag cleared.
	MinBaselineCurrent = 1e-20

	// MinSweepSpan is the smallest time span (seconds) a sweep may cover and
	// still yield a frequency. Spans at or below this report frequency 0.
	MinSweepSpan = 1e-9

	// ParallelDeterminant is the determinant magnitude below which two
	// polyline segments are treated as parallel and skipped by the
	// intersection detector.
	ParallelDeterminant = 1e-10
)

// Curve fitting constants
const (
	// MinFitPoints is the minimum number of data points required before a
	// nonlinear fit is attempted. Fewer points always yield "no fit".
	MinFitPoints = 3

	// FitMaxIterations bounds the nonlinear solver. Fits that have not
	// converged by then are reported as failed, not retried.
	FitMaxIterations = 2000
)

// Convergence controller defaults
const (
	// DefaultTargetR2 is the gaussian-fit quality at which the adaptive IV
	// loop is allowed to stop.
	DefaultTargetR2 = 0.98

	// DefaultMinAttempts is the floor on sweep attempts. The controller never
	// reports convergence earlier, even if the R² target is already met.
	DefaultMinAttempts = 3

	// DefaultMaxAttempts is the sweep attempt budget. Hitting it without
	// convergence is reported as exhaustion, not as an error.
	DefaultMaxAttempts = 20

	// DefaultDelayGrowth is the factor applied to the source delay between
	// unconverged attempts.
	DefaultDelayGrowth = 1.5

	// MaxDelayGrowthFactor caps the accumulated source-delay growth relative
	// to the configured starting delay.
	MaxDelayGrowthFactor = 10.0
)

// Instrument defaults, matching the bench defaults the protocols were
// characterized with.
const (
	// DefaultReadVoltage is the non-disturbing read level in volts.
	DefaultReadVoltage = 0.1

	// DefaultWriteVoltage is the potentiation write level in volts.
	DefaultWriteVoltage = 1.0

	// DefaultDepressVoltage is the depression write level in volts.
	DefaultDepressVoltage = -1.0

	// DefaultSpikeVoltage is the STDP spike level in volts.
	DefaultSpikeVoltage = 0.5

	// DefaultCurrentLimit is the compliance limit in amperes.
	DefaultCurrentLimit = 1e-7

	// DefaultNPLC is the integration time in power line cycles.
	DefaultNPLC = 1.0
)

// VoltageMatchTolerance is the absolute tolerance used when classifying a
// measured sample against a commanded level (read vs write discrimination).
const VoltageMatchTolerance = 0.01
