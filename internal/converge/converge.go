// Package converge drives repeated sweeps until their accumulated
// (frequency, loop area) curve fits a gaussian well enough, or the attempt
// budget runs out.
package converge

import (
	"log/slog"
	"time"

	"github.com/qdev-lab/memtest/internal/analysis"
	"github.com/qdev-lab/memtest/internal/constants"
	"github.com/qdev-lab/memtest/internal/sample"
)

// State is the controller's phase. Converged and Exhausted are terminal.
type State int

const (
	Running State = iota
	Converged
	Exhausted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// Config bounds the convergence loop.
type Config struct {
	// TargetR2 is the fit quality at which the loop may stop.
	TargetR2 float64 `yaml:"target_r2"`

	// MinAttempts keeps the loop running even when the target is hit
	// early; an early high R² on sparse data is not trusted.
	MinAttempts int `yaml:"min_attempts"`

	// MaxAttempts is the hard budget. Hitting it without convergence
	// is Exhausted, not an error.
	MaxAttempts int `yaml:"max_attempts"`

	// DelayGrowth multiplies the source delay between unconverged
	// attempts, giving the device longer to settle each round.
	DelayGrowth float64 `yaml:"delay_growth"`
}

// DefaultConfig returns the standard convergence bounds.
func DefaultConfig() Config {
	return Config{
		TargetR2:    constants.DefaultTargetR2,
		MinAttempts: constants.DefaultMinAttempts,
		MaxAttempts: constants.DefaultMaxAttempts,
		DelayGrowth: constants.DefaultDelayGrowth,
	}
}

// SweepFunc runs one full attempt across all configured step sizes with the
// given source delay and returns its (frequency, loop area) points.
type SweepFunc func(sourceDelay time.Duration) []sample.XY

// Controller accumulates attempt results and decides when to stop. It owns
// every sweep it requests; sweeps are serialized against the single port by
// construction, since Record is only called from the controller's own loop.
type Controller struct {
	cfg          Config
	logger       *slog.Logger
	state        State
	attempts     int
	points       []sample.XY
	fit          analysis.FitResult
	delay        time.Duration
	initialDelay time.Duration
}

// NewController creates a controller in the Running state. Non-positive
// config fields fall back to the defaults.
func NewController(cfg Config, initialDelay time.Duration, logger *slog.Logger) *Controller {
	def := DefaultConfig()
	if cfg.TargetR2 <= 0 {
		cfg.TargetR2 = def.TargetR2
	}
	if cfg.MinAttempts <= 0 {
		cfg.MinAttempts = def.MinAttempts
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.DelayGrowth <= 1 {
		cfg.DelayGrowth = def.DelayGrowth
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		cfg:          cfg,
		logger:       logger,
		delay:        initialDelay,
		initialDelay: initialDelay,
	}
}

// State returns the current phase.
func (c *Controller) State() State { return c.state }

// Attempts returns the number of recorded attempts.
func (c *Controller) Attempts() int { return c.attempts }

// Delay returns the source delay the next attempt should use.
func (c *Controller) Delay() time.Duration { return c.delay }

// Fit returns the most recent gaussian fit. On Exhausted this is the last
// computed fit, however poor; non-convergence is reported, not fatal.
func (c *Controller) Fit() analysis.FitResult { return c.fit }

// Points returns all accumulated (frequency, loop area) points.
func (c *Controller) Points() []sample.XY { return c.points }

// Record folds one attempt's points into the accumulated curve, refits, and
// advances the state machine. Calls after a terminal state are ignored.
func (c *Controller) Record(points []sample.XY) State {
	if c.state != Running {
		return c.state
	}

	c.attempts++
	c.points = append(c.points, points...)

	xs := make([]float64, len(c.points))
	ys := make([]float64, len(c.points))
	for i, p := range c.points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	c.fit = analysis.GaussianFit(xs, ys)

	r2 := 0.0
	if c.fit.OK {
		r2 = c.fit.R2
	}

	switch {
	case r2 >= c.cfg.TargetR2 && c.attempts >= c.cfg.MinAttempts:
		c.state = Converged
	case c.attempts >= c.cfg.MaxAttempts:
		c.state = Exhausted
	default:
		c.growDelay()
	}

	c.logger.Debug("convergence attempt recorded",
		"attempt", c.attempts, "points", len(c.points),
		"r2", r2, "state", c.state.String(), "next_delay", c.delay)
	return c.state
}

// growDelay stretches the source delay for the next attempt, capped at a
// fixed multiple of the initial delay.
func (c *Controller) growDelay() {
	grown := time.Duration(float64(c.delay) * c.cfg.DelayGrowth)
	limit := time.Duration(float64(c.initialDelay) * constants.MaxDelayGrowthFactor)
	if c.initialDelay > 0 && grown > limit {
		grown = limit
	}
	c.delay = grown
}

// Run drives sweep attempts until a terminal state and returns the final
// fit. The sweep function is called once per attempt with the delay that
// attempt should use.
func (c *Controller) Run(sweep SweepFunc) (analysis.FitResult, State) {
	for c.state == Running {
		c.Record(sweep(c.delay))
	}
	if c.state == Exhausted {
		c.logger.Warn("convergence budget exhausted",
			"attempts", c.attempts, "r2", c.fit.R2)
	}
	return c.fit, c.state
}
