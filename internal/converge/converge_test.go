package converge

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/qdev-lab/memtest/internal/sample"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// gaussianPoints samples a clean bell curve so the fit's R² is near 1.
func gaussianPoints(n int) []sample.XY {
	pts := make([]sample.XY, n)
	for i := range pts {
		x := -2 + 4*float64(i)/float64(n-1)
		pts[i] = sample.XY{X: x, Y: 2 * math.Exp(-x*x/2)}
	}
	return pts
}

// oscillatingPoints alternate sign so no gaussian explains them.
func oscillatingPoints(n, offset int) []sample.XY {
	pts := make([]sample.XY, n)
	for i := range pts {
		y := 1.0
		if (offset+i)%2 == 1 {
			y = -1.0
		}
		pts[i] = sample.XY{X: float64(offset + i), Y: y}
	}
	return pts
}

func TestControllerHoldsUntilMinAttempts(t *testing.T) {
	c := NewController(DefaultConfig(), 10*time.Millisecond, discardLogger())

	if s := c.Record(gaussianPoints(9)); s != Running {
		t.Fatalf("state after attempt 1 = %v, want running", s)
	}
	if !c.Fit().OK || c.Fit().R2 < 0.98 {
		t.Fatalf("fit on clean data: OK=%v R2=%v", c.Fit().OK, c.Fit().R2)
	}
	if s := c.Record(gaussianPoints(9)); s != Running {
		t.Fatalf("state after attempt 2 = %v, want running", s)
	}
	if s := c.Record(gaussianPoints(9)); s != Converged {
		t.Fatalf("state after attempt 3 = %v, want converged", s)
	}
	if c.Attempts() != 3 {
		t.Errorf("attempts = %d, want 3", c.Attempts())
	}
}

func TestControllerExhaustsAtBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 5
	c := NewController(cfg, 10*time.Millisecond, discardLogger())

	var final State
	for i := 0; i < cfg.MaxAttempts; i++ {
		final = c.Record(oscillatingPoints(6, 6*i))
	}
	if final != Exhausted {
		t.Fatalf("state after budget = %v, want exhausted", final)
	}
	// The last fit is still reported, however poor.
	if c.Fit().OK && c.Fit().R2 >= cfg.TargetR2 {
		t.Errorf("oscillating data fit unexpectedly well: R2=%v", c.Fit().R2)
	}
	if len(c.Points()) != 30 {
		t.Errorf("accumulated points = %d, want 30", len(c.Points()))
	}
}

func TestControllerTerminalStatesIgnoreRecord(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 1
	cfg.MinAttempts = 1
	c := NewController(cfg, time.Millisecond, discardLogger())

	c.Record(oscillatingPoints(6, 0))
	if c.State() != Exhausted {
		t.Fatalf("state = %v, want exhausted", c.State())
	}
	c.Record(gaussianPoints(9))
	if c.Attempts() != 1 {
		t.Errorf("terminal record changed attempts: %d", c.Attempts())
	}
}

func TestControllerDelayGrowth(t *testing.T) {
	c := NewController(DefaultConfig(), 10*time.Millisecond, discardLogger())
	if c.Delay() != 10*time.Millisecond {
		t.Fatalf("initial delay = %v", c.Delay())
	}

	c.Record(oscillatingPoints(6, 0))
	if c.Delay() != 15*time.Millisecond {
		t.Errorf("delay after one attempt = %v, want 15ms", c.Delay())
	}

	// Growth saturates at ten times the initial delay.
	for i := 1; i < 15; i++ {
		c.Record(oscillatingPoints(6, 6*i))
		if c.State() != Running {
			break
		}
	}
	if c.Delay() > 100*time.Millisecond {
		t.Errorf("delay grew past cap: %v", c.Delay())
	}
}

func TestControllerRun(t *testing.T) {
	c := NewController(DefaultConfig(), time.Millisecond, discardLogger())

	calls := 0
	fit, state := c.Run(func(delay time.Duration) []sample.XY {
		calls++
		if delay <= 0 {
			t.Errorf("call %d: non-positive delay %v", calls, delay)
		}
		return gaussianPoints(9)
	})

	if state != Converged {
		t.Fatalf("final state = %v, want converged", state)
	}
	if calls != 3 {
		t.Errorf("sweep calls = %d, want 3", calls)
	}
	if !fit.OK || fit.R2 < 0.98 {
		t.Errorf("final fit: OK=%v R2=%v", fit.OK, fit.R2)
	}
}

func TestConfigDefaultsAppliedToZeroFields(t *testing.T) {
	c := NewController(Config{}, time.Millisecond, nil)
	if c.cfg.TargetR2 != 0.98 || c.cfg.MinAttempts != 3 || c.cfg.MaxAttempts != 20 {
		t.Errorf("defaults not applied: %+v", c.cfg)
	}
}
