package protocol

import (
	"log/slog"

	"github.com/qdev-lab/memtest/internal/logging"
	"github.com/qdev-lab/memtest/internal/port"
	"github.com/qdev-lab/memtest/internal/sample"
)

// Sequencer executes step lists against a port, one command at a time.
// Execution is strictly sequential: every configured delay is a blocking
// hold, and a sweep runs to completion once started. The port is an
// exclusively-owned resource; callers must serialize sweeps against it.
type Sequencer struct {
	clock  Clock
	logger *slog.Logger
	trace  *logging.TraceLogger
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithClock replaces the wall clock, letting tests run timed protocols
// without real sleeps.
func WithClock(c Clock) Option {
	return func(s *Sequencer) { s.clock = c }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sequencer) { s.logger = l }
}

// WithTrace attaches a step-trace logger. A nil trace logger is valid and
// disables tracing.
func WithTrace(t *logging.TraceLogger) Option {
	return func(s *Sequencer) { s.trace = t }
}

// NewSequencer creates a sequencer with the wall clock and default logger.
func NewSequencer(opts ...Option) *Sequencer {
	s := &Sequencer{
		clock:  WallClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configure pushes the sweep-level instrument settings: compliance limit and
// integration time. Called once before Run.
func (s *Sequencer) Configure(p port.Port, currentLimit, nplc float64) error {
	if err := p.SetCurrentLimit(currentLimit); err != nil {
		return err
	}
	return p.SetIntegrationCycles(nplc)
}

// Run plays a step list against the port and returns the labeled,
// timestamp-normalized sample log. A failed measurement degrades to a
// sentinel sample (current 0, voltage at the last commanded level) and the
// sweep continues; persistent failure is the port's concern, not the
// sequencer's. An empty step list yields an empty log.
func (s *Sequencer) Run(steps []Step, p port.Port) *sample.Log {
	lg := sample.NewLog()
	if len(steps) == 0 {
		s.logger.Warn("sequencer: empty step list")
		return lg
	}

	cache := port.NewCache(p)
	start := s.clock.Now()

	for i, st := range steps {
		switch st.Action {
		case ActionWait:
			s.clock.Sleep(st.Wait)

		case ActionOutput:
			err := cache.SetOutputEnabled(st.Enable)
			if err != nil {
				s.logger.Warn("sequencer: output toggle failed",
					"step", i, "enable", st.Enable, "err", err)
			}
			s.trace.Log(map[string]any{
				"event":  "output",
				"step":   i,
				"enable": st.Enable,
				"failed": err != nil,
			})

		case ActionRead, ActionWrite:
			if err := cache.SetVoltageLevel(st.Level); err != nil {
				s.logger.Warn("sequencer: level command failed",
					"step", i, "level", st.Level, "err", err)
			}
			if st.Settle > 0 {
				s.clock.Sleep(st.Settle)
			}

			current, voltage, err := cache.Measure()
			t := s.clock.Now().Sub(start).Seconds()
			if err != nil {
				// Sentinel: zero current at the last commanded level.
				current = 0
				voltage = cache.Last().VoltageLevel
				s.logger.Warn("sequencer: measurement degraded to sentinel",
					"step", i, "label", st.Label, "err", err)
			}

			smp := sample.Sample{
				Timestamp: t,
				Voltage:   voltage,
				Current:   current,
				Label:     st.Label,
			}
			lg.Append(smp)

			s.trace.Log(map[string]any{
				"event":   "sample",
				"step":    i,
				"action":  st.Action.String(),
				"label":   st.Label,
				"level":   st.Level,
				"voltage": voltage,
				"current": current,
				"failed":  err != nil,
			})
		}
	}

	lg.Normalize()
	return lg
}
