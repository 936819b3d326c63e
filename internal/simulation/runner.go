package simulation

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/qdev-lab/memtest/internal/port"
	"github.com/qdev-lab/memtest/internal/protocol"
	"github.com/qdev-lab/memtest/internal/sample"
	"github.com/qdev-lab/memtest/internal/store"
)

// Runner orchestrates protocol experiments against a simulated device and
// an isolated sweep archive.
type Runner struct {
	t       *testing.T
	archive *store.Archive
}

// NewRunner creates a runner with an isolated archive database.
func NewRunner(t *testing.T) *Runner {
	t.Helper()

	a, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunner: failed to open archive: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	return &Runner{t: t, archive: a}
}

// Archive exposes the runner's sweep database for direct inspection.
func (r *Runner) Archive() *store.Archive { return r.archive }

// Run executes the scenario on a fake clock and returns the finished sweep.
func (r *Runner) Run(scenario Scenario) Result {
	r.t.Helper()

	clock := protocol.NewFakeClock()

	devCfg := port.DefaultSimConfig()
	if scenario.Device != nil {
		devCfg = *scenario.Device
	}
	// The device shares the sequencer's clock so its volatile relaxation
	// follows simulated time rather than wall time.
	devCfg.Now = clock.Now
	dev := port.NewSimDevice(devCfg)
	for _, n := range scenario.FailMeasurements {
		dev.FailMeasurement(n)
	}

	seq := protocol.NewSequencer(
		protocol.WithClock(clock),
		protocol.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	limit := scenario.CurrentLimit
	if limit == 0 {
		limit = port.DefaultCurrentLimitSim
	}
	nplc := scenario.NPLC
	if nplc == 0 {
		nplc = 1.0
	}
	if err := seq.Configure(dev, limit, nplc); err != nil {
		r.t.Fatalf("scenario %s: configure: %v", scenario.Name, err)
	}

	proto := scenario.Protocol
	if proto == "" {
		proto = scenario.Name
	}
	sw := sample.NewSweep(proto)
	sw.Log = seq.Run(scenario.Steps, dev)

	if scenario.Archive {
		if err := r.archive.Save(context.Background(), sw); err != nil {
			r.t.Fatalf("scenario %s: archive: %v", scenario.Name, err)
		}
	}

	return Result{Sweep: sw, Device: dev}
}
