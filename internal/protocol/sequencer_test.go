package protocol

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/qdev-lab/memtest/internal/port"
)

func testSequencer() *Sequencer {
	return NewSequencer(
		WithClock(NewFakeClock()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestRunEmptyStepList(t *testing.T) {
	seq := testSequencer()
	lg := seq.Run(nil, port.NewSimDevice(port.DefaultSimConfig()))
	if lg == nil {
		t.Fatal("expected a log, got nil")
	}
	if lg.Len() != 0 {
		t.Errorf("log length = %d, want 0", lg.Len())
	}
}

func TestRunLTPThenLTD(t *testing.T) {
	dev := port.NewSimDevice(port.DefaultSimConfig())
	seq := testSequencer()

	if err := seq.Configure(dev, port.DefaultCurrentLimitSim, 1.0); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	steps := LTPLTDSteps(LTPParams{
		ReadVoltage:    0.1,
		WriteVoltage:   1.0,
		DepressVoltage: -1.0,
		Repetitions:    2,
		PulseWidth:     200 * time.Millisecond,
	})
	lg := seq.Run(steps, dev)

	want := []string{
		LabelLTPRead, LabelLTPWrite, LabelLTPRead, LabelLTPWrite,
		LabelLTDRead, LabelLTDWrite, LabelLTDRead, LabelLTDWrite,
	}
	samples := lg.Samples()
	if len(samples) != len(want) {
		t.Fatalf("samples = %d, want %d", len(samples), len(want))
	}
	for i, w := range want {
		if samples[i].Label != w {
			t.Errorf("sample[%d].Label = %q, want %q", i, samples[i].Label, w)
		}
	}

	if samples[0].Timestamp != 0 {
		t.Errorf("first timestamp = %v, want 0", samples[0].Timestamp)
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].Timestamp <= samples[i-1].Timestamp {
			t.Errorf("timestamps not increasing at %d: %v <= %v",
				i, samples[i].Timestamp, samples[i-1].Timestamp)
		}
	}

	// Potentiation raises the read current; depression lowers it again.
	if samples[2].Current <= samples[0].Current {
		t.Errorf("read current after potentiation = %v, want > %v",
			samples[2].Current, samples[0].Current)
	}
	if samples[6].Current >= samples[4].Current {
		t.Errorf("read current after depression = %v, want < %v",
			samples[6].Current, samples[4].Current)
	}
}

func TestRunFakeClockTimestamps(t *testing.T) {
	dev := port.NewSimDevice(port.DefaultSimConfig())
	seq := testSequencer()

	steps := []Step{
		Output(true),
		Read(0.1, 250*time.Millisecond, "a"),
		Wait(time.Second),
		Read(0.1, 250*time.Millisecond, "b"),
		Output(false),
	}
	lg := seq.Run(steps, dev)
	samples := lg.Samples()
	if len(samples) != 2 {
		t.Fatalf("samples = %d, want 2", len(samples))
	}
	// Second sample lands one wait plus one settle after the first.
	if got := samples[1].Timestamp - samples[0].Timestamp; got != 1.25 {
		t.Errorf("timestamp delta = %v, want 1.25", got)
	}
}

func TestRunDegradesFailedMeasurementToSentinel(t *testing.T) {
	dev := port.NewSimDevice(port.DefaultSimConfig())
	dev.FailMeasurement(1)
	seq := testSequencer()

	steps := []Step{
		Output(true),
		Read(0.1, 0, "ok"),
		Read(0.3, 0, "degraded"),
		Read(0.1, 0, "recovered"),
		Output(false),
	}
	lg := seq.Run(steps, dev)
	samples := lg.Samples()
	if len(samples) != 3 {
		t.Fatalf("samples = %d, want 3", len(samples))
	}

	if samples[0].Current == 0 {
		t.Error("healthy sample has zero current")
	}
	if samples[1].Current != 0 {
		t.Errorf("sentinel current = %v, want 0", samples[1].Current)
	}
	if samples[1].Voltage != 0.3 {
		t.Errorf("sentinel voltage = %v, want last commanded 0.3", samples[1].Voltage)
	}
	if samples[2].Current == 0 {
		t.Error("sweep did not continue past the failed measurement")
	}
}

func TestRunHonorsOutputToggle(t *testing.T) {
	dev := port.NewSimDevice(port.DefaultSimConfig())
	seq := testSequencer()

	steps := []Step{
		Read(0.1, 0, "off"), // output never enabled
		Output(true),
		Read(0.1, 0, "on"),
	}
	lg := seq.Run(steps, dev)
	samples := lg.Samples()
	if samples[0].Current != 0 || samples[0].Voltage != 0 {
		t.Errorf("output-off sample = %+v, want zeros", samples[0])
	}
	if samples[1].Current == 0 {
		t.Error("output-on sample has zero current")
	}
}
