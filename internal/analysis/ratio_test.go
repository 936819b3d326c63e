package analysis

import (
	"math"
	"testing"

	"github.com/qdev-lab/memtest/internal/sample"
)

func TestPairedPulseRatio(t *testing.T) {
	tests := []struct {
		name         string
		i1, i2       float64
		wantRatio    float64
		wantFacil    bool
		wantDefined  bool
	}{
		{"facilitation", 1e-6, 1.5e-6, 0.5, true, true},
		{"depression", 1e-6, 0.5e-6, -0.5, false, true},
		{"unchanged", 1e-6, 1e-6, 0, false, true},
		{"zero baseline", 0, 1e-6, 0, false, false},
		{"sub-threshold baseline", 1e-21, 1e-6, 0, false, false},
		{"negative baseline", -1e-6, -2e-6, 1.0, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PairedPulseRatio(tt.i1, tt.i2)
			if math.Abs(got.Ratio-tt.wantRatio) > 1e-9 {
				t.Errorf("Ratio = %v, want %v", got.Ratio, tt.wantRatio)
			}
			if got.Facilitation != tt.wantFacil {
				t.Errorf("Facilitation = %v, want %v", got.Facilitation, tt.wantFacil)
			}
			if got.Defined != tt.wantDefined {
				t.Errorf("Defined = %v, want %v", got.Defined, tt.wantDefined)
			}
		})
	}
}

func TestPeakCurrents(t *testing.T) {
	lg := sample.NewLog()
	lg.Append(sample.Sample{Voltage: 1.0, Current: 1e-6})
	lg.Append(sample.Sample{Voltage: 0.1, Current: 2e-7})
	lg.Append(sample.Sample{Voltage: 0.98, Current: 2e-6})
	lg.Append(sample.Sample{Voltage: -1.0, Current: -1e-6})

	got := PeakCurrents(lg, 1.0, 0.05)
	if len(got) != 2 {
		t.Fatalf("PeakCurrents returned %d values, want 2", len(got))
	}
	if got[0] != 1e-6 || got[1] != 2e-6 {
		t.Errorf("PeakCurrents = %v, want [1e-6 2e-6]", got)
	}
}

func TestConductanceTrace(t *testing.T) {
	lg := sample.NewLog()
	lg.Append(sample.Sample{Timestamp: 0, Voltage: 0.1, Current: 1e-7, Label: "read_1-1"})
	lg.Append(sample.Sample{Timestamp: 1, Voltage: 1.0, Current: 5e-7, Label: "write_1-1"})
	lg.Append(sample.Sample{Timestamp: 2, Voltage: 0.1, Current: 2e-7, Label: "read_1-2"})

	trace := Conductance(lg, "read", 0.1)
	if len(trace) != 2 {
		t.Fatalf("trace has %d points, want 2", len(trace))
	}
	if math.Abs(trace[0].Y-1e-6) > 1e-15 {
		t.Errorf("G[0] = %g, want 1e-6", trace[0].Y)
	}
	if math.Abs(trace[1].Y-2e-6) > 1e-15 {
		t.Errorf("G[1] = %g, want 2e-6", trace[1].Y)
	}

	if Conductance(lg, "read", 0) != nil {
		t.Error("zero read voltage must yield an empty trace")
	}
}
