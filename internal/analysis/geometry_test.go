package analysis

import (
	"math"
	"testing"

	"github.com/qdev-lab/memtest/internal/sample"
)

func square() []sample.XY {
	return []sample.XY{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
}

func TestLoopAreaSquare(t *testing.T) {
	got := LoopArea(square())
	if math.Abs(got-1.0) > 1e-12 {
		t.Errorf("LoopArea(unit square) = %v, want 1.0", got)
	}
}

func TestLoopAreaRotationInvariant(t *testing.T) {
	pts := square()
	base := LoopArea(pts)
	for shift := 1; shift < len(pts); shift++ {
		rotated := append(append([]sample.XY{}, pts[shift:]...), pts[:shift]...)
		if got := LoopArea(rotated); math.Abs(got-base) > 1e-12 {
			t.Errorf("rotation by %d changed area: %v != %v", shift, got, base)
		}
	}
}

func TestLoopAreaAlwaysNonNegative(t *testing.T) {
	// Clockwise traversal flips the shoelace sign; area must stay positive.
	cw := []sample.XY{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}
	if got := LoopArea(cw); got < 0 || math.Abs(got-1.0) > 1e-12 {
		t.Errorf("LoopArea(clockwise square) = %v, want 1.0", got)
	}
}

func TestLoopAreaDegenerate(t *testing.T) {
	if got := LoopArea(nil); got != 0 {
		t.Errorf("LoopArea(nil) = %v, want 0", got)
	}
	if got := LoopArea(square()[:2]); got != 0 {
		t.Errorf("LoopArea(2 points) = %v, want 0", got)
	}
}

func TestFrequency(t *testing.T) {
	tests := []struct {
		name string
		span float64
		want float64
	}{
		{"normal span", 2.0, 0.5},
		{"unit span", 1.0, 1.0},
		{"zero span", 0, 0},
		{"degenerate span", 1e-10, 0},
		{"negative span", -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Frequency(tt.span); got != tt.want {
				t.Errorf("Frequency(%v) = %v, want %v", tt.span, got, tt.want)
			}
		})
	}
}

func TestDifferentialConductance(t *testing.T) {
	pts := []sample.XY{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: 2, Y: 6}}
	got := DifferentialConductance(pts)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[1] != 2 {
		t.Errorf("g[1] = %v, want 2", got[1])
	}
	if got[2] != 4 {
		t.Errorf("g[2] = %v, want 4", got[2])
	}
	// Boundary policy: first point carries the second point's value.
	if got[0] != got[1] {
		t.Errorf("g[0] = %v, want %v (second point's value)", got[0], got[1])
	}
}

func TestDifferentialConductanceVerticalStep(t *testing.T) {
	pts := []sample.XY{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 2}}
	got := DifferentialConductance(pts)
	if got[1] != 0 {
		t.Errorf("vertical pair slope = %v, want 0", got[1])
	}
}

func TestDifferentialConductanceDegenerate(t *testing.T) {
	if got := DifferentialConductance(nil); got != nil {
		t.Errorf("nil input = %v, want nil", got)
	}
	if got := DifferentialConductance([]sample.XY{{X: 1, Y: 1}}); got != nil {
		t.Errorf("single point = %v, want nil", got)
	}
}

func TestSegmentIntersectionsMonotonicRamp(t *testing.T) {
	var pts []sample.XY
	for i := 0; i < 20; i++ {
		x := float64(i) * 0.1
		pts = append(pts, sample.XY{X: x, Y: x * x})
	}
	got := SegmentIntersections(pts)
	if got.Found {
		t.Errorf("monotonic ramp reported intersections at %v", got.Points)
	}
}

func TestSegmentIntersectionsCrossing(t *testing.T) {
	// Segment (0,0)-(1,1) crosses segment (0,1)-(1,0) at (0.5, 0.5).
	pts := []sample.XY{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 0}}
	got := SegmentIntersections(pts)
	if !got.Found {
		t.Fatal("crossing polyline reported no intersection")
	}
	if len(got.Points) != 1 {
		t.Fatalf("got %d intersections, want 1", len(got.Points))
	}
	p := got.Points[0]
	if math.Abs(p.X-0.5) > 1e-12 || math.Abs(p.Y-0.5) > 1e-12 {
		t.Errorf("intersection at (%v, %v), want (0.5, 0.5)", p.X, p.Y)
	}
}

func TestSegmentIntersectionsParallelSkipped(t *testing.T) {
	// Two horizontal runs at different heights: parallel, never crossing.
	pts := []sample.XY{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	got := SegmentIntersections(pts)
	if got.Found {
		t.Errorf("parallel segments reported as intersecting at %v", got.Points)
	}
}

func TestSegmentIntersectionsTooFewPoints(t *testing.T) {
	got := SegmentIntersections([]sample.XY{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}})
	if got.Found {
		t.Error("three points cannot form non-adjacent segments")
	}
}
