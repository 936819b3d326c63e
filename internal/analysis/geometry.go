package analysis

import (
	"math"

	"github.com/qdev-lab/memtest/internal/constants"
	"github.com/qdev-lab/memtest/internal/sample"
)

// LoopArea computes the area enclosed by the (voltage, current) polygon of a
// sweep via the shoelace formula, pairing the last point back to the first.
// Fewer than three points enclose nothing and report 0. The result is always
// non-negative and invariant to cyclic rotation of the traversal.
func LoopArea(points []sample.XY) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	var acc float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		acc += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return math.Abs(acc) / 2
}

// Frequency derives a sweep frequency from its time span as 1/span.
// Degenerate spans (at or below constants.MinSweepSpan) report 0 instead of
// blowing up the division.
func Frequency(span float64) float64 {
	if span <= constants.MinSweepSpan {
		return 0
	}
	return 1 / span
}

// DifferentialConductance computes dI/dV along the sweep by differencing
// consecutive points. Each point from the second onward carries the
// difference against its predecessor; the first point is assigned the second
// point's value, since no backward-difference data exists at that boundary.
// A vertical pair (dV below the parallel threshold) contributes 0.
// Fewer than two points yield nil.
func DifferentialConductance(points []sample.XY) []float64 {
	n := len(points)
	if n < 2 {
		return nil
	}
	out := make([]float64, n)
	for i := 1; i < n; i++ {
		dv := points[i].X - points[i-1].X
		if math.Abs(dv) < constants.ParallelDeterminant {
			out[i] = 0
			continue
		}
		out[i] = (points[i].Y - points[i-1].Y) / dv
	}
	out[0] = out[1]
	return out
}

// Intersections is the result of scanning a polyline for self-intersections.
type Intersections struct {
	// Found reports whether any pair of non-adjacent segments crosses.
	Found bool

	// Points lists the crossing points in scan order.
	Points []sample.XY
}

// SegmentIntersections scans every pair of non-adjacent segments of the
// (voltage, current) polyline for a true crossing, solving the 2x2 linear
// system for the intersection parameters. Near-parallel pairs (determinant
// magnitude below constants.ParallelDeterminant) are skipped, not reported.
// A strictly monotonic ramp produces no intersections; a pinched hysteresis
// loop produces at least one.
func SegmentIntersections(points []sample.XY) Intersections {
	var res Intersections
	n := len(points)
	if n < 4 {
		return res
	}

	for i := 0; i < n-1; i++ {
		for j := i + 2; j < n-1; j++ {
			p1, p2 := points[i], points[i+1]
			p3, p4 := points[j], points[j+1]

			den := (p2.X-p1.X)*(p4.Y-p3.Y) - (p2.Y-p1.Y)*(p4.X-p3.X)
			if math.Abs(den) < constants.ParallelDeterminant {
				continue
			}

			ua := ((p4.X-p3.X)*(p1.Y-p3.Y) - (p4.Y-p3.Y)*(p1.X-p3.X)) / den
			ub := ((p2.X-p1.X)*(p1.Y-p3.Y) - (p2.Y-p1.Y)*(p1.X-p3.X)) / den
			if ua < 0 || ua > 1 || ub < 0 || ub > 1 {
				continue
			}

			res.Found = true
			res.Points = append(res.Points, sample.XY{
				X: p1.X + ua*(p2.X-p1.X),
				Y: p1.Y + ua*(p2.Y-p1.Y),
			})
		}
	}
	return res
}
