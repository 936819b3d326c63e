// Package sample defines the measurement data model shared by the protocol
// sequencer and the analysis engine: individual samples, the append-only
// per-sweep log, and the sweep record that owns both.
package sample

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sample is one measurement event. Timestamps are seconds relative to sweep
// start once the owning log has been normalized. Samples are immutable after
// they are appended.
type Sample struct {
	// Timestamp is the measurement time in seconds.
	Timestamp float64 `json:"timestamp" yaml:"timestamp"`

	// Voltage is the measured (or last commanded) voltage in volts.
	Voltage float64 `json:"voltage" yaml:"voltage"`

	// Current is the measured current in amperes.
	Current float64 `json:"current" yaml:"current"`

	// Label tags the protocol phase that produced the sample,
	// e.g. "LTP_read", "write_2-5", "pulse2".
	Label string `json:"label" yaml:"label"`
}

// Log is the append-only sample store for one sweep. A Log is rebuilt fresh
// for every sweep; there is no deletion operation.
type Log struct {
	samples []Sample
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append records a sample. Within one sweep, timestamps are monotonically
// non-decreasing in issue order; Append does not reorder.
func (l *Log) Append(s Sample) {
	l.samples = append(l.samples, s)
}

// Len returns the number of recorded samples.
func (l *Log) Len() int {
	return len(l.samples)
}

// Samples returns the recorded samples in append order. The returned slice
// is the log's backing storage; callers must not mutate it.
func (l *Log) Samples() []Sample {
	return l.samples
}

// Filter returns the samples whose label contains the given substring,
// case-insensitively, preserving append order.
func (l *Log) Filter(labelSubstring string) []Sample {
	needle := strings.ToLower(labelSubstring)
	var out []Sample
	for _, s := range l.samples {
		if strings.Contains(strings.ToLower(s.Label), needle) {
			out = append(out, s)
		}
	}
	return out
}

// WithLabel returns the samples whose label matches exactly, preserving
// append order. Use this over Filter when labels share prefixes, e.g.
// "pulse1_0-1" versus "pulse1_0-10".
func (l *Log) WithLabel(label string) []Sample {
	var out []Sample
	for _, s := range l.samples {
		if s.Label == label {
			out = append(out, s)
		}
	}
	return out
}

// Normalize shifts all timestamps so the first sample lands at 0. A log
// whose first sample is already at 0 is left alone, so Normalize is
// idempotent and safe to call again after further appends.
func (l *Log) Normalize() {
	if len(l.samples) == 0 || l.samples[0].Timestamp == 0 {
		return
	}
	t0 := l.samples[0].Timestamp
	for i := range l.samples {
		l.samples[i].Timestamp -= t0
	}
}

// Span returns the time covered by the log: last timestamp minus first.
// Empty and single-sample logs report 0.
func (l *Log) Span() float64 {
	if len(l.samples) < 2 {
		return 0
	}
	return l.samples[len(l.samples)-1].Timestamp - l.samples[0].Timestamp
}

// Points returns the (voltage, current) pairs of all samples in order, the
// plain-sequence form consumed by the analysis engine and by renderers.
func (l *Log) Points() []XY {
	pts := make([]XY, len(l.samples))
	for i, s := range l.samples {
		pts[i] = XY{X: s.Voltage, Y: s.Current}
	}
	return pts
}

// TimeSeries returns the (timestamp, current) pairs of all samples in order.
func (l *Log) TimeSeries() []XY {
	pts := make([]XY, len(l.samples))
	for i, s := range l.samples {
		pts[i] = XY{X: s.Timestamp, Y: s.Current}
	}
	return pts
}

// XY is one point of a plain (x, y) sequence.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sweep is one complete execution of a protocol's step sequence. It owns its
// log and derived metrics and is owned exclusively by the controller that
// requested it.
type Sweep struct {
	// ID uniquely identifies the sweep in the archive.
	ID string `json:"id"`

	// Protocol names the protocol variant that produced the sweep,
	// e.g. "ltp", "pulse", "stdp", "srdp", "iv".
	Protocol string `json:"protocol"`

	// StartedAt is the wall-clock start of the sweep.
	StartedAt time.Time `json:"started_at"`

	// Params records the input parameters the sweep ran with.
	Params map[string]any `json:"params,omitempty"`

	// Log holds the sweep's samples.
	Log *Log `json:"-"`

	// Metrics holds derived scalar metrics (ratio, tau, r2, loop area,
	// frequency), keyed by metric name.
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// NewSweep creates a sweep with a fresh log and a generated ID.
func NewSweep(protocol string) *Sweep {
	return &Sweep{
		ID:        uuid.NewString(),
		Protocol:  protocol,
		StartedAt: time.Now(),
		Params:    make(map[string]any),
		Log:       NewLog(),
		Metrics:   make(map[string]float64),
	}
}

// SetMetric records a derived metric on the sweep.
func (s *Sweep) SetMetric(name string, value float64) {
	if s.Metrics == nil {
		s.Metrics = make(map[string]float64)
	}
	s.Metrics[name] = value
}
