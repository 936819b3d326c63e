package protocol

import "time"

// Clock abstracts the sequencer's notion of time so tests can run protocols
// with hours of configured holds in microseconds. Production code uses
// WallClock; its Sleep really blocks, as the timing contract requires.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type wallClock struct{}

func (wallClock) Now() time.Time        { return time.Now() }
func (wallClock) Sleep(d time.Duration) { time.Sleep(d) }

// WallClock returns the real-time clock.
func WallClock() Clock { return wallClock{} }

// FakeClock is a deterministic clock for tests: Sleep advances Now by
// exactly the requested duration and returns immediately.
type FakeClock struct {
	t time.Time
}

// NewFakeClock starts a fake clock at an arbitrary fixed instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the clock's current instant.
func (c *FakeClock) Now() time.Time { return c.t }

// Sleep advances the clock without blocking.
func (c *FakeClock) Sleep(d time.Duration) { c.t = c.t.Add(d) }
