package port

import (
	"math"
	"sync"
	"time"
)

// SimConfig parameterizes the simulated memristive device.
type SimConfig struct {
	// GMin and GMax bound the device conductance in siemens.
	GMin float64
	GMax float64

	// GInit is the starting conductance.
	GInit float64

	// WriteThreshold is the voltage magnitude below which a commanded level
	// does not disturb the device state. Read pulses stay below it.
	WriteThreshold float64

	// PotRate and DepRate scale the conductance change per write pulse.
	// Updates are proportional to the remaining headroom, so repeated pulses
	// produce the saturating curves real devices show.
	PotRate float64
	DepRate float64

	// RelaxTau is the volatile-retention time constant in seconds. Between
	// commands the conductance decays exponentially back toward GInit, so
	// longer inter-pulse intervals erase more of a pulse's effect. Zero
	// disables relaxation.
	RelaxTau float64

	// Now supplies the device's clock. Nil means time.Now; tests driving
	// the sequencer with a fake clock pass its Now so relaxation tracks
	// simulated time.
	Now func() time.Time
}

// DefaultSimConfig returns a device model with defaults that produce visible
// potentiation/depression within a ten-pulse train.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		GMin:           1e-8,
		GMax:           1e-6,
		GInit:          1e-7,
		WriteThreshold: 0.3,
		PotRate:        0.15,
		DepRate:        0.15,
		RelaxTau:       10.0,
	}
}

// SimDevice is an in-memory two-terminal memristive device behind the Port
// capability. Positive write pulses potentiate (raise conductance), negative
// pulses depress, reads below the write threshold apply no pulse, and between
// commands the state relaxes toward GInit on the RelaxTau time constant.
// It records every command for sequencer tests and can be scheduled to fail
// individual measurements with a communication error.
type SimDevice struct {
	mu sync.Mutex

	cfg       SimConfig
	g         float64
	output    bool
	level     float64
	limit     float64
	nplc      float64
	now       func() time.Time
	lastTouch time.Time

	measureCount int
	failMeasure  map[int]bool

	commands []Command
}

// Command is one recorded port operation.
type Command struct {
	Op    string // "output", "level", "limit", "nplc", "measure"
	Value float64
}

// NewSimDevice creates a simulated device.
func NewSimDevice(cfg SimConfig) *SimDevice {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &SimDevice{
		cfg:         cfg,
		g:           cfg.GInit,
		limit:       DefaultCurrentLimitSim,
		now:         now,
		lastTouch:   now(),
		failMeasure: make(map[int]bool),
	}
}

// relaxLocked applies the volatile decay accumulated since the last command,
// pulling the conductance back toward GInit. Callers hold the mutex.
func (d *SimDevice) relaxLocked() {
	t := d.now()
	dt := t.Sub(d.lastTouch).Seconds()
	d.lastTouch = t
	if d.cfg.RelaxTau <= 0 || dt <= 0 {
		return
	}
	d.g = d.cfg.GInit + (d.g-d.cfg.GInit)*math.Exp(-dt/d.cfg.RelaxTau)
}

// DefaultCurrentLimitSim is the compliance limit the simulator starts with
// before the sequencer configures one.
const DefaultCurrentLimitSim = 1e-3

// FailMeasurement schedules the n-th Measure call (0-based) to fail with a
// communication timeout.
func (d *SimDevice) FailMeasurement(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failMeasure[n] = true
}

// Conductance returns the current device conductance in siemens.
func (d *SimDevice) Conductance() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.g
}

// Commands returns the recorded command history in issue order.
func (d *SimDevice) Commands() []Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Command, len(d.commands))
	copy(out, d.commands)
	return out
}

// SetOutputEnabled implements Port.
func (d *SimDevice) SetOutputEnabled(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.output = on
	v := 0.0
	if on {
		v = 1.0
	}
	d.commands = append(d.commands, Command{Op: "output", Value: v})
	return nil
}

// SetVoltageLevel implements Port. Commanding a level at or above the write
// threshold applies one pulse worth of state change.
func (d *SimDevice) SetVoltageLevel(volts float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.relaxLocked()
	d.level = volts
	d.commands = append(d.commands, Command{Op: "level", Value: volts})

	if !d.output || math.Abs(volts) < d.cfg.WriteThreshold {
		return nil
	}
	if volts > 0 {
		d.g += d.cfg.PotRate * volts * (d.cfg.GMax - d.g)
	} else {
		d.g -= d.cfg.DepRate * (-volts) * (d.g - d.cfg.GMin)
	}
	d.g = math.Min(math.Max(d.g, d.cfg.GMin), d.cfg.GMax)
	return nil
}

// SetCurrentLimit implements Port.
func (d *SimDevice) SetCurrentLimit(amps float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.limit = amps
	d.commands = append(d.commands, Command{Op: "limit", Value: amps})
	return nil
}

// SetIntegrationCycles implements Port.
func (d *SimDevice) SetIntegrationCycles(nplc float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nplc = nplc
	d.commands = append(d.commands, Command{Op: "nplc", Value: nplc})
	return nil
}

// Measure implements Port. With the output disabled the device floats and
// reads back zero. Current follows Ohm's law at the present conductance,
// clipped at the compliance limit.
func (d *SimDevice) Measure() (current, voltage float64, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.relaxLocked()
	n := d.measureCount
	d.measureCount++
	d.commands = append(d.commands, Command{Op: "measure", Value: float64(n)})

	if d.failMeasure[n] {
		return 0, 0, &CommError{Op: "measure", Err: ErrTimeout}
	}
	if !d.output {
		return 0, 0, nil
	}

	i := d.g * d.level
	if math.Abs(i) > d.limit {
		i = math.Copysign(d.limit, i)
	}
	return i, d.level, nil
}
