package port

// State is the last-known commanded state of a port. It is updated on every
// successful command, not queried back from the instrument.
type State struct {
	OutputEnabled bool
	VoltageLevel  float64
	CurrentLimit  float64
	NPLC          float64
}

// Cache wraps a Port and records the last-known commanded state. The
// sequencer reads the cached voltage level when a measurement fails and a
// sentinel sample has to be synthesized.
type Cache struct {
	inner Port
	state State
}

// NewCache wraps p with state caching.
func NewCache(p Port) *Cache {
	return &Cache{inner: p}
}

// Last returns the last-known commanded state.
func (c *Cache) Last() State { return c.state }

// SetOutputEnabled forwards to the wrapped port and caches on success.
func (c *Cache) SetOutputEnabled(on bool) error {
	if err := c.inner.SetOutputEnabled(on); err != nil {
		return err
	}
	c.state.OutputEnabled = on
	return nil
}

// SetVoltageLevel forwards to the wrapped port and caches on success.
func (c *Cache) SetVoltageLevel(volts float64) error {
	if err := c.inner.SetVoltageLevel(volts); err != nil {
		return err
	}
	c.state.VoltageLevel = volts
	return nil
}

// SetCurrentLimit forwards to the wrapped port and caches on success.
func (c *Cache) SetCurrentLimit(amps float64) error {
	if err := c.inner.SetCurrentLimit(amps); err != nil {
		return err
	}
	c.state.CurrentLimit = amps
	return nil
}

// SetIntegrationCycles forwards to the wrapped port and caches on success.
func (c *Cache) SetIntegrationCycles(nplc float64) error {
	if err := c.inner.SetIntegrationCycles(nplc); err != nil {
		return err
	}
	c.state.NPLC = nplc
	return nil
}

// Measure forwards to the wrapped port.
func (c *Cache) Measure() (current, voltage float64, err error) {
	return c.inner.Measure()
}
