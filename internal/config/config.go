// Package config provides unified configuration loading for memtest.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/qdev-lab/memtest/internal/constants"
	"github.com/qdev-lab/memtest/internal/converge"
)

// Config contains all memtest settings. Timing fields are in seconds,
// voltages in volts, currents in amperes.
type Config struct {
	// PulseWidth is the source-on time per pulse.
	PulseWidth float64 `json:"pulse_width" yaml:"pulse_width"`

	// OffTime is the output-disabled time between pulses.
	OffTime float64 `json:"off_time" yaml:"off_time"`

	// SettleTime is extra settle time before each measurement.
	SettleTime float64 `json:"settle_time" yaml:"settle_time"`

	// NPLC is the measurement integration time in power line cycles.
	NPLC float64 `json:"nplc" yaml:"nplc"`

	// ReadVoltage is the non-disturbing read level.
	ReadVoltage float64 `json:"read_voltage" yaml:"read_voltage"`

	// WriteVoltage is the potentiation level.
	WriteVoltage float64 `json:"write_voltage" yaml:"write_voltage"`

	// DepressVoltage is the depression level, normally negative.
	DepressVoltage float64 `json:"depress_voltage" yaml:"depress_voltage"`

	// SpikeVoltage is the spike level for timing protocols.
	SpikeVoltage float64 `json:"spike_voltage" yaml:"spike_voltage"`

	// CurrentLimit is the compliance limit.
	CurrentLimit float64 `json:"current_limit" yaml:"current_limit"`

	// Repetitions is the number of pulses or pairs per phase.
	Repetitions int `json:"repetitions" yaml:"repetitions"`

	// Intervals are the paired-pulse inter-pulse intervals, in seconds.
	Intervals []float64 `json:"intervals" yaml:"intervals"`

	// SpaceValues is the rate-protocol spacing schedule, in seconds,
	// normally descending.
	SpaceValues []float64 `json:"space_values" yaml:"space_values"`

	// Amplitude is the sinusoidal sweep amplitude.
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`

	// PointsPerHalf is the sine discretization per half lobe.
	PointsPerHalf int `json:"points_per_half" yaml:"points_per_half"`

	// Cycles is the number of full sine periods.
	Cycles int `json:"cycles" yaml:"cycles"`

	// SourceDelay is the per-point delay for sinusoidal sweeps, in seconds.
	SourceDelay float64 `json:"source_delay" yaml:"source_delay"`

	// Convergence bounds the repeated-sweep loop.
	Convergence converge.Config `json:"convergence" yaml:"convergence"`

	// Logging contains settings for operational and trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// DataDir is the root for sweep CSVs and the archive database.
	// Empty means ~/.memtest.
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`

	// Simulate runs sweeps against the simulated device instead of
	// real hardware.
	Simulate bool `json:"simulate" yaml:"simulate"`
}

// LoggingConfig configures memtest's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables step tracing to <data_dir>/trace.jsonl.
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with the standard test-bench parameters.
func Default() *Config {
	return &Config{
		PulseWidth:     0.2,
		OffTime:        0.0001,
		SettleTime:     0,
		NPLC:           constants.DefaultNPLC,
		ReadVoltage:    constants.DefaultReadVoltage,
		WriteVoltage:   constants.DefaultWriteVoltage,
		DepressVoltage: constants.DefaultDepressVoltage,
		SpikeVoltage:   constants.DefaultSpikeVoltage,
		CurrentLimit:   constants.DefaultCurrentLimit,
		Repetitions:    10,
		Intervals:      []float64{0.0001, 0.01, 0.1, 1},
		SpaceValues:    []float64{20, 5, 2, 1},
		Amplitude:      1.0,
		PointsPerHalf:  6,
		Cycles:         4,
		SourceDelay:    0.01,
		Convergence:    converge.DefaultConfig(),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.memtest/config.yaml -> environment variables.
// Unusable field values are replaced with their defaults; loading only fails
// when an existing config file cannot be read or parsed at all.
func Load() (*Config, error) {
	config := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".memtest", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)
	config.Sanitize()
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Fields whose
// values cannot be decoded into the target type keep their defaults; only a
// file the decoder cannot parse at all is an error.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		var typeErr *yaml.TypeError
		if !errors.As(err, &typeErr) {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		// Mistyped fields are left at their defaults; Sanitize below
		// repairs anything the partial decode put out of range.
	}

	config.Sanitize()
	return config, nil
}

// ResolveDataDir returns the data directory, defaulting to ~/.memtest, and
// creates it if missing.
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving data dir: %w", err)
		}
		dir = filepath.Join(homeDir, ".memtest")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}
	return dir, nil
}

// Duration converts a seconds field to a time.Duration.
func Duration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// Sanitize replaces unusable field values with their defaults and returns
// the names of the fields it corrected. A bad parameter never aborts a run.
func (c *Config) Sanitize() []string {
	def := Default()
	var fixed []string

	fix := func(name string, bad bool, set func()) {
		if bad {
			set()
			fixed = append(fixed, name)
		}
	}
	badPositive := func(v float64) bool {
		return v <= 0 || math.IsNaN(v) || math.IsInf(v, 0)
	}

	fix("pulse_width", badPositive(c.PulseWidth), func() { c.PulseWidth = def.PulseWidth })
	fix("off_time", c.OffTime < 0 || math.IsNaN(c.OffTime), func() { c.OffTime = def.OffTime })
	fix("settle_time", c.SettleTime < 0 || math.IsNaN(c.SettleTime), func() { c.SettleTime = def.SettleTime })
	fix("nplc", badPositive(c.NPLC), func() { c.NPLC = def.NPLC })
	fix("read_voltage", badPositive(c.ReadVoltage), func() { c.ReadVoltage = def.ReadVoltage })
	fix("write_voltage", badPositive(c.WriteVoltage), func() { c.WriteVoltage = def.WriteVoltage })
	fix("depress_voltage", c.DepressVoltage >= 0 || math.IsNaN(c.DepressVoltage), func() { c.DepressVoltage = def.DepressVoltage })
	fix("spike_voltage", c.SpikeVoltage == 0 || math.IsNaN(c.SpikeVoltage), func() { c.SpikeVoltage = def.SpikeVoltage })
	fix("current_limit", badPositive(c.CurrentLimit), func() { c.CurrentLimit = def.CurrentLimit })
	fix("repetitions", c.Repetitions <= 0, func() { c.Repetitions = def.Repetitions })
	fix("intervals", len(c.Intervals) == 0, func() { c.Intervals = def.Intervals })
	fix("space_values", len(c.SpaceValues) == 0, func() { c.SpaceValues = def.SpaceValues })
	fix("amplitude", badPositive(c.Amplitude), func() { c.Amplitude = def.Amplitude })
	fix("points_per_half", c.PointsPerHalf <= 0, func() { c.PointsPerHalf = def.PointsPerHalf })
	fix("cycles", c.Cycles <= 0, func() { c.Cycles = def.Cycles })
	fix("source_delay", badPositive(c.SourceDelay), func() { c.SourceDelay = def.SourceDelay })

	fix("convergence.target_r2", c.Convergence.TargetR2 <= 0 || c.Convergence.TargetR2 > 1,
		func() { c.Convergence.TargetR2 = def.Convergence.TargetR2 })
	fix("convergence.min_attempts", c.Convergence.MinAttempts <= 0,
		func() { c.Convergence.MinAttempts = def.Convergence.MinAttempts })
	fix("convergence.max_attempts", c.Convergence.MaxAttempts < c.Convergence.MinAttempts,
		func() { c.Convergence.MaxAttempts = def.Convergence.MaxAttempts })
	fix("convergence.delay_growth", c.Convergence.DelayGrowth <= 1,
		func() { c.Convergence.DelayGrowth = def.Convergence.DelayGrowth })

	validLevels := map[string]bool{"": true, "info": true, "debug": true, "trace": true}
	fix("logging.level", !validLevels[c.Logging.Level], func() { c.Logging.Level = def.Logging.Level })

	return fixed
}

// Validate checks cross-field consistency that Sanitize cannot repair.
func (c *Config) Validate() error {
	if c.ReadVoltage >= c.WriteVoltage {
		return fmt.Errorf("read_voltage %v must be below write_voltage %v", c.ReadVoltage, c.WriteVoltage)
	}
	for _, iv := range c.Intervals {
		if iv <= 0 {
			return fmt.Errorf("intervals must be positive, got %v", iv)
		}
	}
	for _, sp := range c.SpaceValues {
		if sp <= 0 {
			return fmt.Errorf("space_values must be positive, got %v", sp)
		}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("MEMTEST_DATA_DIR"); v != "" {
		config.DataDir = v
	}

	if v := os.Getenv("MEMTEST_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("MEMTEST_SIMULATE"); v != "" {
		config.Simulate = v == "true" || v == "1"
	}
}
