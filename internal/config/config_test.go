package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.PulseWidth != 0.2 {
		t.Errorf("PulseWidth = %v, want 0.2", cfg.PulseWidth)
	}
	if cfg.ReadVoltage != 0.1 || cfg.WriteVoltage != 1.0 || cfg.DepressVoltage != -1.0 {
		t.Errorf("voltages = %v/%v/%v", cfg.ReadVoltage, cfg.WriteVoltage, cfg.DepressVoltage)
	}
	if cfg.Repetitions != 10 {
		t.Errorf("Repetitions = %d, want 10", cfg.Repetitions)
	}
	if cfg.Convergence.TargetR2 != 0.98 || cfg.Convergence.MaxAttempts != 20 {
		t.Errorf("convergence = %+v", cfg.Convergence)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if fixed := cfg.Sanitize(); len(fixed) != 0 {
		t.Errorf("defaults needed sanitizing: %v", fixed)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
pulse_width: 0.5
read_voltage: 0.2
repetitions: 4
intervals: [0.01, 0.1]
convergence:
  target_r2: 0.95
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.PulseWidth != 0.5 {
		t.Errorf("PulseWidth = %v, want 0.5", cfg.PulseWidth)
	}
	if cfg.Repetitions != 4 {
		t.Errorf("Repetitions = %d, want 4", cfg.Repetitions)
	}
	if len(cfg.Intervals) != 2 {
		t.Errorf("Intervals = %v", cfg.Intervals)
	}
	if cfg.Convergence.TargetR2 != 0.95 {
		t.Errorf("TargetR2 = %v, want 0.95", cfg.Convergence.TargetR2)
	}
	// Unspecified fields keep their defaults.
	if cfg.WriteVoltage != 1.0 {
		t.Errorf("WriteVoltage = %v, want default 1.0", cfg.WriteVoltage)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromFileMistypedField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
nplc: "abc"
pulse_width: 0.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.NPLC != Default().NPLC {
		t.Errorf("NPLC = %v, want default %v", cfg.NPLC, Default().NPLC)
	}
	if cfg.PulseWidth != 0.5 {
		t.Errorf("PulseWidth = %v, want 0.5", cfg.PulseWidth)
	}
}

func TestLoadFromFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("pulse_width: [0.2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestSanitizeFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
pulse_width: -1
nplc: 0
repetitions: -3
depress_voltage: 0.5
logging:
  level: verbose
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	def := Default()
	if cfg.PulseWidth != def.PulseWidth {
		t.Errorf("PulseWidth = %v, want default %v", cfg.PulseWidth, def.PulseWidth)
	}
	if cfg.NPLC != def.NPLC {
		t.Errorf("NPLC = %v, want default %v", cfg.NPLC, def.NPLC)
	}
	if cfg.Repetitions != def.Repetitions {
		t.Errorf("Repetitions = %d, want default %d", cfg.Repetitions, def.Repetitions)
	}
	if cfg.DepressVoltage != def.DepressVoltage {
		t.Errorf("DepressVoltage = %v, want default %v", cfg.DepressVoltage, def.DepressVoltage)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestSanitizeReportsFixedFields(t *testing.T) {
	cfg := Default()
	cfg.PulseWidth = 0
	cfg.Convergence.DelayGrowth = 0.5

	fixed := cfg.Sanitize()
	if !slices.Contains(fixed, "pulse_width") {
		t.Errorf("fixed = %v, want pulse_width", fixed)
	}
	if !slices.Contains(fixed, "convergence.delay_growth") {
		t.Errorf("fixed = %v, want convergence.delay_growth", fixed)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MEMTEST_DATA_DIR", "/tmp/memtest-test")
	t.Setenv("MEMTEST_LOG_LEVEL", "trace")
	t.Setenv("MEMTEST_SIMULATE", "1")

	cfg := Default()
	applyEnvOverrides(cfg)

	if cfg.DataDir != "/tmp/memtest-test" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Logging.Level != "trace" {
		t.Errorf("Logging.Level = %q, want trace", cfg.Logging.Level)
	}
	if !cfg.Simulate {
		t.Error("Simulate not enabled")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.ReadVoltage = 2.0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for read_voltage above write_voltage")
	}

	cfg = Default()
	cfg.Intervals = []float64{0.1, -0.5}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative interval")
	}
}

func TestDuration(t *testing.T) {
	if d := Duration(0.2); d != 200*time.Millisecond {
		t.Errorf("Duration(0.2) = %v, want 200ms", d)
	}
	if d := Duration(0); d != 0 {
		t.Errorf("Duration(0) = %v, want 0", d)
	}
}
