package simulation

import (
	"strings"
	"testing"
)

// AssertLabelOrder asserts the sweep's samples carry exactly the given
// labels, in order.
func AssertLabelOrder(t *testing.T, result Result, want []string) {
	t.Helper()
	got := result.Labels()
	if len(got) != len(want) {
		t.Fatalf("AssertLabelOrder: %d samples, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AssertLabelOrder: sample %d label %q, want %q", i, got[i], want[i])
		}
	}
}

// AssertMonotonicTimestamps asserts timestamps start at zero and strictly
// increase.
func AssertMonotonicTimestamps(t *testing.T, result Result) {
	t.Helper()
	samples := result.Samples()
	if len(samples) == 0 {
		t.Fatal("AssertMonotonicTimestamps: no samples")
	}
	if samples[0].Timestamp != 0 {
		t.Errorf("AssertMonotonicTimestamps: first timestamp %v, want 0", samples[0].Timestamp)
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].Timestamp <= samples[i-1].Timestamp {
			t.Errorf("AssertMonotonicTimestamps: sample %d: %v <= %v",
				i, samples[i].Timestamp, samples[i-1].Timestamp)
		}
	}
}

// AssertCurrentsIncrease asserts the currents of samples matching the label
// substring strictly increase across the sweep.
func AssertCurrentsIncrease(t *testing.T, result Result, labelSubstring string) {
	t.Helper()
	matched := result.Sweep.Log.Filter(labelSubstring)
	if len(matched) < 2 {
		t.Fatalf("AssertCurrentsIncrease: only %d samples match %q", len(matched), labelSubstring)
	}
	for i := 1; i < len(matched); i++ {
		if matched[i].Current <= matched[i-1].Current {
			t.Errorf("AssertCurrentsIncrease: %q sample %d: %v <= %v",
				labelSubstring, i, matched[i].Current, matched[i-1].Current)
		}
	}
}

// AssertCurrentsDecrease asserts the currents of samples matching the label
// substring strictly decrease across the sweep.
func AssertCurrentsDecrease(t *testing.T, result Result, labelSubstring string) {
	t.Helper()
	matched := result.Sweep.Log.Filter(labelSubstring)
	if len(matched) < 2 {
		t.Fatalf("AssertCurrentsDecrease: only %d samples match %q", len(matched), labelSubstring)
	}
	for i := 1; i < len(matched); i++ {
		if matched[i].Current >= matched[i-1].Current {
			t.Errorf("AssertCurrentsDecrease: %q sample %d: %v >= %v",
				labelSubstring, i, matched[i].Current, matched[i-1].Current)
		}
	}
}

// AssertSentinelAt asserts the sample at the given index was degraded to the
// failure sentinel.
func AssertSentinelAt(t *testing.T, result Result, index int) {
	t.Helper()
	samples := result.Samples()
	if index >= len(samples) {
		t.Fatalf("AssertSentinelAt: index %d out of %d samples", index, len(samples))
	}
	if samples[index].Current != 0 {
		t.Errorf("AssertSentinelAt: sample %d current %v, want sentinel 0", index, samples[index].Current)
	}
}

// AssertNoSentinels asserts no measured sample carries zero current, the
// degradation sentinel.
func AssertNoSentinels(t *testing.T, result Result) {
	t.Helper()
	for i, s := range result.Samples() {
		if s.Current == 0 && !strings.Contains(s.Label, "off") {
			t.Errorf("AssertNoSentinels: sample %d (%s) has zero current", i, s.Label)
		}
	}
}
