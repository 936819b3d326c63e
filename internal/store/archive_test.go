package store

import (
	"context"
	"testing"
	"time"

	"github.com/qdev-lab/memtest/internal/sample"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func makeSweep(t *testing.T, protocol string, n int) *sample.Sweep {
	t.Helper()
	sw := sample.NewSweep(protocol)
	sw.Params = map[string]any{"read_voltage": 0.1, "repetitions": float64(n)}
	for i := 0; i < n; i++ {
		sw.Log.Append(sample.Sample{
			Timestamp: float64(i) * 0.2,
			Voltage:   0.1,
			Current:   1e-7 + float64(i)*1e-9,
			Label:     "LTP_read",
		})
	}
	sw.SetMetric("r2", 0.99)
	return sw
}

func TestSaveAndGet(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	sw := makeSweep(t, "ltp", 4)
	if err := a.Save(ctx, sw); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := a.Get(ctx, sw.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Protocol != "ltp" {
		t.Errorf("Protocol = %q, want ltp", got.Protocol)
	}
	if got.Log.Len() != 4 {
		t.Errorf("samples = %d, want 4", got.Log.Len())
	}
	if got.Metrics["r2"] != 0.99 {
		t.Errorf("metrics = %v", got.Metrics)
	}
	if got.Params["read_voltage"] != 0.1 {
		t.Errorf("params = %v", got.Params)
	}

	samples := got.Log.Samples()
	for i := 1; i < len(samples); i++ {
		if samples[i].Timestamp <= samples[i-1].Timestamp {
			t.Errorf("sample order lost at %d", i)
		}
	}
	if samples[0].Label != "LTP_read" {
		t.Errorf("label = %q", samples[0].Label)
	}
}

func TestGetMissing(t *testing.T) {
	a := openTestArchive(t)
	if _, err := a.Get(context.Background(), "no-such-id"); err == nil {
		t.Error("expected error for unknown sweep")
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	older := makeSweep(t, "ltp", 2)
	older.StartedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := makeSweep(t, "ltp", 3)
	newer.StartedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	other := makeSweep(t, "iv", 5)
	other.StartedAt = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, sw := range []*sample.Sweep{older, newer, other} {
		if err := a.Save(ctx, sw); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	all, err := a.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("sweeps = %d, want 3", len(all))
	}
	if all[0].ID != newer.ID {
		t.Errorf("newest first: got %s", all[0].ID)
	}
	if all[0].Samples != 3 {
		t.Errorf("sample count = %d, want 3", all[0].Samples)
	}

	ltp, err := a.List(ctx, "ltp")
	if err != nil {
		t.Fatalf("List(ltp): %v", err)
	}
	if len(ltp) != 2 {
		t.Errorf("ltp sweeps = %d, want 2", len(ltp))
	}
}

func TestSaveDuplicateID(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	sw := makeSweep(t, "ltp", 1)
	if err := a.Save(ctx, sw); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := a.Save(ctx, sw); err == nil {
		t.Error("expected error saving duplicate sweep id")
	}
}
