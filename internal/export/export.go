// Package export writes sweep data to CSV files.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/qdev-lab/memtest/internal/sample"
)

// sampleHeader is the column layout of a raw sweep CSV.
var sampleHeader = []string{"Time(s)", "Voltage(V)", "Current(A)", "Label"}

// UniquePath resolves a filename collision by appending an incrementing
// numeric suffix before the extension. Existing files are never overwritten.
func UniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// WriteSamples writes a sweep's sample log to dir/name.csv and returns the
// path actually written.
func WriteSamples(dir, name string, lg *sample.Log) (string, error) {
	rows := make([][]string, 0, lg.Len())
	for _, s := range lg.Samples() {
		rows = append(rows, []string{
			formatFloat(s.Timestamp),
			formatFloat(s.Voltage),
			formatFloat(s.Current),
			s.Label,
		})
	}
	return writeCSV(dir, name, sampleHeader, rows)
}

// WritePairs writes two equal-length columns, used for Δt/Δg curves and
// processed conductance traces.
func WritePairs(dir, name, xHeader, yHeader string, xs, ys []float64) (string, error) {
	if len(xs) != len(ys) {
		return "", fmt.Errorf("column length mismatch: %d vs %d", len(xs), len(ys))
	}
	rows := make([][]string, 0, len(xs))
	for i := range xs {
		rows = append(rows, []string{formatFloat(xs[i]), formatFloat(ys[i])})
	}
	return writeCSV(dir, name, []string{xHeader, yHeader}, rows)
}

// WritePoints writes an (x, y) series with the given column headers.
func WritePoints(dir, name, xHeader, yHeader string, points []sample.XY) (string, error) {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{formatFloat(p.X), formatFloat(p.Y)})
	}
	return writeCSV(dir, name, []string{xHeader, yHeader}, rows)
}

func writeCSV(dir, name string, header []string, rows [][]string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	// UniquePath and the exclusive create can race with a concurrent
	// writer claiming the same name; pick a fresh suffix and try again.
	var path string
	var f *os.File
	for {
		path = UniquePath(filepath.Join(dir, name+".csv"))
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			break
		}
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing %s: %w", path, err)
	}
	return path, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
