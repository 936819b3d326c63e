package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/qdev-lab/memtest/internal/analysis"
	"github.com/qdev-lab/memtest/internal/config"
	"github.com/qdev-lab/memtest/internal/constants"
	"github.com/qdev-lab/memtest/internal/converge"
	"github.com/qdev-lab/memtest/internal/export"
	"github.com/qdev-lab/memtest/internal/protocol"
	"github.com/qdev-lab/memtest/internal/sample"
)

// appendShifted copies src's samples into dst with their timestamps moved
// forward by offset seconds and returns the timestamp of the last sample
// written, so successive sub-sweeps land on one non-decreasing timeline.
func appendShifted(dst, src *sample.Log, offset float64) float64 {
	end := offset
	for _, smp := range src.Samples() {
		smp.Timestamp += offset
		dst.Append(smp)
		end = smp.Timestamp
	}
	return end
}

func newIVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iv",
		Short: "Run an adaptive IV hysteresis sweep",
		Long: `Runs sinusoidal IV sweeps at a descending schedule of source delays,
collecting one (frequency, loop area) point per sweep, and repeats attempts
under the convergence controller until the gaussian fit of loop area versus
frequency reaches the target R² or the attempt budget is exhausted. Between
unconverged attempts the source delay is stretched so each point integrates
longer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.seq.Configure(s.dev, s.cfg.CurrentLimit, s.cfg.NPLC); err != nil {
				return err
			}

			sw := sample.NewSweep("iv")
			sw.Params = map[string]any{
				"amplitude":       s.cfg.Amplitude,
				"points_per_half": s.cfg.PointsPerHalf,
				"cycles":          s.cfg.Cycles,
				"source_delay":    s.cfg.SourceDelay,
				"delay_schedule":  s.cfg.SpaceValues,
			}

			ctrl := converge.NewController(s.cfg.Convergence, config.Duration(s.cfg.SourceDelay), s.logger)
			var offset float64
			fit, state := ctrl.Run(func(delay time.Duration) []sample.XY {
				var points []sample.XY
				for _, scale := range s.cfg.SpaceValues {
					scaled := time.Duration(float64(delay) * scale)
					steps := protocol.IVSineSteps(protocol.IVParams{
						Amplitude:     s.cfg.Amplitude,
						PointsPerHalf: s.cfg.PointsPerHalf,
						Cycles:        s.cfg.Cycles,
						PulseWidth:    config.Duration(s.cfg.PulseWidth),
						SourceDelay:   scaled,
					})
					lg := s.seq.Run(steps, s.dev)
					// Each sub-sweep log restarts at 0; shift it onto the
					// sweep's shared timeline before appending.
					offset = appendShifted(sw.Log, lg, offset) + scaled.Seconds()
					points = append(points, sample.XY{
						X: analysis.Frequency(lg.Span()),
						Y: analysis.LoopArea(lg.Points()),
					})
				}
				return points
			})

			peaks := analysis.PeakCurrents(sw.Log, s.cfg.Amplitude, constants.VoltageMatchTolerance)
			sw.Params["device_type"] = analysis.ClassifyDeviceType(peaks)

			sw.SetMetric("attempts", float64(ctrl.Attempts()))
			if fit.OK {
				sw.SetMetric("gauss_amplitude", fit.Params[0])
				sw.SetMetric("gauss_center", fit.Params[1])
				sw.SetMetric("gauss_width", fit.Params[2])
				sw.SetMetric("gauss_r2", fit.R2)
			}
			s.logger.Info("adaptive sweep finished",
				"state", state.String(), "attempts", ctrl.Attempts(), "r2", fit.R2)

			csvPath, err := export.WriteSamples(s.dataDir, "iv", sw.Log)
			if err != nil {
				return err
			}
			if pts := ctrl.Points(); len(pts) > 0 {
				if _, err := export.WritePoints(s.dataDir, "iv_loop_area",
					"Frequency(Hz)", "LoopArea", pts); err != nil {
					return err
				}
			}
			return s.finishSweep(cmd, sw, csvPath)
		},
	}
	return cmd
}
