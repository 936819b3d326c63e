package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qdev-lab/memtest/internal/analysis"
	"github.com/qdev-lab/memtest/internal/config"
	"github.com/qdev-lab/memtest/internal/export"
	"github.com/qdev-lab/memtest/internal/protocol"
)

func newPulseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pulse",
		Short: "Run a paired-pulse (PPF/PPD) sweep",
		Long: `Runs pulse pairs over the configured inter-pulse intervals and computes
the paired-pulse ratio (I2/I1 - 1) per pair. Positive pulse voltage probes
facilitation, negative probes depression. The ratio-versus-interval curve is
fit with an exponential decay to extract the facilitation time constant.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			depress, _ := cmd.Flags().GetBool("depress")
			pulseVoltage := s.cfg.SpikeVoltage
			if depress {
				pulseVoltage = -pulseVoltage
			}

			params := protocol.PairedPulseParams{
				PulseVoltage: pulseVoltage,
				Intervals:    s.cfg.Intervals,
				Repetitions:  s.cfg.Repetitions,
				PulseWidth:   config.Duration(s.cfg.PulseWidth),
				OffTime:      config.Duration(s.cfg.OffTime),
			}
			steps := protocol.PairedPulseSteps(params)

			sw, err := s.runSweep("pulse", steps, map[string]any{
				"pulse_voltage": pulseVoltage,
				"intervals":     s.cfg.Intervals,
				"repetitions":   s.cfg.Repetitions,
			})
			if err != nil {
				return err
			}

			// Mean ratio per interval, then decay fit over intervals.
			var xs, ys []float64
			for i, interval := range s.cfg.Intervals {
				var sum float64
				var n int
				for j := 0; j < s.cfg.Repetitions; j++ {
					suffix := fmt.Sprintf("%d-%d", i, j)
					first := sw.Log.WithLabel("pulse1_" + suffix)
					second := sw.Log.WithLabel("pulse2_" + suffix)
					if len(first) != 1 || len(second) != 1 {
						continue
					}
					ratio := analysis.PairedPulseRatio(first[0].Current, second[0].Current)
					if !ratio.Defined {
						continue
					}
					sum += ratio.Ratio
					n++
				}
				if n > 0 {
					xs = append(xs, interval)
					ys = append(ys, sum/float64(n))
				}
			}

			fit := analysis.ExpDecayFit(xs, ys)
			if fit.OK {
				sw.SetMetric("decay_amplitude", fit.Params[0])
				sw.SetMetric("decay_tau", fit.Params[1])
				sw.SetMetric("decay_offset", fit.Params[2])
				sw.SetMetric("decay_r2", fit.R2)
			} else {
				s.logger.Warn("decay fit did not converge", "points", len(xs))
			}

			csvPath, err := export.WriteSamples(s.dataDir, "pulse", sw.Log)
			if err != nil {
				return err
			}
			if len(xs) > 0 {
				if _, err := export.WritePairs(s.dataDir, "pulse_ratio", "Interval(s)", "Ratio", xs, ys); err != nil {
					return err
				}
			}
			return s.finishSweep(cmd, sw, csvPath)
		},
	}

	cmd.Flags().Bool("depress", false, "Use negative pulses (PPD instead of PPF)")
	return cmd
}
