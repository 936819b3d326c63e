package main

import (
	"github.com/spf13/cobra"

	"github.com/qdev-lab/memtest/internal/analysis"
	"github.com/qdev-lab/memtest/internal/config"
	"github.com/qdev-lab/memtest/internal/export"
	"github.com/qdev-lab/memtest/internal/protocol"
)

func newSRDPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "srdp",
		Short: "Run a spike-rate-dependent plasticity sweep",
		Long: `Runs read/write pulse pairs over the configured spacing schedule,
normally descending so the pulse rate ramps up, and exports the conductance
trace computed from the read currents. With --ltm the sweep becomes a
write-only endurance train.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ltm, _ := cmd.Flags().GetBool("ltm")

			params := protocol.SRDPParams{
				ReadVoltage:  s.cfg.ReadVoltage,
				WriteVoltage: s.cfg.WriteVoltage,
				Spaces:       s.cfg.SpaceValues,
				Repetitions:  s.cfg.Repetitions,
				PulseWidth:   config.Duration(s.cfg.PulseWidth),
				OffTime:      config.Duration(s.cfg.OffTime),
			}

			var steps []protocol.Step
			protoName := "srdp"
			if ltm {
				steps = protocol.LTMSteps(params)
				protoName = "srdp-ltm"
			} else {
				steps = protocol.SRDPSteps(params)
			}

			sw, err := s.runSweep(protoName, steps, map[string]any{
				"write_voltage": params.WriteVoltage,
				"space_values":  params.Spaces,
				"repetitions":   params.Repetitions,
				"ltm":           ltm,
			})
			if err != nil {
				return err
			}

			csvPath, err := export.WriteSamples(s.dataDir, protoName, sw.Log)
			if err != nil {
				return err
			}

			if !ltm {
				trace := analysis.Conductance(sw.Log, "read", s.cfg.ReadVoltage)
				if len(trace) > 0 {
					if _, err := export.WritePoints(s.dataDir, "srdp_conductance",
						"Time(s)", "Conductance(S)", trace); err != nil {
						return err
					}
					sw.SetMetric("final_conductance", trace[len(trace)-1].Y)
				}
			}
			return s.finishSweep(cmd, sw, csvPath)
		},
	}

	cmd.Flags().Bool("ltm", false, "Write-only long-term-memory endurance train")
	return cmd
}
