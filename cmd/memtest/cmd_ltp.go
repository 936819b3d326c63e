package main

import (
	"github.com/spf13/cobra"

	"github.com/qdev-lab/memtest/internal/config"
	"github.com/qdev-lab/memtest/internal/export"
	"github.com/qdev-lab/memtest/internal/protocol"
)

func newLTPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ltp",
		Short: "Run an LTP/LTD potentiation-depression sweep",
		Long: `Runs a pulse train of alternating read and write pulses: first a
potentiation phase at the positive write voltage, then a depression phase at
the negative depress voltage. Read currents trace the conductance evolution.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			reps, _ := cmd.Flags().GetInt("repetitions")
			if reps > 0 {
				s.cfg.Repetitions = reps
			}

			params := protocol.LTPParams{
				ReadVoltage:    s.cfg.ReadVoltage,
				WriteVoltage:   s.cfg.WriteVoltage,
				DepressVoltage: s.cfg.DepressVoltage,
				Repetitions:    s.cfg.Repetitions,
				PulseWidth:     config.Duration(s.cfg.PulseWidth),
			}
			steps := protocol.LTPLTDSteps(params)

			sw, err := s.runSweep("ltp", steps, map[string]any{
				"read_voltage":    params.ReadVoltage,
				"write_voltage":   params.WriteVoltage,
				"depress_voltage": params.DepressVoltage,
				"repetitions":     params.Repetitions,
				"pulse_width":     s.cfg.PulseWidth,
			})
			if err != nil {
				return err
			}

			ltpReads := sw.Log.Filter(protocol.LabelLTPRead)
			ltdReads := sw.Log.Filter(protocol.LabelLTDRead)
			if len(ltpReads) > 0 {
				sw.SetMetric("ltp_final_current", ltpReads[len(ltpReads)-1].Current)
			}
			if len(ltdReads) > 0 {
				sw.SetMetric("ltd_final_current", ltdReads[len(ltdReads)-1].Current)
			}

			csvPath, err := export.WriteSamples(s.dataDir, "ltp", sw.Log)
			if err != nil {
				return err
			}
			return s.finishSweep(cmd, sw, csvPath)
		},
	}

	cmd.Flags().Int("repetitions", 0, "Pulse pairs per phase (default from config)")
	return cmd
}
