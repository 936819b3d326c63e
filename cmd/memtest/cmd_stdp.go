package main

import (
	"github.com/spf13/cobra"

	"github.com/qdev-lab/memtest/internal/analysis"
	"github.com/qdev-lab/memtest/internal/config"
	"github.com/qdev-lab/memtest/internal/export"
	"github.com/qdev-lab/memtest/internal/protocol"
)

func newSTDPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stdp",
		Short: "Run a spike-timing-dependent plasticity sweep",
		Long: `Applies pre/post spike-train pairs at the configured timing offsets,
separated by read blocks that track the conductance. Extracts the
(Delta_t, Delta_g) spike-timing curve from the sweep log.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			readNum, _ := cmd.Flags().GetInt("read-num")
			spikeNum, _ := cmd.Flags().GetInt("spike-num")
			postFirst, _ := cmd.Flags().GetBool("post-first")

			params := protocol.STDPParams{
				ReadVoltage:   s.cfg.ReadVoltage,
				SpikeVoltage:  s.cfg.SpikeVoltage,
				Deltas:        s.cfg.Intervals,
				ReadNum:       readNum,
				SpikeNum:      spikeNum,
				PulseWidth:    config.Duration(s.cfg.PulseWidth),
				OffTime:       config.Duration(s.cfg.OffTime),
				PreBeforePost: !postFirst,
			}
			steps := protocol.STDPSteps(params)

			sw, err := s.runSweep("stdp", steps, map[string]any{
				"spike_voltage": params.SpikeVoltage,
				"deltas":        params.Deltas,
				"read_num":      params.ReadNum,
				"spike_num":     params.SpikeNum,
				"pre_first":     params.PreBeforePost,
			})
			if err != nil {
				return err
			}

			dt, dg := analysis.DeltaPairs(sw.Log,
				protocol.LabelSTDPRead, protocol.LabelSTDPPreSpike, protocol.LabelSTDPPostSpike,
				params.ReadNum, params.SpikeNum, params.PreBeforePost)
			sw.SetMetric("pairs", float64(len(dt)))

			csvPath, err := export.WriteSamples(s.dataDir, "stdp", sw.Log)
			if err != nil {
				return err
			}
			if len(dt) > 0 {
				if _, err := export.WritePairs(s.dataDir, "stdp_curve", "Delta_t", "Delta_g", dt, dg); err != nil {
					return err
				}
			}
			return s.finishSweep(cmd, sw, csvPath)
		},
	}

	cmd.Flags().Int("read-num", 3, "Reads per conductance block")
	cmd.Flags().Int("spike-num", 2, "Spikes per pre/post train")
	cmd.Flags().Bool("post-first", false, "Apply the post train before the pre train")
	return cmd
}
