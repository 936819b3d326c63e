package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <sweep-id>",
		Short: "Show one archived sweep",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			samplesOut, _ := cmd.Flags().GetBool("samples")

			archive, err := openArchive(cmd)
			if err != nil {
				return err
			}
			defer archive.Close()

			sw, err := archive.Get(context.Background(), args[0])
			if err != nil {
				return err
			}

			if jsonOut {
				out := map[string]any{
					"id":         sw.ID,
					"protocol":   sw.Protocol,
					"started_at": sw.StartedAt,
					"params":     sw.Params,
					"metrics":    sw.Metrics,
					"samples":    sw.Log.Len(),
				}
				if samplesOut {
					out["sample_data"] = sw.Log.Samples()
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Sweep %s\n", sw.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "  protocol: %s\n", sw.Protocol)
			fmt.Fprintf(cmd.OutOrStdout(), "  started:  %s\n", sw.StartedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(cmd.OutOrStdout(), "  samples:  %d\n", sw.Log.Len())

			if len(sw.Metrics) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "  metrics:")
				names := make([]string, 0, len(sw.Metrics))
				for name := range sw.Metrics {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(cmd.OutOrStdout(), "    %s: %g\n", name, sw.Metrics[name])
				}
			}

			if samplesOut {
				fmt.Fprintln(cmd.OutOrStdout(), "  data:")
				for _, s := range sw.Log.Samples() {
					fmt.Fprintf(cmd.OutOrStdout(), "    %.6f\t%g\t%g\t%s\n",
						s.Timestamp, s.Voltage, s.Current, s.Label)
				}
			}
			return nil
		},
	}

	cmd.Flags().Bool("samples", false, "Include the full sample log")
	return cmd
}
