package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qdev-lab/memtest/internal/store"
)

// openArchive resolves the data dir from flags/config and opens the archive.
func openArchive(cmd *cobra.Command) (*store.Archive, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	return store.Open(dataDir)
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived sweeps",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			protoFilter, _ := cmd.Flags().GetString("protocol")

			archive, err := openArchive(cmd)
			if err != nil {
				return err
			}
			defer archive.Close()

			sweeps, err := archive.List(context.Background(), protoFilter)
			if err != nil {
				return fmt.Errorf("listing sweeps: %w", err)
			}

			if jsonOut {
				if sweeps == nil {
					sweeps = []store.SweepSummary{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(sweeps)
			}

			if len(sweeps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No archived sweeps.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPROTOCOL\tSTARTED\tSAMPLES")
			for _, s := range sweeps {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
					s.ID, s.Protocol, s.StartedAt.Format("2006-01-02 15:04:05"), s.Samples)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("protocol", "", "Only list sweeps of this protocol")
	return cmd
}
