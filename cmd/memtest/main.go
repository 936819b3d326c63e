package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "memtest",
		Short: "Memristor plasticity test bench",
		Long: `memtest drives electrical plasticity protocols against a memristive
device: potentiation/depression trains, paired pulses, spike-timing and
spike-rate sweeps, and adaptive hysteresis-loop sweeps.

Every sweep is exported as CSV and archived in a local database for
later inspection.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.memtest/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "Sweep data directory (default ~/.memtest)")
	rootCmd.PersistentFlags().Bool("simulate", false, "Run against the simulated device instead of hardware")

	rootCmd.AddCommand(
		newVersionCmd(),
		newLTPCmd(),
		newPulseCmd(),
		newSTDPCmd(),
		newSRDPCmd(),
		newIVCmd(),
		newListCmd(),
		newShowCmd(),
		newConfigCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]string{"version": version})
			} else {
				fmt.Printf("memtest version %s\n", version)
			}
		},
	}
}
