package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/qdev-lab/memtest/internal/config"
	"github.com/qdev-lab/memtest/internal/logging"
	"github.com/qdev-lab/memtest/internal/port"
	"github.com/qdev-lab/memtest/internal/protocol"
	"github.com/qdev-lab/memtest/internal/sample"
	"github.com/qdev-lab/memtest/internal/store"
)

// session wires everything one protocol run needs: config, logging, the
// device port, the sequencer, and the archive.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	trace   *logging.TraceLogger
	dataDir string
	dev     port.Port
	seq     *protocol.Sequencer
	archive *store.Archive
}

// loadConfig loads configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	if sim, _ := cmd.Flags().GetBool("simulate"); sim {
		cfg.Simulate = true
	}
	return cfg, nil
}

// newSession builds a full session from the command's flags. The caller must
// Close it.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)
	trace := logging.NewTraceLogger(dataDir, cfg.Logging.Level)

	if !cfg.Simulate {
		trace.Close()
		return nil, fmt.Errorf("no instrument driver configured; run with --simulate")
	}
	dev := port.NewSimDevice(port.DefaultSimConfig())

	archive, err := store.Open(dataDir)
	if err != nil {
		trace.Close()
		return nil, err
	}

	seq := protocol.NewSequencer(
		protocol.WithLogger(logger),
		protocol.WithTrace(trace),
	)

	return &session{
		cfg:     cfg,
		logger:  logger,
		trace:   trace,
		dataDir: dataDir,
		dev:     dev,
		seq:     seq,
		archive: archive,
	}, nil
}

// Close releases the session's archive and trace file.
func (s *session) Close() {
	s.trace.Close()
	if err := s.archive.Close(); err != nil {
		s.logger.Warn("closing archive", "err", err)
	}
}

// runSweep configures the instrument, plays the steps, and returns the
// finished sweep.
func (s *session) runSweep(protoName string, steps []protocol.Step, params map[string]any) (*sample.Sweep, error) {
	if err := s.seq.Configure(s.dev, s.cfg.CurrentLimit, s.cfg.NPLC); err != nil {
		return nil, fmt.Errorf("configuring instrument: %w", err)
	}

	sw := sample.NewSweep(protoName)
	sw.Params = params
	s.logger.Info("starting sweep", "protocol", protoName, "id", sw.ID, "steps", len(steps))
	sw.Log = s.seq.Run(steps, s.dev)
	s.logger.Info("sweep complete", "id", sw.ID, "samples", sw.Log.Len())
	return sw, nil
}

// finishSweep archives the sweep and prints its summary.
func (s *session) finishSweep(cmd *cobra.Command, sw *sample.Sweep, csvPath string) error {
	if err := s.archive.Save(context.Background(), sw); err != nil {
		return fmt.Errorf("archiving sweep: %w", err)
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
			"id":       sw.ID,
			"protocol": sw.Protocol,
			"samples":  sw.Log.Len(),
			"metrics":  sw.Metrics,
			"csv":      csvPath,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sweep %s (%s): %d samples\n", sw.ID, sw.Protocol, sw.Log.Len())
	if csvPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "  data: %s\n", csvPath)
	}
	names := make([]string, 0, len(sw.Metrics))
	for name := range sw.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %g\n", name, sw.Metrics[name])
	}
	return nil
}
