package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"accesslens/internal/anomaly"
	"accesslens/internal/classify"
	"accesslens/internal/config"
	"accesslens/internal/engine"
	"accesslens/internal/ingest"
	"accesslens/internal/logging"
	"accesslens/internal/model"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		devicesPath string
		refStr      string
		logLevel    string
	)
	cmd := &cobra.Command{
		Use:   "analyze <logfile>",
		Short: "Analyze an access log file and print the result as JSON",
		Long: `Parses a log file (plain text, CSV or JSON lines), optionally joins a
device classification table, runs the full analysis once and writes the
resulting bundle to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args[0], devicesPath, refStr, logLevel)
		},
	}
	cmd.Flags().StringVarP(&devicesPath, "devices", "d", "", "path to device classification table (csv, yaml or json)")
	cmd.Flags().StringVar(&refStr, "ref", "", "reference time for the analysis (RFC 3339, default now)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	return cmd
}

func runAnalyze(logPath, devicesPath, refStr, logLevel string) error {
	logger := logging.NewTextLogger(logLevel)

	ref := time.Now().UTC()
	if refStr != "" {
		parsed, err := time.Parse(time.RFC3339, refStr)
		if err != nil {
			return fmt.Errorf("parse ref time: %w", err)
		}
		ref = parsed.UTC()
	}

	cfg := config.DefaultConfig()
	events, dropped, err := ingest.LoadFile(config.ResolvePath(logPath), cfg)
	if err != nil {
		return fmt.Errorf("load log file: %w", err)
	}
	logger.Info("log file loaded", "path", logPath, "events", len(events), "dropped", dropped)

	var devices []model.DeviceAttributes
	if devicesPath != "" {
		devices, err = classify.LoadTable(config.ResolvePath(devicesPath))
		if err != nil {
			return fmt.Errorf("load device table: %w", err)
		}
		logger.Info("device table loaded", "path", devicesPath, "devices", len(devices))
	}

	run := engine.Run(events, devices, ref, anomaly.DefaultDetectors())
	logger.Info("analysis complete", "anomalies", len(run.Anomalies))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}
