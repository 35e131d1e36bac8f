package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"accesslens/internal/api"
	"accesslens/internal/classify"
	"accesslens/internal/config"
	"accesslens/internal/engine"
	"accesslens/internal/findings"
	"accesslens/internal/ingest"
	"accesslens/internal/logging"
	"accesslens/internal/model"
	"accesslens/internal/snapshots"
	"accesslens/internal/storage"
)

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analytics service with all configured ingest sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file (yaml or json)")
	return cmd
}

func runServe(configPath string) error {
	var (
		mgr *config.Manager
		err error
	)
	if configPath != "" {
		mgr, err = config.NewManager(config.ResolvePath(configPath))
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		mgr = config.NewStaticManager(config.DefaultConfig())
	}
	cfg := mgr.Get()

	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("starting accesslens", "version", version, "config", mgr.Path())

	snaps := snapshots.NewStore(cfg.Snapshots.HistoryLimit)
	findingsStore := findings.NewStore(cfg.Findings.StoreLimit)

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if store != nil {
		if err := store.Init(ctx); err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		defer store.Close()
		logger.Info("storage enabled", "driver", cfg.Storage.Driver)
	}

	eng := engine.NewEngine(cfg, logger, snaps, findingsStore, store)

	if cfg.Devices.TablePath != "" {
		devices, err := classify.LoadTable(config.ResolvePath(cfg.Devices.TablePath))
		if err != nil {
			return fmt.Errorf("load device table: %w", err)
		}
		eng.SetDevices(devices)
		logger.Info("device table loaded", "path", cfg.Devices.TablePath, "devices", len(devices))
	}

	events := make(chan model.AccessEvent, cfg.Ingest.ChannelBuffer)
	parser := ingest.NewParser()

	ingest.StartREST(ctx, mgr, events, logger)
	ingest.StartSyslog(ctx, mgr, parser, events, logger)
	ingest.StartTCPStream(ctx, mgr, parser, events, logger)
	ingest.StartFileTail(ctx, mgr, parser, events, logger)
	ingest.StartKafka(ctx, mgr, parser, events, logger)

	eng.Start(ctx, events)

	api.Start(ctx, mgr, snaps, findingsStore, eng, logger, version)

	stop := make(chan struct{})
	go mgr.Watch(10*time.Second, func(updated *config.Config) {
		logger.Info("configuration reloaded", "path", mgr.Path())
		eng.UpdateConfig(updated)
	}, func(err error) {
		logger.Warn("configuration reload failed", "err", err)
	}, stop)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	logger.Info("shutting down", "signal", s.String())
	close(stop)
	cancel()
	time.Sleep(200 * time.Millisecond)
	return nil
}
