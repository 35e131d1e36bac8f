// Package engine accumulates access events and runs the analytics
// pipeline over them: the four analyzers followed by the anomaly
// detectors, published as one AnalysisRun.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"accesslens/internal/analytics"
	"accesslens/internal/anomaly"
	"accesslens/internal/config"
	"accesslens/internal/findings"
	"accesslens/internal/model"
	"accesslens/internal/snapshots"
	"accesslens/internal/storage"
)

type Engine struct {
	logger    *slog.Logger
	snaps     *snapshots.Store
	findings  *findings.Store
	store     storage.Store
	cfg       atomic.Value
	devices   atomic.Value
	detectors []anomaly.Detector
	started   time.Time

	mu     sync.Mutex
	events []model.AccessEvent
}

func NewEngine(cfg *config.Config, logger *slog.Logger, snaps *snapshots.Store, findingsStore *findings.Store, store storage.Store) *Engine {
	e := &Engine{
		logger:    logger,
		snaps:     snaps,
		findings:  findingsStore,
		store:     store,
		detectors: anomaly.DefaultDetectors(),
		started:   time.Now().UTC(),
	}
	e.cfg.Store(cfg)
	e.devices.Store([]model.DeviceAttributes{})
	return e
}

func (e *Engine) UpdateConfig(cfg *config.Config) {
	e.cfg.Store(cfg)
}

func (e *Engine) config() *config.Config {
	if v := e.cfg.Load(); v != nil {
		return v.(*config.Config)
	}
	return config.DefaultConfig()
}

// SetDevices swaps in a new classification table; the engine never
// mutates it.
func (e *Engine) SetDevices(devices []model.DeviceAttributes) {
	if devices == nil {
		devices = []model.DeviceAttributes{}
	}
	e.devices.Store(devices)
}

func (e *Engine) Devices() []model.DeviceAttributes {
	if v := e.devices.Load(); v != nil {
		return v.([]model.DeviceAttributes)
	}
	return nil
}

// Start consumes the ingest channel and re-analyzes on the configured
// interval until ctx is cancelled. A hot-reloaded interval is picked up
// on the next tick.
func (e *Engine) Start(ctx context.Context, in <-chan model.AccessEvent) {
	go func() {
		interval := e.analysisInterval()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case ev := <-in:
				e.AddEvent(ev)
			case <-ticker.C:
				e.Analyze(time.Now().UTC())
				if next := e.analysisInterval(); next != interval {
					interval = next
					ticker.Reset(interval)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (e *Engine) analysisInterval() time.Duration {
	interval := e.config().Analysis.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	return interval
}

// AddEvent appends to the event table, evicting the oldest rows past the
// configured cap.
func (e *Engine) AddEvent(ev model.AccessEvent) {
	maxEvents := e.config().Analysis.MaxEvents
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	if maxEvents > 0 && len(e.events) > maxEvents {
		overflow := len(e.events) - maxEvents
		e.events = append(e.events[:0:0], e.events[overflow:]...)
	}
}

func (e *Engine) EventCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events)
}

// Analyze runs the full pipeline over a copy of the current table,
// anchored at ref, and publishes the run to the in-memory stores and to
// persistent storage when configured.
func (e *Engine) Analyze(ref time.Time) model.AnalysisRun {
	e.mu.Lock()
	events := append([]model.AccessEvent(nil), e.events...)
	e.mu.Unlock()
	devices := e.Devices()

	run := Run(events, devices, ref, e.detectors)

	if e.snaps != nil {
		e.snaps.Add(run)
	}
	if e.findings != nil {
		e.findings.Add(run.Anomalies...)
	}
	if e.logger != nil {
		e.logger.Info("analysis run complete",
			"run_id", run.ID,
			"events", run.TotalEvents,
			"anomalies", len(run.Anomalies),
			"compliance", run.Security.ComplianceScore,
		)
	}
	if e.store != nil {
		if err := e.store.SaveRun(context.Background(), run); err != nil && e.logger != nil {
			e.logger.Warn("persist analysis run failed", "run_id", run.ID, "err", err)
		}
	}
	return run
}

func (e *Engine) Reset() {
	e.mu.Lock()
	e.events = nil
	e.mu.Unlock()
}

// Run is the pure pipeline: analyzers then detectors over fixed inputs.
// Identical inputs (including ref) produce identical output.
func Run(events []model.AccessEvent, devices []model.DeviceAttributes, ref time.Time, detectors []anomaly.Detector) model.AnalysisRun {
	temporal := analytics.AnalyzeTemporal(events)
	users := analytics.AnalyzeUsers(events)
	usage := analytics.AnalyzeDevices(events, devices, ref)
	security := analytics.AnalyzeSecurity(devices, events)

	anomalies := anomaly.Run(anomaly.Context{
		Events:   events,
		Devices:  devices,
		Temporal: temporal,
		Users:    users,
		Usage:    usage,
		Security: security,
		Ref:      ref,
	}, detectors)

	return model.AnalysisRun{
		ID:          uuid.NewString(),
		GeneratedAt: ref,
		TotalEvents: len(events),
		Temporal:    temporal,
		Users:       users,
		Devices:     usage,
		Security:    security,
		Anomalies:   anomalies,
	}
}
