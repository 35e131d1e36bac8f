package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"accesslens/internal/config"
	"accesslens/internal/findings"
	"accesslens/internal/model"
	"accesslens/internal/snapshots"
)

// EngineControl is the slice of the engine the API needs.
type EngineControl interface {
	Reset()
	UpdateConfig(cfg *config.Config)
	Analyze(ref time.Time) model.AnalysisRun
	EventCount() int
	Devices() []model.DeviceAttributes
}

type Server struct {
	cfg      *config.Manager
	snaps    *snapshots.Store
	findings *findings.Store
	engine   EngineControl
	logger   *slog.Logger
	version  string
}

type statusResponse struct {
	Status        string       `json:"status"`
	Time          string       `json:"time"`
	Version       string       `json:"version"`
	ConfigPath    string       `json:"config_path"`
	EventCount    int          `json:"event_count"`
	DeviceCount   int          `json:"device_count"`
	SnapshotCount int          `json:"snapshot_count"`
	Ingest        ingestStatus `json:"ingest"`
	Analysis      analysisInfo `json:"analysis"`
}

type ingestStatus struct {
	REST      bool `json:"rest"`
	Syslog    bool `json:"syslog"`
	FileTail  bool `json:"file_tail"`
	TCPStream bool `json:"tcp_stream"`
	Kafka     bool `json:"kafka"`
}

type analysisInfo struct {
	Interval  string `json:"interval"`
	MaxEvents int    `json:"max_events"`
}

func Start(ctx context.Context, cfg *config.Manager, snaps *snapshots.Store, findingsStore *findings.Store, engine EngineControl, logger *slog.Logger, version string) *http.Server {
	if cfg == nil {
		return nil
	}
	current := cfg.Get().API
	if !current.Enabled {
		if logger != nil {
			logger.Info("api disabled")
		}
		return nil
	}
	if logger != nil {
		logger.Info("api enabled", "addr", current.Addr)
	}
	server := &Server{
		cfg:      cfg,
		snaps:    snaps,
		findings: findingsStore,
		engine:   engine,
		logger:   logger,
		version:  version,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/status", server.handleStatus)
	mux.HandleFunc("/analysis", server.handleAnalysis)
	mux.HandleFunc("/analysis/history", server.handleHistory)
	mux.HandleFunc("/analysis/run", server.handleRun)
	mux.HandleFunc("/anomalies", server.handleAnomalies)
	mux.HandleFunc("/devices", server.handleDevices)
	mux.HandleFunc("/admin/clear", server.handleClear)
	mux.HandleFunc("/admin/reset", server.handleReset)

	httpServer := &http.Server{Addr: current.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Error("api server error", "err", err)
			}
		}
	}()
	return httpServer
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cfg := s.cfg.Get()
	resp := statusResponse{
		Status:        "ok",
		Time:          time.Now().UTC().Format(time.RFC3339Nano),
		Version:       s.version,
		ConfigPath:    s.cfg.Path(),
		EventCount:    s.engine.EventCount(),
		DeviceCount:   len(s.engine.Devices()),
		SnapshotCount: s.snaps.Len(),
		Ingest: ingestStatus{
			REST:      cfg.Ingest.REST.Enabled,
			Syslog:    cfg.Ingest.Syslog.Enabled,
			FileTail:  cfg.Ingest.FileTail.Enabled,
			TCPStream: cfg.Ingest.TCPStream.Enabled,
			Kafka:     cfg.Ingest.Kafka.Enabled,
		},
		Analysis: analysisInfo{
			Interval:  cfg.Analysis.Interval.String(),
			MaxEvents: cfg.Analysis.MaxEvents,
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	run, ok := s.snaps.Latest()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	runs := s.snaps.List(limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	run := s.engine.Analyze(time.Now().UTC())
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	sinceStr := r.URL.Query().Get("since")
	var list []model.Anomaly
	if sinceStr != "" {
		ts, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		list = s.findings.Since(ts)
	} else {
		list = s.findings.List(limit)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"anomalies": list,
		"count":     len(list),
	})
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	devices := s.engine.Devices()
	dist := map[model.SecurityCategory]int{}
	entrances, stairways := 0, 0
	for _, d := range devices {
		dist[d.SecurityLevel]++
		if d.IsEntrance {
			entrances++
		}
		if d.IsStairway {
			stairways++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"devices":               devices,
		"count":                 len(devices),
		"security_distribution": dist,
		"entrance_devices":      entrances,
		"stairway_devices":      stairways,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Target string `json:"target"`
	}
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req)
	target := req.Target
	if target == "" {
		target = "all"
	}
	switch target {
	case "all":
		s.snaps.Clear()
		s.findings.Clear()
	case "snapshots":
		s.snaps.Clear()
	case "anomalies", "findings":
		s.findings.Clear()
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.engine.Reset()
	s.snaps.Clear()
	s.findings.Clear()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
