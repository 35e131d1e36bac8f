// Package ingest feeds AccessEvents from log sources into the engine
// channel. Each source parses lines with the shared Parser, normalizes
// them, and drops rows it cannot resolve.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"accesslens/internal/model"
)

func SendNonBlocking(ctx context.Context, out chan<- model.AccessEvent, ev model.AccessEvent, logger *slog.Logger) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	default:
		if logger != nil {
			logger.Warn("event channel full, dropping event", "door_id", ev.DoorID, "timestamp", ev.Timestamp)
		}
		return false
	}
}

func BackoffSleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = 200 * time.Millisecond
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
