package anomaly

import (
	"fmt"
	"time"

	"accesslens/internal/model"
)

const (
	nightRatioThreshold   = 0.2
	weekendRatioThreshold = 0.3
)

// TimeDetector flags after-hours and weekend usage from the raw events.
// Night hours run 22:00 through 05:59 inclusive.
type TimeDetector struct{}

func (TimeDetector) Name() string { return "time_based" }

func (TimeDetector) Detect(ctx Context) []model.Anomaly {
	var out []model.Anomaly
	total := len(ctx.Events)
	if total == 0 {
		return out
	}

	night, weekend := 0, 0
	for _, ev := range ctx.Events {
		if h := ev.Timestamp.Hour(); h >= 22 || h <= 5 {
			night++
		}
		if wd := ev.Timestamp.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekend++
		}
	}

	if ratio := float64(night) / float64(total); ratio > nightRatioThreshold {
		out = append(out, model.Anomaly{
			Type:      "unusual_night_activity",
			Severity:  model.SeverityMedium,
			Message:   fmt.Sprintf("High night-time activity: %.1f%% of events", ratio*100),
			Value:     ratio,
			Threshold: nightRatioThreshold,
			Timestamp: stamp(ctx),
		})
	}
	if ratio := float64(weekend) / float64(total); ratio > weekendRatioThreshold {
		out = append(out, model.Anomaly{
			Type:      "high_weekend_activity",
			Severity:  model.SeverityLow,
			Message:   fmt.Sprintf("High weekend activity: %.1f%% of events", ratio*100),
			Value:     ratio,
			Threshold: weekendRatioThreshold,
			Timestamp: stamp(ctx),
		})
	}
	return out
}
