package anomaly

import (
	"fmt"

	"accesslens/internal/model"
)

const (
	peakActivityThreshold  = 1000
	complianceFloor        = 50
	activeDeviceRatioFloor = 0.5
)

// StatisticalDetector is a second-pass consumer: it inspects the other
// analyzers' outputs, not the raw events.
type StatisticalDetector struct{}

func (StatisticalDetector) Name() string { return "statistical" }

func (StatisticalDetector) Detect(ctx Context) []model.Anomaly {
	var out []model.Anomaly

	if peak := ctx.Temporal.PeakHourCount; peak > peakActivityThreshold {
		out = append(out, model.Anomaly{
			Type:      "high_peak_activity",
			Severity:  model.SeverityMedium,
			Message:   fmt.Sprintf("Unusually high peak activity: %d events", peak),
			Value:     float64(peak),
			Threshold: peakActivityThreshold,
			Timestamp: stamp(ctx),
		})
	}

	if len(ctx.Devices) > 0 && ctx.Security.ComplianceScore < complianceFloor {
		out = append(out, model.Anomaly{
			Type:      "low_compliance",
			Severity:  model.SeverityHigh,
			Message:   fmt.Sprintf("Low security compliance score: %.1f%%", ctx.Security.ComplianceScore),
			Value:     ctx.Security.ComplianceScore,
			Threshold: complianceFloor,
			Timestamp: stamp(ctx),
		})
	}

	if total := ctx.Usage.TotalDevices; total > 0 {
		ratio := float64(ctx.Usage.DevicesActiveToday) / float64(total)
		if ratio < activeDeviceRatioFloor {
			out = append(out, model.Anomaly{
				Type:      "low_device_activity",
				Severity:  model.SeverityMedium,
				Message:   fmt.Sprintf("Low device activity: only %d/%d devices active today", ctx.Usage.DevicesActiveToday, total),
				Value:     ratio,
				Threshold: activeDeviceRatioFloor,
				Timestamp: stamp(ctx),
			})
		}
	}
	return out
}
