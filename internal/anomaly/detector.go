// Package anomaly flags suspicious access patterns in a completed analysis
// run. Three independent strategies run behind one interface; their
// findings are concatenated without cross-strategy deduplication, since
// overlapping findings flag different evidence.
package anomaly

import (
	"fmt"
	"time"

	"accesslens/internal/model"
)

// Context carries everything a detector may consume: the raw event table,
// the optional device table, and the outputs of the four analyzers. Ref is
// the analysis reference time; findings are stamped with it so a run is a
// pure function of its inputs.
type Context struct {
	Events   []model.AccessEvent
	Devices  []model.DeviceAttributes
	Temporal model.TemporalPattern
	Users    model.UserBehaviorProfile
	Usage    model.DeviceAnalytics
	Security model.SecurityAnalytics
	Ref      time.Time
}

type Detector interface {
	Name() string
	Detect(ctx Context) []model.Anomaly
}

// DefaultDetectors returns the three built-in strategies.
func DefaultDetectors() []Detector {
	return []Detector{
		StatisticalDetector{},
		TimeDetector{},
		PatternDetector{},
	}
}

// Run executes every detector and concatenates the findings. A detector
// failure never propagates: the panic is converted into a single low
// severity detection_error finding so the caller stays safe to invoke
// unconditionally. A device table carrying unrecognizable security levels
// is reported the same way, once, and the strategies still run, since the
// time-based and pattern-based detectors never read security levels.
func Run(ctx Context, detectors []Detector) []model.Anomaly {
	findings := []model.Anomaly{}
	if bad, ok := invalidDeviceRow(ctx.Devices); ok {
		findings = append(findings, detectionError(ctx, fmt.Sprintf("device %s has unrecognizable security level %q", bad.DoorID, bad.SecurityLevel)))
	}
	for _, d := range detectors {
		findings = append(findings, runOne(ctx, d)...)
	}
	return findings
}

func runOne(ctx Context, d Detector) (out []model.Anomaly) {
	defer func() {
		if r := recover(); r != nil {
			out = []model.Anomaly{detectionError(ctx, fmt.Sprintf("%s detector: %v", d.Name(), r))}
		}
	}()
	return d.Detect(ctx)
}

func invalidDeviceRow(devices []model.DeviceAttributes) (model.DeviceAttributes, bool) {
	for _, dev := range devices {
		if !dev.SecurityLevel.Classified() && dev.SecurityLevel != model.SecurityUnknown {
			return dev, true
		}
	}
	return model.DeviceAttributes{}, false
}

func detectionError(ctx Context, msg string) model.Anomaly {
	return model.Anomaly{
		Type:      "detection_error",
		Severity:  model.SeverityLow,
		Message:   "Error during anomaly detection: " + msg,
		Timestamp: stamp(ctx),
	}
}

func stamp(ctx Context) string {
	return ctx.Ref.UTC().Format(time.RFC3339)
}
