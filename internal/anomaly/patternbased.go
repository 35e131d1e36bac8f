package anomaly

import (
	"fmt"
	"math"
	"sort"

	"accesslens/internal/model"
)

// userActivitySigma is the deviation multiplier above the mean per-user
// count at which a user is flagged.
const userActivitySigma = 3

// PatternDetector flags statistical outliers among users and devices from
// the raw events. The device universe is the union of doors observed in
// the events and doors listed in the attribute table, so a registry entry
// with zero observed swipes surfaces as an inactive device.
type PatternDetector struct{}

func (PatternDetector) Name() string { return "pattern_based" }

func (PatternDetector) Detect(ctx Context) []model.Anomaly {
	var out []model.Anomaly
	if len(ctx.Events) == 0 {
		return out
	}

	userCounts := make(map[string]int)
	deviceCounts := make(map[string]int)
	for _, ev := range ctx.Events {
		userCounts[ev.UserID]++
		deviceCounts[ev.DoorID]++
	}
	for _, dev := range ctx.Devices {
		if _, ok := deviceCounts[dev.DoorID]; !ok {
			deviceCounts[dev.DoorID] = 0
		}
	}

	out = append(out, highActivityUsers(ctx, userCounts)...)
	out = append(out, inactiveDevices(ctx, deviceCounts)...)
	return out
}

func highActivityUsers(ctx Context, counts map[string]int) []model.Anomaly {
	var out []model.Anomaly
	n := len(counts)
	if n < 2 {
		return out
	}
	var sum float64
	for _, c := range counts {
		sum += float64(c)
	}
	m := sum / float64(n)
	var sq float64
	for _, c := range counts {
		d := float64(c) - m
		sq += d * d
	}
	std := math.Sqrt(sq / float64(n-1))
	if std == 0 {
		return out
	}
	threshold := m + userActivitySigma*std

	for _, user := range sortedKeys(counts) {
		count := counts[user]
		if float64(count) <= threshold {
			continue
		}
		out = append(out, model.Anomaly{
			Type:      "high_user_activity",
			Severity:  model.SeverityMedium,
			Message:   fmt.Sprintf("User %s has unusually high activity: %d events", user, count),
			Value:     float64(count),
			Threshold: threshold,
			Timestamp: stamp(ctx),
			UserID:    user,
		})
	}
	return out
}

func inactiveDevices(ctx Context, counts map[string]int) []model.Anomaly {
	var out []model.Anomaly
	for _, device := range sortedKeys(counts) {
		if counts[device] != 0 {
			continue
		}
		out = append(out, model.Anomaly{
			Type:      "inactive_device",
			Severity:  model.SeverityLow,
			Message:   fmt.Sprintf("Device %s has no recorded activity", device),
			Value:     0,
			Threshold: 1,
			Timestamp: stamp(ctx),
			DeviceID:  device,
		})
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
