package analytics

import (
	"sort"
	"time"

	"accesslens/internal/model"
)

const (
	trendWindow        = 7 * 24 * time.Hour
	trendIncreaseSlope = 0.5
	trendDecreaseSlope = -0.5
)

// AnalyzeDevices profiles per-device usage. ref anchors the two
// time-dependent metrics, DevicesActiveToday and the trailing-7-day trend
// window; callers pass a fixed ref to make runs reproducible. attrs may be
// nil, in which case the classification fields stay zero.
func AnalyzeDevices(events []model.AccessEvent, attrs []model.DeviceAttributes, ref time.Time) model.DeviceAnalytics {
	a := defaultDeviceAnalytics()
	if len(events) == 0 {
		applyAttributes(&a, attrs)
		return a
	}

	byDevice := make(map[string]int)
	for _, ev := range events {
		byDevice[ev.DoorID]++
	}
	a.TotalDevices = len(byDevice)
	a.MostActiveDevice, a.MostActiveDeviceCount = argMaxName(byDevice)

	counts := make([]float64, 0, len(byDevice))
	for _, c := range byDevice {
		counts = append(counts, float64(c))
	}
	a.AverageEventsPerDevice = mean(counts)
	a.DeviceUsageVariance = variance(counts)

	a.DevicesActiveToday = activeOn(events, ref)
	a.TrendingDevices = deviceTrends(events, ref)

	applyAttributes(&a, attrs)
	return a
}

func defaultDeviceAnalytics() model.DeviceAnalytics {
	return model.DeviceAnalytics{
		MostActiveDevice:     "N/A",
		TrendingDevices:      map[string]model.TrendLabel{},
		SecurityDistribution: map[model.SecurityCategory]int{},
	}
}

func activeOn(events []model.AccessEvent, ref time.Time) int {
	day := ref.Format("2006-01-02")
	seen := make(map[string]struct{})
	for _, ev := range events {
		if ev.Timestamp.Format("2006-01-02") == day {
			seen[ev.DoorID] = struct{}{}
		}
	}
	return len(seen)
}

// deviceTrends restricts to the trailing trend window ending at ref, builds
// a zero-filled daily series per device over the dates observed in that
// window, and labels each device's least-squares slope. Devices with no
// events in the window are omitted rather than zero-filled.
func deviceTrends(events []model.AccessEvent, ref time.Time) map[string]model.TrendLabel {
	cutoff := ref.Add(-trendWindow)
	dates := make(map[string]struct{})
	perDevice := make(map[string]map[string]int)
	for _, ev := range events {
		if ev.Timestamp.Before(cutoff) {
			continue
		}
		day := ev.Timestamp.Format("2006-01-02")
		dates[day] = struct{}{}
		m, ok := perDevice[ev.DoorID]
		if !ok {
			m = make(map[string]int)
			perDevice[ev.DoorID] = m
		}
		m[day]++
	}

	trends := make(map[string]model.TrendLabel, len(perDevice))
	if len(perDevice) == 0 {
		return trends
	}
	ordered := make([]string, 0, len(dates))
	for d := range dates {
		ordered = append(ordered, d)
	}
	sort.Strings(ordered)

	for device, daily := range perDevice {
		series := make([]float64, len(ordered))
		for i, d := range ordered {
			series[i] = float64(daily[d])
		}
		slope := trendSlope(series)
		switch {
		case slope > trendIncreaseSlope:
			trends[device] = model.TrendIncreasing
		case slope < trendDecreaseSlope:
			trends[device] = model.TrendDecreasing
		default:
			trends[device] = model.TrendStable
		}
	}
	return trends
}

func applyAttributes(a *model.DeviceAnalytics, attrs []model.DeviceAttributes) {
	for _, attr := range attrs {
		a.SecurityDistribution[attr.SecurityLevel]++
		if attr.IsEntrance {
			a.EntranceDevices++
		}
		if attr.IsStairway {
			a.StairwayDevices++
		}
	}
}
