package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"accesslens/internal/model"
)

func TestAnalyzeDevicesEmpty(t *testing.T) {
	a := AnalyzeDevices(nil, nil, time.Now())
	assert.Zero(t, a.TotalDevices)
	assert.Equal(t, "N/A", a.MostActiveDevice)
	assert.Empty(t, a.TrendingDevices)
}

func TestAnalyzeDevicesCounts(t *testing.T) {
	ref := at(t, "2026-02-23 18:00:00")
	events := []model.AccessEvent{
		ev(t, "2026-02-23 09:00:00", "u1", "lobby"),
		ev(t, "2026-02-23 09:05:00", "u2", "lobby"),
		ev(t, "2026-02-22 09:00:00", "u1", "lab"),
	}
	a := AnalyzeDevices(events, nil, ref)
	assert.Equal(t, 2, a.TotalDevices)
	assert.Equal(t, "lobby", a.MostActiveDevice)
	assert.Equal(t, 2, a.MostActiveDeviceCount)
	assert.InDelta(t, 1.5, a.AverageEventsPerDevice, 1e-9)
	assert.Equal(t, 1, a.DevicesActiveToday, "only lobby was swiped on the ref date")
}

func TestDeviceTrends(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	var events []model.AccessEvent
	// "rising" gains an event per day over five days; "flat" holds steady;
	// "old" last fired outside the seven day window and must be omitted.
	for day := 0; day < 5; day++ {
		ts := time.Date(2026, 3, 5+day, 9, 0, 0, 0, time.UTC)
		for i := 0; i <= day; i++ {
			events = append(events, model.AccessEvent{Timestamp: ts.Add(time.Duration(i) * time.Minute), UserID: "u", DoorID: "rising"})
		}
		events = append(events, model.AccessEvent{Timestamp: ts.Add(time.Hour), UserID: "u", DoorID: "flat"})
	}
	events = append(events, model.AccessEvent{Timestamp: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), UserID: "u", DoorID: "old"})

	a := AnalyzeDevices(events, nil, ref)
	assert.Equal(t, model.TrendIncreasing, a.TrendingDevices["rising"])
	assert.Equal(t, model.TrendStable, a.TrendingDevices["flat"])
	assert.NotContains(t, a.TrendingDevices, "old")
}

func TestAnalyzeDevicesAttributes(t *testing.T) {
	attrs := []model.DeviceAttributes{
		{DoorID: "lobby", SecurityLevel: model.SecurityGreen, IsEntrance: true},
		{DoorID: "vault", SecurityLevel: model.SecurityRed},
		{DoorID: "stairs", SecurityLevel: model.SecurityGreen, IsStairway: true},
	}
	a := AnalyzeDevices(nil, attrs, time.Now())
	assert.Equal(t, 2, a.SecurityDistribution[model.SecurityGreen])
	assert.Equal(t, 1, a.SecurityDistribution[model.SecurityRed])
	assert.Equal(t, 1, a.EntranceDevices)
	assert.Equal(t, 1, a.StairwayDevices)
}
