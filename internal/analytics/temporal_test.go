package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accesslens/internal/model"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04:05", value)
	require.NoError(t, err)
	return ts
}

func ev(t *testing.T, ts, user, door string) model.AccessEvent {
	t.Helper()
	return model.AccessEvent{Timestamp: at(t, ts), UserID: user, DoorID: door, EventType: "GRANTED"}
}

func TestAnalyzeTemporalEmpty(t *testing.T) {
	p := AnalyzeTemporal(nil)
	assert.Equal(t, -1, p.PeakHour)
	assert.Equal(t, -1, p.LowestHour)
	assert.Equal(t, "N/A", p.BusiestDay)
	assert.Equal(t, "Low", p.ActivityIntensity)
	assert.Empty(t, p.RushHourPeriods)
	assert.Zero(t, p.DailyAverage)
}

func TestAnalyzeTemporalDistributions(t *testing.T) {
	// Monday 2026-02-23: two events at 09, one at 14. Tuesday: one at 09.
	events := []model.AccessEvent{
		ev(t, "2026-02-23 09:05:00", "u1", "d1"),
		ev(t, "2026-02-23 09:40:00", "u2", "d1"),
		ev(t, "2026-02-23 14:00:00", "u1", "d2"),
		ev(t, "2026-02-24 09:15:00", "u3", "d1"),
	}
	p := AnalyzeTemporal(events)

	total := 0
	for _, c := range p.HourlyDistribution {
		total += c
	}
	assert.Equal(t, len(events), total, "hourly counts must sum to the event total")

	assert.Equal(t, 9, p.PeakHour)
	assert.Equal(t, 3, p.PeakHourCount)
	assert.Equal(t, 14, p.LowestHour)
	assert.Equal(t, 1, p.LowestHourCount)
	assert.Equal(t, "Monday", p.BusiestDay)
	assert.Equal(t, 3, p.BusiestDayCount)

	// Daily series is (3, 1): mean 2, sample variance 2.
	assert.InDelta(t, 2.0, p.DailyAverage, 1e-9)
	assert.InDelta(t, 2.0, p.DailyVariance, 1e-9)
}

func TestAnalyzeTemporalTrendSlope(t *testing.T) {
	// One extra event per successive day gives a unit slope.
	var events []model.AccessEvent
	for day := 1; day <= 4; day++ {
		for i := 0; i < day; i++ {
			ts := time.Date(2026, 3, day, 10, i, 0, 0, time.UTC)
			events = append(events, model.AccessEvent{Timestamp: ts, UserID: "u", DoorID: "d"})
		}
	}
	p := AnalyzeTemporal(events)
	assert.InDelta(t, 1.0, p.TrendSlope, 1e-9)
}

func TestAnalyzeTemporalConstantSeriesIsFlat(t *testing.T) {
	var events []model.AccessEvent
	for day := 1; day <= 5; day++ {
		ts := time.Date(2026, 3, day, 10, 0, 0, 0, time.UTC)
		events = append(events, model.AccessEvent{Timestamp: ts, UserID: "u", DoorID: "d"})
	}
	p := AnalyzeTemporal(events)
	assert.Zero(t, p.TrendSlope)
	assert.Zero(t, p.DailyVariance)
}

func TestRushHourPeriodsMergeConsecutiveHours(t *testing.T) {
	// Ten quiet hours at 1 event, three busy hours at 10. The busy hours sit
	// well above mean+stddev (about 7) and 12/13 collapse into one range.
	dist := map[int]int{12: 10, 13: 10, 17: 10}
	for h := 0; h < 10; h++ {
		dist[h] = 1
	}
	hourly := hourlyCounts(dist)
	periods := rushHourPeriods(dist, hourly)
	assert.Equal(t, []model.HourRange{{Start: 12, End: 13}, {Start: 17, End: 17}}, periods)
}

func TestArgMaxTieBreaks(t *testing.T) {
	hour, count := argMaxHour(map[int]int{3: 5, 11: 5})
	assert.Equal(t, 3, hour, "ties resolve toward the smaller hour")
	assert.Equal(t, 5, count)

	name, _ := argMaxName(map[string]int{"Tuesday": 2, "Friday": 2})
	assert.Equal(t, "Friday", name, "ties resolve toward the first name in sort order")
}
