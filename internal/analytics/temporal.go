package analytics

import (
	"sort"

	"accesslens/internal/model"
)

// Fixed activity-intensity thresholds on hourly-count variance.
const (
	intensityHighVariance   = 1000
	intensityMediumVariance = 500
)

// AnalyzeTemporal buckets events by hour of day and weekday and derives the
// facility's usage rhythm: peaks, daily trend slope, intensity and rush-hour
// periods. An empty table yields the zero profile, never an error.
//
// Arg-max/arg-min ties break toward the smallest hour number and the
// lexicographically first weekday name.
func AnalyzeTemporal(events []model.AccessEvent) model.TemporalPattern {
	p := defaultTemporalPattern()
	if len(events) == 0 {
		return p
	}

	daily := map[string]int{}
	for _, ev := range events {
		p.HourlyDistribution[ev.Timestamp.Hour()]++
		p.DailyDistribution[ev.Timestamp.Weekday().String()]++
		daily[ev.Timestamp.Format("2006-01-02")]++
	}

	p.PeakHour, p.PeakHourCount = argMaxHour(p.HourlyDistribution)
	p.LowestHour, p.LowestHourCount = argMinHour(p.HourlyDistribution)
	p.BusiestDay, p.BusiestDayCount = argMaxName(p.DailyDistribution)

	dailySeries := sortedCounts(daily)
	p.DailyAverage = mean(dailySeries)
	p.DailyVariance = variance(dailySeries)
	p.TrendSlope = trendSlope(dailySeries)

	hourly := hourlyCounts(p.HourlyDistribution)
	p.ActivityIntensity = activityIntensity(hourly)
	p.RushHourPeriods = rushHourPeriods(p.HourlyDistribution, hourly)
	return p
}

func defaultTemporalPattern() model.TemporalPattern {
	return model.TemporalPattern{
		HourlyDistribution: map[int]int{},
		PeakHour:           -1,
		LowestHour:         -1,
		DailyDistribution:  map[string]int{},
		BusiestDay:         "N/A",
		ActivityIntensity:  "Low",
		RushHourPeriods:    []model.HourRange{},
	}
}

func argMaxHour(dist map[int]int) (int, int) {
	bestHour, bestCount := -1, 0
	for h := 0; h < 24; h++ {
		if c, ok := dist[h]; ok && (bestHour == -1 || c > bestCount) {
			bestHour, bestCount = h, c
		}
	}
	return bestHour, bestCount
}

func argMinHour(dist map[int]int) (int, int) {
	bestHour, bestCount := -1, 0
	for h := 0; h < 24; h++ {
		if c, ok := dist[h]; ok && (bestHour == -1 || c < bestCount) {
			bestHour, bestCount = h, c
		}
	}
	return bestHour, bestCount
}

func argMaxName(dist map[string]int) (string, int) {
	names := make([]string, 0, len(dist))
	for name := range dist {
		names = append(names, name)
	}
	sort.Strings(names)
	best, bestCount := "N/A", 0
	for _, name := range names {
		if dist[name] > bestCount {
			best, bestCount = name, dist[name]
		}
	}
	return best, bestCount
}

// sortedCounts flattens a date-keyed count map into a series ordered by
// calendar date, the x-axis for the trend slope.
func sortedCounts(byDate map[string]int) []float64 {
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	out := make([]float64, len(dates))
	for i, d := range dates {
		out[i] = float64(byDate[d])
	}
	return out
}

func hourlyCounts(dist map[int]int) []float64 {
	out := make([]float64, 0, len(dist))
	for h := 0; h < 24; h++ {
		if c, ok := dist[h]; ok {
			out = append(out, float64(c))
		}
	}
	return out
}

func activityIntensity(hourly []float64) string {
	v := variance(hourly)
	switch {
	case v > intensityHighVariance:
		return "High"
	case v > intensityMediumVariance:
		return "Medium"
	default:
		return "Low"
	}
}

// rushHourPeriods flags hours whose count exceeds mean+stddev of the hourly
// distribution and collapses consecutive flagged hours into inclusive
// ranges.
func rushHourPeriods(dist map[int]int, hourly []float64) []model.HourRange {
	periods := []model.HourRange{}
	if len(hourly) == 0 {
		return periods
	}
	threshold := mean(hourly) + stddev(hourly)
	current := model.HourRange{Start: -1}
	for h := 0; h < 24; h++ {
		c, ok := dist[h]
		if !ok || float64(c) <= threshold {
			continue
		}
		if current.Start == -1 {
			current = model.HourRange{Start: h, End: h}
		} else if h == current.End+1 {
			current.End = h
		} else {
			periods = append(periods, current)
			current = model.HourRange{Start: h, End: h}
		}
	}
	if current.Start != -1 {
		periods = append(periods, current)
	}
	return periods
}
