package analytics

import (
	"sort"
	"time"

	"accesslens/internal/model"
)

// SessionGap is the idle threshold between two swipes of the same user
// beyond which a new session begins.
const SessionGap = 30 * time.Minute

const topSequences = 10

// AnalyzeUsers profiles per-user behaviour: activity counts, idle-gap
// session segmentation and two-door transition mining. An empty table
// yields the zero profile.
func AnalyzeUsers(events []model.AccessEvent) model.UserBehaviorProfile {
	p := defaultUserProfile()
	if len(events) == 0 {
		return p
	}

	byUser := groupByUser(events)
	p.TotalUniqueUsers = len(byUser)
	p.MostActiveUser, p.MostActiveUserCount = mostActiveUser(byUser)

	counts := make([]float64, 0, len(byUser))
	for _, evs := range byUser {
		counts = append(counts, float64(len(evs)))
	}
	p.AverageEventsPerUser = mean(counts)
	p.UserActivityVariance = variance(counts)

	lengths, total := segmentSessions(byUser)
	p.AverageSessionLength = mean(lengths)
	p.TotalSessions = total
	if p.TotalUniqueUsers > 0 {
		p.SessionsPerUser = float64(total) / float64(p.TotalUniqueUsers)
	}

	p.CommonSequences, p.UniquePatterns = mineTransitions(byUser)
	return p
}

func defaultUserProfile() model.UserBehaviorProfile {
	return model.UserBehaviorProfile{
		MostActiveUser:  "N/A",
		CommonSequences: []model.DoorTransition{},
	}
}

// groupByUser splits the table per user with each user's events sorted by
// timestamp. The input order is never trusted.
func groupByUser(events []model.AccessEvent) map[string][]model.AccessEvent {
	byUser := make(map[string][]model.AccessEvent)
	for _, ev := range events {
		byUser[ev.UserID] = append(byUser[ev.UserID], ev)
	}
	for _, evs := range byUser {
		sort.Slice(evs, func(i, j int) bool { return evs[i].Timestamp.Before(evs[j].Timestamp) })
	}
	return byUser
}

// mostActiveUser breaks count ties toward the lexicographically first ID.
func mostActiveUser(byUser map[string][]model.AccessEvent) (string, int) {
	ids := make([]string, 0, len(byUser))
	for id := range byUser {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	best, bestCount := "N/A", 0
	for _, id := range ids {
		if len(byUser[id]) > bestCount {
			best, bestCount = id, len(byUser[id])
		}
	}
	return best, bestCount
}

// segmentSessions walks each user's sorted events and opens a new session
// whenever the gap to the previous event exceeds SessionGap. A session's
// length is its first-to-last span in minutes; a single swipe is length 0.
func segmentSessions(byUser map[string][]model.AccessEvent) ([]float64, int) {
	var lengths []float64
	for _, evs := range byUser {
		start := 0
		for i := 1; i <= len(evs); i++ {
			if i < len(evs) && evs[i].Timestamp.Sub(evs[i-1].Timestamp) <= SessionGap {
				continue
			}
			span := evs[i-1].Timestamp.Sub(evs[start].Timestamp)
			lengths = append(lengths, span.Minutes())
			start = i
		}
	}
	return lengths, len(lengths)
}

// mineTransitions tallies every consecutive door pair per user and returns
// the topSequences most frequent pairs plus the distinct pair count. Ties
// break toward the lexicographically first (from, to).
func mineTransitions(byUser map[string][]model.AccessEvent) ([]model.DoorTransition, int) {
	type pair struct{ from, to string }
	tally := make(map[pair]int)
	for _, evs := range byUser {
		for i := 0; i+1 < len(evs); i++ {
			tally[pair{evs[i].DoorID, evs[i+1].DoorID}]++
		}
	}
	out := make([]model.DoorTransition, 0, len(tally))
	for p, c := range tally {
		out = append(out, model.DoorTransition{From: p.from, To: p.to, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	unique := len(out)
	if len(out) > topSequences {
		out = out[:topSequences]
	}
	return out, unique
}
