// Package analytics holds the pure calculators behind the user analytics
// endpoints: streaks, timelines, daily breakdowns and the growth score. All
// date math is UTC calendar days; inputs come from the event log and the
// functions never touch a store.
package analytics

import "time"

// DayKey collapses an instant to its UTC calendar date. ISO dates sort
// lexically, which Timeline relies on.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DistinctDays returns the set of UTC calendar dates with at least one event.
func DistinctDays(times []time.Time) map[string]struct{} {
	days := make(map[string]struct{}, len(times))
	for _, t := range times {
		days[DayKey(t)] = struct{}{}
	}
	return days
}

// CurrentStreak counts consecutive active days ending today. If today has no
// activity the streak is 0 regardless of history; otherwise we walk backward
// one day at a time and stop at the first gap. A run of consecutive days
// before a gap does not count.
func CurrentStreak(days map[string]struct{}, today time.Time) int {
	cursor := today.UTC()
	if _, ok := days[DayKey(cursor)]; !ok {
		return 0
	}
	streak := 0
	for {
		if _, ok := days[DayKey(cursor)]; !ok {
			return streak
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
}
