package analytics

import (
	"sort"
	"time"
)

type TimelineEntry struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Timeline buckets events by UTC calendar date and returns one ascending
// {date,count} entry per active day. Gap days are omitted, not zero-filled;
// charting callers zero-fill themselves.
func Timeline(times []time.Time) []TimelineEntry {
	counts := make(map[string]int, len(times))
	for _, t := range times {
		counts[DayKey(t)]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]TimelineEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, TimelineEntry{Date: k, Count: counts[k]})
	}
	return out
}
