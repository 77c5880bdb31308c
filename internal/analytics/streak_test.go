package analytics

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func daySet(dates ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		out[d] = struct{}{}
	}
	return out
}

func TestCurrentStreakEmptyHistory(t *testing.T) {
	if got := CurrentStreak(daySet(), day("2024-01-05")); got != 0 {
		t.Fatalf("streak over empty history: want=0 got=%d", got)
	}
}

func TestCurrentStreakNoActivityToday(t *testing.T) {
	// Three-day run ending yesterday does not count when today is quiet.
	days := daySet("2024-01-01", "2024-01-02", "2024-01-03", "2024-01-05")
	if got := CurrentStreak(days, day("2024-01-05")); got != 1 {
		t.Fatalf("streak with gap before today: want=1 got=%d", got)
	}
	if got := CurrentStreak(days, day("2024-01-04")); got != 0 {
		t.Fatalf("streak on inactive day: want=0 got=%d", got)
	}
}

func TestCurrentStreakConsecutiveRun(t *testing.T) {
	days := daySet("2024-01-03", "2024-01-04", "2024-01-05")
	if got := CurrentStreak(days, day("2024-01-05")); got != 3 {
		t.Fatalf("three-day run: want=3 got=%d", got)
	}
}

func TestCurrentStreakStopsAtFirstGap(t *testing.T) {
	days := daySet("2024-01-01", "2024-01-02", "2024-01-04", "2024-01-05")
	if got := CurrentStreak(days, day("2024-01-05")); got != 2 {
		t.Fatalf("streak past a gap: want=2 got=%d", got)
	}
}

func TestCurrentStreakCrossesMonthBoundary(t *testing.T) {
	days := daySet("2024-01-30", "2024-01-31", "2024-02-01")
	if got := CurrentStreak(days, day("2024-02-01")); got != 3 {
		t.Fatalf("streak across month boundary: want=3 got=%d", got)
	}
}

func TestDistinctDaysCollapsesSameDay(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 1, 5, 0, 30, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC),
	}
	days := DistinctDays(times)
	if len(days) != 2 {
		t.Fatalf("distinct days: want=2 got=%d", len(days))
	}
	if _, ok := days["2024-01-05"]; !ok {
		t.Fatalf("expected 2024-01-05 in day set")
	}
}

func TestDayKeyNormalizesToUTC(t *testing.T) {
	// 23:00-05:00 on Jan 5 is already Jan 6 in UTC.
	loc := time.FixedZone("EST", -5*3600)
	got := DayKey(time.Date(2024, 1, 5, 23, 0, 0, 0, loc))
	if got != "2024-01-06" {
		t.Fatalf("day key across zone: want=2024-01-06 got=%s", got)
	}
}
