package analytics

import (
	"testing"
	"time"
)

func TestTimelineEmpty(t *testing.T) {
	if got := Timeline(nil); len(got) != 0 {
		t.Fatalf("timeline of no events: want=0 entries got=%d", len(got))
	}
}

func TestTimelineSortedAndCounted(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 22, 0, 0, 0, time.UTC),
	}
	got := Timeline(times)
	want := []TimelineEntry{
		{Date: "2024-01-05", Count: 3},
		{Date: "2024-01-07", Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("timeline length: want=%d got=%d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("timeline[%d]: want=%+v got=%+v", i, want[i], got[i])
		}
	}
}

func TestTimelineOmitsGapDays(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	got := Timeline(times)
	if len(got) != 2 {
		t.Fatalf("gap day must be omitted: want=2 entries got=%d", len(got))
	}
	if got[0].Date != "2024-01-01" || got[1].Date != "2024-01-03" {
		t.Fatalf("timeline dates: got=%+v", got)
	}
}

func TestTimelineCountsSumToEventCount(t *testing.T) {
	times := make([]time.Time, 0, 10)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		times = append(times, base.AddDate(0, 0, i%4))
	}
	total := 0
	for _, e := range Timeline(times) {
		total += e.Count
	}
	if total != len(times) {
		t.Fatalf("timeline counts: want sum=%d got=%d", len(times), total)
	}
}
