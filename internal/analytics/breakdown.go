package analytics

import "time"

// BreakdownTypes is the fixed enumeration the daily breakdown reports.
// Events of any other type are ignored here; adding a type means adding it to
// this list deliberately, it never appears on its own.
var BreakdownTypes = []string{"chat", "login", "library_view", "book_upload"}

type Event struct {
	Type string
	At   time.Time
}

// DailyBreakdown counts today's events per enumerated type. Every enumerated
// type is present in the result, zeroed when absent.
func DailyBreakdown(events []Event, today time.Time) map[string]int {
	out := make(map[string]int, len(BreakdownTypes))
	for _, t := range BreakdownTypes {
		out[t] = 0
	}
	todayKey := DayKey(today)
	for _, ev := range events {
		if DayKey(ev.At) != todayKey {
			continue
		}
		if _, ok := out[ev.Type]; ok {
			out[ev.Type]++
		}
	}
	return out
}

// CountType counts events of one type across the whole input.
func CountType(events []Event, eventType string) int {
	n := 0
	for _, ev := range events {
		if ev.Type == eventType {
			n++
		}
	}
	return n
}
