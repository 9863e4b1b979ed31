package salary

import "time"

// ResolveAt returns the entry in force on day: the one with the latest start date not after
// day. Entries sharing a start date resolve to the one appended last.
func ResolveAt(entries []Entry, day time.Time) (Entry, bool) {
	var (
		best  Entry
		found bool
	)
	for _, e := range entries {
		if e.StartDate.After(day) {
			continue
		}
		if !found || !e.StartDate.Before(best.StartDate) {
			best, found = e, true
		}
	}
	return best, found
}

// Latest returns the entry with the latest start date.
func Latest(entries []Entry) (Entry, bool) {
	var (
		best  Entry
		found bool
	)
	for _, e := range entries {
		if !found || !e.StartDate.Before(best.StartDate) {
			best, found = e, true
		}
	}
	return best, found
}
