package common

import "time"

// DateLayout is the calendar-day key format used everywhere a date is
// persisted (stats lastPlayedDate, daily challenge date).
const DateLayout = "2006-01-02"

// DateKey formats a time as a YYYY-MM-DD key in the local calendar day.
// Streaks and daily challenges are calendar-day concepts from the player's
// point of view, so the local day is used rather than UTC.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween returns the number of calendar days from date a to date b
// (both YYYY-MM-DD). Positive when b is after a. Returns 0 and false when
// either key does not parse.
func DaysBetween(a, b string) (int, bool) {
	ta, err := time.Parse(DateLayout, a)
	if err != nil {
		return 0, false
	}
	tb, err := time.Parse(DateLayout, b)
	if err != nil {
		return 0, false
	}
	return int(tb.Sub(ta).Hours() / 24), true
}

// OlderThan reports whether the date key is more than n days before the
// reference date key. Unparseable dates are treated as older, so pruning
// passes also discard malformed records.
func OlderThan(date, reference string, n int) bool {
	days, ok := DaysBetween(date, reference)
	if !ok {
		return true
	}
	return days > n
}
