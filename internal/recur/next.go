package recur

import (
	"log/slog"
	"time"
)

// nextWindowDays is how far past today NextOccurrenceFrom scans before
// giving up. Any weekday set has a member within 7 days, so 14 covers every
// well-formed series with room to spare.
const nextWindowDays = 14

// NextOccurrence returns the nearest qualifying date of a series at or
// after the current wall clock. See NextOccurrenceFrom.
func NextOccurrence(weekdays WeekdaySet, start time.Time) time.Time {
	return NextOccurrenceFrom(weekdays, start, time.Now())
}

// NextOccurrenceFrom finds the single nearest date whose weekday is in the
// set, at or after both today and the series start.
//
// A start strictly in the future whose own weekday matches is the series'
// first occurrence and is returned as-is. Otherwise the scan runs from today
// for nextWindowDays days. When nothing in the window qualifies the start
// date is returned unchanged — a degraded but defined result. That fallback
// is logged: it means the weekday pattern cannot produce an occurrence at or
// after its own start within two weeks, which a well-formed series never hits.
func NextOccurrenceFrom(weekdays WeekdaySet, start time.Time, now time.Time) time.Time {
	today := DateOnly(now)
	first := DateOnly(start)

	if first.After(today) && weekdays.Contains(first.Weekday()) {
		return first
	}

	for i := 0; i < nextWindowDays; i++ {
		d := today.AddDate(0, 0, i)
		if weekdays.Contains(d.Weekday()) && !d.Before(first) {
			return d
		}
	}

	slog.Warn("recur: no occurrence within scan window, falling back to start date",
		"start", FormatISODate(start), "weekdays", weekdays.Names())
	return first
}
