package recur

import (
	"log/slog"
	"time"
)

// maxExpandSteps bounds the expansion walk in iterated days. A one-year
// open-ended horizon needs at most 366 steps, so hitting the cap means the
// inputs are pathological; the partial result is returned and logged rather
// than crashing the caller.
const maxExpandSteps = 1000

// Expand returns the concrete occurrence dates of a recurring series that
// are publishable as of the current wall clock. See ExpandFrom.
func Expand(weekdays WeekdaySet, start time.Time, end *time.Time, leadDays int) []time.Time {
	return ExpandFrom(weekdays, start, end, leadDays, time.Now())
}

// ExpandFrom walks day by day from start and collects every date whose
// weekday is in the set and whose publish window has opened: a date D is
// publishable once now >= D - leadDays.
//
// The walk stops at end inclusive when set, otherwise one calendar year
// after start (exclusive). Results are ascending and deterministic for a
// fixed now. An empty result is valid — it means no occurrence has reached
// its lead window yet, not an error.
func ExpandFrom(weekdays WeekdaySet, start time.Time, end *time.Time, leadDays int, now time.Time) []time.Time {
	today := DateOnly(now)
	cur := DateOnly(start)

	// Inclusive bound when an end date is given; otherwise one year from
	// start, exclusive, so open-ended series stay bounded.
	var inHorizon func(time.Time) bool
	if end != nil {
		last := DateOnly(*end)
		inHorizon = func(d time.Time) bool { return !d.After(last) }
	} else {
		horizon := cur.AddDate(1, 0, 0)
		inHorizon = func(d time.Time) bool { return d.Before(horizon) }
	}

	var out []time.Time
	steps := 0
	for inHorizon(cur) {
		if steps >= maxExpandSteps {
			slog.Warn("recur: expansion hit iteration cap, truncating",
				"start", FormatISODate(start), "lead_days", leadDays, "generated", len(out))
			break
		}
		steps++

		if weekdays.Contains(cur.Weekday()) {
			publishDate := cur.AddDate(0, 0, -leadDays)
			if !publishDate.After(today) {
				out = append(out, cur)
			}
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return out
}
