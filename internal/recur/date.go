// Package recur implements the recurrence engine for recurring trips:
// timezone-safe calendar-date parsing, occurrence expansion with a publish
// lead window, and nearest-occurrence resolution. Every function is pure over
// its inputs; the ...From variants take an explicit "now" so callers and
// tests get deterministic results.
package recur

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// ParseLocalDate parses a YYYY-MM-DD string into a time.Time anchored at
// local midnight, using the current wall clock for the fallback.
func ParseLocalDate(s string) time.Time {
	return ParseLocalDateFrom(s, time.Now())
}

// ParseLocalDateFrom parses a YYYY-MM-DD string into a time.Time anchored at
// local midnight of that calendar day. The date is constructed from explicit
// (year, month, day) components rather than a full ISO parse, so formatting
// it back out reproduces the same calendar day in any host timezone.
//
// Malformed input (wrong segment count, non-numeric parts, year outside
// [1900,2100], month outside [1,12], day outside [1,31]) falls back to
// now's calendar date. The condition is logged, never returned as an error:
// these calls sit on rendering paths where a degraded date beats a crash.
func ParseLocalDateFrom(s string, now time.Time) time.Time {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		slog.Warn("recur: malformed date string, falling back to today", "input", s)
		return DateOnly(now)
	}

	year, errY := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	day, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil ||
		year < 1900 || year > 2100 || month < 1 || month > 12 || day < 1 || day > 31 {
		slog.Warn("recur: out-of-range date string, falling back to today", "input", s)
		return DateOnly(now)
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
}

// FormatLocalDate renders a date as dd/mm/yyyy, the display layout.
func FormatLocalDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatISODate renders a date as YYYY-MM-DD, the wire layout.
func FormatISODate(t time.Time) string {
	return t.Format("2006-01-02")
}

// DateOnly truncates t to local midnight of its calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// SameDate reports whether a and b fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
