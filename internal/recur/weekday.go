package recur

import (
	"fmt"
	"strings"
	"time"
)

// WeekdaySet is a set of weekdays a recurring series runs on.
type WeekdaySet map[time.Weekday]bool

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekdays converts lowercase English weekday names into a WeekdaySet.
// Duplicates collapse; an unknown name or an empty list is an error, since a
// recurring series with no valid weekday can never produce an occurrence.
func ParseWeekdays(names []string) (WeekdaySet, error) {
	set := make(WeekdaySet, len(names))
	for _, name := range names {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		set[wd] = true
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("at least one weekday is required")
	}
	return set, nil
}

// Contains reports whether day d is a member of the set.
func (s WeekdaySet) Contains(d time.Weekday) bool {
	return s[d]
}

// Names returns the canonical lowercase names of the set members in
// Sunday-first order. Useful for persisting the set as a string array.
func (s WeekdaySet) Names() []string {
	var names []string
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s[d] {
			names = append(names, strings.ToLower(d.String()))
		}
	}
	return names
}
