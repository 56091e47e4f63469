package domain

import (
	"time"

	"github.com/ridepoolapp/backend/internal/recur"
)

// TripGroup is the display-oriented view of trips: one entry per recurring
// series plus one entry per standalone instance. Representative carries the
// fields shared across the series (route, time, pricing, vehicle, contact,
// recurrence definition), taken from one member — the series invariant makes
// them identical on every member.
type TripGroup struct {
	Representative Trip

	// NextTripDate is the series' nearest upcoming departure: the earliest
	// member DepartureDate at or after the resolver's next occurrence. For
	// standalone instances it is simply the instance's own date.
	NextTripDate time.Time

	// InstanceCount is how many materialized instances the group covers.
	InstanceCount int
}

// CollapseTrips reduces a flat instance list to one TripGroup per recurring
// series plus one per standalone instance. Output order follows first
// appearance in the input.
//
// CollapseTrips does not filter by status or date. Callers decide whether to
// pre-filter: the search path collapses only active, future-dated instances,
// while the owner dashboard collapses everything so past series stay
// visible. Both call sites document which they do.
func CollapseTrips(trips []Trip, now time.Time) []TripGroup {
	var out []TripGroup
	members := make(map[string][]Trip)
	var seriesOrder []string

	for _, t := range trips {
		if !t.Recurring() {
			out = append(out, TripGroup{
				Representative: t,
				NextTripDate:   t.DepartureDate,
				InstanceCount:  1,
			})
			continue
		}
		if _, seen := members[t.RecurrenceID]; !seen {
			seriesOrder = append(seriesOrder, t.RecurrenceID)
			// Reserve the slot so standalone entries and groups interleave
			// in input order once assembled below.
			out = append(out, TripGroup{})
		}
		members[t.RecurrenceID] = append(members[t.RecurrenceID], t)
	}

	// Fill the reserved group slots in series first-appearance order.
	slot := 0
	for i := range out {
		if out[i].InstanceCount != 0 {
			continue
		}
		series := members[seriesOrder[slot]]
		slot++
		out[i] = TripGroup{
			Representative: series[0],
			NextTripDate:   nextTripDate(series, now),
			InstanceCount:  len(series),
		}
	}

	return out
}

// nextTripDate picks the earliest member departure at or after the
// resolver's next occurrence for the series. When every materialized
// instance is already behind the resolver date, the resolver date itself is
// returned — a defined value for series whose remaining instances are past.
func nextTripDate(series []Trip, now time.Time) time.Time {
	rep := series[0]

	next := recur.DateOnly(now)
	if set, err := recur.ParseWeekdays(rep.Weekdays); err == nil {
		next = recur.NextOccurrenceFrom(set, rep.StartDate, now)
	}

	var best *time.Time
	for i := range series {
		d := recur.DateOnly(series[i].DepartureDate)
		if d.Before(next) {
			continue
		}
		if best == nil || d.Before(*best) {
			best = &d
		}
	}
	if best != nil {
		return *best
	}
	return next
}
