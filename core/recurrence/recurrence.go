package recurrence

import (
	"time"

	"school-transport-service/core/model"
)

// Calendar answers whether a given date is a school day. Holidays are
// excluded from generation even when the weekday pattern matches.
type Calendar interface {
	IsSchoolDay(date time.Time) bool
}

// Occurrence is one concrete dated expansion of a schedule.
type Occurrence struct {
	Date  time.Time
	Start time.Time
	End   time.Time
}

// Engine expands schedules into dated occurrences. It is a pure computation
// over already-fetched data; the calendar is the only collaborator.
type Engine struct {
	calendar Calendar
}

// NewEngine creates an Engine. A nil calendar treats every day as a school day.
func NewEngine(calendar Calendar) *Engine {
	return &Engine{calendar: calendar}
}

// GenerateDates expands the schedule over [from, to] inclusive and returns
// its occurrences in strictly increasing date order. The range is clamped to
// the schedule's effective window. Schedules are validated at creation time,
// so a malformed pattern here simply yields no occurrences.
func (e *Engine) GenerateDates(sched model.Schedule, from, to time.Time) []Occurrence {
	start := model.DateOf(from)
	end := model.DateOf(to)
	if eff := model.DateOf(sched.EffectiveFrom); eff.After(start) {
		start = eff
	}
	if sched.EffectiveTo != nil {
		if eff := model.DateOf(*sched.EffectiveTo); eff.Before(end) {
			end = eff
		}
	}

	var out []Occurrence
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		occ, ok := e.occurrenceOn(sched, d)
		if ok {
			out = append(out, occ)
		}
	}
	return out
}

// IsDateMatchingSchedule reports whether the schedule produces an occurrence
// on the given date. It is consistent with GenerateDates membership.
func (e *Engine) IsDateMatchingSchedule(sched model.Schedule, date time.Time) bool {
	d := model.DateOf(date)
	if !sched.WithinEffectiveWindow(d) {
		return false
	}
	_, ok := e.occurrenceOn(sched, d)
	return ok
}

// occurrenceOn applies the inclusion rules for a single date: the weekday
// pattern or an override must select the day, a skip override or a holiday
// excludes it, and an override time replaces the default for that date only.
func (e *Engine) occurrenceOn(sched model.Schedule, d time.Time) (Occurrence, bool) {
	ov, hasOverride := sched.OverrideFor(d)
	if hasOverride && ov.Skip {
		return Occurrence{}, false
	}
	if !sched.RunsOn(d) && !hasOverride {
		return Occurrence{}, false
	}
	if e.calendar != nil && !e.calendar.IsSchoolDay(d) {
		return Occurrence{}, false
	}
	start, end := sched.DefaultStart, sched.DefaultEnd
	if hasOverride {
		start, end = ov.Start, ov.End
	}
	return Occurrence{Date: d, Start: start.At(d), End: end.At(d)}, true
}
