package model

import (
	"fmt"
	"time"
)

// TimeOverride replaces or suppresses a schedule occurrence on one date.
// Overrides are ordered; when several target the same date the last one wins.
type TimeOverride struct {
	Date  time.Time `json:"date"`
	Skip  bool      `json:"skip,omitempty"` // suppress the occurrence entirely
	Start TimeOfDay `json:"start,omitempty"`
	End   TimeOfDay `json:"end,omitempty"`
}

// Schedule is a declarative recurrence definition that expands into dated
// trip occurrences. The weekday pattern applies between EffectiveFrom and
// EffectiveTo; overrides can add, move or skip individual dates.
type Schedule struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Weekdays      []time.Weekday   `json:"weekdays"`
	DefaultStart  TimeOfDay        `json:"default_start"`
	DefaultEnd    TimeOfDay        `json:"default_end"`
	EffectiveFrom time.Time        `json:"effective_from"`
	EffectiveTo   *time.Time       `json:"effective_to,omitempty"` // nil = no upper bound
	Overrides     []TimeOverride   `json:"overrides,omitempty"`
}

// RunsOn reports whether the weekday pattern includes d's day of week.
func (s Schedule) RunsOn(d time.Time) bool {
	wd := d.UTC().Weekday()
	for _, w := range s.Weekdays {
		if w == wd {
			return true
		}
	}
	return false
}

// OverrideFor returns the effective override for the given date, if any.
// Later entries shadow earlier ones for the same date.
func (s Schedule) OverrideFor(date time.Time) (TimeOverride, bool) {
	var found TimeOverride
	ok := false
	for _, o := range s.Overrides {
		if SameDate(o.Date, date) {
			found = o
			ok = true
		}
	}
	return found, ok
}

// WithinEffectiveWindow reports whether date falls inside
// [EffectiveFrom, EffectiveTo]. Both bounds are inclusive calendar days.
func (s Schedule) WithinEffectiveWindow(date time.Time) bool {
	d := DateOf(date)
	if d.Before(DateOf(s.EffectiveFrom)) {
		return false
	}
	if s.EffectiveTo != nil && d.After(DateOf(*s.EffectiveTo)) {
		return false
	}
	return true
}

// Validate rejects malformed recurrence definitions before they are stored.
func (s Schedule) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("schedule id is required")
	}
	if len(s.Weekdays) == 0 && len(s.Overrides) == 0 {
		return fmt.Errorf("schedule needs at least one weekday or override")
	}
	seen := make(map[time.Weekday]bool, len(s.Weekdays))
	for _, w := range s.Weekdays {
		if w < time.Sunday || w > time.Saturday {
			return fmt.Errorf("invalid weekday %d", w)
		}
		if seen[w] {
			return fmt.Errorf("duplicate weekday %s", w)
		}
		seen[w] = true
	}
	if err := s.DefaultStart.Validate(); err != nil {
		return err
	}
	if err := s.DefaultEnd.Validate(); err != nil {
		return err
	}
	if !s.DefaultStart.Before(s.DefaultEnd) {
		return fmt.Errorf("default start %s must be before end %s", s.DefaultStart, s.DefaultEnd)
	}
	if s.EffectiveFrom.IsZero() {
		return fmt.Errorf("effective_from is required")
	}
	if s.EffectiveTo != nil && s.EffectiveTo.Before(s.EffectiveFrom) {
		return fmt.Errorf("effective_to precedes effective_from")
	}
	for _, o := range s.Overrides {
		if o.Date.IsZero() {
			return fmt.Errorf("override date is required")
		}
		if o.Skip {
			continue
		}
		if err := o.Start.Validate(); err != nil {
			return fmt.Errorf("override %s: %w", DateOf(o.Date).Format("2006-01-02"), err)
		}
		if err := o.End.Validate(); err != nil {
			return fmt.Errorf("override %s: %w", DateOf(o.Date).Format("2006-01-02"), err)
		}
		if !o.Start.Before(o.End) {
			return fmt.Errorf("override %s: start must precede end", DateOf(o.Date).Format("2006-01-02"))
		}
	}
	return nil
}

// RouteSchedule binds a route to a schedule for an activation window. One
// schedule may serve several routes.
type RouteSchedule struct {
	ID         string     `json:"id"`
	RouteID    string     `json:"route_id"`
	ScheduleID string     `json:"schedule_id"`
	ActiveFrom time.Time  `json:"active_from"`
	ActiveTo   *time.Time `json:"active_to,omitempty"`
}

// ActiveOn reports whether the binding is active on the given date.
func (rs RouteSchedule) ActiveOn(date time.Time) bool {
	d := DateOf(date)
	if d.Before(DateOf(rs.ActiveFrom)) {
		return false
	}
	if rs.ActiveTo != nil && d.After(DateOf(*rs.ActiveTo)) {
		return false
	}
	return true
}
