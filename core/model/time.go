package model

import (
	"fmt"
	"time"
)

// DateOf truncates t to midnight UTC. Service dates are always handled as
// midnight-UTC instants so map keys and comparisons stay stable across zones.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether a and b fall on the same UTC calendar day.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Validate checks the clock fields are in range.
func (t TimeOfDay) Validate() error {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("invalid time of day %02d:%02d", t.Hour, t.Minute)
	}
	return nil
}

// At anchors the time of day on the given service date.
func (t TimeOfDay) At(date time.Time) time.Time {
	d := DateOf(date)
	return d.Add(time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute)
}

// Minutes returns the offset from midnight in minutes.
func (t TimeOfDay) Minutes() int { return t.Hour*60 + t.Minute }

// Before reports whether t is earlier in the day than o.
func (t TimeOfDay) Before(o TimeOfDay) bool { return t.Minutes() < o.Minutes() }

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. A nil end means the interval is open-ended.
func Overlaps(aStart time.Time, aEnd *time.Time, bStart time.Time, bEnd *time.Time) bool {
	if aEnd != nil && !aStart.Before(*aEnd) {
		return false
	}
	if bEnd != nil && !bStart.Before(*bEnd) {
		return false
	}
	aBeforeBEnd := bEnd == nil || aStart.Before(*bEnd)
	bBeforeAEnd := aEnd == nil || bStart.Before(*aEnd)
	return aBeforeBEnd && bBeforeAEnd
}
