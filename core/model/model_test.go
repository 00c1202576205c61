package model

import (
	"testing"
	"time"
)

func ts(h int) time.Time {
	return time.Date(2024, 3, 4, h, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	e10, e12, e14 := ts(10), ts(12), ts(14)
	cases := []struct {
		name   string
		aStart time.Time
		aEnd   *time.Time
		bStart time.Time
		bEnd   *time.Time
		want   bool
	}{
		{"disjoint", ts(8), &e10, ts(10), &e12, false},
		{"intersecting", ts(8), &e12, ts(10), &e14, true},
		{"contained", ts(8), &e14, ts(10), &e12, true},
		{"open_end_overlaps_future", ts(8), nil, ts(12), &e14, true},
		{"both_open", ts(8), nil, ts(12), nil, true},
		{"open_end_before_start", ts(12), nil, ts(8), &e10, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Overlaps(c.aStart, c.aEnd, c.bStart, c.bEnd); got != c.want {
				t.Fatalf("Overlaps = %v, want %v", got, c.want)
			}
			// overlap is symmetric
			if got := Overlaps(c.bStart, c.bEnd, c.aStart, c.aEnd); got != c.want {
				t.Fatalf("Overlaps not symmetric for %s", c.name)
			}
		})
	}
}

func TestTripKeyNormalizesDate(t *testing.T) {
	noon := time.Date(2024, 3, 4, 12, 30, 0, 0, time.UTC)
	if TripKey("r1", "s1", noon) != TripKey("r1", "s1", DateOf(noon)) {
		t.Fatalf("trip key must ignore time of day")
	}
	if TripKey("r1", "s1", noon) == TripKey("r2", "s1", noon) {
		t.Fatalf("trip key must include route")
	}
}

func TestTimeOfDayAt(t *testing.T) {
	at := TimeOfDay{Hour: 7, Minute: 15}.At(time.Date(2024, 3, 4, 23, 59, 0, 0, time.UTC))
	if at.Hour() != 7 || at.Minute() != 15 || at.Day() != 4 {
		t.Fatalf("unexpected anchored time %v", at)
	}
}

func TestWorkingHoursCovers(t *testing.T) {
	h := WorkingHours{Start: TimeOfDay{Hour: 6}, End: TimeOfDay{Hour: 16}}
	if !h.Covers(TimeOfDay{Hour: 7}, TimeOfDay{Hour: 9}) {
		t.Fatalf("window inside hours must be covered")
	}
	if h.Covers(TimeOfDay{Hour: 5}, TimeOfDay{Hour: 9}) {
		t.Fatalf("early start must not be covered")
	}
	if h.Covers(TimeOfDay{Hour: 7}, TimeOfDay{Hour: 17}) {
		t.Fatalf("late end must not be covered")
	}
}

func TestAssignmentValidate(t *testing.T) {
	end := ts(8)
	a := Assignment{PrincipalID: "d1", VehicleID: "v1", Start: ts(10), End: &end}
	if err := a.Validate(); err == nil {
		t.Fatalf("expected error for end before start")
	}
	b := Assignment{Kind: PrincipalSupervisor, PrincipalID: "s1", VehicleID: "v1", Start: ts(8), Primary: true}
	if err := b.Validate(); err == nil {
		t.Fatalf("expected error for primary supervisor")
	}
	c := Assignment{Kind: PrincipalDriver, PrincipalID: "d1", VehicleID: "v1", Start: ts(8), Primary: true}
	if err := c.Validate(); err != nil {
		t.Fatalf("valid assignment rejected: %v", err)
	}
}

func TestScheduleValidateRejectsBadOverride(t *testing.T) {
	s := Schedule{
		ID:            "s1",
		Weekdays:      []time.Weekday{time.Monday},
		DefaultStart:  TimeOfDay{Hour: 7},
		DefaultEnd:    TimeOfDay{Hour: 8},
		EffectiveFrom: ts(0),
		Overrides: []TimeOverride{
			{Date: ts(0), Start: TimeOfDay{Hour: 9}, End: TimeOfDay{Hour: 8}},
		},
	}
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for inverted override times")
	}
}

func TestLeaveWindowCoversWholeDays(t *testing.T) {
	l := LeaveRequest{
		DriverID:  "d1",
		StartDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
	}
	start, end := l.Window()
	if !start.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("window start %v", start)
	}
	if !end.Equal(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("window end must be midnight after last day, got %v", end)
	}
}
