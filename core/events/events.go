// Package events defines the domain events published on the internal bus.
package events

import (
	"time"

	"school-transport-service/core/model"
)

// TripsGeneratedEvent is published after a trip generation pass.
type TripsGeneratedEvent struct {
	ScheduleID string
	From       time.Time
	To         time.Time
	Created    int
	Skipped    int
}

// SuggestionEvent is published when the replacement engine resolves a leave
// request, with or without a candidate.
type SuggestionEvent struct {
	LeaveID    string
	DriverID   string
	Suggestion *model.Suggestion // nil when no candidate was available
}

// ConflictEvent is published when a conflict scan finds overlapping
// assignments on a vehicle.
type ConflictEvent struct {
	VehicleID string
	Conflicts int
}

// CycleEvent reports one orchestrator cycle. Loop is "trips" or "replacement".
type CycleEvent struct {
	Loop      string
	Processed int
	Failed    int
	Duration  time.Duration
}
