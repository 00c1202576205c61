// Package notify defines the outbound notification contract. Delivery is
// fire-and-forget: the core never waits for confirmation, and a publish
// failure is logged by the caller rather than retried inline.
package notify

import "time"

// Event kinds carried on the notification channel.
const (
	KindSuggestionFound  = "suggestion_found"
	KindNoSuggestion     = "no_suggestion_available"
	KindTripsGenerated   = "trip_generation_summary"
	KindConflictDetected = "conflict_detected"
)

// Event is one outbound notification.
type Event struct {
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	// Suggestion fields.
	LeaveID            string  `json:"leave_id,omitempty"`
	DriverID           string  `json:"driver_id,omitempty"`
	SuggestedDriverID  string  `json:"suggested_driver_id,omitempty"`
	SuggestedVehicleID string  `json:"suggested_vehicle_id,omitempty"`
	Score              float64 `json:"score,omitempty"`

	// Trip generation summary fields.
	SchedulesProcessed int `json:"schedules_processed,omitempty"`
	TripsGenerated     int `json:"trips_generated,omitempty"`
	SchedulesFailed    int `json:"schedules_failed,omitempty"`

	// Conflict fields.
	VehicleID string `json:"vehicle_id,omitempty"`
	Conflicts int    `json:"conflicts,omitempty"`
}

// Publisher delivers notification events to the outside world.
type Publisher interface {
	Publish(ev Event) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(Event) error { return nil }
