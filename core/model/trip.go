package model

import (
	"fmt"
	"time"
)

// TripStatus tracks the execution lifecycle of a trip.
type TripStatus int

const (
	TripScheduled TripStatus = iota
	TripInProgress
	TripCompleted
	TripCancelled
)

// String returns a human-readable representation of the status.
func (s TripStatus) String() string {
	switch s {
	case TripScheduled:
		return "scheduled"
	case TripInProgress:
		return "in_progress"
	case TripCompleted:
		return "completed"
	case TripCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// AttendanceRecord marks one student as picked up or absent on a trip.
type AttendanceRecord struct {
	StudentID string    `json:"student_id"`
	Present   bool      `json:"present"`
	MarkedAt  time.Time `json:"marked_at"`
}

// GeoPoint is the last reported vehicle position for a trip.
type GeoPoint struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	ReportedAt time.Time `json:"reported_at"`
}

// Trip is one concrete dated run of a route. It is materialized from a
// schedule occurrence and uniquely identified by (RouteID, ScheduleID,
// ServiceDate); the stop list is a snapshot of the route at generation time
// so later route edits do not rewrite history.
type Trip struct {
	ID           string             `json:"id"`
	RouteID      string             `json:"route_id"`
	ScheduleID   string             `json:"schedule_id"`
	ServiceDate  time.Time          `json:"service_date"`
	PlannedStart time.Time          `json:"planned_start"`
	PlannedEnd   time.Time          `json:"planned_end"`
	ActualStart  *time.Time         `json:"actual_start,omitempty"`
	ActualEnd    *time.Time         `json:"actual_end,omitempty"`
	Stops        []PickupPoint      `json:"stops"`
	StudentIDs   []string           `json:"student_ids"`
	Status       TripStatus         `json:"status"`
	Attendance   []AttendanceRecord `json:"attendance,omitempty"`
	LastLocation *GeoPoint          `json:"last_location,omitempty"`
}

// Key returns the materialization key that makes trip generation idempotent.
func (t Trip) Key() string {
	return TripKey(t.RouteID, t.ScheduleID, t.ServiceDate)
}

// TripKey builds the unique key for a (route, schedule, service date) triple.
func TripKey(routeID, scheduleID string, serviceDate time.Time) string {
	return fmt.Sprintf("%s/%s/%s", routeID, scheduleID, DateOf(serviceDate).Format("2006-01-02"))
}
