package model

import (
	"fmt"
	"time"
)

// LeaveStatus tracks the review lifecycle of a leave request.
type LeaveStatus int

const (
	LeavePending LeaveStatus = iota
	LeaveApproved
	LeaveRejected
)

// String returns a human-readable representation of the status.
func (s LeaveStatus) String() string {
	switch s {
	case LeavePending:
		return "pending"
	case LeaveApproved:
		return "approved"
	case LeaveRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// LeaveRequest is a driver's absence over an inclusive date span. When
// auto-replacement is enabled, the replacement engine caches its best
// suggestion on the request itself.
type LeaveRequest struct {
	ID                     string      `json:"id"`
	DriverID               string      `json:"driver_id"`
	StartDate              time.Time   `json:"start_date"`
	EndDate                time.Time   `json:"end_date"`
	Status                 LeaveStatus `json:"status"`
	AutoReplacementEnabled bool        `json:"auto_replacement_enabled"`
	SuggestedDriverID      string      `json:"suggested_driver_id,omitempty"`
	SuggestedVehicleID     string      `json:"suggested_vehicle_id,omitempty"`
	SuggestionGeneratedAt  *time.Time  `json:"suggestion_generated_at,omitempty"`
}

// Window returns the absence as a half-open instant interval. The end is the
// midnight after the last leave day so whole days are covered.
func (l LeaveRequest) Window() (time.Time, time.Time) {
	start := DateOf(l.StartDate)
	end := DateOf(l.EndDate).Add(24 * time.Hour)
	return start, end
}

// Validate rejects malformed leave requests before they are stored.
func (l LeaveRequest) Validate() error {
	if l.DriverID == "" {
		return fmt.Errorf("driver id is required")
	}
	if l.StartDate.IsZero() || l.EndDate.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if DateOf(l.EndDate).Before(DateOf(l.StartDate)) {
		return fmt.Errorf("end date precedes start date")
	}
	return nil
}

// Suggestion is one ranked replacement candidate for a leave request.
// Higher scores rank first; the full list is ephemeral and only the top
// entry is cached on the request.
type Suggestion struct {
	DriverID  string  `json:"driver_id"`
	VehicleID string  `json:"vehicle_id"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
}
