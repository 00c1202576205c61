package model

import (
	"fmt"
	"time"
)

// PrincipalKind distinguishes the two structurally identical assignment
// variants. Primary uniqueness only applies to drivers.
type PrincipalKind int

const (
	PrincipalDriver PrincipalKind = iota
	PrincipalSupervisor
)

// String returns a human-readable representation of the kind.
func (k PrincipalKind) String() string {
	switch k {
	case PrincipalDriver:
		return "driver"
	case PrincipalSupervisor:
		return "supervisor"
	default:
		return "unknown"
	}
}

// AssignmentStatus tracks the approval lifecycle of an assignment.
type AssignmentStatus int

const (
	AssignmentPending AssignmentStatus = iota
	AssignmentApproved
	AssignmentRejected
	AssignmentCancelled
)

// String returns a human-readable representation of the status.
func (s AssignmentStatus) String() string {
	switch s {
	case AssignmentPending:
		return "pending"
	case AssignmentApproved:
		return "approved"
	case AssignmentRejected:
		return "rejected"
	case AssignmentCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Assignment binds a driver or supervisor to a vehicle for the half-open
// window [Start, End). A nil End means the assignment is open-ended.
type Assignment struct {
	ID          string           `json:"id"`
	Kind        PrincipalKind    `json:"kind"`
	PrincipalID string           `json:"principal_id"`
	VehicleID   string           `json:"vehicle_id"`
	Start       time.Time        `json:"start"`
	End         *time.Time       `json:"end,omitempty"`
	Primary     bool             `json:"primary,omitempty"` // driver variant only
	Status      AssignmentStatus `json:"status"`
	Reason      string           `json:"reason,omitempty"` // rejection or cancellation reason
}

// OpenEnded reports whether the assignment has no end time.
func (a Assignment) OpenEnded() bool { return a.End == nil }

// OverlapsWindow reports whether the assignment window intersects
// [start, end). A nil end extends the probe window to infinity.
func (a Assignment) OverlapsWindow(start time.Time, end *time.Time) bool {
	return Overlaps(a.Start, a.End, start, end)
}

// OverlapsAssignment reports whether two assignment windows intersect.
func (a Assignment) OverlapsAssignment(b Assignment) bool {
	return Overlaps(a.Start, a.End, b.Start, b.End)
}

// Validate rejects malformed assignments before they are stored.
func (a Assignment) Validate() error {
	if a.PrincipalID == "" {
		return fmt.Errorf("principal id is required")
	}
	if a.VehicleID == "" {
		return fmt.Errorf("vehicle id is required")
	}
	if a.Start.IsZero() {
		return fmt.Errorf("start time is required")
	}
	if a.End != nil && !a.Start.Before(*a.End) {
		return fmt.Errorf("end %s is not after start %s", a.End, a.Start)
	}
	if a.Primary && a.Kind != PrincipalDriver {
		return fmt.Errorf("primary flag only applies to driver assignments")
	}
	return nil
}

// Conflict is a derived pair of overlapping assignments on one vehicle, with
// a severity derived from the trips and students caught in the overlap.
type Conflict struct {
	VehicleID    string     `json:"vehicle_id"`
	First        Assignment `json:"first"`
	Second       Assignment `json:"second"`
	OverlapStart time.Time  `json:"overlap_start"`
	OverlapEnd   *time.Time `json:"overlap_end,omitempty"`
	TripCount    int        `json:"trip_count"`
	StudentCount int        `json:"student_count"`
	Severity     float64    `json:"severity"`
}
