// Package store defines the persistence contracts of the core. The contracts
// carry two hard constraints that must hold at the storage layer, not just in
// application code: the trip materialization key (route, schedule, service
// date) is unique, and at most one open-ended approved primary driver
// assignment exists per vehicle. Implementations must enforce both atomically
// (unique index or compare-and-swap); the in-memory store does so under its
// lock.
package store

import (
	"context"
	"time"

	"school-transport-service/core/model"
)

// ScheduleStore persists schedules and their route bindings.
type ScheduleStore interface {
	PutSchedule(ctx context.Context, s model.Schedule) error
	Schedule(ctx context.Context, id string) (model.Schedule, error)
	ListSchedules(ctx context.Context) ([]model.Schedule, error)
	PutRouteSchedule(ctx context.Context, rs model.RouteSchedule) error
	RouteSchedulesFor(ctx context.Context, scheduleID string) ([]model.RouteSchedule, error)
}

// TripStore persists materialized trips. CreateTrip must reject a duplicate
// materialization key with a conflict error.
type TripStore interface {
	CreateTrip(ctx context.Context, t model.Trip) error
	TripByKey(ctx context.Context, key string) (model.Trip, error)
	TripsForRoute(ctx context.Context, routeID string, from, to time.Time) ([]model.Trip, error)
}

// AssignmentStore persists resource assignments. CreateAssignment and
// TransitionStatus must refuse, atomically, any write that would produce a
// second open-ended approved primary driver assignment on one vehicle.
type AssignmentStore interface {
	CreateAssignment(ctx context.Context, a model.Assignment) error
	Assignment(ctx context.Context, id string) (model.Assignment, error)
	TransitionStatus(ctx context.Context, id string, from, to model.AssignmentStatus, reason string) (model.Assignment, error)
	AssignmentsForVehicle(ctx context.Context, vehicleID string) ([]model.Assignment, error)
	AssignmentsForPrincipal(ctx context.Context, kind model.PrincipalKind, principalID string) ([]model.Assignment, error)
}

// LeaveStore persists leave requests and the cached replacement suggestion.
type LeaveStore interface {
	CreateLeave(ctx context.Context, l model.LeaveRequest) error
	Leave(ctx context.Context, id string) (model.LeaveRequest, error)
	UpdateLeave(ctx context.Context, l model.LeaveRequest) error
	LeavesForDriver(ctx context.Context, driverID string) ([]model.LeaveRequest, error)
	// PendingNeedingSuggestion returns pending auto-replacement requests
	// whose suggestion is missing or generated before staleBefore, oldest
	// first, capped at limit.
	PendingNeedingSuggestion(ctx context.Context, staleBefore time.Time, limit int) ([]model.LeaveRequest, error)
}
