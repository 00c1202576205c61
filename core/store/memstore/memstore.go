// Package memstore provides in-memory implementations of the store
// contracts. They are the default backend for tests and single-process
// deployments and enforce the same constraints a database schema would:
// the trip key unique index and the primary-assignment invariant are checked
// under the store lock so concurrent writers cannot race past them.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"school-transport-service/core/faults"
	"school-transport-service/core/model"
)

// Store implements every store contract over process memory.
type Store struct {
	mu             sync.RWMutex
	schedules      map[string]model.Schedule
	routeSchedules map[string][]model.RouteSchedule // keyed by schedule ID
	trips          map[string]model.Trip            // keyed by materialization key
	assignments    map[string]model.Assignment
	leaves         map[string]model.LeaveRequest
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		schedules:      map[string]model.Schedule{},
		routeSchedules: map[string][]model.RouteSchedule{},
		trips:          map[string]model.Trip{},
		assignments:    map[string]model.Assignment{},
		leaves:         map[string]model.LeaveRequest{},
	}
}

// PutSchedule validates and stores a schedule.
func (s *Store) PutSchedule(_ context.Context, sched model.Schedule) error {
	if err := sched.Validate(); err != nil {
		return faults.Wrap(faults.KindValidation, "schedule "+sched.ID, err)
	}
	s.mu.Lock()
	s.schedules[sched.ID] = sched
	s.mu.Unlock()
	return nil
}

// Schedule returns the schedule with the given ID.
func (s *Store) Schedule(_ context.Context, id string) (model.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sched, ok := s.schedules[id]
	if !ok {
		return model.Schedule{}, faults.NotFoundf("schedule %s", id)
	}
	return sched, nil
}

// ListSchedules returns all schedules sorted by ID.
func (s *Store) ListSchedules(_ context.Context) ([]model.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Schedule, 0, len(s.schedules))
	for _, sched := range s.schedules {
		out = append(out, sched)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PutRouteSchedule stores a route binding.
func (s *Store) PutRouteSchedule(_ context.Context, rs model.RouteSchedule) error {
	if rs.RouteID == "" || rs.ScheduleID == "" {
		return faults.Validationf("route schedule needs route and schedule ids")
	}
	s.mu.Lock()
	s.routeSchedules[rs.ScheduleID] = append(s.routeSchedules[rs.ScheduleID], rs)
	s.mu.Unlock()
	return nil
}

// RouteSchedulesFor returns the bindings for a schedule.
func (s *Store) RouteSchedulesFor(_ context.Context, scheduleID string) ([]model.RouteSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.RouteSchedule(nil), s.routeSchedules[scheduleID]...), nil
}

// CreateTrip stores a trip, refusing duplicate materialization keys. This is
// the storage-level uniqueness constraint trip generation relies on.
func (s *Store) CreateTrip(_ context.Context, t model.Trip) error {
	key := t.Key()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.trips[key]; exists {
		return faults.Conflictf("trip %s already materialized", key)
	}
	s.trips[key] = t
	return nil
}

// TripByKey returns the trip with the given materialization key.
func (s *Store) TripByKey(_ context.Context, key string) (model.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trips[key]
	if !ok {
		return model.Trip{}, faults.NotFoundf("trip %s", key)
	}
	return t, nil
}

// TripsForRoute returns the trips of a route whose planned window intersects
// [from, to), ordered by service date.
func (s *Store) TripsForRoute(_ context.Context, routeID string, from, to time.Time) ([]model.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Trip
	for _, t := range s.trips {
		if t.RouteID != routeID {
			continue
		}
		if model.Overlaps(t.PlannedStart, &t.PlannedEnd, from, &to) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceDate.Before(out[j].ServiceDate) })
	return out, nil
}

// CreateAssignment stores an assignment. An approved open-ended primary
// driver assignment is refused when the vehicle already has one.
func (s *Store) CreateAssignment(_ context.Context, a model.Assignment) error {
	if err := a.Validate(); err != nil {
		return faults.Wrap(faults.KindValidation, "assignment "+a.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.assignments[a.ID]; exists {
		return faults.Conflictf("assignment %s already exists", a.ID)
	}
	if a.Status == model.AssignmentApproved {
		if err := s.checkPrimaryLocked(a); err != nil {
			return err
		}
	}
	s.assignments[a.ID] = a
	return nil
}

// Assignment returns the assignment with the given ID.
func (s *Store) Assignment(_ context.Context, id string) (model.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[id]
	if !ok {
		return model.Assignment{}, faults.NotFoundf("assignment %s", id)
	}
	return a, nil
}

// TransitionStatus moves an assignment between lifecycle states using a
// compare-and-swap on the expected current status. Approving an open-ended
// primary re-checks the vehicle invariant under the same lock.
func (s *Store) TransitionStatus(_ context.Context, id string, from, to model.AssignmentStatus, reason string) (model.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok {
		return model.Assignment{}, faults.NotFoundf("assignment %s", id)
	}
	if a.Status != from {
		return model.Assignment{}, faults.Conflictf("assignment %s is %s, expected %s", id, a.Status, from)
	}
	if to == model.AssignmentApproved {
		probe := a
		probe.Status = model.AssignmentApproved
		if err := s.checkPrimaryLocked(probe); err != nil {
			return model.Assignment{}, err
		}
	}
	a.Status = to
	a.Reason = reason
	s.assignments[id] = a
	return a, nil
}

// checkPrimaryLocked enforces the single open-ended approved primary driver
// assignment per vehicle. Callers hold the write lock.
func (s *Store) checkPrimaryLocked(a model.Assignment) error {
	if a.Kind != model.PrincipalDriver || !a.Primary || !a.OpenEnded() {
		return nil
	}
	for _, other := range s.assignments {
		if other.ID == a.ID || other.VehicleID != a.VehicleID {
			continue
		}
		if other.Kind == model.PrincipalDriver && other.Primary && other.OpenEnded() &&
			other.Status == model.AssignmentApproved {
			return faults.Conflictf("vehicle %s already has primary driver %s", a.VehicleID, other.PrincipalID)
		}
	}
	return nil
}

// AssignmentsForVehicle returns the assignments of a vehicle sorted by start.
func (s *Store) AssignmentsForVehicle(_ context.Context, vehicleID string) ([]model.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Assignment
	for _, a := range s.assignments {
		if a.VehicleID == vehicleID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

// AssignmentsForPrincipal returns the assignments of one driver or
// supervisor sorted by start.
func (s *Store) AssignmentsForPrincipal(_ context.Context, kind model.PrincipalKind, principalID string) ([]model.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Assignment
	for _, a := range s.assignments {
		if a.Kind == kind && a.PrincipalID == principalID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

// CreateLeave validates and stores a leave request.
func (s *Store) CreateLeave(_ context.Context, l model.LeaveRequest) error {
	if err := l.Validate(); err != nil {
		return faults.Wrap(faults.KindValidation, "leave "+l.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.leaves[l.ID]; exists {
		return faults.Conflictf("leave %s already exists", l.ID)
	}
	s.leaves[l.ID] = l
	return nil
}

// Leave returns the leave request with the given ID.
func (s *Store) Leave(_ context.Context, id string) (model.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leaves[id]
	if !ok {
		return model.LeaveRequest{}, faults.NotFoundf("leave %s", id)
	}
	return l, nil
}

// UpdateLeave replaces an existing leave request.
func (s *Store) UpdateLeave(_ context.Context, l model.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leaves[l.ID]; !ok {
		return faults.NotFoundf("leave %s", l.ID)
	}
	s.leaves[l.ID] = l
	return nil
}

// LeavesForDriver returns the leave requests of one driver sorted by start.
func (s *Store) LeavesForDriver(_ context.Context, driverID string) ([]model.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.LeaveRequest
	for _, l := range s.leaves {
		if l.DriverID == driverID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// PendingNeedingSuggestion implements the freshness selection for the
// replacement loop: pending, auto-replacement enabled, suggestion missing or
// generated before staleBefore. Oldest request first, capped at limit.
func (s *Store) PendingNeedingSuggestion(_ context.Context, staleBefore time.Time, limit int) ([]model.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.LeaveRequest
	for _, l := range s.leaves {
		if l.Status != model.LeavePending || !l.AutoReplacementEnabled {
			continue
		}
		if l.SuggestionGeneratedAt != nil && !l.SuggestionGeneratedAt.Before(staleBefore) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
