package assignment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"school-transport-service/core/directory"
	"school-transport-service/core/events"
	"school-transport-service/core/faults"
	"school-transport-service/core/logger"
	"school-transport-service/core/model"
	"school-transport-service/core/store"
	"school-transport-service/internal/eventbus"
)

// Service owns resource-assignment writes and conflict detection. It is
// generic over the principal kind: driver and supervisor assignments share
// the interval and conflict logic, and only the driver variant carries the
// primary-uniqueness invariant (enforced by the store, re-checked here so
// violations surface before the write).
type Service struct {
	assignments store.AssignmentStore
	trips       store.TripStore
	vehicles    directory.VehicleDirectory
	bus         *eventbus.Bus[events.ConflictEvent]
	log         logger.Logger
}

// NewService creates a Service. The bus may be nil when no one listens.
func NewService(assignments store.AssignmentStore, trips store.TripStore, vehicles directory.VehicleDirectory, bus *eventbus.Bus[events.ConflictEvent], log logger.Logger) *Service {
	return &Service{assignments: assignments, trips: trips, vehicles: vehicles, bus: bus, log: log}
}

// Create validates and stores a new assignment in Pending state. An ID is
// minted when the caller supplies none.
func (s *Service) Create(ctx context.Context, a model.Assignment) (model.Assignment, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.Status = model.AssignmentPending
	a.Reason = ""
	if err := a.Validate(); err != nil {
		return model.Assignment{}, faults.Wrap(faults.KindValidation, "assignment "+a.ID, err)
	}
	if _, err := s.vehicles.Vehicle(a.VehicleID); err != nil {
		return model.Assignment{}, err
	}
	if err := s.assignments.CreateAssignment(ctx, a); err != nil {
		return model.Assignment{}, err
	}
	s.log.Infow("assignment created", map[string]any{
		"assignment": a.ID,
		"kind":       a.Kind.String(),
		"principal":  a.PrincipalID,
		"vehicle":    a.VehicleID,
	})
	return a, nil
}

// Approve moves a pending assignment to Approved. Approving an open-ended
// primary driver assignment fails with a conflict when the vehicle already
// has one; the store performs the check-and-set atomically.
func (s *Service) Approve(ctx context.Context, id string) (model.Assignment, error) {
	a, err := s.assignments.TransitionStatus(ctx, id, model.AssignmentPending, model.AssignmentApproved, "")
	if err != nil {
		return model.Assignment{}, err
	}
	s.log.Infof("assignment %s approved for vehicle %s", a.ID, a.VehicleID)
	return a, nil
}

// Reject moves a pending assignment to Rejected. A reason is required.
func (s *Service) Reject(ctx context.Context, id, reason string) (model.Assignment, error) {
	if reason == "" {
		return model.Assignment{}, faults.Validationf("rejection requires a reason")
	}
	return s.assignments.TransitionStatus(ctx, id, model.AssignmentPending, model.AssignmentRejected, reason)
}

// Cancel moves an approved assignment to Cancelled. A reason is required.
func (s *Service) Cancel(ctx context.Context, id, reason string) (model.Assignment, error) {
	if reason == "" {
		return model.Assignment{}, faults.Validationf("cancellation requires a reason")
	}
	return s.assignments.TransitionStatus(ctx, id, model.AssignmentApproved, model.AssignmentCancelled, reason)
}

// Severity weights for a conflict: each trip caught in the overlap counts
// full, each affected student adds a fraction.
const (
	tripSeverityWeight    = 1.0
	studentSeverityWeight = 0.25
)

// DetectConflicts reports every pair of non-terminal assignments on the
// vehicle whose windows intersect [from, to) and each other. Two windows
// conflict iff a.start < b.end && b.start < a.end, with an open end treated
// as infinity. Severity derives from the trips and distinct students falling
// inside the pair's overlap window.
func (s *Service) DetectConflicts(ctx context.Context, vehicleID string, from, to time.Time) ([]model.Conflict, error) {
	if !from.Before(to) {
		return nil, faults.Validationf("range start must precede end")
	}
	vehicle, err := s.vehicles.Vehicle(vehicleID)
	if err != nil {
		return nil, err
	}
	all, err := s.assignments.AssignmentsForVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	var window []model.Assignment
	for _, a := range all {
		if a.Status == model.AssignmentRejected || a.Status == model.AssignmentCancelled {
			continue
		}
		if a.OverlapsWindow(from, &to) {
			window = append(window, a)
		}
	}

	var conflicts []model.Conflict
	for i := 0; i < len(window); i++ {
		for j := i + 1; j < len(window); j++ {
			a, b := window[i], window[j]
			if !a.OverlapsAssignment(b) {
				continue
			}
			c := model.Conflict{VehicleID: vehicleID, First: a, Second: b}
			c.OverlapStart, c.OverlapEnd = overlapWindow(a, b)
			if err := s.scoreConflict(ctx, vehicle, &c); err != nil {
				return nil, err
			}
			conflicts = append(conflicts, c)
		}
	}
	if len(conflicts) > 0 {
		conflictsDetected.Add(float64(len(conflicts)))
		s.log.Warnf("vehicle %s: %d assignment conflicts in range", vehicleID, len(conflicts))
		if s.bus != nil {
			s.bus.Publish(events.ConflictEvent{VehicleID: vehicleID, Conflicts: len(conflicts)})
		}
	}
	return conflicts, nil
}

// overlapWindow returns the intersection of two assignment windows. Both are
// known to overlap; a nil end means the intersection is open-ended too.
func overlapWindow(a, b model.Assignment) (time.Time, *time.Time) {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	var end *time.Time
	switch {
	case a.End == nil:
		end = b.End
	case b.End == nil:
		end = a.End
	case a.End.Before(*b.End):
		end = a.End
	default:
		end = b.End
	}
	return start, end
}

// scoreConflict fills in the trip and student counts for the overlap window
// and derives the severity. Trips are read through the vehicle's route.
func (s *Service) scoreConflict(ctx context.Context, vehicle model.Vehicle, c *model.Conflict) error {
	if vehicle.RouteID == "" {
		c.Severity = 0
		return nil
	}
	end := farFuture(c.OverlapEnd)
	trips, err := s.trips.TripsForRoute(ctx, vehicle.RouteID, c.OverlapStart, end)
	if err != nil {
		return err
	}
	students := make(map[string]struct{})
	for _, t := range trips {
		for _, id := range t.StudentIDs {
			students[id] = struct{}{}
		}
	}
	c.TripCount = len(trips)
	c.StudentCount = len(students)
	c.Severity = tripSeverityWeight*float64(c.TripCount) + studentSeverityWeight*float64(c.StudentCount)
	return nil
}

// farFuture resolves an open-ended overlap to a bounded query horizon.
func farFuture(end *time.Time) time.Time {
	if end != nil {
		return *end
	}
	return time.Now().UTC().AddDate(1, 0, 0)
}
