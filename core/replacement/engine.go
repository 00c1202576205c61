package replacement

import (
	"context"
	"errors"
	"sort"
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

// ErrNoCandidates signals that the candidate pool for a leave request is
// empty. It is a terminal outcome for the request, distinct from a transient
// failure: callers should escalate instead of retrying.
var ErrNoCandidates = errors.New("no replacement candidates available")

// DefaultFreshness is how long a cached suggestion stays valid.
const DefaultFreshness = 2 * time.Hour

// Engine ranks substitute drivers for pending leave requests and caches the
// best candidate onto the request.
type Engine struct {
	leaves      store.LeaveStore
	assignments store.AssignmentStore
	trips       store.TripStore
	drivers     directory.DriverDirectory
	vehicles    directory.VehicleDirectory
	routes      directory.RouteDirectory
	scorer      Scorer
	freshness   time.Duration
	bus         *eventbus.Bus[events.SuggestionEvent]
	log         logger.Logger
	now         func() time.Time
}

// NewEngine creates an Engine. A zero freshness falls back to
// DefaultFreshness; the bus may be nil when no one listens.
func NewEngine(leaves store.LeaveStore, assignments store.AssignmentStore, trips store.TripStore,
	drivers directory.DriverDirectory, vehicles directory.VehicleDirectory, routes directory.RouteDirectory,
	scorer Scorer, freshness time.Duration, bus *eventbus.Bus[events.SuggestionEvent], log logger.Logger) *Engine {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &Engine{
		leaves:      leaves,
		assignments: assignments,
		trips:       trips,
		drivers:     drivers,
		vehicles:    vehicles,
		routes:      routes,
		scorer:      scorer,
		freshness:   freshness,
		bus:         bus,
		log:         log,
		now:         time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// Freshness returns the configured suggestion freshness window.
func (e *Engine) Freshness() time.Duration { return e.freshness }

// SuggestFor ranks replacement candidates for the leave request and caches
// the top suggestion onto it. A cached suggestion younger than the freshness
// window is returned as-is without recomputation. When the pool is empty the
// request's suggestion fields are cleared, the freshness marker is still
// advanced, and ErrNoCandidates is returned.
func (e *Engine) SuggestFor(ctx context.Context, leaveID string) ([]model.Suggestion, error) {
	leave, err := e.leaves.Leave(ctx, leaveID)
	if err != nil {
		return nil, err
	}
	if leave.Status != model.LeavePending {
		return nil, faults.Validationf("leave %s is %s, only pending requests take suggestions", leaveID, leave.Status)
	}
	if !leave.AutoReplacementEnabled {
		return nil, faults.Validationf("leave %s has auto replacement disabled", leaveID)
	}
	if leave.SuggestionGeneratedAt != nil && e.now().Sub(*leave.SuggestionGeneratedAt) < e.freshness {
		if leave.SuggestedDriverID == "" {
			return nil, ErrNoCandidates
		}
		return []model.Suggestion{{DriverID: leave.SuggestedDriverID, VehicleID: leave.SuggestedVehicleID}}, nil
	}

	ranked, err := e.rank(ctx, leave)
	if err != nil && !errors.Is(err, ErrNoCandidates) {
		return nil, err
	}

	now := e.now()
	leave.SuggestionGeneratedAt = &now
	if len(ranked) > 0 {
		leave.SuggestedDriverID = ranked[0].DriverID
		leave.SuggestedVehicleID = ranked[0].VehicleID
	} else {
		leave.SuggestedDriverID = ""
		leave.SuggestedVehicleID = ""
	}
	if updateErr := e.leaves.UpdateLeave(ctx, leave); updateErr != nil {
		return nil, updateErr
	}

	if e.bus != nil {
		ev := events.SuggestionEvent{LeaveID: leave.ID, DriverID: leave.DriverID}
		if len(ranked) > 0 {
			top := ranked[0]
			ev.Suggestion = &top
		}
		e.bus.Publish(ev)
	}
	if len(ranked) == 0 {
		e.log.Warnf("leave %s: no replacement candidates", leave.ID)
		return nil, ErrNoCandidates
	}
	e.log.Infow("replacement suggested", map[string]any{
		"leave":   leave.ID,
		"driver":  ranked[0].DriverID,
		"vehicle": ranked[0].VehicleID,
		"score":   ranked[0].Score,
	})
	return ranked, nil
}

// Accept materializes the cached suggestion as a pending driver assignment
// covering the leave window. The assignment still goes through the normal
// approval flow, so the primary invariant is enforced at that boundary.
func (e *Engine) Accept(ctx context.Context, leaveID string) (model.Assignment, error) {
	leave, err := e.leaves.Leave(ctx, leaveID)
	if err != nil {
		return model.Assignment{}, err
	}
	if leave.SuggestedDriverID == "" {
		return model.Assignment{}, faults.Validationf("leave %s has no cached suggestion", leaveID)
	}
	winStart, winEnd := leave.Window()
	a := model.Assignment{
		ID:          uuid.NewString(),
		Kind:        model.PrincipalDriver,
		PrincipalID: leave.SuggestedDriverID,
		VehicleID:   leave.SuggestedVehicleID,
		Start:       winStart,
		End:         &winEnd,
		Status:      model.AssignmentPending,
	}
	if err := e.assignments.CreateAssignment(ctx, a); err != nil {
		return model.Assignment{}, err
	}
	e.log.Infof("leave %s: suggestion accepted, assignment %s created", leaveID, a.ID)
	return a, nil
}

// rank builds and scores the candidate pool for a leave request.
func (e *Engine) rank(ctx context.Context, leave model.LeaveRequest) ([]model.Suggestion, error) {
	winStart, winEnd := leave.Window()

	vehicle, route, trips, err := e.affectedWork(ctx, leave, winStart, winEnd)
	if err != nil {
		return nil, err
	}
	if len(trips) == 0 {
		// Nothing to cover: the absent driver has no trips in the window.
		return nil, ErrNoCandidates
	}
	tripStart, tripEnd := dailySpan(trips)

	var ranked []model.Suggestion
	for _, d := range e.drivers.ActiveDrivers() {
		if d.ID == leave.DriverID {
			continue
		}
		ok, err := e.eligible(ctx, d, winStart, winEnd, tripStart, tripEnd)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		nearby, err := e.nearbyAssignments(ctx, d.ID, winStart, winEnd)
		if err != nil {
			return nil, err
		}
		c := Candidate{
			Driver:            d,
			Vehicle:           vehicle,
			NearbyAssignments: nearby,
			TripStart:         tripStart,
			TripEnd:           tripEnd,
			RequiredSeats:     route.RequiredSeats,
		}
		ranked = append(ranked, model.Suggestion{
			DriverID:  d.ID,
			VehicleID: vehicle.ID,
			Score:     e.scorer.Score(c),
			Reason:    "covers affected trips within working hours",
		})
	}
	if len(ranked) == 0 {
		return nil, ErrNoCandidates
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].DriverID != ranked[j].DriverID {
			return ranked[i].DriverID < ranked[j].DriverID
		}
		return ranked[i].VehicleID < ranked[j].VehicleID
	})
	return ranked, nil
}

// affectedWork resolves the vehicle, route and trips the absent driver leaves
// uncovered during the window. The first overlapping approved assignment
// determines the vehicle; replacement happens on the same vehicle so the
// route stays intact.
func (e *Engine) affectedWork(ctx context.Context, leave model.LeaveRequest, winStart, winEnd time.Time) (model.Vehicle, model.Route, []model.Trip, error) {
	assignments, err := e.assignments.AssignmentsForPrincipal(ctx, model.PrincipalDriver, leave.DriverID)
	if err != nil {
		return model.Vehicle{}, model.Route{}, nil, err
	}
	for _, a := range assignments {
		if a.Status != model.AssignmentApproved || !a.OverlapsWindow(winStart, &winEnd) {
			continue
		}
		vehicle, err := e.vehicles.Vehicle(a.VehicleID)
		if err != nil {
			return model.Vehicle{}, model.Route{}, nil, err
		}
		if vehicle.RouteID == "" {
			continue
		}
		route, err := e.routes.Route(vehicle.RouteID)
		if err != nil {
			return model.Vehicle{}, model.Route{}, nil, err
		}
		trips, err := e.trips.TripsForRoute(ctx, vehicle.RouteID, winStart, winEnd)
		if err != nil {
			return model.Vehicle{}, model.Route{}, nil, err
		}
		return vehicle, route, trips, nil
	}
	return model.Vehicle{}, model.Route{}, nil, nil
}

// eligible applies the pool filters: working hours cover the trip span, no
// approved leave overlaps the window, no assignment overlaps the window.
func (e *Engine) eligible(ctx context.Context, d model.Driver, winStart, winEnd time.Time, tripStart, tripEnd model.TimeOfDay) (bool, error) {
	if !d.Hours.Covers(tripStart, tripEnd) {
		return false, nil
	}
	leaves, err := e.leaves.LeavesForDriver(ctx, d.ID)
	if err != nil {
		return false, err
	}
	for _, l := range leaves {
		if l.Status != model.LeaveApproved {
			continue
		}
		ls, le := l.Window()
		if model.Overlaps(ls, &le, winStart, &winEnd) {
			return false, nil
		}
	}
	assignments, err := e.assignments.AssignmentsForPrincipal(ctx, model.PrincipalDriver, d.ID)
	if err != nil {
		return false, err
	}
	for _, a := range assignments {
		if a.Status == model.AssignmentRejected || a.Status == model.AssignmentCancelled {
			continue
		}
		if a.OverlapsWindow(winStart, &winEnd) {
			return false, nil
		}
	}
	return true, nil
}

// nearbyAssignments counts the candidate's active assignments in the week
// surrounding the leave window, a proxy for how disruptive borrowing them is.
func (e *Engine) nearbyAssignments(ctx context.Context, driverID string, winStart, winEnd time.Time) (int, error) {
	assignments, err := e.assignments.AssignmentsForPrincipal(ctx, model.PrincipalDriver, driverID)
	if err != nil {
		return 0, err
	}
	probeStart := winStart.AddDate(0, 0, -3)
	probeEnd := winEnd.AddDate(0, 0, 3)
	n := 0
	for _, a := range assignments {
		if a.Status == model.AssignmentRejected || a.Status == model.AssignmentCancelled {
			continue
		}
		if a.OverlapsWindow(probeStart, &probeEnd) {
			n++
		}
	}
	return n, nil
}

// dailySpan returns the earliest planned start and latest planned end across
// the affected trips, as times of day.
func dailySpan(trips []model.Trip) (model.TimeOfDay, model.TimeOfDay) {
	start := model.TimeOfDay{Hour: 23, Minute: 59}
	end := model.TimeOfDay{}
	for _, t := range trips {
		s := model.TimeOfDay{Hour: t.PlannedStart.UTC().Hour(), Minute: t.PlannedStart.UTC().Minute()}
		f := model.TimeOfDay{Hour: t.PlannedEnd.UTC().Hour(), Minute: t.PlannedEnd.UTC().Minute()}
		if s.Before(start) {
			start = s
		}
		if end.Before(f) {
			end = f
		}
	}
	return start, end
}
