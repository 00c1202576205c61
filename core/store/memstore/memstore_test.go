package memstore

import (
	"context"
	"testing"
	"time"

	"school-transport-service/core/faults"
	"school-transport-service/core/model"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateTripRejectsDuplicateKey(t *testing.T) {
	s := New()
	ctx := context.Background()
	trip := model.Trip{ID: "t1", RouteID: "r1", ScheduleID: "s1", ServiceDate: day(4),
		PlannedStart: day(4).Add(7 * time.Hour), PlannedEnd: day(4).Add(8 * time.Hour)}
	if err := s.CreateTrip(ctx, trip); err != nil {
		t.Fatalf("first create: %v", err)
	}
	dup := trip
	dup.ID = "t2"
	err := s.CreateTrip(ctx, dup)
	if !faults.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	got, err := s.TripByKey(ctx, trip.Key())
	if err != nil || got.ID != "t1" {
		t.Fatalf("original trip must survive: %v %v", got.ID, err)
	}
}

func TestPrimaryAssignmentInvariantOnCreate(t *testing.T) {
	s := New()
	ctx := context.Background()
	first := model.Assignment{ID: "a1", Kind: model.PrincipalDriver, PrincipalID: "d1",
		VehicleID: "v1", Start: day(1), Primary: true, Status: model.AssignmentApproved}
	if err := s.CreateAssignment(ctx, first); err != nil {
		t.Fatalf("first assignment: %v", err)
	}
	second := model.Assignment{ID: "a2", Kind: model.PrincipalDriver, PrincipalID: "d2",
		VehicleID: "v1", Start: day(2), Primary: true, Status: model.AssignmentApproved}
	err := s.CreateAssignment(ctx, second)
	if !faults.IsConflict(err) {
		t.Fatalf("expected conflict for second primary, got %v", err)
	}
}

func TestPrimaryAssignmentInvariantOnApprove(t *testing.T) {
	s := New()
	ctx := context.Background()
	approved := model.Assignment{ID: "a1", Kind: model.PrincipalDriver, PrincipalID: "d1",
		VehicleID: "v1", Start: day(1), Primary: true, Status: model.AssignmentApproved}
	if err := s.CreateAssignment(ctx, approved); err != nil {
		t.Fatalf("seed: %v", err)
	}
	pending := model.Assignment{ID: "a2", Kind: model.PrincipalDriver, PrincipalID: "d2",
		VehicleID: "v1", Start: day(2), Primary: true, Status: model.AssignmentPending}
	if err := s.CreateAssignment(ctx, pending); err != nil {
		t.Fatalf("pending create must pass: %v", err)
	}
	_, err := s.TransitionStatus(ctx, "a2", model.AssignmentPending, model.AssignmentApproved, "")
	if !faults.IsConflict(err) {
		t.Fatalf("expected conflict on approval, got %v", err)
	}
	// Cancelling the first frees the slot.
	if _, err := s.TransitionStatus(ctx, "a1", model.AssignmentApproved, model.AssignmentCancelled, "driver left"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := s.TransitionStatus(ctx, "a2", model.AssignmentPending, model.AssignmentApproved, ""); err != nil {
		t.Fatalf("approval after cancel: %v", err)
	}
}

func TestBoundedPrimariesDoNotConflict(t *testing.T) {
	s := New()
	ctx := context.Background()
	end := day(10)
	bounded := model.Assignment{ID: "a1", Kind: model.PrincipalDriver, PrincipalID: "d1",
		VehicleID: "v1", Start: day(1), End: &end, Primary: true, Status: model.AssignmentApproved}
	if err := s.CreateAssignment(ctx, bounded); err != nil {
		t.Fatalf("bounded: %v", err)
	}
	open := model.Assignment{ID: "a2", Kind: model.PrincipalDriver, PrincipalID: "d2",
		VehicleID: "v1", Start: day(2), Primary: true, Status: model.AssignmentApproved}
	if err := s.CreateAssignment(ctx, open); err != nil {
		t.Fatalf("only open-ended primaries are constrained: %v", err)
	}
}

func TestTransitionStatusCAS(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := model.Assignment{ID: "a1", Kind: model.PrincipalSupervisor, PrincipalID: "s1",
		VehicleID: "v1", Start: day(1), Status: model.AssignmentPending}
	if err := s.CreateAssignment(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.TransitionStatus(ctx, "a1", model.AssignmentApproved, model.AssignmentCancelled, "x"); !faults.IsConflict(err) {
		t.Fatalf("expected CAS conflict, got %v", err)
	}
	if _, err := s.TransitionStatus(ctx, "missing", model.AssignmentPending, model.AssignmentApproved, ""); !faults.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPendingNeedingSuggestion(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := day(15)
	fresh := now.Add(-time.Hour)
	stale := now.Add(-3 * time.Hour)
	leaves := []model.LeaveRequest{
		{ID: "l1", DriverID: "d1", StartDate: day(20), EndDate: day(21), Status: model.LeavePending, AutoReplacementEnabled: true},
		{ID: "l2", DriverID: "d2", StartDate: day(18), EndDate: day(19), Status: model.LeavePending, AutoReplacementEnabled: true, SuggestionGeneratedAt: &stale},
		{ID: "l3", DriverID: "d3", StartDate: day(17), EndDate: day(18), Status: model.LeavePending, AutoReplacementEnabled: true, SuggestionGeneratedAt: &fresh},
		{ID: "l4", DriverID: "d4", StartDate: day(16), EndDate: day(17), Status: model.LeaveApproved, AutoReplacementEnabled: true},
		{ID: "l5", DriverID: "d5", StartDate: day(16), EndDate: day(17), Status: model.LeavePending, AutoReplacementEnabled: false},
	}
	for _, l := range leaves {
		if err := s.CreateLeave(ctx, l); err != nil {
			t.Fatalf("seed %s: %v", l.ID, err)
		}
	}
	got, err := s.PendingNeedingSuggestion(ctx, now.Add(-2*time.Hour), 10)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 2 || got[0].ID != "l2" || got[1].ID != "l1" {
		ids := make([]string, 0, len(got))
		for _, l := range got {
			ids = append(ids, l.ID)
		}
		t.Fatalf("expected [l2 l1], got %v", ids)
	}
	limited, err := s.PendingNeedingSuggestion(ctx, now.Add(-2*time.Hour), 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit not applied: %v %d", err, len(limited))
	}
}

func TestScheduleValidationAtPut(t *testing.T) {
	s := New()
	err := s.PutSchedule(context.Background(), model.Schedule{ID: "bad"})
	if !faults.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
