package replacement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-transport-service/core/directory"
	"school-transport-service/core/model"
	"school-transport-service/core/store/memstore"
	"school-transport-service/infra/logger"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

type world struct {
	st        *memstore.Store
	personnel *directory.StaticPersonnel
	routes    *directory.StaticRoutes
	engine    *Engine
	now       time.Time
}

func newWorld(t *testing.T) *world {
	t.Helper()
	st := memstore.New()
	routes := directory.NewStaticRoutes(model.Route{
		ID:            "r1",
		Stops:         []model.PickupPoint{{ID: "p1", Sequence: 1}},
		StudentIDs:    []string{"stu1", "stu2"},
		RequiredSeats: 20,
	})
	personnel := directory.NewStaticPersonnel()
	personnel.PutVehicle(model.Vehicle{ID: "v1", Seats: 30, LicenseClass: "D", RouteID: "r1", InService: true})
	personnel.PutVehicle(model.Vehicle{ID: "v2", Seats: 30, LicenseClass: "D", RouteID: "", InService: true})
	hours := model.WorkingHours{Start: model.TimeOfDay{Hour: 5}, End: model.TimeOfDay{Hour: 18}}
	personnel.PutDriver(model.Driver{ID: "d1", Status: model.EmploymentActive, Hours: hours, LicenseClass: "D"})
	personnel.PutDriver(model.Driver{ID: "d2", Status: model.EmploymentActive, Hours: hours, LicenseClass: "D"})
	personnel.PutDriver(model.Driver{ID: "d3", Status: model.EmploymentActive, Hours: hours, LicenseClass: "D"})

	w := &world{st: st, personnel: personnel, routes: routes, now: day(9).Add(12 * time.Hour)}
	w.engine = NewEngine(st, st, st, personnel, personnel, routes,
		NewWeightedScorer(Weights{}), 2*time.Hour, nil, logger.NopLogger{})
	w.engine.SetClock(func() time.Time { return w.now })
	return w
}

// seed puts d1 on vehicle v1 with trips in the leave window, and files the
// leave request.
func (w *world) seed(t *testing.T) model.LeaveRequest {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, w.st.CreateAssignment(ctx, model.Assignment{
		ID: "a-d1", Kind: model.PrincipalDriver, PrincipalID: "d1", VehicleID: "v1",
		Start: day(1), Primary: true, Status: model.AssignmentApproved,
	}))
	for d := 10; d <= 12; d++ {
		require.NoError(t, w.st.CreateTrip(ctx, model.Trip{
			ID: "t" + day(d).Format("02"), RouteID: "r1", ScheduleID: "s1",
			ServiceDate:  day(d),
			PlannedStart: day(d).Add(7 * time.Hour),
			PlannedEnd:   day(d).Add(8 * time.Hour),
			StudentIDs:   []string{"stu1", "stu2"},
			Status:       model.TripScheduled,
		}))
	}
	leave := model.LeaveRequest{
		ID: "l1", DriverID: "d1", StartDate: day(10), EndDate: day(12),
		Status: model.LeavePending, AutoReplacementEnabled: true,
	}
	require.NoError(t, w.st.CreateLeave(ctx, leave))
	return leave
}

func TestSuggestForRanksFreeDriverAndCaches(t *testing.T) {
	w := newWorld(t)
	leave := w.seed(t)
	ctx := context.Background()

	// d3 is busy elsewhere during the leave window.
	end := day(13)
	require.NoError(t, w.st.CreateAssignment(ctx, model.Assignment{
		ID: "a-d3", Kind: model.PrincipalDriver, PrincipalID: "d3", VehicleID: "v2",
		Start: day(11), End: &end, Status: model.AssignmentApproved,
	}))

	ranked, err := w.engine.SuggestFor(ctx, leave.ID)
	require.NoError(t, err)
	require.Len(t, ranked, 1, "d3 must be excluded from the pool entirely")
	assert.Equal(t, "d2", ranked[0].DriverID)
	assert.Equal(t, "v1", ranked[0].VehicleID)
	assert.Greater(t, ranked[0].Score, 0.0)

	cached, err := w.st.Leave(ctx, leave.ID)
	require.NoError(t, err)
	assert.Equal(t, "d2", cached.SuggestedDriverID)
	assert.Equal(t, "v1", cached.SuggestedVehicleID)
	require.NotNil(t, cached.SuggestionGeneratedAt)
	assert.True(t, cached.SuggestionGeneratedAt.Equal(w.now))
}

func TestSuggestForDeterministicTieBreak(t *testing.T) {
	w := newWorld(t)
	leave := w.seed(t)
	ctx := context.Background()

	var first []model.Suggestion
	for i := 0; i < 5; i++ {
		// Reset freshness so every run recomputes.
		l, err := w.st.Leave(ctx, leave.ID)
		require.NoError(t, err)
		l.SuggestionGeneratedAt = nil
		require.NoError(t, w.st.UpdateLeave(ctx, l))

		ranked, err := w.engine.SuggestFor(ctx, leave.ID)
		require.NoError(t, err)
		require.Len(t, ranked, 2)
		// d2 and d3 have identical scores; the lower ID wins.
		assert.Equal(t, "d2", ranked[0].DriverID)
		if first == nil {
			first = ranked
		} else {
			assert.Equal(t, first, ranked)
		}
	}
}

func TestSuggestForFreshCacheShortCircuits(t *testing.T) {
	w := newWorld(t)
	leave := w.seed(t)
	ctx := context.Background()

	_, err := w.engine.SuggestFor(ctx, leave.ID)
	require.NoError(t, err)

	// A new driver appears, but the cache is still fresh.
	w.personnel.PutDriver(model.Driver{
		ID: "d0", Status: model.EmploymentActive,
		Hours:        model.WorkingHours{Start: model.TimeOfDay{Hour: 5}, End: model.TimeOfDay{Hour: 18}},
		LicenseClass: "D",
	})
	ranked, err := w.engine.SuggestFor(ctx, leave.ID)
	require.NoError(t, err)
	assert.Equal(t, "d2", ranked[0].DriverID, "fresh cache must be returned as-is")

	// After the freshness window the pool is re-evaluated.
	w.now = w.now.Add(3 * time.Hour)
	ranked, err = w.engine.SuggestFor(ctx, leave.ID)
	require.NoError(t, err)
	assert.Equal(t, "d0", ranked[0].DriverID, "tie-break prefers the lowest id")
}

func TestSuggestForNoCandidates(t *testing.T) {
	w := newWorld(t)
	leave := w.seed(t)
	ctx := context.Background()

	// Suspend every other driver.
	hours := model.WorkingHours{Start: model.TimeOfDay{Hour: 5}, End: model.TimeOfDay{Hour: 18}}
	w.personnel.PutDriver(model.Driver{ID: "d2", Status: model.EmploymentSuspended, Hours: hours})
	w.personnel.PutDriver(model.Driver{ID: "d3", Status: model.EmploymentTerminated, Hours: hours})

	_, err := w.engine.SuggestFor(ctx, leave.ID)
	require.ErrorIs(t, err, ErrNoCandidates)

	cached, lookupErr := w.st.Leave(ctx, leave.ID)
	require.NoError(t, lookupErr)
	assert.Empty(t, cached.SuggestedDriverID)
	require.NotNil(t, cached.SuggestionGeneratedAt, "freshness marker still advances")

	// The no-candidate outcome is cached too.
	_, err = w.engine.SuggestFor(ctx, leave.ID)
	require.ErrorIs(t, err, ErrNoCandidates)
}

func TestSuggestForRejectsNonPending(t *testing.T) {
	w := newWorld(t)
	leave := w.seed(t)
	ctx := context.Background()
	l, err := w.st.Leave(ctx, leave.ID)
	require.NoError(t, err)
	l.Status = model.LeaveApproved
	require.NoError(t, w.st.UpdateLeave(ctx, l))
	_, err = w.engine.SuggestFor(ctx, leave.ID)
	require.Error(t, err)
}

func TestEligibleFiltersWorkingHoursAndLeave(t *testing.T) {
	w := newWorld(t)
	leave := w.seed(t)
	ctx := context.Background()

	// d2's shift starts after the trips do.
	w.personnel.PutDriver(model.Driver{
		ID: "d2", Status: model.EmploymentActive,
		Hours:        model.WorkingHours{Start: model.TimeOfDay{Hour: 9}, End: model.TimeOfDay{Hour: 18}},
		LicenseClass: "D",
	})
	// d3 has approved leave overlapping the window.
	require.NoError(t, w.st.CreateLeave(ctx, model.LeaveRequest{
		ID: "l-d3", DriverID: "d3", StartDate: day(11), EndDate: day(11),
		Status: model.LeaveApproved,
	}))

	_, err := w.engine.SuggestFor(ctx, leave.ID)
	require.ErrorIs(t, err, ErrNoCandidates)
}

func TestAcceptMaterializesPendingAssignment(t *testing.T) {
	w := newWorld(t)
	leave := w.seed(t)
	ctx := context.Background()

	_, err := w.engine.SuggestFor(ctx, leave.ID)
	require.NoError(t, err)

	a, err := w.engine.Accept(ctx, leave.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentPending, a.Status)
	assert.Equal(t, "d2", a.PrincipalID)
	assert.Equal(t, "v1", a.VehicleID)
	require.NotNil(t, a.End)
	assert.True(t, a.Start.Equal(day(10)))
	assert.True(t, a.End.Equal(day(13)), "window covers whole leave days")
}

func TestAcceptWithoutSuggestion(t *testing.T) {
	w := newWorld(t)
	leave := w.seed(t)
	_, err := w.engine.Accept(context.Background(), leave.ID)
	require.Error(t, err)
}

func TestWeightedScorerComponents(t *testing.T) {
	s := NewWeightedScorer(Weights{})
	hours := model.WorkingHours{Start: model.TimeOfDay{Hour: 5}, End: model.TimeOfDay{Hour: 18}}
	free := Candidate{
		Driver:    model.Driver{ID: "d1", Hours: hours, LicenseClass: "D"},
		Vehicle:   model.Vehicle{ID: "v1", Seats: 30, LicenseClass: "D"},
		TripStart: model.TimeOfDay{Hour: 7},
		TripEnd:   model.TimeOfDay{Hour: 8},
	}
	busy := free
	busy.NearbyAssignments = 5
	if s.Score(busy) >= s.Score(free) {
		t.Fatalf("busier candidate must score lower")
	}
	wrongLicense := free
	wrongLicense.Driver.LicenseClass = "B"
	if s.Score(wrongLicense) >= s.Score(free) {
		t.Fatalf("license mismatch must score lower")
	}
	outsideHours := free
	outsideHours.Driver.Hours = model.WorkingHours{Start: model.TimeOfDay{Hour: 9}, End: model.TimeOfDay{Hour: 18}}
	if s.Score(outsideHours) >= s.Score(free) {
		t.Fatalf("hours mismatch must score lower")
	}
}
