package trips

import (
	"context"
	"time"

	"github.com/google/uuid"

	"school-transport-service/core/directory"
	"school-transport-service/core/events"
	"school-transport-service/core/faults"
	"school-transport-service/core/logger"
	"school-transport-service/core/model"
	"school-transport-service/core/recurrence"
	"school-transport-service/core/store"
	"school-transport-service/internal/eventbus"
)

// Generator materializes trips from schedules. Generation is idempotent: the
// trip store's unique key refuses duplicates and the generator treats that
// refusal as "already materialized, keep the existing trip".
type Generator struct {
	schedules  store.ScheduleStore
	trips      store.TripStore
	routes     directory.RouteDirectory
	recurrence *recurrence.Engine
	bus        *eventbus.Bus[events.TripsGeneratedEvent]
	log        logger.Logger
	now        func() time.Time
}

// Summary aggregates one automatic generation pass.
type Summary struct {
	SchedulesProcessed int
	TripsGenerated     int
	SchedulesFailed    int
}

// NewGenerator creates a Generator. The bus may be nil when no one listens.
func NewGenerator(schedules store.ScheduleStore, tripStore store.TripStore, routes directory.RouteDirectory, rec *recurrence.Engine, bus *eventbus.Bus[events.TripsGeneratedEvent], log logger.Logger) *Generator {
	return &Generator{
		schedules:  schedules,
		trips:      tripStore,
		routes:     routes,
		recurrence: rec,
		bus:        bus,
		log:        log,
		now:        time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (g *Generator) SetClock(now func() time.Time) { g.now = now }

// GenerateTripsFromSchedule materializes trips for every active route binding
// of the schedule over [from, to]. It returns the full trip set for the
// range, created and pre-existing alike.
func (g *Generator) GenerateTripsFromSchedule(ctx context.Context, scheduleID string, from, to time.Time) ([]model.Trip, error) {
	all, _, err := g.generate(ctx, scheduleID, from, to)
	return all, err
}

// generate runs one generation pass and reports how many trips were newly
// created versus already present.
func (g *Generator) generate(ctx context.Context, scheduleID string, from, to time.Time) ([]model.Trip, int, error) {
	if model.DateOf(to).Before(model.DateOf(from)) {
		return nil, 0, faults.Validationf("range end %s precedes start %s",
			model.DateOf(to).Format("2006-01-02"), model.DateOf(from).Format("2006-01-02"))
	}
	sched, err := g.schedules.Schedule(ctx, scheduleID)
	if err != nil {
		return nil, 0, err
	}
	bindings, err := g.schedules.RouteSchedulesFor(ctx, scheduleID)
	if err != nil {
		return nil, 0, err
	}

	occurrences := g.recurrence.GenerateDates(sched, from, to)
	var (
		out     []model.Trip
		created int
		skipped int
	)
	for _, rs := range bindings {
		route, err := g.routes.Route(rs.RouteID)
		if err != nil {
			return nil, 0, err
		}
		for _, occ := range occurrences {
			if !rs.ActiveOn(occ.Date) {
				continue
			}
			trip, existed, err := g.materialize(ctx, route, sched.ID, occ)
			if err != nil {
				return nil, 0, err
			}
			if existed {
				skipped++
			} else {
				created++
			}
			out = append(out, trip)
		}
	}
	g.log.Infow("trips generated", map[string]any{
		"schedule": scheduleID,
		"created":  created,
		"existing": skipped,
	})
	if g.bus != nil {
		g.bus.Publish(events.TripsGeneratedEvent{
			ScheduleID: scheduleID,
			From:       model.DateOf(from),
			To:         model.DateOf(to),
			Created:    created,
			Skipped:    skipped,
		})
	}
	return out, created, nil
}

// materialize creates the trip for one (route, occurrence) pair, or returns
// the existing one when the store's unique key refuses the insert.
func (g *Generator) materialize(ctx context.Context, route model.Route, scheduleID string, occ recurrence.Occurrence) (model.Trip, bool, error) {
	trip := model.Trip{
		ID:           uuid.NewString(),
		RouteID:      route.ID,
		ScheduleID:   scheduleID,
		ServiceDate:  occ.Date,
		PlannedStart: occ.Start,
		PlannedEnd:   occ.End,
		Stops:        append([]model.PickupPoint(nil), route.Stops...),
		StudentIDs:   append([]string(nil), route.StudentIDs...),
		Status:       model.TripScheduled,
	}
	err := g.trips.CreateTrip(ctx, trip)
	if err == nil {
		return trip, false, nil
	}
	if faults.IsConflict(err) {
		existing, lookupErr := g.trips.TripByKey(ctx, trip.Key())
		if lookupErr != nil {
			return model.Trip{}, false, lookupErr
		}
		return existing, true, nil
	}
	return model.Trip{}, false, err
}

// GenerateAllTripsAutomatic runs trip generation for every schedule that has
// at least one active route binding, over [today, today+daysAhead]. A failure
// on one schedule is logged and counted but never aborts the batch.
func (g *Generator) GenerateAllTripsAutomatic(ctx context.Context, daysAhead int) (Summary, error) {
	if daysAhead < 0 {
		return Summary{}, faults.Validationf("daysAhead must not be negative")
	}
	schedules, err := g.schedules.ListSchedules(ctx)
	if err != nil {
		return Summary{}, err
	}
	from := model.DateOf(g.now())
	to := from.AddDate(0, 0, daysAhead)

	var sum Summary
	for _, sched := range schedules {
		bindings, err := g.schedules.RouteSchedulesFor(ctx, sched.ID)
		if err != nil {
			g.log.Errorf("schedule %s: list bindings: %v", sched.ID, err)
			sum.SchedulesFailed++
			continue
		}
		if !anyActiveWithin(bindings, from, to) {
			continue
		}
		_, created, err := g.generate(ctx, sched.ID, from, to)
		if err != nil {
			g.log.Errorf("schedule %s: generate trips: %v", sched.ID, err)
			sum.SchedulesFailed++
			continue
		}
		sum.SchedulesProcessed++
		sum.TripsGenerated += created
	}
	return sum, nil
}

// anyActiveWithin reports whether any binding is active on at least one day
// of [from, to].
func anyActiveWithin(bindings []model.RouteSchedule, from, to time.Time) bool {
	for _, rs := range bindings {
		for d := model.DateOf(from); !d.After(model.DateOf(to)); d = d.AddDate(0, 0, 1) {
			if rs.ActiveOn(d) {
				return true
			}
		}
	}
	return false
}
