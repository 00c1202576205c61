// Package app wires the engines, stores, directories and background loops
// into a runnable service.
package app

import (
	"context"
	"fmt"

	"school-transport-service/config"
	"school-transport-service/core/assignment"
	"school-transport-service/core/directory"
	"school-transport-service/core/events"
	"school-transport-service/core/notify"
	"school-transport-service/core/orchestrator"
	"school-transport-service/core/recurrence"
	"school-transport-service/core/replacement"
	"school-transport-service/core/store/memstore"
	"school-transport-service/core/trips"
	"school-transport-service/infra/logger"
	"school-transport-service/infra/metrics"
	"school-transport-service/infra/mqtt"
	"school-transport-service/internal/eventbus"
)

// Service orchestrates the scheduling engines and background loops.
type Service struct {
	Store        *memstore.Store
	Generator    *trips.Generator
	Assignments  *assignment.Service
	Replacements *replacement.Engine

	tripLoop        *orchestrator.TripLoop
	replacementLoop *orchestrator.ReplacementLoop

	tripsBus      *eventbus.Bus[events.TripsGeneratedEvent]
	conflictBus   *eventbus.Bus[events.ConflictEvent]
	suggestionBus *eventbus.Bus[events.SuggestionEvent]
	cycleBus      *eventbus.Bus[events.CycleEvent]

	publisher   notify.Publisher
	closer      func()
	log         logger.Logger
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	st := memstore.New()
	routes := directory.NewStaticRoutes()
	personnel := directory.NewStaticPersonnel()
	var calendar *directory.HolidayCalendar

	if cfg.FixturesPath != "" {
		fx, err := config.LoadFixtures(cfg.FixturesPath)
		if err != nil {
			return nil, fmt.Errorf("load fixtures: %w", err)
		}
		for _, r := range fx.Routes {
			routes.Put(r)
		}
		for _, d := range fx.Drivers {
			personnel.PutDriver(d)
		}
		for _, v := range fx.Vehicles {
			personnel.PutVehicle(v)
		}
		for _, sv := range fx.Supervisors {
			personnel.PutSupervisor(sv)
		}
		calendar = directory.NewHolidayCalendar(fx.Holidays...)
		ctx := context.Background()
		for _, sched := range fx.Schedules {
			if err := st.PutSchedule(ctx, sched); err != nil {
				return nil, fmt.Errorf("seed schedule: %w", err)
			}
		}
		for _, rs := range fx.RouteSchedules {
			if err := st.PutRouteSchedule(ctx, rs); err != nil {
				return nil, fmt.Errorf("seed route schedule: %w", err)
			}
		}
	} else {
		calendar = directory.NewHolidayCalendar()
	}

	tripsBus := eventbus.New[events.TripsGeneratedEvent]()
	conflictBus := eventbus.New[events.ConflictEvent]()
	suggestionBus := eventbus.New[events.SuggestionEvent]()
	cycleBus := eventbus.New[events.CycleEvent]()

	var publisher notify.Publisher = notify.NopPublisher{}
	var closer func()
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		publisher = pub
		closer = pub.Close
	}

	rec := recurrence.NewEngine(calendar)
	generator := trips.NewGenerator(st, st, routes, rec, tripsBus, logger.New("trip_generator"))
	assignments := assignment.NewService(st, st, personnel, conflictBus, logger.New("assignments"))
	scorer := replacement.NewWeightedScorer(cfg.Replacement.Weights)
	engine := replacement.NewEngine(st, st, st, personnel, personnel, routes,
		scorer, cfg.Replacement.Freshness(), suggestionBus, logger.New("replacement"))

	tripLoop := orchestrator.NewTripLoop(generator, cfg.Orchestrator, publisher, cycleBus, logger.New("trip_loop"))
	replacementLoop := orchestrator.NewReplacementLoop(st, engine, cfg.Orchestrator, publisher, cycleBus, logger.New("replacement_loop"))

	return &Service{
		Store:           st,
		Generator:       generator,
		Assignments:     assignments,
		Replacements:    engine,
		tripLoop:        tripLoop,
		replacementLoop: replacementLoop,
		tripsBus:        tripsBus,
		conflictBus:     conflictBus,
		suggestionBus:   suggestionBus,
		cycleBus:        cycleBus,
		publisher:       publisher,
		closer:          closer,
		log:             logg,
		promEnabled:     cfg.Metrics.PrometheusEnabled,
		promPort:        cfg.Metrics.PrometheusPort,
	}, nil
}

// Run starts the background loops and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.tripLoop.Run(ctx)
	go s.replacementLoop.Run(ctx)
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	s.log.Infof("service started")
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.tripsBus.Close()
	s.conflictBus.Close()
	s.suggestionBus.Close()
	s.cycleBus.Close()
	if s.closer != nil {
		s.closer()
	}
	return nil
}
