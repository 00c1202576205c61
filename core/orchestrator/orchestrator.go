// Package orchestrator runs the timer-driven background loops: periodic trip
// generation over a rolling horizon and batched replacement suggestion for
// pending leave requests. Each loop is an independent worker that acquires
// its dependencies per cycle; a failing cycle or item is logged and counted,
// never fatal, and the next tick is the retry mechanism. Shutdown is
// cooperative between items so an in-flight item always finishes.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"school-transport-service/core/events"
	"school-transport-service/core/logger"
	"school-transport-service/core/notify"
	"school-transport-service/core/replacement"
	"school-transport-service/core/store"
	"school-transport-service/core/trips"
	"school-transport-service/internal/eventbus"
)

// TripLoop periodically materializes trips for every schedule.
type TripLoop struct {
	generator *trips.Generator
	cfg       Config
	notifier  notify.Publisher
	bus       *eventbus.Bus[events.CycleEvent]
	log       logger.Logger
	now       func() time.Time
}

// NewTripLoop creates a TripLoop. The notifier and bus may be nil.
func NewTripLoop(gen *trips.Generator, cfg Config, notifier notify.Publisher, bus *eventbus.Bus[events.CycleEvent], log logger.Logger) *TripLoop {
	cfg.SetDefaults()
	if notifier == nil {
		notifier = notify.NopPublisher{}
	}
	return &TripLoop{generator: gen, cfg: cfg, notifier: notifier, bus: bus, log: log, now: time.Now}
}

// Run executes one cycle immediately, then on every tick until the context
// is cancelled.
func (l *TripLoop) Run(ctx context.Context) {
	l.cycle(ctx)
	ticker := time.NewTicker(l.cfg.TripPeriod())
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cycle(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// cycle runs one generation pass. Errors are absorbed here: per-schedule
// failures are already isolated inside the generator, and a store outage
// simply waits for the next tick.
func (l *TripLoop) cycle(ctx context.Context) {
	start := l.now()
	sum, err := l.generator.GenerateAllTripsAutomatic(ctx, l.cfg.HorizonDays)
	elapsed := l.now().Sub(start)
	cyclesTotal.WithLabelValues("trips").Inc()
	cycleDuration.WithLabelValues("trips").Observe(elapsed.Seconds())
	if err != nil {
		itemFailures.WithLabelValues("trips").Inc()
		l.log.Errorf("trip generation cycle failed: %v", err)
		return
	}
	itemFailures.WithLabelValues("trips").Add(float64(sum.SchedulesFailed))
	l.log.Infow("trip generation cycle", map[string]any{
		"schedules": sum.SchedulesProcessed,
		"trips":     sum.TripsGenerated,
		"failed":    sum.SchedulesFailed,
		"elapsed":   elapsed.String(),
	})
	if l.bus != nil {
		l.bus.Publish(events.CycleEvent{Loop: "trips", Processed: sum.SchedulesProcessed, Failed: sum.SchedulesFailed, Duration: elapsed})
	}
	if err := l.notifier.Publish(notify.Event{
		Kind:               notify.KindTripsGenerated,
		Timestamp:          l.now().UTC(),
		SchedulesProcessed: sum.SchedulesProcessed,
		TripsGenerated:     sum.TripsGenerated,
		SchedulesFailed:    sum.SchedulesFailed,
	}); err != nil {
		l.log.Warnf("trip summary notification: %v", err)
	}
}

// ReplacementLoop periodically resolves pending leave requests whose cached
// suggestion is missing or stale.
type ReplacementLoop struct {
	leaves   store.LeaveStore
	engine   *replacement.Engine
	cfg      Config
	notifier notify.Publisher
	bus      *eventbus.Bus[events.CycleEvent]
	log      logger.Logger
	now      func() time.Time
}

// NewReplacementLoop creates a ReplacementLoop. The notifier and bus may be nil.
func NewReplacementLoop(leaves store.LeaveStore, engine *replacement.Engine, cfg Config, notifier notify.Publisher, bus *eventbus.Bus[events.CycleEvent], log logger.Logger) *ReplacementLoop {
	cfg.SetDefaults()
	if notifier == nil {
		notifier = notify.NopPublisher{}
	}
	return &ReplacementLoop{leaves: leaves, engine: engine, cfg: cfg, notifier: notifier, bus: bus, log: log, now: time.Now}
}

// Run executes one cycle immediately, then on every tick until the context
// is cancelled.
func (l *ReplacementLoop) Run(ctx context.Context) {
	l.cycle(ctx)
	ticker := time.NewTicker(l.cfg.ReplacementPeriod())
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cycle(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// cycle selects a bounded batch of stale requests and processes them
// serially with an inter-item delay. One bad request never blocks its
// siblings; cancellation is only honored between items.
func (l *ReplacementLoop) cycle(ctx context.Context) {
	start := l.now()
	staleBefore := start.Add(-l.engine.Freshness())
	batch, err := l.leaves.PendingNeedingSuggestion(ctx, staleBefore, l.cfg.BatchSize)
	if err != nil {
		itemFailures.WithLabelValues("replacement").Inc()
		l.log.Errorf("replacement cycle: select batch: %v", err)
		return
	}

	processed, failed := 0, 0
	for i, leave := range batch {
		if i > 0 {
			select {
			case <-time.After(l.cfg.ItemDelay()):
			case <-ctx.Done():
				return
			}
		}
		if err := l.processItem(ctx, leave.ID); err != nil {
			failed++
			itemFailures.WithLabelValues("replacement").Inc()
			l.log.Errorf("leave %s: suggestion failed: %v", leave.ID, err)
			continue
		}
		processed++
	}

	elapsed := l.now().Sub(start)
	cyclesTotal.WithLabelValues("replacement").Inc()
	cycleDuration.WithLabelValues("replacement").Observe(elapsed.Seconds())
	if l.bus != nil {
		l.bus.Publish(events.CycleEvent{Loop: "replacement", Processed: processed, Failed: failed, Duration: elapsed})
	}
	if len(batch) > 0 {
		l.log.Infow("replacement cycle", map[string]any{
			"batch":     len(batch),
			"processed": processed,
			"failed":    failed,
		})
	}
}

// processItem runs the engine for one leave request and emits exactly one
// notification: best-suggestion-found or no-suggestion-available. The
// freshness marker written by the engine keeps restarted or overlapping runs
// from emitting duplicates.
func (l *ReplacementLoop) processItem(ctx context.Context, leaveID string) error {
	ranked, err := l.engine.SuggestFor(ctx, leaveID)
	if errors.Is(err, replacement.ErrNoCandidates) {
		leave, lookupErr := l.leaves.Leave(ctx, leaveID)
		if lookupErr != nil {
			return lookupErr
		}
		if pubErr := l.notifier.Publish(notify.Event{
			Kind:      notify.KindNoSuggestion,
			Timestamp: l.now().UTC(),
			LeaveID:   leaveID,
			DriverID:  leave.DriverID,
		}); pubErr != nil {
			l.log.Warnf("no-suggestion notification: %v", pubErr)
		}
		return nil
	}
	if err != nil {
		return err
	}
	leave, err := l.leaves.Leave(ctx, leaveID)
	if err != nil {
		return err
	}
	top := ranked[0]
	if pubErr := l.notifier.Publish(notify.Event{
		Kind:               notify.KindSuggestionFound,
		Timestamp:          l.now().UTC(),
		LeaveID:            leaveID,
		DriverID:           leave.DriverID,
		SuggestedDriverID:  top.DriverID,
		SuggestedVehicleID: top.VehicleID,
		Score:              top.Score,
	}); pubErr != nil {
		l.log.Warnf("suggestion notification: %v", pubErr)
	}
	return nil
}
