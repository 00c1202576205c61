// Package directory defines the read-only collaborators the core consumes:
// route and pickup-point data, the academic calendar, and the personnel and
// fleet directories. Static in-memory implementations are provided for
// composition and tests; production deployments adapt their own sources.
package directory

import (
	"sort"
	"sync"
	"time"

	"school-transport-service/core/faults"
	"school-transport-service/core/model"
)

// RouteDirectory resolves routes and their ordered stop lists.
type RouteDirectory interface {
	Route(id string) (model.Route, error)
}

// AcademicCalendar reports school days. Dates outside any configured term
// are still school days unless explicitly marked as holidays.
type AcademicCalendar interface {
	IsSchoolDay(date time.Time) bool
}

// DriverDirectory resolves driver records and lists the active pool.
type DriverDirectory interface {
	Driver(id string) (model.Driver, error)
	ActiveDrivers() []model.Driver
}

// VehicleDirectory resolves fleet records.
type VehicleDirectory interface {
	Vehicle(id string) (model.Vehicle, error)
}

// SupervisorDirectory resolves supervisor records.
type SupervisorDirectory interface {
	Supervisor(id string) (model.Supervisor, error)
}

// StaticRoutes is a map-backed RouteDirectory.
type StaticRoutes struct {
	mu     sync.RWMutex
	routes map[string]model.Route
}

// NewStaticRoutes creates a StaticRoutes from the given routes.
func NewStaticRoutes(routes ...model.Route) *StaticRoutes {
	m := make(map[string]model.Route, len(routes))
	for _, r := range routes {
		m[r.ID] = r
	}
	return &StaticRoutes{routes: m}
}

// Route implements RouteDirectory.
func (s *StaticRoutes) Route(id string) (model.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.routes[id]
	if !ok {
		return model.Route{}, faults.NotFoundf("route %s", id)
	}
	return r, nil
}

// Put adds or replaces a route.
func (s *StaticRoutes) Put(r model.Route) {
	s.mu.Lock()
	s.routes[r.ID] = r
	s.mu.Unlock()
}

// HolidayCalendar is an AcademicCalendar backed by an explicit holiday set.
type HolidayCalendar struct {
	holidays map[time.Time]struct{}
}

// NewHolidayCalendar creates a calendar marking the given dates as holidays.
func NewHolidayCalendar(holidays ...time.Time) *HolidayCalendar {
	m := make(map[time.Time]struct{}, len(holidays))
	for _, h := range holidays {
		m[model.DateOf(h)] = struct{}{}
	}
	return &HolidayCalendar{holidays: m}
}

// IsSchoolDay implements AcademicCalendar.
func (c *HolidayCalendar) IsSchoolDay(date time.Time) bool {
	_, holiday := c.holidays[model.DateOf(date)]
	return !holiday
}

// StaticPersonnel is a map-backed driver, vehicle and supervisor directory.
type StaticPersonnel struct {
	mu          sync.RWMutex
	drivers     map[string]model.Driver
	vehicles    map[string]model.Vehicle
	supervisors map[string]model.Supervisor
}

// NewStaticPersonnel creates an empty StaticPersonnel.
func NewStaticPersonnel() *StaticPersonnel {
	return &StaticPersonnel{
		drivers:     map[string]model.Driver{},
		vehicles:    map[string]model.Vehicle{},
		supervisors: map[string]model.Supervisor{},
	}
}

// PutDriver adds or replaces a driver record.
func (s *StaticPersonnel) PutDriver(d model.Driver) {
	s.mu.Lock()
	s.drivers[d.ID] = d
	s.mu.Unlock()
}

// PutVehicle adds or replaces a vehicle record.
func (s *StaticPersonnel) PutVehicle(v model.Vehicle) {
	s.mu.Lock()
	s.vehicles[v.ID] = v
	s.mu.Unlock()
}

// PutSupervisor adds or replaces a supervisor record.
func (s *StaticPersonnel) PutSupervisor(sv model.Supervisor) {
	s.mu.Lock()
	s.supervisors[sv.ID] = sv
	s.mu.Unlock()
}

// Driver implements DriverDirectory.
func (s *StaticPersonnel) Driver(id string) (model.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drivers[id]
	if !ok {
		return model.Driver{}, faults.NotFoundf("driver %s", id)
	}
	return d, nil
}

// ActiveDrivers implements DriverDirectory. Results are sorted by ID so
// downstream ranking stays deterministic.
func (s *StaticPersonnel) ActiveDrivers() []model.Driver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Driver
	for _, d := range s.drivers {
		if d.Status == model.EmploymentActive {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Vehicle implements VehicleDirectory.
func (s *StaticPersonnel) Vehicle(id string) (model.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	if !ok {
		return model.Vehicle{}, faults.NotFoundf("vehicle %s", id)
	}
	return v, nil
}

// Supervisor implements SupervisorDirectory.
func (s *StaticPersonnel) Supervisor(id string) (model.Supervisor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sv, ok := s.supervisors[id]
	if !ok {
		return model.Supervisor{}, faults.NotFoundf("supervisor %s", id)
	}
	return sv, nil
}
