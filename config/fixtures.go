package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"school-transport-service/core/model"
)

// Fixtures is the seed data for directories, schedules and route bindings.
// Single-process deployments load it at startup; production deployments
// adapt their own directory sources instead.
type Fixtures struct {
	Routes         []model.Route         `json:"routes" yaml:"routes"`
	Drivers        []model.Driver        `json:"drivers" yaml:"drivers"`
	Vehicles       []model.Vehicle       `json:"vehicles" yaml:"vehicles"`
	Supervisors    []model.Supervisor    `json:"supervisors" yaml:"supervisors"`
	Holidays       []time.Time           `json:"holidays" yaml:"holidays"`
	Schedules      []model.Schedule      `json:"schedules" yaml:"schedules"`
	RouteSchedules []model.RouteSchedule `json:"route_schedules" yaml:"route_schedules"`
}

// LoadFixtures loads Fixtures from a JSON or YAML file.
func LoadFixtures(path string) (Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fixtures{}, err
	}
	defer f.Close()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeFixtures(f, ext)
}

// DecodeFixtures reads from r to decode Fixtures.
func DecodeFixtures(r io.Reader, format string) (Fixtures, error) {
	var fx Fixtures
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		if err := dec.Decode(&fx); err != nil {
			return fx, err
		}
	case "json":
		dec := json.NewDecoder(r)
		if err := dec.Decode(&fx); err != nil {
			return fx, err
		}
	default:
		return fx, fmt.Errorf("unsupported fixtures format: %s", format)
	}
	for _, route := range fx.Routes {
		if err := route.Validate(); err != nil {
			return fx, err
		}
	}
	for _, sched := range fx.Schedules {
		if err := sched.Validate(); err != nil {
			return fx, err
		}
	}
	return fx, nil
}
