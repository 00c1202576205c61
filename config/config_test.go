package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"school-transport-service/core/replacement"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadYAMLWithDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
mqtt:
  enabled: false
orchestrator:
  horizon_days: 14
replacement:
  freshness_minutes: 45
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Orchestrator.HorizonDays != 14 {
		t.Errorf("horizon_days = %d, want 14", cfg.Orchestrator.HorizonDays)
	}
	if cfg.Orchestrator.BatchSize != 3 {
		t.Errorf("batch_size default = %d, want 3", cfg.Orchestrator.BatchSize)
	}
	if cfg.Replacement.Freshness() != 45*time.Minute {
		t.Errorf("freshness = %s, want 45m", cfg.Replacement.Freshness())
	}
	if cfg.Replacement.Weights != replacement.DefaultWeights() {
		t.Errorf("weights default = %+v", cfg.Replacement.Weights)
	}
	if cfg.Metrics.PrometheusPort != ":9090" {
		t.Errorf("prometheus_port default = %q, want :9090", cfg.Metrics.PrometheusPort)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
  "orchestrator": {"trip_period_minutes": 60, "batch_size": 5},
  "replacement": {"weights": {"disruption": 0.6, "hours_fit": 0.2, "vehicle_fit": 0.2}}
}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Orchestrator.TripPeriod() != time.Hour {
		t.Errorf("trip period = %s, want 1h", cfg.Orchestrator.TripPeriod())
	}
	if cfg.Orchestrator.BatchSize != 5 {
		t.Errorf("batch_size = %d, want 5", cfg.Orchestrator.BatchSize)
	}
	if cfg.Replacement.Weights.Disruption != 0.6 {
		t.Errorf("disruption weight = %v, want 0.6", cfg.Replacement.Weights.Disruption)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", `
orchestrator:
  batch_size: 2
`)
	t.Setenv("ST_ORCHESTRATOR__BATCH_SIZE", "9")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Orchestrator.BatchSize != 9 {
		t.Errorf("env override ignored, batch_size = %d", cfg.Orchestrator.BatchSize)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "config.toml", "x = 1")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeFile(t, "config.yaml", `
replacement:
  freshness_minutes: -5
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for negative freshness")
	}
}

func TestDecodeFixturesJSON(t *testing.T) {
	fx, err := DecodeFixtures(strings.NewReader(`{
  "routes": [{
    "id": "r1", "name": "North loop",
    "stops": [
      {"id": "p1", "name": "Gate A", "sequence": 1},
      {"id": "p2", "name": "Market", "sequence": 2}
    ],
    "student_ids": ["stu1", "stu2"],
    "required_seats": 20
  }],
  "drivers": [{"id": "d1", "name": "A. Driver", "status": "active",
    "hours": {"start": {"hour": 5}, "end": {"hour": 18}}, "license_class": "D"}],
  "vehicles": [{"id": "v1", "plate": "B 1234 XY", "seats": 30, "route_id": "r1", "in_service": true}],
  "holidays": ["2024-03-11T00:00:00Z"],
  "schedules": [{
    "id": "s1", "name": "Morning run",
    "weekdays": [1, 4],
    "default_start": {"hour": 7, "minute": 30},
    "default_end": {"hour": 8, "minute": 15},
    "effective_from": "2024-03-01T00:00:00Z"
  }],
  "route_schedules": [{"id": "rs1", "route_id": "r1", "schedule_id": "s1",
    "active_from": "2024-03-01T00:00:00Z"}]
}`), "json")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(fx.Routes) != 1 || len(fx.Routes[0].Stops) != 2 {
		t.Fatalf("routes not decoded: %+v", fx.Routes)
	}
	if len(fx.Schedules) != 1 || len(fx.Schedules[0].Weekdays) != 2 {
		t.Fatalf("schedules not decoded: %+v", fx.Schedules)
	}
	if fx.Drivers[0].Hours.Start.Hour != 5 {
		t.Fatalf("driver hours not decoded: %+v", fx.Drivers[0])
	}
	if !fx.Holidays[0].Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("holiday not decoded: %v", fx.Holidays[0])
	}
}

func TestDecodeFixturesRejectsBadRoute(t *testing.T) {
	_, err := DecodeFixtures(strings.NewReader(`{
  "routes": [{
    "id": "r1",
    "stops": [
      {"id": "p1", "sequence": 2},
      {"id": "p2", "sequence": 1}
    ]
  }]
}`), "json")
	if err == nil {
		t.Fatal("expected error for out-of-order stop sequence")
	}
}

func TestDecodeFixturesUnsupportedFormat(t *testing.T) {
	if _, err := DecodeFixtures(strings.NewReader("x"), "toml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
