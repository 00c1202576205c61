package orchestrator

import (
	"fmt"
	"time"
)

// Config defines the timing of the background loops.
type Config struct {
	// TripPeriodMinutes is the interval between trip generation cycles.
	TripPeriodMinutes int `json:"trip_period_minutes"`
	// HorizonDays is the rolling generation horizon from today.
	HorizonDays int `json:"horizon_days"`
	// ReplacementPeriodMinutes is the interval between suggestion cycles.
	ReplacementPeriodMinutes int `json:"replacement_period_minutes"`
	// BatchSize caps the leave requests processed per suggestion cycle.
	BatchSize int `json:"batch_size"`
	// ItemDelayMS is the pause between items within a cycle.
	ItemDelayMS int `json:"item_delay_ms"`
}

// SetDefaults applies the stock cadence: trips every six hours over a
// seven-day horizon, suggestions every thirty minutes in batches of three.
func (c *Config) SetDefaults() {
	if c.TripPeriodMinutes == 0 {
		c.TripPeriodMinutes = 6 * 60
	}
	if c.HorizonDays == 0 {
		c.HorizonDays = 7
	}
	if c.ReplacementPeriodMinutes == 0 {
		c.ReplacementPeriodMinutes = 30
	}
	if c.BatchSize == 0 {
		c.BatchSize = 3
	}
	if c.ItemDelayMS == 0 {
		c.ItemDelayMS = 500
	}
}

// Validate checks the cadence is usable.
func (c Config) Validate() error {
	if c.TripPeriodMinutes < 0 || c.ReplacementPeriodMinutes < 0 {
		return fmt.Errorf("periods must not be negative")
	}
	if c.HorizonDays < 0 {
		return fmt.Errorf("horizon_days must not be negative")
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch_size must not be negative")
	}
	return nil
}

// TripPeriod returns the trip loop period as a duration.
func (c Config) TripPeriod() time.Duration {
	return time.Duration(c.TripPeriodMinutes) * time.Minute
}

// ReplacementPeriod returns the replacement loop period as a duration.
func (c Config) ReplacementPeriod() time.Duration {
	return time.Duration(c.ReplacementPeriodMinutes) * time.Minute
}

// ItemDelay returns the inter-item delay as a duration.
func (c Config) ItemDelay() time.Duration {
	return time.Duration(c.ItemDelayMS) * time.Millisecond
}
