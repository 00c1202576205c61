package replacement

import (
	"math"

	"school-transport-service/core/model"
)

// Candidate is one driver/vehicle pair under evaluation, together with the
// facts the scorer needs.
type Candidate struct {
	Driver  model.Driver
	Vehicle model.Vehicle

	// NearbyAssignments counts the candidate's assignments in the week
	// around the leave window; more of them means more disruption when the
	// candidate is pulled in.
	NearbyAssignments int

	// TripStart and TripEnd bound the daily span of the affected trips.
	TripStart model.TimeOfDay
	TripEnd   model.TimeOfDay

	// RequiredSeats is the seat demand of the affected route.
	RequiredSeats int
}

// Scorer ranks replacement candidates. Higher is better. Implementations
// must be deterministic for identical inputs; ties are broken by the engine
// on candidate identifiers.
type Scorer interface {
	Score(c Candidate) float64
}

// Weights configures the relative importance of the scoring components.
type Weights struct {
	Disruption float64 `json:"disruption"`
	HoursFit   float64 `json:"hours_fit"`
	VehicleFit float64 `json:"vehicle_fit"`
}

// DefaultWeights returns the stock weighting.
func DefaultWeights() Weights {
	return Weights{Disruption: 0.5, HoursFit: 0.3, VehicleFit: 0.2}
}

// WeightedScorer combines schedule-disruption minimization, working-hour fit
// and vehicle compatibility into one score.
type WeightedScorer struct {
	Weights Weights
}

// NewWeightedScorer creates a WeightedScorer, falling back to the default
// weighting when every weight is zero.
func NewWeightedScorer(w Weights) *WeightedScorer {
	if w.Disruption == 0 && w.HoursFit == 0 && w.VehicleFit == 0 {
		w = DefaultWeights()
	}
	return &WeightedScorer{Weights: w}
}

// Score implements Scorer.
func (s *WeightedScorer) Score(c Candidate) float64 {
	score := s.Weights.Disruption*disruptionScore(c) +
		s.Weights.HoursFit*hoursFitScore(c) +
		s.Weights.VehicleFit*vehicleFitScore(c)
	if score < 0 {
		return 0
	}
	return score
}

// disruptionScore decays with the number of assignments the candidate
// already has around the window; a fully free driver scores 1.
func disruptionScore(c Candidate) float64 {
	return math.Exp(-float64(c.NearbyAssignments) / 3.0)
}

// hoursFitScore rewards slack between the trip span and the candidate's
// working hours, normalized against an eight-hour day.
func hoursFitScore(c Candidate) float64 {
	if !c.Driver.Hours.Covers(c.TripStart, c.TripEnd) {
		return 0
	}
	slack := float64(c.TripStart.Minutes()-c.Driver.Hours.Start.Minutes()) +
		float64(c.Driver.Hours.End.Minutes()-c.TripEnd.Minutes())
	fit := slack / 480.0
	if fit > 1 {
		fit = 1
	}
	return fit
}

// vehicleFitScore checks license class and seat capacity against the
// affected route.
func vehicleFitScore(c Candidate) float64 {
	fit := 0.0
	if c.Vehicle.LicenseClass == "" || c.Driver.LicenseClass == c.Vehicle.LicenseClass {
		fit += 0.7
	}
	if c.RequiredSeats == 0 || c.Vehicle.Seats >= c.RequiredSeats {
		fit += 0.3
	}
	return fit
}
