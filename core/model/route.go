package model

import "fmt"

// PickupPoint is one ordered stop on a route.
type PickupPoint struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Sequence  int     `json:"sequence"`
}

// Route describes a transport line with its ordered pickup points and the
// students registered on it.
type Route struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Stops         []PickupPoint `json:"stops"`
	StudentIDs    []string      `json:"student_ids"`
	RequiredSeats int           `json:"required_seats"`
}

// Validate checks the route is usable for trip generation.
func (r Route) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("route id is required")
	}
	if len(r.Stops) == 0 {
		return fmt.Errorf("route %s has no stops", r.ID)
	}
	prev := -1
	for _, s := range r.Stops {
		if s.Sequence <= prev {
			return fmt.Errorf("route %s: stop sequence not strictly increasing", r.ID)
		}
		prev = s.Sequence
	}
	return nil
}
