package model

// EmploymentStatus of a driver or supervisor in the personnel directory.
type EmploymentStatus int

const (
	EmploymentActive EmploymentStatus = iota
	EmploymentSuspended
	EmploymentTerminated
)

// String returns a human-readable representation of the status.
func (s EmploymentStatus) String() string {
	switch s {
	case EmploymentActive:
		return "active"
	case EmploymentSuspended:
		return "suspended"
	case EmploymentTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// WorkingHours is the daily availability window of a driver.
type WorkingHours struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Covers reports whether [start, end] falls inside the working hours.
func (w WorkingHours) Covers(start, end TimeOfDay) bool {
	return !start.Before(w.Start) && !w.End.Before(end)
}

// Driver is the read-only personnel directory record for a driver.
type Driver struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Status       EmploymentStatus `json:"status"`
	Hours        WorkingHours     `json:"hours"`
	LicenseClass string           `json:"license_class"`
}

// Supervisor is the read-only personnel directory record for a supervisor.
type Supervisor struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Status EmploymentStatus `json:"status"`
}

// Vehicle is the read-only fleet directory record for a bus.
type Vehicle struct {
	ID            string `json:"id"`
	Plate         string `json:"plate"`
	Seats         int    `json:"seats"`
	LicenseClass  string `json:"license_class"` // class required to drive it
	RouteID       string `json:"route_id,omitempty"`
	InService     bool   `json:"in_service"`
}
