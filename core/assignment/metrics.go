package assignment

import "github.com/prometheus/client_golang/prometheus"

var conflictsDetected prometheus.Counter

// newCollectors creates new metric collectors.
func newCollectors() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_conflicts_detected_total",
		Help: "Number of overlapping assignment pairs reported by conflict scans",
	})
}

func init() {
	conflictsDetected = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers assignment metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(conflictsDetected)
}

// ResetMetrics reinitializes collectors for testing purposes and registers
// them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	conflictsDetected = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
