package orchestrator

import "github.com/prometheus/client_golang/prometheus"

var (
	cyclesTotal   *prometheus.CounterVec
	itemFailures  *prometheus.CounterVec
	cycleDuration *prometheus.HistogramVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.HistogramVec) {
	cycles := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orchestrator_cycles_total",
			Help: "Number of completed orchestrator cycles",
		},
		[]string{"loop"},
	)
	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orchestrator_item_failures_total",
			Help: "Number of failed items across orchestrator cycles",
		},
		[]string{"loop"},
	)
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orchestrator_cycle_duration_seconds",
			Help:    "Duration of orchestrator cycles",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"loop"},
	)
	return cycles, failures, dur
}

func init() {
	cyclesTotal, itemFailures, cycleDuration = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers orchestrator metrics on the provided
// registry. If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(cyclesTotal, itemFailures, cycleDuration)
}

// ResetMetrics reinitializes collectors for testing purposes and registers
// them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	cyclesTotal, itemFailures, cycleDuration = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
