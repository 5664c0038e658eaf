package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// TelemetryUploadsTotal counts telemetry snapshot uploads by outcome.
	TelemetryUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetota_telemetry_uploads_total",
			Help: "Total number of telemetry snapshot uploads.",
		},
		[]string{"result"}, // result: success/failed
	)

	// SimulationTicksTotal counts completed fleet simulation iterations.
	SimulationTicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetota_simulation_ticks_total",
			Help: "Total number of completed fleet simulation iterations.",
		},
	)

	// AnalysisDuration observes how long one eligibility analysis pass takes.
	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleetota_analysis_duration_seconds",
			Help:    "Duration of fleet eligibility analysis passes.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(TelemetryUploadsTotal)
	prometheus.MustRegister(SimulationTicksTotal)
	prometheus.MustRegister(AnalysisDuration)
}
