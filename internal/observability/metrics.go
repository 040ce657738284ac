package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the gateway.
type Metrics struct {
	SimulationsTotal    *prometheus.CounterVec // labels: outcome={success,domain_error,system_error}
	ValidationFailures  prometheus.Counter
	SimulationDuration  prometheus.Histogram
	SimulationsInFlight prometheus.Gauge

	// Temporary raster housekeeping.
	TempCleanupFailures prometheus.Counter
	TempFilesSwept      prometheus.Counter

	EventsPublished *prometheus.CounterVec // labels: result={ok,error}
}

// NewMetrics creates and registers all gateway metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SimulationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_gateway",
			Name:      "simulations_total",
			Help:      "Engine runs by classified outcome.",
		}, []string{"outcome"}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_gateway",
			Name:      "validation_failures_total",
			Help:      "Requests rejected before the engine was started.",
		}),
		SimulationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_gateway",
			Name:      "simulation_duration_seconds",
			Help:      "Wall-clock duration of one engine subprocess.",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		SimulationsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_gateway",
			Name:      "simulations_in_flight",
			Help:      "Engine subprocesses currently running.",
		}),
		TempCleanupFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_gateway",
			Name:      "temp_cleanup_failures_total",
			Help:      "Temporary output rasters that could not be removed after a run.",
		}),
		TempFilesSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_gateway",
			Name:      "temp_files_swept_total",
			Help:      "Orphaned temporary rasters removed by the sweeper.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_gateway",
			Name:      "events_published_total",
			Help:      "Simulation outcome events by publish result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.SimulationsTotal,
		m.ValidationFailures,
		m.SimulationDuration,
		m.SimulationsInFlight,
		m.TempCleanupFailures,
		m.TempFilesSwept,
		m.EventsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		SimulationsTotal:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "flood_gateway", Name: "simulations_total"}, []string{"outcome"}),
		ValidationFailures:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_gateway", Name: "validation_failures_total"}),
		SimulationDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "flood_gateway", Name: "simulation_duration_seconds"}),
		SimulationsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "flood_gateway", Name: "simulations_in_flight"}),
		TempCleanupFailures: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_gateway", Name: "temp_cleanup_failures_total"}),
		TempFilesSwept:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_gateway", Name: "temp_files_swept_total"}),
		EventsPublished:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "flood_gateway", Name: "events_published_total"}, []string{"result"}),
	}
}
