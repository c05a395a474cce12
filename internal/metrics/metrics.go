// Package metrics provides Prometheus metrics for the fleetpulse application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Dataset metrics
	DatasetRowsLoaded   *prometheus.GaugeVec
	DatasetLoadDuration prometheus.Gauge

	// Resolver metrics
	VehicleResolutionDuration prometheus.Histogram
	VehiclesResolved          prometheus.Histogram
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetpulse_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetpulse_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	datasetRowsLoaded := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleetpulse_dataset_rows_loaded",
			Help: "Rows loaded per feed table",
		},
		[]string{"table"},
	)

	datasetLoadDuration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleetpulse_dataset_load_duration_seconds",
		Help: "Wall-clock duration of the last dataset load",
	})

	vehicleResolutionDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleetpulse_vehicle_resolution_duration_seconds",
		Help:    "Latency of whole-fleet position resolution",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	vehiclesResolved := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleetpulse_vehicles_resolved",
		Help:    "Number of vehicles returned per position query",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	registry.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		datasetRowsLoaded,
		datasetLoadDuration,
		vehicleResolutionDuration,
		vehiclesResolved,
	)

	return &Metrics{
		Registry:                  registry,
		HTTPRequestsTotal:         httpRequestsTotal,
		HTTPRequestDuration:       httpRequestDuration,
		DatasetRowsLoaded:         datasetRowsLoaded,
		DatasetLoadDuration:       datasetLoadDuration,
		VehicleResolutionDuration: vehicleResolutionDuration,
		VehiclesResolved:          vehiclesResolved,
	}
}

// ObserveDatasetLoad records the table sizes and duration of a completed
// dataset load.
func (m *Metrics) ObserveDatasetLoad(counts map[string]int, elapsed time.Duration) {
	for table, n := range counts {
		m.DatasetRowsLoaded.WithLabelValues(table).Set(float64(n))
	}
	m.DatasetLoadDuration.Set(elapsed.Seconds())
}

// ObserveVehicleResolution records one whole-fleet position query.
func (m *Metrics) ObserveVehicleResolution(vehicles int, elapsed time.Duration) {
	m.VehicleResolutionDuration.Observe(elapsed.Seconds())
	m.VehiclesResolved.Observe(float64(vehicles))
}
