package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersAllMetrics(t *testing.T) {
	m := New()

	m.HTTPRequestsTotal.WithLabelValues("GET", "GET /health", "200").Inc()
	m.ObserveDatasetLoad(map[string]int{"trips": 42, "stops": 7}, 1500*time.Millisecond)
	m.ObserveVehicleResolution(12, 5*time.Millisecond)

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["fleetpulse_http_requests_total"])
	assert.True(t, names["fleetpulse_dataset_rows_loaded"])
	assert.True(t, names["fleetpulse_dataset_load_duration_seconds"])
	assert.True(t, names["fleetpulse_vehicle_resolution_duration_seconds"])
	assert.True(t, names["fleetpulse_vehicles_resolved"])
}

func TestObserveDatasetLoadSetsGauges(t *testing.T) {
	m := New()

	m.ObserveDatasetLoad(map[string]int{"trips": 42}, 2*time.Second)

	assert.Equal(t, 42.0, testutil.ToFloat64(m.DatasetRowsLoaded.WithLabelValues("trips")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DatasetLoadDuration))
}
