package gtfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"fleetpulse.opentransit.org/internal/blob"
	"fleetpulse.opentransit.org/internal/logging"
	"fleetpulse.opentransit.org/internal/metrics"
)

// ErrNotReady reports that the dataset has not finished loading.
var ErrNotReady = errors.New("gtfs: dataset not ready")

// Manager owns the dataset pointer. Load installs the dataset exactly once;
// afterwards every reader observes the same immutable snapshot without
// locking. Requests arriving before installation get ErrNotReady.
type Manager struct {
	source  blob.Source
	metrics *metrics.Metrics
	logger  *slog.Logger

	dataset atomic.Pointer[Dataset]
	spatial atomic.Pointer[stopIndex]
}

// NewManager creates a Manager reading from the given source. Metrics may
// be nil in tests.
func NewManager(source blob.Source, m *metrics.Metrics) *Manager {
	return &Manager{
		source:  source,
		metrics: m,
		logger:  slog.Default().With(slog.String("component", "gtfs_manager")),
	}
}

// Load builds the dataset and installs it. It must complete before the
// HTTP listener opens; a failure here is fatal to the process.
func (m *Manager) Load(ctx context.Context) error {
	start := time.Now()

	ds, err := NewBuilder(m.source).Build(ctx)
	if err != nil {
		return fmt.Errorf("gtfs: building dataset: %w", err)
	}

	m.spatial.Store(buildStopIndex(ds))
	m.dataset.Store(ds)

	elapsed := time.Since(start)
	if m.metrics != nil {
		m.metrics.ObserveDatasetLoad(ds.TableCounts(), elapsed)
	}

	logging.LogOperation(m.logger, "gtfs_dataset_installed",
		slog.Duration("duration", elapsed))

	return nil
}

// Dataset returns the installed dataset, or ErrNotReady before Load
// completes.
func (m *Manager) Dataset() (*Dataset, error) {
	ds := m.dataset.Load()
	if ds == nil {
		return nil, ErrNotReady
	}
	return ds, nil
}

// IsReady reports whether the dataset has been installed.
func (m *Manager) IsReady() bool {
	return m.dataset.Load() != nil
}

// StopsNear returns the stops within radius meters of (lat, lon), closest
// first. Returns ErrNotReady before the dataset is installed.
func (m *Manager) StopsNear(lat, lon, radius float64) ([]*Stop, error) {
	idx := m.spatial.Load()
	if idx == nil {
		return nil, ErrNotReady
	}
	return idx.near(lat, lon, radius), nil
}

// TableCounts returns per-table row counts for the health endpoint and
// load metrics.
func (ds *Dataset) TableCounts() map[string]int {
	return map[string]int{
		"shapes":         len(ds.Shapes),
		"stops":          len(ds.Stops),
		"routes":         len(ds.Routes),
		"trips":          len(ds.Trips),
		"stop_times":     ds.StopTimeCount,
		"calendar":       len(ds.Calendars),
		"calendar_dates": ds.calendarDateCount(),
	}
}

func (ds *Dataset) calendarDateCount() int {
	n := 0
	for _, excs := range ds.CalendarDates {
		n += len(excs)
	}
	return n
}
