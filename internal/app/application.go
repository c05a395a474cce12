package app

import (
	"log/slog"

	"fleetpulse.opentransit.org/internal/appconf"
	"fleetpulse.opentransit.org/internal/clock"
	"fleetpulse.opentransit.org/internal/gtfs"
	"fleetpulse.opentransit.org/internal/metrics"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config      appconf.Config
	Logger      *slog.Logger
	GtfsManager *gtfs.Manager
	Clock       clock.Clock
	Metrics     *metrics.Metrics
}
