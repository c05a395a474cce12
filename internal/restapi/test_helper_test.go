// test_helper_test.go contains shared utilities for building a fully loaded API
// over the fixture feed and decoding JSON responses in handler tests.
package restapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fleetpulse.opentransit.org/internal/app"
	"fleetpulse.opentransit.org/internal/appconf"
	"fleetpulse.opentransit.org/internal/blob"
	"fleetpulse.opentransit.org/internal/clock"
	"fleetpulse.opentransit.org/internal/gtfs"
	"fleetpulse.opentransit.org/internal/metrics"
)

// newTestAPI builds an API over the fixture feed with the dataset loaded.
func newTestAPI(t *testing.T) *RestAPI {
	t.Helper()
	return newTestAPIWithManager(t, loadedTestManager(t))
}

func loadedTestManager(t *testing.T) *gtfs.Manager {
	t.Helper()

	source, err := blob.NewDirSource("testdata/feed")
	require.NoError(t, err)

	manager := gtfs.NewManager(source, nil)
	require.NoError(t, manager.Load(context.Background()))
	return manager
}

func newTestAPIWithManager(t *testing.T, manager *gtfs.Manager) *RestAPI {
	t.Helper()

	application := &app.Application{
		Config: appconf.Config{
			Env:      appconf.Test,
			Port:     8080,
			BlobMode: appconf.BlobModeLocal,
			DataRoot: "testdata",
			FeedName: "feed",
		},
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		GtfsManager: manager,
		Clock:       clock.NewMockClock(time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC)),
		Metrics:     metrics.New(),
	}

	return New(application)
}

// serveRequest runs one GET through the full middleware chain.
func serveRequest(t *testing.T, api *RestAPI, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	return rec
}

// decodeJSON unmarshals the recorder body into a generic map.
func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body),
		"body was: %s", rec.Body.String())
	return body
}

// decodeJSONList unmarshals the recorder body into a generic list.
func decodeJSONList(t *testing.T, rec *httptest.ResponseRecorder) []any {
	t.Helper()

	var body []any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body),
		"body was: %s", rec.Body.String())
	return body
}
