package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Weekday mask: svc1 runs Mon-Fri, so it appears on a Friday and not on a
// Saturday (except via its ADD exception, covered below).
func TestServicesOnWeekday(t *testing.T) {
	api := newTestAPI(t)

	rec := serveRequest(t, api, "/services/on/20250103")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, "20250103", body["date"])
	assert.Equal(t, float64(2), body["service_count"])
	assert.ElementsMatch(t, []any{"svc1", "svc2"}, body["service_ids"])
}

// Exception overlay: ADD puts svc1 on a Saturday its mask excludes, REMOVE
// takes svc2 off a Friday its mask includes.
func TestServicesOnExceptions(t *testing.T) {
	api := newTestAPI(t)

	rec := serveRequest(t, api, "/services/on/20250104")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON(t, rec)
	assert.ElementsMatch(t, []any{"svc1", "svcSat"}, body["service_ids"])

	rec = serveRequest(t, api, "/services/on/20250110")
	require.Equal(t, http.StatusOK, rec.Code)

	body = decodeJSON(t, rec)
	assert.ElementsMatch(t, []any{"svc1"}, body["service_ids"])
}

func TestServicesOnBadDate(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{
		"/services/on/2025-01-03",
		"/services/on/2025010",
		"/services/on/abcdefgh",
	} {
		rec := serveRequest(t, api, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "path %s", path)

		body := decodeJSON(t, rec)
		assert.NotEmpty(t, body["error"], "path %s", path)
	}
}

func TestTripsOnDate(t *testing.T) {
	api := newTestAPI(t)

	rec := serveRequest(t, api, "/trips/on/20250103")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, "20250103", body["date"])
	assert.Equal(t, float64(5), body["trip_count"])
	assert.Equal(t, []any{"t1", "t2", "t3", "t5", "t6"}, body["trip_ids"])
}

// Every trip returned for a date belongs to a service returned for it.
func TestTripsOnBelongToActiveServices(t *testing.T) {
	api := newTestAPI(t)

	servicesRec := serveRequest(t, api, "/services/on/20250104")
	require.Equal(t, http.StatusOK, servicesRec.Code)
	servicesBody := decodeJSON(t, servicesRec)

	active := make(map[string]bool)
	for _, id := range servicesBody["service_ids"].([]any) {
		active[id.(string)] = true
	}

	tripsRec := serveRequest(t, api, "/trips/on/20250104")
	require.Equal(t, http.StatusOK, tripsRec.Code)
	tripsBody := decodeJSON(t, tripsRec)

	ds, err := api.GtfsManager.Dataset()
	require.NoError(t, err)

	tripIDs := tripsBody["trip_ids"].([]any)
	require.NotEmpty(t, tripIDs)
	for _, raw := range tripIDs {
		tripID := raw.(string)
		assert.True(t, active[ds.Trips[tripID].ServiceID],
			"trip %s must belong to an active service", tripID)
	}
}

func TestTripsOnBadDate(t *testing.T) {
	api := newTestAPI(t)

	rec := serveRequest(t, api, "/trips/on/20251")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
