package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutesHandlerReturnsArray(t *testing.T) {
	api := newTestAPI(t)

	rec := serveRequest(t, api, "/routes")
	require.Equal(t, http.StatusOK, rec.Code)

	routes := decodeJSONList(t, rec)
	require.Len(t, routes, 2)

	first, ok := routes[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "r1", first["route_id"])
}

func TestRouteHandlerReturnsObject(t *testing.T) {
	api := newTestAPI(t)

	rec := serveRequest(t, api, "/routes/r2")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, "r2", body["route_id"])
	assert.Equal(t, "Crosstown Express", body["route_long_name"])
	assert.Equal(t, float64(1), body["route_type"])
	assert.Equal(t, "00FF00", body["route_color"])
}

func TestRouteHandlerUnknownID(t *testing.T) {
	api := newTestAPI(t)

	rec := serveRequest(t, api, "/routes/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, `route "nope" not found`, body["error"])
}
