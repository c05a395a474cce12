package restapi

import (
	"net/http"
	"strings"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"fleetpulse.opentransit.org/internal/gtfs"
)

type vehiclesAtResponse struct {
	Datetime     string                      `json:"datetime"`
	VehicleCount int                         `json:"vehicle_count"`
	Vehicles     map[string]*geojson.Feature `json:"vehicles"`
}

// vehicleFeature encodes one resolved position as a GeoJSON Point. The
// route property carries the full route object, or null when the trip
// references an unknown route.
func vehicleFeature(pos *gtfs.VehiclePosition, route *gtfs.Route) *geojson.Feature {
	feature := geojson.NewPointFeature([]float64{pos.Lon, pos.Lat})
	feature.ID = pos.TripID
	feature.SetProperty("trip_id", pos.TripID)
	feature.SetProperty("route", route)
	feature.SetProperty("shape_dist_traveled", pos.ShapeDist)
	feature.SetProperty("status", pos.Status)

	switch pos.Status {
	case gtfs.StatusAtStop:
		feature.SetProperty("stop_id", pos.StopID)
		feature.SetProperty("stop_name", pos.StopName)
	case gtfs.StatusInTransit:
		feature.SetProperty("from_stop_id", pos.FromStopID)
		feature.SetProperty("to_stop_id", pos.ToStopID)
	}
	return feature
}

// parseRouteFilter turns the routes query parameter into a set, or nil
// when the parameter is absent.
func parseRouteFilter(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	filter := make(map[string]bool)
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			filter[id] = true
		}
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}

func (api *RestAPI) vehiclesAtHandler(w http.ResponseWriter, r *http.Request) {
	datetime := r.PathValue("datetime")
	dateKey, seconds, err := gtfs.ParseDatetime(datetime)
	if err != nil {
		api.sendBadRequest(w, r, err.Error())
		return
	}

	ds, ok := api.dataset(w, r)
	if !ok {
		return
	}

	routeFilter := parseRouteFilter(r.URL.Query().Get("routes"))

	start := time.Now()
	positions, err := ds.VehiclesAt(dateKey, seconds, routeFilter)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	if api.Metrics != nil {
		api.Metrics.ObserveVehicleResolution(len(positions), time.Since(start))
	}

	vehicles := make(map[string]*geojson.Feature, len(positions))
	for tripID, pos := range positions {
		vehicles[tripID] = vehicleFeature(pos, ds.Routes[pos.RouteID])
	}

	api.sendResponse(w, r, vehiclesAtResponse{
		Datetime:     datetime,
		VehicleCount: len(vehicles),
		Vehicles:     vehicles,
	})
}
