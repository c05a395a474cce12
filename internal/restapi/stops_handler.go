package restapi

import (
	"net/http"
	"strconv"

	geojson "github.com/paulmach/go.geojson"

	"fleetpulse.opentransit.org/internal/gtfs"
)

const (
	defaultNearbyRadiusMeters = 500.0
	maxNearbyRadiusMeters     = 10000.0
)

func stopFeature(stop *gtfs.Stop) *geojson.Feature {
	feature := geojson.NewPointFeature([]float64{stop.Lon, stop.Lat})
	feature.ID = stop.ID
	feature.SetProperty("stop_id", stop.ID)
	feature.SetProperty("stop_name", stop.Name)
	if stop.Code != "" {
		feature.SetProperty("stop_code", stop.Code)
	}
	if stop.Desc != "" {
		feature.SetProperty("stop_desc", stop.Desc)
	}
	return feature
}

func (api *RestAPI) stopsHandler(w http.ResponseWriter, r *http.Request) {
	ds, ok := api.dataset(w, r)
	if !ok {
		return
	}

	fc := geojson.NewFeatureCollection()
	for _, id := range ds.StopIDs {
		fc.AddFeature(stopFeature(ds.Stops[id]))
	}
	api.sendResponse(w, r, fc)
}

func (api *RestAPI) stopHandler(w http.ResponseWriter, r *http.Request) {
	ds, ok := api.dataset(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	stop, found := ds.Stops[id]
	if !found {
		api.sendNotFound(w, r, "stop", id)
		return
	}
	api.sendResponse(w, r, stopFeature(stop))
}

func (api *RestAPI) stopsNearbyHandler(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		api.sendBadRequest(w, r, "lat must be a number in [-90, 90]")
		return
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		api.sendBadRequest(w, r, "lon must be a number in [-180, 180]")
		return
	}

	radius := defaultNearbyRadiusMeters
	if v := r.URL.Query().Get("radius"); v != "" {
		radius, err = strconv.ParseFloat(v, 64)
		if err != nil || radius <= 0 {
			api.sendBadRequest(w, r, "radius must be a positive number of meters")
			return
		}
		if radius > maxNearbyRadiusMeters {
			radius = maxNearbyRadiusMeters
		}
	}

	stops, err := api.GtfsManager.StopsNear(lat, lon, radius)
	if err != nil {
		api.sendNotReady(w, r)
		return
	}

	fc := geojson.NewFeatureCollection()
	for _, stop := range stops {
		fc.AddFeature(stopFeature(stop))
	}
	api.sendResponse(w, r, fc)
}
