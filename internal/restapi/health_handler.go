package restapi

import (
	"encoding/json"
	"net/http"
)

// HealthResponse represents the JSON response from the health endpoint.
type HealthResponse struct {
	Status              string `json:"status"`
	ShapesLoaded        int    `json:"shapesLoaded"`
	StopsLoaded         int    `json:"stopsLoaded"`
	RoutesLoaded        int    `json:"routesLoaded"`
	TripsLoaded         int    `json:"tripsLoaded"`
	StopTimesLoaded     int    `json:"stopTimesLoaded"`
	CalendarLoaded      int    `json:"calendarLoaded"`
	CalendarDatesLoaded int    `json:"calendarDatesLoaded"`
}

// healthHandler reports readiness and the per-table row counts of the
// installed dataset. It returns 503 until the dataset is installed.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	ds, err := api.GtfsManager.Dataset()
	if err != nil {
		api.sendNotReady(w, r)
		return
	}

	setJSONResponseType(w)
	counts := ds.TableCounts()
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status:              "ok",
		ShapesLoaded:        counts["shapes"],
		StopsLoaded:         counts["stops"],
		RoutesLoaded:        counts["routes"],
		TripsLoaded:         counts["trips"],
		StopTimesLoaded:     counts["stop_times"],
		CalendarLoaded:      counts["calendar"],
		CalendarDatesLoaded: counts["calendar_dates"],
	})
}
