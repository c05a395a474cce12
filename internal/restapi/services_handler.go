package restapi

import (
	"net/http"
	"regexp"
)

var datePathPattern = regexp.MustCompile(`^\d{8}$`)

type servicesOnResponse struct {
	Date         string   `json:"date"`
	ServiceCount int      `json:"service_count"`
	ServiceIDs   []string `json:"service_ids"`
}

type tripsOnResponse struct {
	Date      string   `json:"date"`
	TripCount int      `json:"trip_count"`
	TripIDs   []string `json:"trip_ids"`
}

func (api *RestAPI) servicesOnHandler(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if !datePathPattern.MatchString(date) {
		api.sendBadRequest(w, r, "date must be YYYYMMDD")
		return
	}

	ds, ok := api.dataset(w, r)
	if !ok {
		return
	}

	serviceIDs, err := ds.ActiveServiceIDs(date)
	if err != nil {
		api.sendBadRequest(w, r, err.Error())
		return
	}

	api.sendResponse(w, r, servicesOnResponse{
		Date:         date,
		ServiceCount: len(serviceIDs),
		ServiceIDs:   serviceIDs,
	})
}

func (api *RestAPI) tripsOnHandler(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if !datePathPattern.MatchString(date) {
		api.sendBadRequest(w, r, "date must be YYYYMMDD")
		return
	}

	ds, ok := api.dataset(w, r)
	if !ok {
		return
	}

	tripIDs, err := ds.TripIDsOn(date)
	if err != nil {
		api.sendBadRequest(w, r, err.Error())
		return
	}

	api.sendResponse(w, r, tripsOnResponse{
		Date:      date,
		TripCount: len(tripIDs),
		TripIDs:   tripIDs,
	})
}
