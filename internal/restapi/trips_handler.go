package restapi

import "net/http"

func (api *RestAPI) tripsHandler(w http.ResponseWriter, r *http.Request) {
	ds, ok := api.dataset(w, r)
	if !ok {
		return
	}

	trips := make([]any, 0, len(ds.TripIDs))
	for _, id := range ds.TripIDs {
		trips = append(trips, ds.Trips[id])
	}
	api.sendResponse(w, r, trips)
}

func (api *RestAPI) tripHandler(w http.ResponseWriter, r *http.Request) {
	ds, ok := api.dataset(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	trip, found := ds.Trips[id]
	if !found {
		api.sendNotFound(w, r, "trip", id)
		return
	}
	api.sendResponse(w, r, trip)
}
