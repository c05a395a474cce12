package restapi

import "net/http"

func (api *RestAPI) routesHandler(w http.ResponseWriter, r *http.Request) {
	ds, ok := api.dataset(w, r)
	if !ok {
		return
	}

	routes := make([]any, 0, len(ds.RouteIDs))
	for _, id := range ds.RouteIDs {
		routes = append(routes, ds.Routes[id])
	}
	api.sendResponse(w, r, routes)
}

func (api *RestAPI) routeHandler(w http.ResponseWriter, r *http.Request) {
	ds, ok := api.dataset(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	route, found := ds.Routes[id]
	if !found {
		api.sendNotFound(w, r, "route", id)
		return
	}
	api.sendResponse(w, r, route)
}
