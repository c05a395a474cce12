package restapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"fleetpulse.opentransit.org/internal/gtfs"
	"fleetpulse.opentransit.org/internal/logging"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, body any) {
	setJSONResponseType(w)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already out; all we can do is log.
		logging.LogError(api.Logger, "failed to encode response", err)
	}
}

func (api *RestAPI) sendError(w http.ResponseWriter, _ *http.Request, code int, message string) {
	setJSONResponseType(w)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: message}); err != nil {
		logging.LogError(api.Logger, "failed to encode error response", err)
	}
}

func (api *RestAPI) sendBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	api.sendError(w, r, http.StatusBadRequest, message)
}

func (api *RestAPI) sendNotFound(w http.ResponseWriter, r *http.Request, kind, id string) {
	api.sendError(w, r, http.StatusNotFound, fmt.Sprintf("%s %q not found", kind, id))
}

func (api *RestAPI) sendNotReady(w http.ResponseWriter, r *http.Request) {
	api.sendError(w, r, http.StatusServiceUnavailable, "dataset not ready")
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(api.Logger, "internal error", err,
		"request_id", GetRequestID(r.Context()),
		"path", r.URL.Path)
	api.sendError(w, r, http.StatusInternalServerError, "internal error")
}

// dataset fetches the installed dataset or answers 503 and returns false.
func (api *RestAPI) dataset(w http.ResponseWriter, r *http.Request) (*gtfs.Dataset, bool) {
	ds, err := api.GtfsManager.Dataset()
	if err != nil {
		if errors.Is(err, gtfs.ErrNotReady) {
			api.sendNotReady(w, r)
		} else {
			api.serverErrorResponse(w, r, err)
		}
		return nil, false
	}
	return ds, true
}

func setJSONResponseType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
}
