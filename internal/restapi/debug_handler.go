package restapi

import (
	"fmt"
	"net/http"

	"github.com/davecgh/go-spew/spew"
)

// debugDatasetHandler dumps a dataset summary. Only routed in the
// development environment.
func (api *RestAPI) debugDatasetHandler(w http.ResponseWriter, r *http.Request) {
	ds, err := api.GtfsManager.Dataset()
	if err != nil {
		api.sendNotReady(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "table counts:\n")
	spew.Fdump(w, ds.TableCounts())

	// Dumping whole tables would be megabytes; a sample per table is
	// enough to eyeball parsing problems.
	if len(ds.TripIDs) > 0 {
		trip := ds.Trips[ds.TripIDs[0]]
		fmt.Fprintf(w, "\nsample trip %s (%d stop times):\n", trip.ID, len(trip.StopTimes))
		spew.Fdump(w, trip)
	}
	if len(ds.ShapeIDs) > 0 {
		shape := ds.Shapes[ds.ShapeIDs[0]]
		fmt.Fprintf(w, "\nsample shape %s (%d points, %.1f m):\n", shape.ID, len(shape.Points), shape.Length())
		points := shape.Points
		if len(points) > 5 {
			points = points[:5]
		}
		spew.Fdump(w, points)
	}
}
