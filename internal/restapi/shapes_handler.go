package restapi

import (
	"net/http"

	geojson "github.com/paulmach/go.geojson"
	"github.com/twpayne/go-polyline"

	"fleetpulse.opentransit.org/internal/gtfs"
)

// shapeFeature encodes one shape as a GeoJSON LineString. Coordinates are
// [lon, lat] per GeoJSON; the encodedPolyline property carries the same
// points in Google polyline encoding for clients that want a compact form.
func shapeFeature(shape *gtfs.Shape) *geojson.Feature {
	coords := make([][]float64, len(shape.Points))
	latLngs := make([][]float64, len(shape.Points))
	for i, pt := range shape.Points {
		coords[i] = []float64{pt.Lon, pt.Lat}
		latLngs[i] = []float64{pt.Lat, pt.Lon}
	}

	feature := geojson.NewLineStringFeature(coords)
	feature.ID = shape.ID
	feature.SetProperty("shape_id", shape.ID)
	feature.SetProperty("lengthMeters", shape.Length())
	feature.SetProperty("encodedPolyline", string(polyline.EncodeCoords(latLngs)))
	return feature
}

func (api *RestAPI) shapesHandler(w http.ResponseWriter, r *http.Request) {
	ds, ok := api.dataset(w, r)
	if !ok {
		return
	}

	fc := geojson.NewFeatureCollection()
	for _, id := range ds.ShapeIDs {
		fc.AddFeature(shapeFeature(ds.Shapes[id]))
	}
	api.sendResponse(w, r, fc)
}

func (api *RestAPI) shapeHandler(w http.ResponseWriter, r *http.Request) {
	ds, ok := api.dataset(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	shape, found := ds.Shapes[id]
	if !found {
		api.sendNotFound(w, r, "shape", id)
		return
	}
	api.sendResponse(w, r, shapeFeature(shape))
}
