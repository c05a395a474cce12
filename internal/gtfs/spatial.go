package gtfs

import (
	"sort"

	"github.com/tidwall/rtree"

	"fleetpulse.opentransit.org/internal/utils"
)

// stopIndex is an R-tree over stop coordinates, built once alongside the
// dataset. Coordinates are indexed as (lon, lat) to match GeoJSON axis
// order.
type stopIndex struct {
	tree rtree.RTreeG[*Stop]
}

func buildStopIndex(ds *Dataset) *stopIndex {
	idx := &stopIndex{}
	for _, id := range ds.StopIDs {
		stop := ds.Stops[id]
		pt := [2]float64{stop.Lon, stop.Lat}
		idx.tree.Insert(pt, pt, stop)
	}
	return idx
}

// near returns the stops within radius meters of (lat, lon), ordered by
// distance, then ID for ties. The rtree search runs over the bounding box
// of the radius circle; exact haversine filtering happens afterwards.
func (idx *stopIndex) near(lat, lon, radius float64) []*Stop {
	bounds := utils.CalculateBounds(lat, lon, radius)

	type hit struct {
		stop *Stop
		dist float64
	}
	var hits []hit

	idx.tree.Search(
		[2]float64{bounds.MinLon, bounds.MinLat},
		[2]float64{bounds.MaxLon, bounds.MaxLat},
		func(_, _ [2]float64, stop *Stop) bool {
			d := utils.Haversine(lat, lon, stop.Lat, stop.Lon)
			if d <= radius {
				hits = append(hits, hit{stop: stop, dist: d})
			}
			return true
		})

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].stop.ID < hits[j].stop.ID
	})

	stops := make([]*Stop, len(hits))
	for i, h := range hits {
		stops[i] = h.stop
	}
	return stops
}
