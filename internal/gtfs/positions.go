package gtfs

import (
	"fmt"
	"regexp"
	"runtime"
	"sync"
	"time"

	"fleetpulse.opentransit.org/internal/utils"
)

// Vehicle statuses reported by the position resolver.
const (
	StatusAtStop    = "at_stop"
	StatusInTransit = "in_transit"
)

// VehiclePosition describes where one trip's vehicle is at the queried
// instant.
type VehiclePosition struct {
	TripID    string
	RouteID   string
	Status    string
	Lat       float64
	Lon       float64
	ShapeDist float64

	// At-stop fields.
	StopID   string
	StopName string

	// In-transit fields.
	FromStopID string
	ToStopID   string
}

var datetimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`)

// ParseDatetime validates a naive YYYY-MM-DDTHH:MM:SS value and splits it
// into the service-date key and seconds since midnight of that date.
func ParseDatetime(s string) (dateKey string, seconds int, err error) {
	if !datetimePattern.MatchString(s) {
		return "", 0, fmt.Errorf("bad datetime %q: want YYYY-MM-DDTHH:MM:SS", s)
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return "", 0, fmt.Errorf("bad datetime %q: %w", s, err)
	}
	return t.Format("20060102"), t.Hour()*3600 + t.Minute()*60 + t.Second(), nil
}

// VehiclesAt computes the position of every vehicle in service at the given
// date and second-of-day, optionally restricted to a set of route IDs.
// Per-trip evaluation is pure reads over the immutable dataset, so trips
// are fanned out across a worker pool sized to core count.
func (ds *Dataset) VehiclesAt(dateKey string, seconds int, routeFilter map[string]bool) (map[string]*VehiclePosition, error) {
	tripIDs, err := ds.TripIDsOn(dateKey)
	if err != nil {
		return nil, err
	}

	candidates := make([]string, 0, len(tripIDs))
	for _, tripID := range tripIDs {
		trip := ds.Trips[tripID]
		if trip == nil || len(trip.StopTimes) == 0 {
			continue
		}
		if routeFilter != nil && !routeFilter[trip.RouteID] {
			continue
		}
		candidates = append(candidates, tripID)
	}

	vehicles := make(map[string]*VehiclePosition)
	if len(candidates) == 0 {
		return vehicles, nil
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > len(candidates) {
		numWorkers = len(candidates)
	}

	tripChan := make(chan string, numWorkers)
	resultChan := make(chan *VehiclePosition, numWorkers*2)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tripID := range tripChan {
				if pos := ds.resolveTrip(ds.Trips[tripID], seconds); pos != nil {
					resultChan <- pos
				}
			}
		}()
	}

	go func() {
		for _, tripID := range candidates {
			tripChan <- tripID
		}
		close(tripChan)
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for pos := range resultChan {
		vehicles[pos.TripID] = pos
	}

	return vehicles, nil
}

// resolveTrip locates one trip relative to the query second. Returns nil
// when the vehicle is not in service or its position cannot be derived.
//
// Seconds are matched against raw stop-time values: a trip timed past
// midnight (hours > 23) only matches queries framed in its originating
// service day, e.g. service day D with seconds > 86400, never day D+1 with
// a small t.
func (ds *Dataset) resolveTrip(trip *Trip, t int) *VehiclePosition {
	stopTimes := trip.StopTimes

	first := stopTimes[0].ArrivalSeconds
	last := stopTimes[len(stopTimes)-1].DepartureSeconds
	if t < first || t > last {
		return nil
	}

	// A vehicle dwelling at a stop takes precedence over in-transit
	// bracketing, including the zero-dwell case where a stop's window
	// touches its neighbor's.
	for i := range stopTimes {
		st := &stopTimes[i]
		if st.ArrivalSeconds <= t && t <= st.DepartureSeconds {
			stop := ds.Stops[st.StopID]
			if stop == nil {
				return nil
			}
			return &VehiclePosition{
				TripID:    trip.ID,
				RouteID:   trip.RouteID,
				Status:    StatusAtStop,
				Lat:       stop.Lat,
				Lon:       stop.Lon,
				ShapeDist: st.ShapeDist,
				StopID:    stop.ID,
				StopName:  stop.Name,
			}
		}
	}

	for i := 0; i < len(stopTimes)-1; i++ {
		from := &stopTimes[i]
		to := &stopTimes[i+1]
		if !(from.DepartureSeconds < t && t < to.ArrivalSeconds) {
			continue
		}

		timeRatio := float64(t-from.DepartureSeconds) /
			float64(to.ArrivalSeconds-from.DepartureSeconds)
		expectedDist := from.ShapeDist + timeRatio*(to.ShapeDist-from.ShapeDist)

		lat, lon, ok := ds.pointAtDistance(trip.ShapeID, expectedDist)
		if !ok {
			return nil
		}

		return &VehiclePosition{
			TripID:     trip.ID,
			RouteID:    trip.RouteID,
			Status:     StatusInTransit,
			Lat:        lat,
			Lon:        lon,
			ShapeDist:  expectedDist,
			FromStopID: from.StopID,
			ToStopID:   to.StopID,
		}
	}

	return nil
}

// pointAtDistance interpolates the point the given distance along a shape.
// The linear scan is deliberate: shapes run to hundreds of points and the
// scan beats maintaining per-trip acceleration structures.
func (ds *Dataset) pointAtDistance(shapeID string, dist float64) (lat, lon float64, ok bool) {
	shape := ds.Shapes[shapeID]
	if shape == nil || len(shape.Points) < 2 {
		return 0, 0, false
	}

	points := shape.Points
	for j := 0; j < len(points)-1; j++ {
		a := &points[j]
		b := &points[j+1]
		if !(a.CumulativeDistance <= dist && dist <= b.CumulativeDistance) {
			continue
		}

		span := b.CumulativeDistance - a.CumulativeDistance
		fraction := 0.0
		if span > 0 {
			fraction = (dist - a.CumulativeDistance) / span
		}
		lat, lon = utils.InterpolatePosition(a.Lat, a.Lon, b.Lat, b.Lon, fraction)
		return lat, lon, true
	}

	return 0, 0, false
}
