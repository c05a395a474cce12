package gtfs

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"fleetpulse.opentransit.org/internal/blob"
	"fleetpulse.opentransit.org/internal/logging"
	"fleetpulse.opentransit.org/internal/tabular"
	"fleetpulse.opentransit.org/internal/utils"
)

// The feed tables, in load order. Later tables reference earlier ones.
const (
	fileShapes        = "shapes.txt"
	fileStops         = "stops.txt"
	fileRoutes        = "routes.txt"
	fileTrips         = "trips.txt"
	fileCalendar      = "calendar.txt"
	fileCalendarDates = "calendar_dates.txt"
	fileStopTimes     = "stop_times.txt"
)

// Builder ingests a GTFS feed from a blob source into a Dataset.
type Builder struct {
	source blob.Source
	logger *slog.Logger
}

// NewBuilder creates a Builder over the given source.
func NewBuilder(source blob.Source) *Builder {
	return &Builder{
		source: source,
		logger: slog.Default().With(slog.String("component", "gtfs_builder")),
	}
}

// Build loads every table and runs the geometric post-pass. Each table is
// optional: a missing file logs a warning and leaves the corresponding
// index empty. A table that exists but cannot be read or parsed fails the
// whole build; a half-read feed must never be served.
func (b *Builder) Build(ctx context.Context) (*Dataset, error) {
	ds := newDataset()

	loaders := []struct {
		file string
		load func(context.Context, *Dataset, *tabular.Reader) error
	}{
		{fileShapes, b.loadShapes},
		{fileStops, b.loadStops},
		{fileRoutes, b.loadRoutes},
		{fileTrips, b.loadTrips},
		{fileCalendar, b.loadCalendar},
		{fileCalendarDates, b.loadCalendarDates},
		{fileStopTimes, b.loadStopTimes},
	}

	for _, l := range loaders {
		exists, err := b.source.Exists(ctx, l.file)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", l.file, err)
		}
		if !exists {
			b.logger.Warn("feed_table_missing", slog.String("file", l.file))
			continue
		}

		stream, err := b.source.Open(ctx, l.file)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", l.file, err)
		}

		reader, err := tabular.NewReader(stream)
		if err != nil {
			logging.SafeCloseWithLogging(stream, b.logger, l.file)
			return nil, fmt.Errorf("parsing %s: %w", l.file, err)
		}

		err = l.load(ctx, ds, reader)
		logging.SafeCloseWithLogging(stream, b.logger, l.file)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", l.file, err)
		}
	}

	b.postProcess(ds)

	logging.LogOperation(b.logger, "gtfs_dataset_built",
		slog.Int("shapes", len(ds.Shapes)),
		slog.Int("stops", len(ds.Stops)),
		slog.Int("routes", len(ds.Routes)),
		slog.Int("trips", len(ds.Trips)),
		slog.Int("stop_times", ds.StopTimeCount),
		slog.Int("calendars", len(ds.Calendars)))

	return ds, nil
}

func (b *Builder) loadShapes(_ context.Context, ds *Dataset, r *tabular.Reader) error {
	return r.Each(func(rec tabular.Record) error {
		id := rec.Get("shape_id")
		if id == "" {
			return nil
		}

		lat, err := strconv.ParseFloat(rec.Get("shape_pt_lat"), 64)
		if err != nil {
			return fmt.Errorf("shape %s: bad shape_pt_lat %q", id, rec.Get("shape_pt_lat"))
		}
		lon, err := strconv.ParseFloat(rec.Get("shape_pt_lon"), 64)
		if err != nil {
			return fmt.Errorf("shape %s: bad shape_pt_lon %q", id, rec.Get("shape_pt_lon"))
		}
		seq, err := strconv.Atoi(rec.Get("shape_pt_sequence"))
		if err != nil {
			return fmt.Errorf("shape %s: bad shape_pt_sequence %q", id, rec.Get("shape_pt_sequence"))
		}

		shape, ok := ds.Shapes[id]
		if !ok {
			shape = &Shape{ID: id}
			ds.Shapes[id] = shape
			ds.ShapeIDs = append(ds.ShapeIDs, id)
		}
		shape.Points = append(shape.Points, ShapePoint{Lat: lat, Lon: lon, Sequence: seq})
		return nil
	})
}

func (b *Builder) loadStops(_ context.Context, ds *Dataset, r *tabular.Reader) error {
	return r.Each(func(rec tabular.Record) error {
		id := rec.Get("stop_id")
		if id == "" {
			return nil
		}

		lat, errLat := strconv.ParseFloat(rec.Get("stop_lat"), 64)
		lon, errLon := strconv.ParseFloat(rec.Get("stop_lon"), 64)
		if errLat != nil || errLon != nil {
			// Station entrances and generic nodes may omit coordinates;
			// they can never host a vehicle, so skip them.
			b.logger.Warn("stop_without_coordinates", slog.String("stop_id", id))
			return nil
		}

		if _, dup := ds.Stops[id]; !dup {
			ds.StopIDs = append(ds.StopIDs, id)
		}
		ds.Stops[id] = &Stop{
			ID:   id,
			Code: rec.Get("stop_code"),
			Name: rec.Get("stop_name"),
			Desc: rec.Get("stop_desc"),
			Lat:  lat,
			Lon:  lon,
		}
		return nil
	})
}

func (b *Builder) loadRoutes(_ context.Context, ds *Dataset, r *tabular.Reader) error {
	return r.Each(func(rec tabular.Record) error {
		id := rec.Get("route_id")
		if id == "" {
			return nil
		}

		routeType, err := strconv.Atoi(rec.Get("route_type"))
		if err != nil {
			routeType = -1
		}

		if _, dup := ds.Routes[id]; !dup {
			ds.RouteIDs = append(ds.RouteIDs, id)
		}
		ds.Routes[id] = &Route{
			ID:        id,
			ShortName: rec.Get("route_short_name"),
			LongName:  rec.Get("route_long_name"),
			Desc:      rec.Get("route_desc"),
			Type:      routeType,
			Color:     rec.Get("route_color"),
			TextColor: rec.Get("route_text_color"),
		}
		return nil
	})
}

func (b *Builder) loadTrips(_ context.Context, ds *Dataset, r *tabular.Reader) error {
	return r.Each(func(rec tabular.Record) error {
		id := rec.Get("trip_id")
		if id == "" {
			return nil
		}

		trip := &Trip{
			ID:        id,
			RouteID:   rec.Get("route_id"),
			ServiceID: rec.Get("service_id"),
			ShapeID:   rec.Get("shape_id"),
			Headsign:  rec.Get("trip_headsign"),
			Direction: rec.Get("direction_id"),
		}

		if _, dup := ds.Trips[id]; !dup {
			ds.TripIDs = append(ds.TripIDs, id)
		}
		ds.Trips[id] = trip
		if trip.ServiceID != "" {
			ds.TripsByService[trip.ServiceID] = append(ds.TripsByService[trip.ServiceID], id)
		}
		return nil
	})
}

func (b *Builder) loadCalendar(_ context.Context, ds *Dataset, r *tabular.Reader) error {
	// Column order follows GTFS: monday..sunday. The Weekday array is
	// indexed by time.Weekday, so Sunday lands in slot 0.
	days := []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

	return r.Each(func(rec tabular.Record) error {
		id := rec.Get("service_id")
		if id == "" {
			return nil
		}

		cal := &Calendar{
			ServiceID: id,
			StartDate: rec.Get("start_date"),
			EndDate:   rec.Get("end_date"),
		}
		for i, day := range days {
			cal.Weekday[i] = rec.Get(day) == "1"
		}

		if len(cal.StartDate) != 8 || len(cal.EndDate) != 8 {
			return fmt.Errorf("calendar %s: bad date range %q..%q", id, cal.StartDate, cal.EndDate)
		}
		if cal.StartDate > cal.EndDate {
			return fmt.Errorf("calendar %s: start_date %s after end_date %s", id, cal.StartDate, cal.EndDate)
		}

		ds.Calendars[id] = cal
		return nil
	})
}

func (b *Builder) loadCalendarDates(_ context.Context, ds *Dataset, r *tabular.Reader) error {
	return r.Each(func(rec tabular.Record) error {
		id := rec.Get("service_id")
		date := rec.Get("date")
		if id == "" || date == "" {
			return nil
		}

		kind, err := strconv.Atoi(rec.Get("exception_type"))
		if err != nil || (kind != ExceptionAdd && kind != ExceptionRemove) {
			return fmt.Errorf("calendar_dates %s/%s: bad exception_type %q", id, date, rec.Get("exception_type"))
		}

		ds.CalendarDates[date] = append(ds.CalendarDates[date], CalendarDate{
			ServiceID: id,
			Date:      date,
			Kind:      kind,
		})
		return nil
	})
}

func (b *Builder) loadStopTimes(_ context.Context, ds *Dataset, r *tabular.Reader) error {
	count := 0
	err := r.Each(func(rec tabular.Record) error {
		tripID := rec.Get("trip_id")
		trip, ok := ds.Trips[tripID]
		if !ok {
			// Dangling references are tolerated; the trip simply never
			// produces a vehicle.
			return nil
		}

		seq, err := strconv.Atoi(rec.Get("stop_sequence"))
		if err != nil {
			return fmt.Errorf("stop_times %s: bad stop_sequence %q", tripID, rec.Get("stop_sequence"))
		}
		arrival, err := ParseTime(rec.Get("arrival_time"))
		if err != nil {
			return fmt.Errorf("stop_times %s/%d: %w", tripID, seq, err)
		}
		departure, err := ParseTime(rec.Get("departure_time"))
		if err != nil {
			return fmt.Errorf("stop_times %s/%d: %w", tripID, seq, err)
		}

		trip.StopTimes = append(trip.StopTimes, StopTime{
			StopID:           rec.Get("stop_id"),
			StopSequence:     seq,
			ArrivalSeconds:   arrival,
			DepartureSeconds: departure,
		})
		count++
		return nil
	})
	ds.StopTimeCount = count
	return err
}

// ParseTime converts a GTFS HH:MM:SS value to seconds since local midnight.
// Hours may exceed 23 for trips running past midnight.
func ParseTime(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("bad time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, fmt.Errorf("bad time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad time %q", s)
	}
	sec, err := strconv.Atoi(parts[2])
	if err != nil || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("bad time %q", s)
	}
	return h*3600 + m*60 + sec, nil
}

// postProcess sorts sequences and derives the distance system: cumulative
// haversine sums per shape, then a shape distance for every stop time.
func (b *Builder) postProcess(ds *Dataset) {
	for _, shape := range ds.Shapes {
		sort.Slice(shape.Points, func(i, j int) bool {
			return shape.Points[i].Sequence < shape.Points[j].Sequence
		})

		for i := range shape.Points {
			if i == 0 {
				shape.Points[0].CumulativeDistance = 0
				continue
			}
			prev := shape.Points[i-1]
			cur := &shape.Points[i]
			cur.CumulativeDistance = prev.CumulativeDistance +
				utils.Haversine(prev.Lat, prev.Lon, cur.Lat, cur.Lon)
		}
	}

	for _, trip := range ds.Trips {
		sort.Slice(trip.StopTimes, func(i, j int) bool {
			return trip.StopTimes[i].StopSequence < trip.StopTimes[j].StopSequence
		})
		b.deriveStopDistances(ds, trip)
	}

	for _, trips := range ds.TripsByService {
		sort.Strings(trips)
	}
}

// deriveStopDistances assigns each stop time a distance in the shape's
// cumulative system. With a usable shape, each stop snaps to the cumulative
// distance of the geographically closest shape point (lowest index wins
// ties). Without one, distances fall back to the running stop-to-stop
// haversine chain.
func (b *Builder) deriveStopDistances(ds *Dataset, trip *Trip) {
	shape := ds.Shapes[trip.ShapeID]

	if shape != nil && len(shape.Points) > 0 {
		for i := range trip.StopTimes {
			st := &trip.StopTimes[i]
			stop := ds.Stops[st.StopID]
			if stop == nil {
				if i > 0 {
					st.ShapeDist = trip.StopTimes[i-1].ShapeDist
				}
				continue
			}

			best := math.Inf(1)
			for _, pt := range shape.Points {
				d := utils.Haversine(stop.Lat, stop.Lon, pt.Lat, pt.Lon)
				if d < best {
					best = d
					st.ShapeDist = pt.CumulativeDistance
				}
			}
		}
		return
	}

	var prev *Stop
	dist := 0.0
	for i := range trip.StopTimes {
		st := &trip.StopTimes[i]
		stop := ds.Stops[st.StopID]
		if stop == nil {
			st.ShapeDist = dist
			continue
		}
		if prev != nil {
			dist += utils.Haversine(prev.Lat, prev.Lon, stop.Lat, stop.Lon)
		}
		st.ShapeDist = dist
		prev = stop
	}
}
