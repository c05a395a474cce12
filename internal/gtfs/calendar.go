package gtfs

import (
	"fmt"
	"regexp"
	"sort"
	"time"
)

var dateKeyPattern = regexp.MustCompile(`^\d{8}$`)

// ParseDateKey validates a YYYYMMDD date and returns its weekday in the
// proleptic Gregorian calendar at local-naive midnight. time.Weekday's
// Sunday = 0 numbering matches the order the calendar loader stores the
// weekday columns in, so the bit lookup below never drifts.
func ParseDateKey(date string) (time.Weekday, error) {
	if !dateKeyPattern.MatchString(date) {
		return 0, fmt.Errorf("bad date %q: want YYYYMMDD", date)
	}
	t, err := time.Parse("20060102", date)
	if err != nil {
		return 0, fmt.Errorf("bad date %q: %w", date, err)
	}
	return t.Weekday(), nil
}

// ActiveServiceIDs returns the sorted set of service IDs active on the
// given YYYYMMDD date: every calendar whose range covers the date with the
// date's weekday bit set, overlaid with that date's ADD and REMOVE
// exceptions.
func (ds *Dataset) ActiveServiceIDs(date string) ([]string, error) {
	weekday, err := ParseDateKey(date)
	if err != nil {
		return nil, err
	}

	active := make(map[string]bool)
	for id, cal := range ds.Calendars {
		// StartDate and EndDate are fixed-width YYYYMMDD, so the string
		// comparison is a date comparison.
		if date < cal.StartDate || date > cal.EndDate {
			continue
		}
		if cal.Weekday[weekday] {
			active[id] = true
		}
	}

	for _, exc := range ds.CalendarDates[date] {
		switch exc.Kind {
		case ExceptionAdd:
			active[exc.ServiceID] = true
		case ExceptionRemove:
			delete(active, exc.ServiceID)
		}
	}

	ids := make([]string, 0, len(active))
	for id := range active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// TripIDsOn returns the sorted trip IDs bound to the services active on the
// given date.
func (ds *Dataset) TripIDsOn(date string) ([]string, error) {
	services, err := ds.ActiveServiceIDs(date)
	if err != nil {
		return nil, err
	}

	tripIDs := []string{}
	for _, serviceID := range services {
		tripIDs = append(tripIDs, ds.TripsByService[serviceID]...)
	}
	sort.Strings(tripIDs)
	return tripIDs, nil
}
