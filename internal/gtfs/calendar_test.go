package gtfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateKey(t *testing.T) {
	weekday, err := ParseDateKey("20250103")
	require.NoError(t, err)
	assert.Equal(t, time.Friday, weekday)

	weekday, err = ParseDateKey("20250104")
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, weekday)

	for _, bad := range []string{"", "2025-01-03", "2025010", "202501033", "abcdefgh", "20251301"} {
		_, err := ParseDateKey(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

// Weekday-mask services honor the calendar range and weekday bits.
func TestActiveServiceIDsWeekdayMask(t *testing.T) {
	ds := buildTestDataset(t)

	// Friday inside the range: both weekday services run.
	active, err := ds.ActiveServiceIDs("20250103")
	require.NoError(t, err)
	assert.Contains(t, active, "svc1")
	assert.Contains(t, active, "svc2")
	assert.NotContains(t, active, "svcSat")

	// Saturday: only the Saturday service runs by mask. svc1 appears
	// anyway because of its ADD exception on this date.
	active, err = ds.ActiveServiceIDs("20250104")
	require.NoError(t, err)
	assert.Contains(t, active, "svcSat")
	assert.NotContains(t, active, "svc2")
}

func TestActiveServiceIDsExceptions(t *testing.T) {
	ds := buildTestDataset(t)

	// ADD exception: svc1 is Mon-Fri but gains Saturday 2025-01-04.
	active, err := ds.ActiveServiceIDs("20250104")
	require.NoError(t, err)
	assert.Contains(t, active, "svc1")

	// REMOVE exception: svc2 loses Friday 2025-01-10.
	active, err = ds.ActiveServiceIDs("20250110")
	require.NoError(t, err)
	assert.NotContains(t, active, "svc2")
	assert.Contains(t, active, "svc1")
}

func TestActiveServiceIDsOutsideRange(t *testing.T) {
	ds := buildTestDataset(t)

	active, err := ds.ActiveServiceIDs("20241231")
	require.NoError(t, err)
	assert.Empty(t, active)

	active, err = ds.ActiveServiceIDs("20260101")
	require.NoError(t, err)
	assert.Empty(t, active)
}

// Exceptions overlay a purely in-memory calendar set; mirrors the weekday
// scenario with a REMOVE on the same service the mask activates.
func TestActiveServiceIDsRemoveOverridesMask(t *testing.T) {
	ds := newDataset()
	cal := &Calendar{
		ServiceID: "weekdays",
		StartDate: "20250101",
		EndDate:   "20251231",
	}
	for d := time.Monday; d <= time.Friday; d++ {
		cal.Weekday[d] = true
	}
	ds.Calendars["weekdays"] = cal
	ds.CalendarDates["20250103"] = []CalendarDate{
		{ServiceID: "weekdays", Date: "20250103", Kind: ExceptionRemove},
	}

	active, err := ds.ActiveServiceIDs("20250103")
	require.NoError(t, err)
	assert.Empty(t, active)

	active, err = ds.ActiveServiceIDs("20250106") // following Monday
	require.NoError(t, err)
	assert.Equal(t, []string{"weekdays"}, active)
}

// A Sunday-only calendar must activate on a Sunday: pins the Weekday array
// to time.Weekday's Sunday = 0 numbering.
func TestActiveServiceIDsSundayMapping(t *testing.T) {
	ds := newDataset()
	cal := &Calendar{
		ServiceID: "sundays",
		StartDate: "20250101",
		EndDate:   "20251231",
	}
	cal.Weekday[time.Sunday] = true
	ds.Calendars["sundays"] = cal

	active, err := ds.ActiveServiceIDs("20250105") // a Sunday
	require.NoError(t, err)
	assert.Equal(t, []string{"sundays"}, active)

	active, err = ds.ActiveServiceIDs("20250106") // the Monday after
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestTripIDsOn(t *testing.T) {
	ds := buildTestDataset(t)

	// Friday: all svc1 trips, none from svcSat.
	tripIDs, err := ds.TripIDsOn("20250103")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3", "t5", "t6"}, tripIDs)

	// Saturday: svcSat plus svc1 via its ADD exception.
	tripIDs, err = ds.TripIDsOn("20250104")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3", "t4", "t5", "t6"}, tripIDs)

	// Every trip on a date belongs to a service active on that date.
	services, err := ds.ActiveServiceIDs("20250104")
	require.NoError(t, err)
	activeSet := make(map[string]bool)
	for _, id := range services {
		activeSet[id] = true
	}
	for _, tripID := range tripIDs {
		assert.True(t, activeSet[ds.Trips[tripID].ServiceID],
			"trip %s service must be active", tripID)
	}
}
