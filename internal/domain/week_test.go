package domain

import (
	"testing"
	"time"
)

func TestWeekStartAlwaysMonday(t *testing.T) {
	// 2025-10-20 is a Monday.
	monday := time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC)

	for day := 0; day < 7; day++ {
		ts := monday.AddDate(0, 0, day).Add(13*time.Hour + 37*time.Minute)
		start := WeekStart(ts)

		if start.Weekday() != time.Monday {
			t.Fatalf("weekday offset %d: expected Monday, got %s", day, start.Weekday())
		}
		if !start.Equal(monday) {
			t.Fatalf("weekday offset %d: expected %s, got %s", day, monday, start)
		}
		if ts.Before(start) || !ts.Before(start.AddDate(0, 0, 7)) {
			t.Fatalf("timestamp %s outside its own week [%s, +7d)", ts, start)
		}
	}
}

func TestWeekStartSundayMapsBackSixDays(t *testing.T) {
	sunday := time.Date(2025, time.October, 26, 23, 59, 59, 0, time.UTC)
	want := time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC)
	if got := WeekStart(sunday); !got.Equal(want) {
		t.Fatalf("expected %s got %s", want, got)
	}
}

func TestWeekStartIsIdempotentOnMonday(t *testing.T) {
	monday := time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC)
	if got := WeekStart(monday); !got.Equal(monday) {
		t.Fatalf("expected %s got %s", monday, got)
	}
}

func TestWeekStartNormalizesZones(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*60*60)
	// 02:00 Monday in UTC+5 is still Sunday in UTC.
	local := time.Date(2025, time.October, 20, 2, 0, 0, 0, zone)
	want := time.Date(2025, time.October, 13, 0, 0, 0, 0, time.UTC)
	if got := WeekStart(local); !got.Equal(want) {
		t.Fatalf("expected %s got %s", want, got)
	}
}

func TestWeekEndIsLastInstantOfSunday(t *testing.T) {
	start := time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC)
	end := WeekEnd(start)
	if end.Weekday() != time.Sunday {
		t.Fatalf("expected Sunday got %s", end.Weekday())
	}
	if !end.Add(time.Nanosecond).Equal(start.AddDate(0, 0, 7)) {
		t.Fatalf("week end %s does not abut the next week", end)
	}
}

func TestPreviousWeek(t *testing.T) {
	start := time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC)
	want := time.Date(2025, time.October, 13, 0, 0, 0, 0, time.UTC)
	if got := PreviousWeek(start); !got.Equal(want) {
		t.Fatalf("expected %s got %s", want, got)
	}
}

func TestIsCurrentWeek(t *testing.T) {
	now := time.Date(2025, time.October, 23, 9, 30, 0, 0, time.UTC)
	current := time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC)

	if !IsCurrentWeek(current, now) {
		t.Fatal("expected the enclosing week to be current")
	}
	if IsCurrentWeek(PreviousWeek(current), now) {
		t.Fatal("previous week reported as current")
	}
}

func TestTimeWindowContains(t *testing.T) {
	start := time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC)
	window := WeekWindow(start)

	if !window.Contains(start) {
		t.Fatal("window should include its start")
	}
	if window.Contains(start.AddDate(0, 0, 7)) {
		t.Fatal("window should exclude its end")
	}
	if !window.Contains(start.AddDate(0, 0, 7).Add(-time.Nanosecond)) {
		t.Fatal("window should include the last instant of Sunday")
	}

	var all TimeWindow
	if !all.Contains(start.AddDate(-10, 0, 0)) {
		t.Fatal("zero window should contain everything")
	}
}
