package domain

import "time"

// WeekStart returns the Monday 00:00:00 UTC of the calendar week containing t.
// The offset back to Monday is (weekday+6) mod 7 days with Sunday = 0, so a
// Sunday timestamp maps six days back and a Monday maps to itself.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// WeekEnd returns the last instant of the week that starts at weekStart,
// i.e. the final nanosecond of its Sunday.
func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 7).Add(-time.Nanosecond)
}

// PreviousWeek returns the start of the week before weekStart.
func PreviousWeek(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, -7)
}

// IsCurrentWeek reports whether weekStart is the start of the week containing now.
func IsCurrentWeek(weekStart, now time.Time) bool {
	return weekStart.Equal(WeekStart(now))
}

// WeekWindow returns the half-open interval [weekStart, weekStart+7d) used
// when selecting the activities of a single week.
func WeekWindow(weekStart time.Time) TimeWindow {
	return TimeWindow{Start: weekStart, End: weekStart.AddDate(0, 0, 7)}
}

// TimeWindow is a half-open interval [Start, End). The zero value means
// "all time".
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the window is unbounded.
func (w TimeWindow) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	if w.IsZero() {
		return true
	}
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}
