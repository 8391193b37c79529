package utils

import "time"

const DayLayout = "2006-01-02"

// Day formats t as a UTC calendar date.
func Day(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

func PreviousDay(t time.Time) string {
	return t.UTC().AddDate(0, 0, -1).Format(DayLayout)
}

// StartOfDay returns UTC midnight of t's day.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// NextMidnight returns the first UTC midnight strictly after t.
func NextMidnight(t time.Time) time.Time {
	return StartOfDay(t).Add(24 * time.Hour)
}
